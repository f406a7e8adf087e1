package service

import (
	"context"

	"github.com/timmy/funpages/internal/logger"
)

type animalFact struct {
	animal string
	fact   string
}

// Display order of the animal picker.
var animalFacts = []animalFact{
	{"koala", "Koala fingerprints are so close to humans' that they could taint crime scenes. 🐨"},
	{"parrot", "Parrots will selflessly help each other out. 🦜"},
	{"mantis shrimp", "The mantis shrimp has the world's fastest punch. 🦐"},
	{"lion", "Female lions do 90 percent of the hunting. 🦁"},
	{"narwhal", `Narwhal tusks are really an "inside out" tooth. 🦄`},
}

// AnimalFacts is the view model for the animal facts page.
type AnimalFacts struct {
	Animals      []string
	ChosenAnimal string
	Fact         string
	Found        bool
}

// AnimalService looks up facts from a fixed table.
type AnimalService struct {
	order []string
	facts map[string]string
}

// NewAnimalService creates an animal service over the built-in fact table.
func NewAnimalService() *AnimalService {
	s := &AnimalService{
		order: make([]string, 0, len(animalFacts)),
		facts: make(map[string]string, len(animalFacts)),
	}
	for _, af := range animalFacts {
		s.order = append(s.order, af.animal)
		s.facts[af.animal] = af.fact
	}
	return s
}

// Lookup returns every known animal and, when key matches one, its fact.
// An unknown or empty key is not an error; Found is simply false.
func (s *AnimalService) Lookup(ctx context.Context, key string) *AnimalFacts {
	animals := make([]string, len(s.order))
	copy(animals, s.order)

	result := &AnimalFacts{
		Animals:      animals,
		ChosenAnimal: key,
	}

	if fact, ok := s.facts[key]; ok {
		result.Fact = fact
		result.Found = true
	} else if key != "" {
		logger.FromContext(ctx).WithField(logger.FieldAnimal, key).Debug("No fact for animal")
	}

	return result
}
