package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	apperrors "github.com/timmy/funpages/internal/errors"
	"github.com/timmy/funpages/internal/logger"
)

// DefaultName is used when the visitor leaves the name field empty.
const DefaultName = "Friend"

var compliments = []string{
	"awesome",
	"beatific",
	"blithesome",
	"conscientious",
	"coruscant",
	"erudite",
	"exquisite",
	"fabulous",
	"fantastic",
	"gorgeous",
	"indubitable",
	"ineffable",
	"magnificent",
	"outstanding",
	"propitioius",
	"remarkable",
	"spectacular",
	"splendiferous",
	"stupendous",
	"super",
	"upbeat",
	"wondrous",
	"zoetic",
}

// ComplimentResult is the view model for the compliments results page.
type ComplimentResult struct {
	Name             string
	WantsCompliments bool
	Compliments      []string
}

// ComplimentService hands out random compliments from a fixed word list.
type ComplimentService struct {
	words []string
	perm  func(n int) []int
}

// NewComplimentService creates a compliment service over the built-in word list.
func NewComplimentService() *ComplimentService {
	return &ComplimentService{
		words: compliments,
		perm:  rand.Perm,
	}
}

// Count returns how many distinct compliments are available.
func (s *ComplimentService) Count() int {
	return len(s.words)
}

// DisplayName trims name and substitutes DefaultName when nothing is left.
func DisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	return name
}

// Generate samples count distinct compliments when wants is true. When wants
// is false the count is ignored and no compliments are returned.
func (s *ComplimentService) Generate(ctx context.Context, name string, wants bool, count int) (*ComplimentResult, error) {
	result := &ComplimentResult{
		Name:             DisplayName(name),
		WantsCompliments: wants,
		Compliments:      []string{},
	}
	if !wants {
		return result, nil
	}

	if count < 0 || count > len(s.words) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Please choose between 0 and %d compliments.", len(s.words)), nil)
	}

	idx := s.perm(len(s.words))[:count]
	result.Compliments = make([]string, count)
	for i, j := range idx {
		result.Compliments[i] = s.words[j]
	}

	logger.With(logger.Fields{logger.FieldCount: count}).Debug(logger.SetComponent(ctx, "compliment"), "Generated compliments")
	return result, nil
}
