package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/funpages/internal/service"
	"github.com/timmy/funpages/internal/web"
)

// AnimalHandler serves the animal facts page.
type AnimalHandler struct {
	animalService *service.AnimalService
}

// NewAnimalHandler creates a new animal handler
func NewAnimalHandler(animalService *service.AnimalService) *AnimalHandler {
	return &AnimalHandler{animalService: animalService}
}

// Facts handles GET /animal_facts?animal=<key>
func (h *AnimalHandler) Facts(c *gin.Context) {
	facts := h.animalService.Lookup(c.Request.Context(), c.Query("animal"))
	c.HTML(http.StatusOK, web.PageAnimalFacts, facts)
}
