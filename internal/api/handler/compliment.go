package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/timmy/funpages/internal/errors"
	"github.com/timmy/funpages/internal/service"
	"github.com/timmy/funpages/internal/web"
)

const msgComplimentCount = "Please enter a whole number of compliments."

// ComplimentHandler serves the compliments form and its results.
type ComplimentHandler struct {
	complimentService *service.ComplimentService
}

// NewComplimentHandler creates a new compliment handler
func NewComplimentHandler(complimentService *service.ComplimentService) *ComplimentHandler {
	return &ComplimentHandler{complimentService: complimentService}
}

type complimentsForm struct {
	Error string
	Max   int
}

type complimentsPage struct {
	Name             string
	WantsCompliments bool
	Compliments      []string
	Error            string
}

// Form handles GET /compliments
func (h *ComplimentHandler) Form(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageComplimentsForm, complimentsForm{
		Max: h.complimentService.Count(),
	})
}

// Results handles GET /compliments_results
// Query params: users_name, wants_compliments ("yes" to opt in), num_compliments
func (h *ComplimentHandler) Results(c *gin.Context) {
	name := c.Query("users_name")
	wants := c.Query("wants_compliments") == "yes"

	count := 1
	if raw := strings.TrimSpace(c.Query("num_compliments")); raw != "" && wants {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.renderError(c, name, wants, apperrors.NewValidationError(msgComplimentCount, err))
			return
		}
		count = n
	}

	result, err := h.complimentService.Generate(c.Request.Context(), name, wants, count)
	if err != nil {
		h.renderError(c, name, wants, err)
		return
	}

	c.HTML(http.StatusOK, web.PageComplimentsResults, complimentsPage{
		Name:             result.Name,
		WantsCompliments: result.WantsCompliments,
		Compliments:      result.Compliments,
	})
}

func (h *ComplimentHandler) renderError(c *gin.Context, name string, wants bool, err error) {
	logPageError(c, err, "Compliments request rejected")
	c.HTML(pageStatus(err), web.PageComplimentsResults, complimentsPage{
		Name:             service.DisplayName(name),
		WantsCompliments: wants,
		Error:            apperrors.UserMessage(err),
	})
}
