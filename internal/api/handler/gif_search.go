package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/timmy/funpages/internal/domain"
	apperrors "github.com/timmy/funpages/internal/errors"
	"github.com/timmy/funpages/internal/service"
	"github.com/timmy/funpages/internal/web"
)

const msgGIFQuantity = "Please enter a whole number of GIFs."

// GIFSearchHandler serves the GIF search form and results.
type GIFSearchHandler struct {
	gifSearchService *service.GIFSearchService
	defaultQuantity  int
}

// NewGIFSearchHandler creates a new GIF search handler.
// defaultQuantity is used when the form leaves the quantity blank.
func NewGIFSearchHandler(gifSearchService *service.GIFSearchService, defaultQuantity int) *GIFSearchHandler {
	if defaultQuantity <= 0 {
		defaultQuantity = service.DefaultGIFQuantity
	}
	return &GIFSearchHandler{
		gifSearchService: gifSearchService,
		defaultQuantity:  defaultQuantity,
	}
}

type gifSearchPage struct {
	Query    string
	Quantity int
	Error    string
	Message  string
	GIFs     []domain.GIF
}

// Form handles GET /gif_search
func (h *GIFSearchHandler) Form(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageGIFSearch, gifSearchPage{Quantity: h.defaultQuantity})
}

// Search handles POST /gif_search
// Form fields: search_query, quantity
func (h *GIFSearchHandler) Search(c *gin.Context) {
	page := gifSearchPage{
		Query:    c.PostForm("search_query"),
		Quantity: h.defaultQuantity,
	}

	if raw := strings.TrimSpace(c.PostForm("quantity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.renderError(c, page, apperrors.NewValidationError(msgGIFQuantity, err))
			return
		}
		page.Quantity = n
	}

	result, err := h.gifSearchService.Search(c.Request.Context(), page.Query, page.Quantity)
	if err != nil {
		h.renderError(c, page, err)
		return
	}

	page.Query = result.Query
	page.GIFs = result.GIFs
	page.Message = result.Message
	c.HTML(http.StatusOK, web.PageGIFSearch, page)
}

func (h *GIFSearchHandler) renderError(c *gin.Context, page gifSearchPage, err error) {
	logPageError(c, err, "GIF search failed")
	page.Error = apperrors.UserMessage(err)
	c.HTML(pageStatus(err), web.PageGIFSearch, page)
}
