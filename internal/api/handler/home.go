package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/funpages/internal/web"
)

// Home renders the landing page with links to every demo.
func Home(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageHome, nil)
}
