package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timmy/funpages/internal/api/middleware"
	apperrors "github.com/timmy/funpages/internal/errors"
)

// pageStatus maps a service error to the status its page is rendered with.
// Bad form input is shown in-page with 200; upstream and processing failures
// keep their own status.
func pageStatus(err error) int {
	if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		return http.StatusOK
	}
	return apperrors.GetStatusCode(err)
}

// logPageError logs err at a level matching its type.
func logPageError(c *gin.Context, err error, msg string) {
	log := middleware.GetLogger(c).WithError(err)
	if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		log.Info(msg)
		return
	}
	log.Error(msg)
}
