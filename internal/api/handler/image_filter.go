package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/timmy/funpages/internal/errors"
	"github.com/timmy/funpages/internal/logger"
	"github.com/timmy/funpages/internal/service"
	"github.com/timmy/funpages/internal/web"
)

const msgUploadTooLarge = "The uploaded file is too large."

// ImageFilterHandler serves the image filter form and processes uploads.
type ImageFilterHandler struct {
	imageFilterService *service.ImageFilterService
}

// NewImageFilterHandler creates a new image filter handler
func NewImageFilterHandler(imageFilterService *service.ImageFilterService) *ImageFilterHandler {
	return &ImageFilterHandler{imageFilterService: imageFilterService}
}

type imageFilterPage struct {
	FilterTypes []string
	Error       string
	Result      *service.FilterResult
}

// Form handles GET /image_filter
func (h *ImageFilterHandler) Form(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageImageFilter, imageFilterPage{
		FilterTypes: h.imageFilterService.FilterNames(),
	})
}

// Upload handles POST /image_filter
// Form fields: users_image (file), filter_type
func (h *ImageFilterHandler) Upload(c *gin.Context) {
	req := &service.FilterRequest{}

	// FormFile parses the multipart body; it must run before PostForm so a
	// body over the size limit surfaces here instead of being swallowed.
	fh, err := c.FormFile("users_image")
	switch {
	case err == nil:
		f, openErr := fh.Open()
		if openErr != nil {
			h.renderError(c, apperrors.NewInternalError("failed to open upload", openErr))
			return
		}
		defer f.Close()
		req.FileName = fh.Filename
		req.Content = f
		req.Size = fh.Size
	case errors.Is(err, http.ErrMissingFile):
		// Leave Content nil; the service reports the missing upload.
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderError(c, apperrors.NewValidationError(msgUploadTooLarge, err))
			return
		}
		logger.CtxWarn(c.Request.Context(), "Failed to parse upload form: %v", err)
	}
	req.Filter = c.PostForm("filter_type")

	result, err := h.imageFilterService.Apply(c.Request.Context(), req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, web.PageImageFilter, imageFilterPage{
		FilterTypes: h.imageFilterService.FilterNames(),
		Result:      result,
	})
}

func (h *ImageFilterHandler) renderError(c *gin.Context, err error) {
	logPageError(c, err, "Image filter request failed")
	c.HTML(pageStatus(err), web.PageImageFilter, imageFilterPage{
		FilterTypes: h.imageFilterService.FilterNames(),
		Error:       apperrors.UserMessage(err),
	})
}
