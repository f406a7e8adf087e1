package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/timmy/funpages/internal/domain"
	apperrors "github.com/timmy/funpages/internal/errors"
	"github.com/timmy/funpages/internal/logger"
	"github.com/timmy/funpages/internal/storage"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// DefaultMaxDimension bounds both sides of a filtered image.
const DefaultMaxDimension = 500

// DefaultMaxPixels is the largest decoded image accepted, about 89.5 megapixels.
const DefaultMaxPixels int64 = 1024 * 1024 * 1024 / 4 / 3

const msgImageTooLarge = "The image is too large to process."

// MsgMissingUpload is shown when the form is submitted without an image or a filter.
const MsgMissingUpload = "Please upload an image and select a filter."

// FilterRequest is one upload from the image filter form.
type FilterRequest struct {
	// FileName is the client-side name of the upload; only its base name is used.
	FileName string
	// Filter is the selected filter display name.
	Filter string
	// Content is nil when no file was uploaded.
	Content io.Reader
	Size    int64
}

// FilterResult describes the stored, filtered artifact.
type FilterResult struct {
	FileName string
	URL      string
	Filter   string
	Width    int
	Height   int
}

// ImageFilterConfig holds configuration for the image filter service
type ImageFilterConfig struct {
	MaxDimension int
	// MaxPixels caps width×height of an upload before it is fully decoded.
	MaxPixels int64
}

// ImageFilterService stores uploads, shrinks them and applies a named kernel.
//
// An upload goes through validate → persist → thumbnail + filter → overwrite.
// Nothing is written when validation fails. The overwrite is not atomic: a
// failure after persisting leaves the unfiltered upload in storage.
type ImageFilterService struct {
	storage      storage.ObjectStorage
	maxDimension int
	maxPixels    int64
}

// NewImageFilterService creates a new image filter service
func NewImageFilterService(objectStorage storage.ObjectStorage, cfg *ImageFilterConfig) *ImageFilterService {
	maxDim := DefaultMaxDimension
	maxPixels := DefaultMaxPixels
	if cfg != nil {
		if cfg.MaxDimension > 0 {
			maxDim = cfg.MaxDimension
		}
		if cfg.MaxPixels > 0 {
			maxPixels = cfg.MaxPixels
		}
	}
	return &ImageFilterService{
		storage:      objectStorage,
		maxDimension: maxDim,
		maxPixels:    maxPixels,
	}
}

// FilterNames returns the selectable filters in display order.
func (s *ImageFilterService) FilterNames() []string {
	return domain.FilterNames()
}

// ArtifactName derives the stored file name from the filter and the uploaded
// file name. Directory components of the upload name are dropped.
func ArtifactName(filterName, fileName string) string {
	return filterName + "-" + baseName(fileName)
}

func baseName(fileName string) string {
	// Some browsers send the full client path, with either separator.
	return filepath.Base(strings.ReplaceAll(fileName, `\`, "/"))
}

// Apply runs the pipeline for one upload.
func (s *ImageFilterService) Apply(ctx context.Context, req *FilterRequest) (*FilterResult, error) {
	start := time.Now()

	if req == nil || req.Content == nil || strings.TrimSpace(req.FileName) == "" || req.Filter == "" {
		return nil, apperrors.NewValidationError(MsgMissingUpload, nil)
	}

	filter, ok := domain.LookupFilter(req.Filter)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Unknown filter %q.", req.Filter), nil)
	}

	base := baseName(req.FileName)
	if base == "." || base == "/" {
		return nil, apperrors.NewValidationError(MsgMissingUpload, nil)
	}

	format, err := imaging.FormatFromFilename(base)
	if err != nil {
		return nil, apperrors.NewValidationError(
			"Unsupported image type. Please upload a JPEG, PNG, GIF, BMP or TIFF file.", err)
	}

	key := ArtifactName(filter.Name, base)
	ctx = logger.WithFields(logger.SetComponent(ctx, "image_filter"), logger.Fields{
		logger.FieldFilter:   filter.Name,
		logger.FieldArtifact: key,
	})

	contentType := mimeTypeOf(format)
	if err := s.storage.Upload(ctx, key, req.Content, req.Size, contentType); err != nil {
		return nil, apperrors.NewInternalError("Could not save the uploaded image.", err)
	}

	img, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}

	filtered := ApplyFilter(Thumbnail(img, s.maxDimension), filter)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, filtered, format); err != nil {
		return nil, apperrors.NewInternalError("Could not encode the filtered image.", err)
	}
	size := int64(buf.Len())
	if err := s.storage.Upload(ctx, key, bytes.NewReader(buf.Bytes()), size, contentType); err != nil {
		return nil, apperrors.NewInternalError("Could not save the filtered image.", err)
	}

	bounds := filtered.Bounds()
	logger.With(logger.Fields{logger.FieldSize: size}).
		WithDuration(time.Since(start).Milliseconds()).
		Info(ctx, "Filtered image stored: %dx%d", bounds.Dx(), bounds.Dy())

	return &FilterResult{
		FileName: key,
		URL:      s.storage.GetURL(key),
		Filter:   filter.Name,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// load reopens a persisted upload and decodes it. The header is checked
// against maxPixels first so an oversized image is never fully decoded.
func (s *ImageFilterService) load(ctx context.Context, key string) (image.Image, error) {
	rc, err := s.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("The uploaded image disappeared before it could be filtered.", err)
		}
		return nil, apperrors.NewInternalError("Could not read the uploaded image.", err)
	}
	defer rc.Close()

	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(rc, &header))
	if err != nil {
		return nil, apperrors.NewProcessingError("The uploaded file is not a readable image.", err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > s.maxPixels {
		logger.CtxWarn(ctx, "Refusing to decode %dx%d image (%d pixels)", cfg.Width, cfg.Height, pixels)
		return nil, apperrors.NewProcessingError(msgImageTooLarge, nil)
	}

	img, _, err := image.Decode(io.MultiReader(&header, rc))
	if err != nil {
		return nil, apperrors.NewProcessingError("The uploaded file is not a readable image.", err)
	}
	return img, nil
}

// FitWithin returns the size of a w×h image scaled down to fit inside a
// limit×limit box with its aspect ratio kept. Images that already fit are left
// as they are; neither side drops below 1.
func FitWithin(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		nh := int(math.Round(float64(h) * float64(limit) / float64(w)))
		return limit, clampMin1(nh)
	}
	nw := int(math.Round(float64(w) * float64(limit) / float64(h)))
	return clampMin1(nw), limit
}

func clampMin1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// Thumbnail shrinks img to fit within limit×limit. It never upscales.
func Thumbnail(img image.Image, limit int) image.Image {
	b := img.Bounds()
	nw, nh := FitWithin(b.Dx(), b.Dy(), limit)
	if nw == b.Dx() && nh == b.Dy() {
		return img
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ApplyFilter convolves img with the filter's kernel.
func ApplyFilter(img image.Image, f domain.Filter) *image.NRGBA {
	opts := &imaging.ConvolveOptions{Normalize: true, Bias: f.Bias}

	if f.Size() == 5 {
		var k [25]float64
		copy(k[:], f.Weights)
		return imaging.Convolve5x5(img, k, opts)
	}

	var k [9]float64
	copy(k[:], f.Weights)
	return imaging.Convolve3x3(img, k, opts)
}

func mimeTypeOf(format imaging.Format) string {
	switch format {
	case imaging.JPEG:
		return "image/jpeg"
	case imaging.PNG:
		return "image/png"
	case imaging.GIF:
		return "image/gif"
	case imaging.TIFF:
		return "image/tiff"
	case imaging.BMP:
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}
