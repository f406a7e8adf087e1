package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/timmy/funpages/internal/domain"
	apperrors "github.com/timmy/funpages/internal/errors"
	"github.com/timmy/funpages/internal/storage"
)

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// pngHeader returns a PNG holding only a signature and an IHDR chunk that
// claims a w×h grayscale image.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 4+13)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], w)
	binary.BigEndian.PutUint32(ihdr[8:], h)
	ihdr[12] = 8 // bit depth; color type, compression, filter and interlace stay 0

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))
	return buf.Bytes()
}

func newTestFilterService(t *testing.T) (*ImageFilterService, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "images")
	store, err := storage.NewLocalStorage(dir, "/static/images")
	if err != nil {
		t.Fatal(err)
	}
	return NewImageFilterService(store, &ImageFilterConfig{MaxDimension: 500}), dir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestImageFilterService_Apply(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		filter   string
		fileName string
		wantName string
		wantW    int
		wantH    int
		wantURL  string
	}{
		{"landscape", 1000, 600, "blur", "cat.png", "blur-cat.png", 500, 300, "/static/images/blur-cat.png"},
		{"portrait", 400, 1200, "sharpen", "dog.png", "sharpen-dog.png", 167, 500, "/static/images/sharpen-dog.png"},
		{"small kept", 120, 80, "emboss", "tiny.png", "emboss-tiny.png", 120, 80, "/static/images/emboss-tiny.png"},
		{"space in filter", 600, 600, "edge enhance", "sq.png", "edge enhance-sq.png", 500, 500, "/static/images/edge%20enhance-sq.png"},
		{"client path stripped", 50, 50, "smooth", `C:\Users\me\pic.png`, "smooth-pic.png", 50, 50, "/static/images/smooth-pic.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, dir := newTestFilterService(t)
			data := encodePNG(t, tt.w, tt.h, color.NRGBA{R: 200, G: 80, B: 40, A: 255})

			result, err := svc.Apply(context.Background(), &FilterRequest{
				FileName: tt.fileName,
				Filter:   tt.filter,
				Content:  bytes.NewReader(data),
				Size:     int64(len(data)),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.FileName != tt.wantName {
				t.Errorf("FileName = %q, want %q", result.FileName, tt.wantName)
			}
			if result.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", result.URL, tt.wantURL)
			}
			if result.Width != tt.wantW || result.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", result.Width, result.Height, tt.wantW, tt.wantH)
			}

			f, err := os.Open(filepath.Join(dir, tt.wantName))
			if err != nil {
				t.Fatalf("artifact not stored: %v", err)
			}
			defer f.Close()
			cfg, format, err := image.DecodeConfig(f)
			if err != nil {
				t.Fatalf("stored artifact is not an image: %v", err)
			}
			if format != "png" {
				t.Errorf("stored format = %q, want png", format)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("stored size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
			if cfg.Width > 500 || cfg.Height > 500 {
				t.Errorf("stored image exceeds bounding box: %dx%d", cfg.Width, cfg.Height)
			}
		})
	}
}

func TestImageFilterService_RejectsWithoutWriting(t *testing.T) {
	data := encodePNG(t, 10, 10, color.White)

	tests := []struct {
		name string
		req  *FilterRequest
		msg  string
	}{
		{"nil request", nil, MsgMissingUpload},
		{"no image", &FilterRequest{FileName: "", Filter: "blur"}, MsgMissingUpload},
		{"no content", &FilterRequest{FileName: "cat.png", Filter: "blur"}, MsgMissingUpload},
		{"no filter", &FilterRequest{FileName: "cat.png", Content: bytes.NewReader(data)}, MsgMissingUpload},
		{"unknown filter", &FilterRequest{FileName: "cat.png", Filter: "sepia", Content: bytes.NewReader(data)}, `Unknown filter "sepia".`},
		{"unsupported extension", &FilterRequest{FileName: "cat.webp", Filter: "blur", Content: bytes.NewReader(data)}, "Unsupported image type"},
		{"no extension", &FilterRequest{FileName: "cat", Filter: "blur", Content: bytes.NewReader(data)}, "Unsupported image type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, dir := newTestFilterService(t)

			_, err := svc.Apply(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
			if msg := apperrors.UserMessage(err); !strings.HasPrefix(msg, tt.msg) {
				t.Errorf("message = %q, want prefix %q", msg, tt.msg)
			}
			if files := listDir(t, dir); len(files) != 0 {
				t.Errorf("expected no files written, found %v", files)
			}
		})
	}
}

func TestImageFilterService_UndecodableUpload(t *testing.T) {
	svc, dir := newTestFilterService(t)
	junk := []byte("definitely not a png")

	_, err := svc.Apply(context.Background(), &FilterRequest{
		FileName: "junk.png",
		Filter:   "blur",
		Content:  bytes.NewReader(junk),
		Size:     int64(len(junk)),
	})
	if !apperrors.IsType(err, apperrors.ErrorTypeProcessing) {
		t.Fatalf("expected processing error, got %v", err)
	}

	// The raw upload stays behind; the pipeline is not transactional.
	files := listDir(t, dir)
	if len(files) != 1 || files[0] != "blur-junk.png" {
		t.Errorf("expected raw upload to remain, found %v", files)
	}
}

func TestImageFilterService_PixelLimit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	store, err := storage.NewLocalStorage(dir, "/static/images")
	if err != nil {
		t.Fatal(err)
	}
	svc := NewImageFilterService(store, &ImageFilterConfig{MaxDimension: 500, MaxPixels: 400})

	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"at limit", 20, 20, false},
		{"one row over", 20, 21, true},
		{"wide strip", 401, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodePNG(t, tt.w, tt.h, color.Gray{Y: 90})
			result, err := svc.Apply(context.Background(), &FilterRequest{
				FileName: "big.png",
				Filter:   "blur",
				Content:  bytes.NewReader(data),
				Size:     int64(len(data)),
			})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if result.Width != tt.w || result.Height != tt.h {
					t.Errorf("size = %dx%d, want %dx%d", result.Width, result.Height, tt.w, tt.h)
				}
				return
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeProcessing) {
				t.Fatalf("expected processing error, got %v", err)
			}
			if msg := apperrors.UserMessage(err); msg != msgImageTooLarge {
				t.Errorf("message = %q, want %q", msg, msgImageTooLarge)
			}
		})
	}
}

func TestImageFilterService_RejectsHugeDimensionsBeforeDecode(t *testing.T) {
	svc, dir := newTestFilterService(t)
	data := pngHeader(20000, 20000)

	_, err := svc.Apply(context.Background(), &FilterRequest{
		FileName: "bomb.png",
		Filter:   "sharpen",
		Content:  bytes.NewReader(data),
		Size:     int64(len(data)),
	})
	if !apperrors.IsType(err, apperrors.ErrorTypeProcessing) {
		t.Fatalf("expected processing error, got %v", err)
	}
	if msg := apperrors.UserMessage(err); msg != msgImageTooLarge {
		t.Errorf("message = %q, want %q", msg, msgImageTooLarge)
	}
	// Only the raw upload was written; no filtered output replaced it.
	if files := listDir(t, dir); len(files) != 1 || files[0] != "sharpen-bomb.png" {
		t.Errorf("unexpected files %v", files)
	}
}

func TestNewImageFilterService_Defaults(t *testing.T) {
	svc := NewImageFilterService(nil, nil)
	if svc.maxDimension != DefaultMaxDimension {
		t.Errorf("maxDimension = %d, want %d", svc.maxDimension, DefaultMaxDimension)
	}
	if svc.maxPixels != 89478485 {
		t.Errorf("maxPixels = %d, want 89478485", svc.maxPixels)
	}
}

// recordingStorage notes how each Upload was called before delegating.
type recordingStorage struct {
	*storage.LocalStorage
	seekable []bool
	sizes    []int64
	lengths  []int
}

func (r *recordingStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, ok := reader.(io.Seeker)
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	r.seekable = append(r.seekable, ok)
	r.sizes = append(r.sizes, size)
	r.lengths = append(r.lengths, len(data))
	return r.LocalStorage.Upload(ctx, key, bytes.NewReader(data), size, contentType)
}

func TestImageFilterService_FilteredUploadIsSeekable(t *testing.T) {
	local, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "images"), "/static/images")
	if err != nil {
		t.Fatal(err)
	}
	rec := &recordingStorage{LocalStorage: local}
	svc := NewImageFilterService(rec, &ImageFilterConfig{MaxDimension: 500})

	data := encodePNG(t, 640, 480, color.NRGBA{R: 10, G: 120, B: 220, A: 255})
	if _, err := svc.Apply(context.Background(), &FilterRequest{
		FileName: "s3.png",
		Filter:   "contour",
		Content:  bytes.NewReader(data),
		Size:     int64(len(data)),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.sizes) != 2 {
		t.Fatalf("expected raw and filtered uploads, got %d", len(rec.sizes))
	}
	if !rec.seekable[1] {
		t.Error("filtered image must be uploaded from a seekable reader")
	}
	if rec.sizes[1] == 0 || rec.sizes[1] != int64(rec.lengths[1]) {
		t.Errorf("declared size %d, body length %d", rec.sizes[1], rec.lengths[1])
	}
}

func TestImageFilterService_LastWriterWins(t *testing.T) {
	svc, dir := newTestFilterService(t)

	for _, w := range []int{300, 40} {
		data := encodePNG(t, w, 20, color.Black)
		if _, err := svc.Apply(context.Background(), &FilterRequest{
			FileName: "same.png",
			Filter:   "detail",
			Content:  bytes.NewReader(data),
			Size:     int64(len(data)),
		}); err != nil {
			t.Fatal(err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "detail-same.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 40 {
		t.Errorf("expected second upload to win, width = %d", cfg.Width)
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{1000, 500, 500, 500, 250},
		{500, 1000, 500, 250, 500},
		{400, 1200, 500, 167, 500},
		{500, 500, 500, 500, 500},
		{300, 200, 500, 300, 200},
		{5000, 1, 500, 500, 1},
		{1, 5000, 500, 1, 500},
	}

	for _, tt := range tests {
		gotW, gotH := FitWithin(tt.w, tt.h, tt.limit)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("FitWithin(%d, %d, %d) = %dx%d, want %dx%d",
				tt.w, tt.h, tt.limit, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}

func TestApplyFilter_UniformImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = 100, 100, 100, 255
	}

	// On a flat image, normalised smoothing kernels keep the value, and the
	// zero-sum kernels collapse to their bias.
	tests := []struct {
		filter string
		want   uint8
	}{
		{domain.FilterBlur, 100},
		{domain.FilterSmooth, 100},
		{domain.FilterSharpen, 100},
		{domain.FilterDetail, 100},
		{domain.FilterEdgeEnhance, 100},
		{domain.FilterContour, 255},
		{domain.FilterEmboss, 128},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			f, ok := domain.LookupFilter(tt.filter)
			if !ok {
				t.Fatalf("filter %q not registered", tt.filter)
			}
			out := ApplyFilter(src, f)
			if out.Bounds() != src.Bounds() {
				t.Fatalf("bounds changed: %v", out.Bounds())
			}
			c := out.NRGBAAt(4, 4)
			if c.R != tt.want || c.G != tt.want || c.B != tt.want {
				t.Errorf("pixel = %v, want %d", c, tt.want)
			}
			if c.A != 255 {
				t.Errorf("alpha changed: %d", c.A)
			}
		})
	}
}
