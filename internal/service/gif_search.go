package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/funpages/internal/domain"
	apperrors "github.com/timmy/funpages/internal/errors"
	"github.com/timmy/funpages/internal/logger"
)

const (
	defaultTenorURL = "https://tenor.googleapis.com/v2/search"

	// DefaultGIFQuantity is used when the form omits the quantity.
	DefaultGIFQuantity = 5
	// MaxGIFQuantity is the largest limit Tenor accepts.
	MaxGIFQuantity = 50

	MsgNoGIFs        = "No GIFs found. Please try a different search."
	MsgTenorDown     = "Error: Unable to connect to the Tenor API."
	MsgMissingQuery  = "Please enter something to search for."
	msgQuantityRange = "Please choose between 1 and 50 GIFs."
)

// GIFSearchConfig holds configuration for the Tenor client.
type GIFSearchConfig struct {
	BaseURL   string
	APIKey    string
	ClientKey string
	Timeout   time.Duration
}

// GIFSearchResult is the view model for the GIF search page.
type GIFSearchResult struct {
	Query string
	GIFs  []domain.GIF
	// Message is set when the search succeeded but found nothing.
	Message string
}

// GIFSearchService queries the Tenor v2 search API.
//
// Every call makes exactly one request; there is no retry and no caching.
type GIFSearchService struct {
	client    *resty.Client
	endpoint  string
	apiKey    string
	clientKey string
}

// NewGIFSearchService creates a new GIF search service.
func NewGIFSearchService(cfg *GIFSearchConfig) *GIFSearchService {
	client := resty.New()
	client.SetHeader("Accept", "application/json")
	client.SetRetryCount(0)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = defaultTenorURL
	}

	return &GIFSearchService{
		client:    client,
		endpoint:  endpoint,
		apiKey:    cfg.APIKey,
		clientKey: cfg.ClientKey,
	}
}

type tenorSearchResponse struct {
	Results []domain.GIF `json:"results"`
	Next    string       `json:"next"`
}

// Search looks up quantity GIFs matching query.
func (s *GIFSearchService) Search(ctx context.Context, query string, quantity int) (*GIFSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError(MsgMissingQuery, nil)
	}
	if quantity < 1 || quantity > MaxGIFQuantity {
		return nil, apperrors.NewValidationError(msgQuantityRange, nil)
	}

	ctx = logger.WithField(logger.SetComponent(ctx, "gif_search"), logger.FieldQuery, query)
	start := time.Now()

	var resp tenorSearchResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		// Decode JSON even if the upstream mislabels the body.
		ForceContentType("application/json").
		SetQueryParams(map[string]string{
			"q":          query,
			"key":        s.apiKey,
			"client_key": s.clientKey,
			"limit":      strconv.Itoa(quantity),
		}).
		SetResult(&resp).
		Get(s.endpoint)

	if err != nil {
		logger.CtxError(ctx, "Tenor request failed: %v", err)
		return nil, apperrors.NewNetworkError(MsgTenorDown, err)
	}

	if httpResp.StatusCode() != 200 {
		logger.With(logger.Fields{logger.FieldStatus: httpResp.StatusCode()}).
			WithDuration(time.Since(start).Milliseconds()).
			Warn(ctx, "Tenor returned non-200: %s", truncate(string(httpResp.Body()), 200))
		return nil, apperrors.NewNetworkError(MsgTenorDown, nil)
	}

	result := &GIFSearchResult{
		Query: query,
		GIFs:  resp.Results,
	}
	if result.GIFs == nil {
		result.GIFs = []domain.GIF{}
	}
	if len(result.GIFs) == 0 {
		result.Message = MsgNoGIFs
	}

	logger.With(logger.Fields{logger.FieldStatus: httpResp.StatusCode()}).
		WithCount(len(result.GIFs)).
		WithDuration(time.Since(start).Milliseconds()).
		Info(ctx, "Tenor search completed")

	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
