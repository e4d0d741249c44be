package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
)

// HTTPProvider calls an external inference endpoint:
// POST {base}/infer with {"text": ...}, answering the insight JSON.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
}

type HTTPProviderSettings struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewHTTPProvider(settings HTTPProviderSettings) (*HTTPProvider, error) {
	if settings.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	if settings.Timeout > 0 {
		client.HTTPClient.Timeout = settings.Timeout
	}

	return &HTTPProvider{
		baseURL: settings.BaseURL,
		apiKey:  settings.APIKey,
		client:  client,
	}, nil
}

func (p *HTTPProvider) Infer(ctx context.Context, profileText string) (*domain.Insight, error) {
	body, err := json.Marshal(map[string]string{"text": profileText})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/infer", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Source: "insight", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{Source: "insight", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Source: "insight", Err: err}
	}
	return ParseResponse(data)
}
