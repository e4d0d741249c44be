package embedding

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

// HTTPProvider calls an external embedding endpoint:
// POST {base}/embed with {"text": ...}, answering {"embedding": [...]}.
type HTTPProvider struct {
	name    string
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
}

type HTTPProviderSettings struct {
	Name    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewHTTPProvider(settings HTTPProviderSettings) (*HTTPProvider, error) {
	if settings.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	name := settings.Name
	if name == "" {
		name = "http-embedding"
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	if settings.Timeout > 0 {
		client.HTTPClient.Timeout = settings.Timeout
	}

	return &HTTPProvider{
		name:    name,
		baseURL: settings.BaseURL,
		apiKey:  settings.APIKey,
		client:  client,
	}, nil
}

func (p *HTTPProvider) Name() string { return p.name }

func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Source: "embedding", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{Source: "embedding", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Source: "embedding", Err: err}
	}

	var parsed struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &domain.DataIntegrityError{Detail: "embedding response is malformed", Err: err}
	}
	return parsed.Embedding, nil
}
