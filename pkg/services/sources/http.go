package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/seo-tools/site-atlas/pkg/models/domain"
)

// HTTPAdapter fetches one source from an HTTP provider. The provider
// is expected to answer GET {base}/{source}?target=...&region=... with
// a JSON body; the adapter wraps it into a self-describing payload.
type HTTPAdapter struct {
	source  string
	baseURL string
	apiKey  string
	client  *retryablehttp.Client
}

type HTTPAdapterSettings struct {
	Source  string
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retries int
}

func NewHTTPAdapter(settings HTTPAdapterSettings) (*HTTPAdapter, error) {
	if settings.Source == "" {
		return nil, fmt.Errorf("source is required")
	}
	if settings.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = settings.Retries
	client.Logger = nil
	if settings.Timeout > 0 {
		client.HTTPClient.Timeout = settings.Timeout
	}

	return &HTTPAdapter{
		source:  settings.Source,
		baseURL: settings.BaseURL,
		apiKey:  settings.APIKey,
		client:  client,
	}, nil
}

func (a *HTTPAdapter) Fetch(ctx context.Context, target, region string) (*RawPayload, error) {
	endpoint := fmt.Sprintf("%s/%s", a.baseURL, a.source)
	query := url.Values{"target": {target}}
	if region != "" {
		query.Set("region", region)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Source: a.source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{
			Source: a.source,
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.UpstreamError{Source: a.source, Err: err}
	}
	if !json.Valid(body) {
		return nil, &domain.UpstreamError{Source: a.source, Err: fmt.Errorf("response is not valid JSON")}
	}

	resolvedRegion := region
	if RegionIndependent(a.source) || resolvedRegion == "" {
		resolvedRegion = domain.RegionGlobal
	}

	return &RawPayload{
		Source:    a.source,
		Region:    resolvedRegion,
		FetchedAt: time.Now().UTC(),
		Data:      body,
	}, nil
}
