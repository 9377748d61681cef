// HTTP [ProjectSource] implementation for the project API behind a tunneling proxy.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"webdeck/internal/shared"
)

const defaultBaseURL string = "http://localhost:8080"

// HTTPProjectSource implements the ProjectSource interface over HTTP.
//
// Tunneling proxies return an HTML interstitial instead of JSON or archive
// bytes when the bypass header is missing, so the source sends it on every
// request and treats an unexpected content type as a failed call.
type HTTPProjectSource struct {
	baseURL      string
	bypassHeader string
	bypassValue  string
	extraHeaders map[string]string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

// SourceOpts contains configuration options for creating an HTTPProjectSource.
type SourceOpts struct {
	BaseURL      string
	BypassHeader string
	BypassValue  string
	ExtraHeaders map[string]string
	HTTPClient   *http.Client
	RateLimit    float64 // requests per second, 0 means the default of 5
}

// NewHTTPProjectSource creates a new project source for the given options.
func NewHTTPProjectSource(opts SourceOpts) *HTTPProjectSource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.BypassHeader == "" {
		opts.BypassHeader = "Bypass-Tunnel-Reminder"
		opts.BypassValue = "true"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	return &HTTPProjectSource{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		bypassHeader: opts.BypassHeader,
		bypassValue:  opts.BypassValue,
		extraHeaders: opts.ExtraHeaders,
		httpClient:   opts.HTTPClient,
		limiter:      rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

// Name returns the source name.
func (s *HTTPProjectSource) Name() string {
	return "Project API"
}

// get performs a rate-limited GET with the bypass and extra headers applied.
func (s *HTTPProjectSource) get(ctx context.Context, endpoint string) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(s.bypassHeader, s.bypassValue)
	for key, value := range s.extraHeaders {
		req.Header.Set(key, value)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d from %s", shared.ErrNetwork, resp.StatusCode, endpoint)
	}

	return resp, nil
}

// isHTML reports whether the response announces an HTML body, which for this
// API only ever means a proxy interstitial.
func isHTML(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "text/html"
}

// List retrieves all projects via GET /api/projects.
func (s *HTTPProjectSource) List(ctx context.Context) ([]ProjectListing, error) {
	resp, err := s.get(ctx, "/api/projects")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if isHTML(resp) {
		return nil, fmt.Errorf("%w: proxy interstitial instead of project listing", shared.ErrNetwork)
	}

	var listings []ProjectListing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return nil, fmt.Errorf("%w: failed to decode listing: %v", shared.ErrNetwork, err)
	}

	return listings, nil
}

// Download fetches archive bytes via GET /api/projects/{id}/files/{name}.
func (s *HTTPProjectSource) Download(ctx context.Context, projectID, fileName string) ([]byte, error) {
	if projectID == "" || fileName == "" {
		return nil, fmt.Errorf("%w: project id and file name are required", shared.ErrInvalidArgument)
	}

	endpoint := fmt.Sprintf("/api/projects/%s/files/%s", url.PathEscape(projectID), url.PathEscape(fileName))
	resp, err := s.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if isHTML(resp) {
		return nil, fmt.Errorf("%w: proxy interstitial instead of archive bytes", shared.ErrNetwork)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read archive: %v", shared.ErrNetwork, err)
	}

	return data, nil
}
