package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/setup-hc-releases/internal/domain/entities"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces"
	"github.com/hashicorp/setup-hc-releases/internal/domain/interfaces/gateways"
)

const (
	// DefaultAPIBaseURL is the public GitHub REST endpoint
	DefaultAPIBaseURL = "https://api.github.com"

	// Max retries for transient errors
	maxRetries = 3
	// Initial backoff duration
	initialBackoff = 1 * time.Second
	// Max backoff duration
	maxBackoff = 32 * time.Second

	// Error bodies are only read to classify and report them
	maxErrorBody = 64 * 1024
)

var (
	_ gateways.ReleaseGateway = (*HTTPGitHubGateway)(nil)
	_ gateways.BinaryFetcher  = (*HTTPGitHubGateway)(nil)
)

// HTTPGitHubGateway implements ReleaseGateway and BinaryFetcher using the standard HTTP client
type HTTPGitHubGateway struct {
	client         *http.Client
	baseURL        string
	token          string
	userAgent      string
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         interfaces.Logger
}

// GitHubGatewayOption configures an HTTPGitHubGateway
type GitHubGatewayOption func(*HTTPGitHubGateway)

// WithBaseURL points the gateway at a different API host (GHES, tests)
func WithBaseURL(baseURL string) GitHubGatewayOption {
	return func(g *HTTPGitHubGateway) {
		if baseURL != "" {
			g.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) GitHubGatewayOption {
	return func(g *HTTPGitHubGateway) {
		g.client = client
	}
}

// WithRetryPolicy sets the retry budget and backoff bounds
func WithRetryPolicy(retries int, initial, maximum time.Duration) GitHubGatewayOption {
	return func(g *HTTPGitHubGateway) {
		g.maxRetries = retries
		g.initialBackoff = initial
		g.maxBackoff = maximum
	}
}

// WithLogger sets the logger used for progress and rate limit warnings
func WithLogger(logger interfaces.Logger) GitHubGatewayOption {
	return func(g *HTTPGitHubGateway) {
		g.logger = logger
	}
}

// NewHTTPGitHubGateway creates a new GitHub gateway with HTTP client
func NewHTTPGitHubGateway(token string, opts ...GitHubGatewayOption) *HTTPGitHubGateway {
	g := &HTTPGitHubGateway{
		client: &http.Client{
			Timeout: 5 * time.Minute, // Long timeout for large downloads
		},
		baseURL:        DefaultAPIBaseURL,
		token:          token,
		userAgent:      "setup-hc-releases/1.0",
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
		logger:         &interfaces.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// checkRateLimit warns when the GitHub API rate limit is nearly exhausted
func (g *HTTPGitHubGateway) checkRateLimit(resp *http.Response) {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return
	}

	remainingInt, err := strconv.Atoi(remaining)
	if err != nil {
		return
	}

	if remainingInt <= 10 {
		fields := []interfaces.Field{interfaces.F("remaining", remainingInt)}
		if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			fields = append(fields, interfaces.F("resets_at", time.Unix(reset, 0).UTC().Format(time.RFC3339)))
		}
		g.logger.Warn("GitHub API rate limit low", fields...)
	}
}

// isSecondaryRateLimit reports whether a 403 body carries GitHub's abuse marker
func isSecondaryRateLimit(body []byte) bool {
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "abuse") || strings.Contains(lower, "secondary rate limit")
}

// isRetryableError checks if an HTTP response is a transient failure.
// 403 is only transient when GitHub flags it as abuse / secondary rate limiting.
func isRetryableError(statusCode int, body []byte) bool {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return true
	case statusCode == http.StatusForbidden:
		return isSecondaryRateLimit(body)
	case statusCode >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

// calculateBackoff returns the backoff duration for a retry attempt
func (g *HTTPGitHubGateway) calculateBackoff(attempt int, retryAfter string) time.Duration {
	backoff := float64(g.initialBackoff) * math.Pow(2, float64(attempt))
	if seconds, err := strconv.Atoi(retryAfter); err == nil && float64(time.Duration(seconds)*time.Second) > backoff {
		backoff = float64(time.Duration(seconds) * time.Second)
	}
	if backoff > float64(g.maxBackoff) {
		backoff = float64(g.maxBackoff)
	}
	return time.Duration(backoff)
}

// doWithRetry executes an HTTP request with exponential backoff retry.
// The returned response is never a transient failure; its body is readable.
func (g *HTTPGitHubGateway) doWithRetry(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var lastErr error
	retryAfter := ""

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := g.calculateBackoff(attempt-1, retryAfter)
			g.logger.Debug("Retrying GitHub API request",
				interfaces.F("url", req.URL.String()),
				interfaces.F("attempt", attempt),
				interfaces.F("backoff", backoff.String()),
				interfaces.F("cause", lastErr))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := g.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Network errors are retryable
			lastErr = err
			retryAfter = ""
			continue
		}

		g.checkRateLimit(resp)

		var body []byte
		if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			body, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			//nolint:errcheck,gosec // G104: Best effort close, body already buffered
			resp.Body.Close()
			resp.Body = io.NopCloser(bytes.NewReader(body))
		}

		// Success or non-retryable error
		if !isRetryableError(resp.StatusCode, body) {
			return resp, nil
		}

		lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		retryAfter = resp.Header.Get("Retry-After")
	}

	return nil, fmt.Errorf("%w: %s %s after %d attempts: %w",
		entities.ErrTransientFetchFailure, req.Method, req.URL.Redacted(), g.maxRetries+1, lastErr)
}

func (g *HTTPGitHubGateway) newRequest(ctx context.Context, rawURL, accept string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

	return req, nil
}

// githubRelease represents the GitHub API release format
type githubRelease struct {
	ID      int64         `json:"id"`
	TagName string        `json:"tag_name"`
	Name    string        `json:"name"`
	Assets  []githubAsset `json:"assets"`
}

// githubAsset represents a GitHub release asset
type githubAsset struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	ContentType        string `json:"content_type"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

func (r githubRelease) toEntity() *entities.Release {
	release := &entities.Release{
		ID:      r.ID,
		TagName: r.TagName,
		Name:    r.Name,
		Assets:  make([]entities.ReleaseAsset, len(r.Assets)),
	}
	for i, a := range r.Assets {
		release.Assets[i] = entities.ReleaseAsset{
			ID:                 a.ID,
			Name:               a.Name,
			Size:               a.Size,
			ContentType:        a.ContentType,
			BrowserDownloadURL: a.BrowserDownloadURL,
		}
	}
	return release
}

// GetReleaseByTag retrieves a release by tag name
func (g *HTTPGitHubGateway) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*entities.Release, error) {
	g.logger.Info("Getting release for tag", interfaces.F("tag", tag))

	releaseURL := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s",
		g.baseURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(tag))

	req, err := g.newRequest(ctx, releaseURL, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	resp, err := g.doWithRetry(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get release %s: %w", tag, err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s/%s@%s", entities.ErrReleaseNotFound, owner, repo, tag)
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("failed to get release %s: HTTP %d: %s", tag, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var result githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	release := result.toEntity()

	g.logger.Debug("Found release",
		interfaces.F("id", release.ID),
		interfaces.F("tag", release.TagName),
		interfaces.F("assets", len(release.Assets)))

	return release, nil
}

// FetchBinary requests url as application/octet-stream with the gateway's credentials.
// Redirects to the storage host are followed by the HTTP client, which drops
// the Authorization header when the host changes.
func (g *HTTPGitHubGateway) FetchBinary(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := g.newRequest(ctx, rawURL, "application/octet-stream")
	if err != nil {
		return nil, err
	}

	resp, err := g.doWithRetry(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		//nolint:errcheck,gosec // G104: Best effort close on error path
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", entities.ErrAssetNotFound, req.URL.Redacted())
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	return resp.Body, nil
}

// DownloadReleaseAsset downloads a release asset to destDir/asset.Name.
// Content goes to a temporary file that is renamed into place only once the
// whole body was written, so a failed download never leaves a usable file.
func (g *HTTPGitHubGateway) DownloadReleaseAsset(ctx context.Context, owner, repo string, asset entities.ReleaseAsset, destDir string) (*entities.DownloadedArtifact, error) {
	g.logger.Info("Downloading release asset", interfaces.F("asset", asset.Name))

	if asset.Name == "" || filepath.Base(asset.Name) != asset.Name {
		return nil, fmt.Errorf("invalid release asset name: %q", asset.Name)
	}

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	assetURL := fmt.Sprintf("%s/repos/%s/%s/releases/assets/%d",
		g.baseURL, url.PathEscape(owner), url.PathEscape(repo), asset.ID)

	body, err := g.FetchBinary(ctx, assetURL)
	if err != nil {
		g.logger.Error("Unable to download release asset", interfaces.F("asset", asset.Name), interfaces.F("error", err))
		return nil, fmt.Errorf("failed to download release asset %s: %w", asset.Name, err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer body.Close()

	tmp, err := os.CreateTemp(destDir, "."+asset.Name+".part-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file for release asset %s: %w", asset.Name, err)
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, body)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to write release asset %s: %w", asset.Name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to close release asset %s: %w", asset.Name, err)
	}

	if asset.Size > 0 && written != asset.Size {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to download release asset %s: got %d bytes, expected %d", asset.Name, written, asset.Size)
	}

	destPath := filepath.Join(destDir, asset.Name)
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to move release asset %s into place: %w", asset.Name, err)
	}

	g.logger.Debug("Downloaded release asset", interfaces.F("path", destPath), interfaces.F("bytes", written))

	return &entities.DownloadedArtifact{
		Asset: asset,
		Path:  destPath,
		Size:  written,
	}, nil
}
