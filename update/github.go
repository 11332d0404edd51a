package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultAPIURL is the GitHub REST API root.
const DefaultAPIURL = "https://api.github.com"

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	HTMLURL    string `json:"html_url"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// GitHubOptions configures a GitHubSource.
type GitHubOptions struct {
	// Repo is "owner/name".
	Repo     string
	Token    string
	ProxyURL string
	TTL      time.Duration
	// APIURL overrides DefaultAPIURL.
	APIURL    string
	UserAgent string
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// GitHubSource lists published releases of a GitHub repository. Results are
// cached for TTL and revalidated with ETag afterwards.
type GitHubSource struct {
	opts   GitHubOptions
	client *http.Client
	now    func() time.Time

	mu       sync.Mutex
	cached   []Descriptor
	etag     string
	fetched  time.Time
	lastErr  error
	lastCode int
}

// NewGitHubSource creates a source for opts.Repo.
func NewGitHubSource(opts GitHubOptions) *GitHubSource {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "versioninfo-update-check"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.TTL < 0 {
		opts.TTL = 0
	}
	if opts.ProxyURL != "" {
		opts.Logger.Debug().Str("proxy", redactProxy(opts.ProxyURL)).Msg("update: manual proxy configured")
	}
	return &GitHubSource{
		opts:   opts,
		client: newHTTPClient(opts.Timeout, opts.ProxyURL),
		now:    time.Now,
	}
}

// CoreUpdates implements Source. Drafts and prereleases are skipped.
func (s *GitHubSource) CoreUpdates(ctx context.Context) ([]Descriptor, error) {
	s.mu.Lock()
	cached, etag, fetched := s.cached, s.etag, s.fetched
	s.mu.Unlock()

	if cached != nil && s.now().Sub(fetched) < s.opts.TTL {
		return cached, nil
	}

	url := strings.TrimRight(s.opts.APIURL, "/") + "/repos/" + s.opts.Repo + "/releases?per_page=20"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", s.opts.UserAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if s.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.opts.Token)
	}

	s.opts.Logger.Debug().Str("repo", s.opts.Repo).Msg("update: fetching releases")
	resp, err := s.client.Do(req)
	if err != nil {
		s.record(err, 0)
		return nil, fmt.Errorf("failed to fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		s.mu.Lock()
		s.fetched = s.now()
		s.lastErr = nil
		s.lastCode = resp.StatusCode
		s.mu.Unlock()
		return cached, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		err := fmt.Errorf("github api error: %s: %s", resp.Status, strings.TrimSpace(string(body)))

		if resp.StatusCode == http.StatusForbidden && cached != nil {
			s.opts.Logger.Warn().Err(err).Msg("update: github api forbidden, using cached releases")
			return cached, nil
		}
		s.record(err, resp.StatusCode)
		return nil, err
	}

	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		s.record(err, resp.StatusCode)
		return nil, fmt.Errorf("failed to decode releases: %w", err)
	}

	out := make([]Descriptor, 0, len(releases))
	for _, r := range releases {
		if r.Draft || r.Prerelease || r.TagName == "" {
			continue
		}
		out = append(out, Descriptor{
			Version: strings.TrimPrefix(strings.TrimSpace(r.TagName), "v"),
			URL:     r.HTMLURL,
		})
	}

	if newEtag := strings.TrimSpace(resp.Header.Get("ETag")); newEtag != "" {
		etag = newEtag
	}

	s.mu.Lock()
	s.cached = out
	s.etag = etag
	s.fetched = s.now()
	s.lastErr = nil
	s.lastCode = resp.StatusCode
	s.mu.Unlock()

	return out, nil
}

func (s *GitHubSource) record(err error, code int) {
	s.mu.Lock()
	s.lastErr = err
	s.lastCode = code
	s.mu.Unlock()
}

// LastStatus returns the HTTP status and error of the most recent fetch. err
// is nil once a fetch succeeds.
func (s *GitHubSource) LastStatus() (code int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCode, s.lastErr
}

// ErrDisabled is returned by Disabled.
var ErrDisabled = errors.New("update checks disabled")

// Disabled is a Source that always fails with ErrDisabled.
type Disabled struct{}

// CoreUpdates implements Source.
func (Disabled) CoreUpdates(context.Context) ([]Descriptor, error) {
	return nil, ErrDisabled
}
