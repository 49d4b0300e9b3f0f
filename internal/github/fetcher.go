package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gogithub "github.com/google/go-github/v60/github"
	gocache "github.com/patrickmn/go-cache"
)

// repoPageSize is the page size for the repo list call. A single page is
// fetched; accounts with more repositories are indexed from their 100 most
// recently updated.
const repoPageSize = 100

// Fetcher performs single-resource retrieval against the GitHub API and
// normalizes every outcome into the error taxonomy (ErrNotFound,
// RateLimitedError, RemoteError). Every response's quota headers are fed to
// the Gate. The Fetcher never retries; backoff policy belongs to callers.
type Fetcher struct {
	client *gogithub.Client
	gate   *Gate
	cache  *gocache.Cache
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. When cacheTTL is positive, successful
// payloads are cached in memory for that duration so repeat searches of the
// same handle do not burn quota. A zero or negative TTL disables caching.
func NewFetcher(client *gogithub.Client, gate *Gate, cacheTTL time.Duration, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fetcher{
		client: client,
		gate:   gate,
		logger: logger,
	}
	if cacheTTL > 0 {
		f.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return f
}

// FlushCache drops all cached payloads.
func (f *Fetcher) FlushCache() {
	if f.cache != nil {
		f.cache.Flush()
	}
}

// Profile fetches a user's public profile. A missing user is ErrNotFound;
// the caller decides whether absence is fatal (it is, for profile lookup).
func (f *Fetcher) Profile(ctx context.Context, handle string) (*Profile, error) {
	key := "user:" + handle
	if f.cache != nil {
		if v, ok := f.cache.Get(key); ok {
			p := v.(Profile)
			return &p, nil
		}
	}

	user, resp, err := f.client.Users.Get(ctx, handle)
	if cerr := f.classify(resp, err); cerr != nil {
		return nil, cerr
	}

	p := convertUser(user)
	f.logger.Debug("fetched profile", "handle", handle, "public_repos", p.PublicRepos)
	if f.cache != nil {
		f.cache.Set(key, *p, gocache.DefaultExpiration)
	}
	return p, nil
}

// Repos fetches the user's public repositories, most recently updated first.
func (f *Fetcher) Repos(ctx context.Context, handle string) ([]RepoSummary, error) {
	key := "repos:" + handle
	if f.cache != nil {
		if v, ok := f.cache.Get(key); ok {
			cached := v.([]RepoSummary)
			out := make([]RepoSummary, len(cached))
			copy(out, cached)
			return out, nil
		}
	}

	opts := &gogithub.RepositoryListByUserOptions{
		Sort: "updated",
		ListOptions: gogithub.ListOptions{
			PerPage: repoPageSize,
		},
	}
	ghRepos, resp, err := f.client.Repositories.ListByUser(ctx, handle, opts)
	if cerr := f.classify(resp, err); cerr != nil {
		return nil, cerr
	}

	repos := make([]RepoSummary, 0, len(ghRepos))
	for _, gh := range ghRepos {
		repos = append(repos, convertRepo(gh))
	}
	f.logger.Debug("fetched repo list", "handle", handle, "count", len(repos))
	if f.cache != nil {
		f.cache.Set(key, repos, gocache.DefaultExpiration)
	}
	return repos, nil
}

// Readme fetches a repository's README as raw text. A missing README is
// ErrNotFound, which callers tolerate as "no README".
func (f *Fetcher) Readme(ctx context.Context, owner, repo string) (string, error) {
	key := "readme:" + owner + "/" + repo
	if f.cache != nil {
		if v, ok := f.cache.Get(key); ok {
			return v.(string), nil
		}
	}

	content, resp, err := f.client.Repositories.GetReadme(ctx, owner, repo, nil)
	if cerr := f.classify(resp, err); cerr != nil {
		return "", cerr
	}

	text, err := content.GetContent()
	if err != nil {
		return "", &RemoteError{Message: fmt.Sprintf("decoding readme for %s/%s: %v", owner, repo, err)}
	}
	if f.cache != nil {
		f.cache.Set(key, text, gocache.DefaultExpiration)
	}
	return text, nil
}

// PollRateLimit queries the explicit /rate_limit endpoint and feeds the core
// bucket into the Gate. This call does not count against the quota.
func (f *Fetcher) PollRateLimit(ctx context.Context) (Status, error) {
	limits, resp, err := f.client.RateLimit.Get(ctx)
	if cerr := f.classify(resp, err); cerr != nil {
		return Status{}, cerr
	}
	if core := limits.GetCore(); core != nil {
		f.gate.Observe(core.Remaining, core.Limit, core.Reset.Time)
	}
	return f.gate.Status(), nil
}

// classify feeds quota headers into the gate and maps a go-github outcome
// onto the error taxonomy. A quota-exhausted response always yields
// RateLimitedError regardless of what the body says.
func (f *Fetcher) classify(resp *gogithub.Response, err error) error {
	if resp != nil && resp.Rate.Limit > 0 {
		f.gate.Observe(resp.Rate.Remaining, resp.Rate.Limit, resp.Rate.Reset.Time)
	}
	if err == nil {
		return nil
	}

	var rateErr *gogithub.RateLimitError
	if errors.As(err, &rateErr) {
		reset := rateErr.Rate.Reset.Time
		f.gate.Observe(0, rateErr.Rate.Limit, reset)
		return &RateLimitedError{ResetAt: reset}
	}

	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		reset := time.Now().Add(abuseErr.GetRetryAfter())
		f.gate.Observe(0, f.gate.Status().Limit, reset)
		return &RateLimitedError{ResetAt: reset}
	}

	var errResp *gogithub.ErrorResponse
	if errors.As(err, &errResp) {
		status := 0
		if errResp.Response != nil {
			status = errResp.Response.StatusCode
		}
		if status == http.StatusNotFound {
			return ErrNotFound
		}
		msg := errResp.Message
		if msg == "" {
			msg = "unexpected response from GitHub"
		}
		return &RemoteError{StatusCode: status, Message: msg}
	}

	return &RemoteError{Message: err.Error()}
}
