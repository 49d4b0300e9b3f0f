package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amchen/gitfolio/internal/github"
)

// ReadmeFetcher is the single remote operation a build needs. It is
// satisfied by *github.Fetcher and can be replaced with a fake for testing.
type ReadmeFetcher interface {
	Readme(ctx context.Context, owner, repo string) (string, error)
}

// Builder turns a set of repositories into a searchable knowledge base.
// All README fetches for one build run concurrently; the assembled result
// preserves candidate order regardless of completion order.
type Builder struct {
	fetcher ReadmeFetcher
	logger  *log.Logger
}

// NewBuilder creates a Builder using the given fetcher.
func NewBuilder(fetcher ReadmeFetcher) *Builder {
	return &Builder{
		fetcher: fetcher,
		logger:  log.New(log.Writer(), "[builder] ", log.LstdFlags),
	}
}

// SelectCandidates applies the scan mode to the input repo list. Full mode
// keeps every repo in input order. Shallow mode keeps at most shallowLimit
// repos with the highest star counts, descending, ties broken by original
// input order.
func SelectCandidates(repos []github.RepoSummary, mode ScanMode) []github.RepoSummary {
	candidates := make([]github.RepoSummary, len(repos))
	copy(candidates, repos)

	if mode != ScanShallow {
		return candidates
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Stars > candidates[j].Stars
	})
	if len(candidates) > shallowLimit {
		candidates = candidates[:shallowLimit]
	}
	return candidates
}

// Build fetches READMEs for the selected candidates and assembles the
// knowledge base. A RateLimited failure on any fetch abandons the whole
// build; any other per-repo failure degrades to "no README" for that repo.
func (b *Builder) Build(ctx context.Context, handle string, repos []github.RepoSummary, mode ScanMode) (*KnowledgeBase, error) {
	return b.BuildWithProgress(ctx, handle, repos, mode, nil)
}

// BuildWithProgress is Build with an optional per-repo completion callback,
// invoked once per candidate as its fetch finishes (in completion order).
func (b *Builder) BuildWithProgress(ctx context.Context, handle string, repos []github.RepoSummary, mode ScanMode, progress func()) (*KnowledgeBase, error) {
	candidates := SelectCandidates(repos, mode)

	// Results indexed by candidate position so completion order never
	// leaks into the assembled output.
	readmes := make([]string, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, repo := range candidates {
		i, repo := i, repo
		g.Go(func() error {
			text, err := b.fetcher.Readme(gctx, repo.Owner(handle), repo.Name)
			if progress != nil {
				progress()
			}
			if err != nil {
				if github.IsRateLimited(err) {
					// A partial index must not be published.
					return err
				}
				if !errors.Is(err, github.ErrNotFound) {
					b.logger.Printf("readme fetch for %s failed, indexing without it: %v", repo.Name, err)
				}
				return nil
			}
			readmes[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building knowledge for %s: %w", handle, err)
	}

	kb := &KnowledgeBase{
		Handle:  handle,
		Mode:    mode,
		BuiltAt: time.Now(),
	}

	seen := make(map[string]struct{})
	addSkill := func(token string) {
		if len(kb.Skills) >= maxSkills {
			return
		}
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		kb.Skills = append(kb.Skills, token)
	}

	for i, repo := range candidates {
		kb.Repos = append(kb.Repos, RepoRecord{
			Name:        repo.Name,
			Description: repo.Description,
			Readme:      readmes[i],
			Language:    repo.Language,
		})

		if repo.Language != "" {
			addSkill(strings.ToLower(repo.Language))
		}
		for _, kw := range Keywords(repo.Description) {
			addSkill(kw)
		}
		for _, kw := range firstN(Keywords(readmes[i]), maxReadmeKeywords) {
			addSkill(kw)
		}
	}

	return kb, nil
}
