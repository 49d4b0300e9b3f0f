package cmd

import (
	"time"

	"github.com/amchen/gitfolio/internal/github"
	"github.com/amchen/gitfolio/internal/knowledge"
	"github.com/amchen/gitfolio/internal/store"
)

// storeSearch converts a fetched profile into a search record.
func storeSearch(p *github.Profile) store.Search {
	return store.Search{
		Handle:      p.Handle,
		DisplayName: p.Name,
		Bio:         p.Bio,
		Followers:   p.Followers,
		Following:   p.Following,
		PublicRepos: p.PublicRepos,
	}
}

// storeRepos converts fetched repo summaries into snapshot rows, preserving
// list order.
func storeRepos(repos []github.RepoSummary) []store.SearchRepo {
	out := make([]store.SearchRepo, 0, len(repos))
	for _, r := range repos {
		out = append(out, store.SearchRepo{
			Name:        r.Name,
			FullName:    r.FullName,
			Description: r.Description,
			Language:    r.Language,
			Stars:       r.Stars,
			Forks:       r.Forks,
			Fork:        r.Fork,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return out
}

// storeKnowledge converts a built knowledge base into its persisted form.
func storeKnowledge(searchID int64, kb *knowledge.KnowledgeBase) store.Knowledge {
	repos := make([]store.KnowledgeRepo, 0, len(kb.Repos))
	for _, r := range kb.Repos {
		repos = append(repos, store.KnowledgeRepo{
			Name:        r.Name,
			Description: r.Description,
			Readme:      r.Readme,
			Language:    r.Language,
		})
	}
	return store.Knowledge{
		SearchID: searchID,
		Handle:   kb.Handle,
		Mode:     string(kb.Mode),
		Skills:   kb.Skills,
		Repos:    repos,
		BuiltAt:  kb.BuiltAt,
	}
}

// loadKnowledge converts a persisted knowledge base back to its in-memory
// form, or nil when none was stored.
func loadKnowledge(k *store.Knowledge) *knowledge.KnowledgeBase {
	if k == nil {
		return nil
	}
	repos := make([]knowledge.RepoRecord, 0, len(k.Repos))
	for _, r := range k.Repos {
		repos = append(repos, knowledge.RepoRecord{
			Name:        r.Name,
			Description: r.Description,
			Readme:      r.Readme,
			Language:    r.Language,
		})
	}
	return &knowledge.KnowledgeBase{
		Handle:  k.Handle,
		Skills:  k.Skills,
		Repos:   repos,
		Mode:    knowledge.ScanMode(k.Mode),
		BuiltAt: k.BuiltAt,
	}
}

// persistSearch saves a search, its repos, and optionally a knowledge base.
func persistSearch(db *store.DB, profile *github.Profile, repos []github.RepoSummary, kb *knowledge.KnowledgeBase) (*store.Search, error) {
	search, err := db.CreateSearch(storeSearch(profile))
	if err != nil {
		return nil, err
	}
	if err := db.SaveSearchRepos(search.ID, storeRepos(repos)); err != nil {
		return nil, err
	}
	if kb != nil {
		if err := db.SaveKnowledge(storeKnowledge(search.ID, kb)); err != nil {
			return nil, err
		}
	}
	return search, nil
}

// appendStoredMessage records one transcript entry for a search.
func appendStoredMessage(db *store.DB, searchID int64, role, content string) error {
	_, err := db.AppendMessage(store.Message{
		SearchID:  searchID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
	return err
}
