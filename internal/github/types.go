package github

import (
	"time"

	gogithub "github.com/google/go-github/v60/github"
)

// Profile is a snapshot of a GitHub user's public profile. One Profile is
// created per search and replaced wholesale by the next search.
type Profile struct {
	Handle      string
	Name        string
	Bio         string
	Followers   int
	Following   int
	PublicRepos int
}

// RepoSummary is an immutable snapshot of one public repository's metadata.
type RepoSummary struct {
	ID          int64
	Name        string
	FullName    string
	Description string
	Language    string
	Stars       int
	Forks       int
	Fork        bool
	UpdatedAt   time.Time
}

// Owner returns the owner part of the full name, falling back to the given
// handle when the full name is not in owner/name form.
func (r RepoSummary) Owner(fallback string) string {
	for i := 0; i < len(r.FullName); i++ {
		if r.FullName[i] == '/' {
			return r.FullName[:i]
		}
	}
	return fallback
}

// convertUser converts a go-github User to our internal Profile type.
func convertUser(gh *gogithub.User) *Profile {
	return &Profile{
		Handle:      gh.GetLogin(),
		Name:        gh.GetName(),
		Bio:         gh.GetBio(),
		Followers:   gh.GetFollowers(),
		Following:   gh.GetFollowing(),
		PublicRepos: gh.GetPublicRepos(),
	}
}

// convertRepo converts a go-github Repository to our internal RepoSummary type.
func convertRepo(gh *gogithub.Repository) RepoSummary {
	summary := RepoSummary{
		ID:          gh.GetID(),
		Name:        gh.GetName(),
		FullName:    gh.GetFullName(),
		Description: gh.GetDescription(),
		Language:    gh.GetLanguage(),
		Stars:       gh.GetStargazersCount(),
		Forks:       gh.GetForksCount(),
		Fork:        gh.GetFork(),
	}
	if gh.UpdatedAt != nil {
		summary.UpdatedAt = gh.UpdatedAt.Time
	}
	return summary
}
