// Package match answers free-text queries against a knowledge base with a
// deterministic keyword matcher. No scoring, no external calls: repo matches
// come first, then skill matches, then a fixed fallback, so the same query
// against the same index always produces the same answer.
package match

import (
	"fmt"
	"strings"

	"github.com/amchen/gitfolio/internal/knowledge"
)

const (
	// maxRepoMatches caps how many repositories one answer names.
	maxRepoMatches = 3
	// maxSkillMatches caps how many skills one answer lists.
	maxSkillMatches = 5
)

// Fixed responses for the non-match paths.
const (
	StillLoadingReply = "I'm still reading through the repositories. Give me a moment and ask again."
	NoKeywordsReply   = "Try asking about specific skills, tools, or topics - a language, a framework, a project area."
	NoSignalsReply    = "I didn't find strong signals for that in these repositories. Try a different skill or topic."
)

// Respond answers a free-text query against the knowledge base. It is a pure
// function of its inputs and never fails.
func Respond(kb *knowledge.KnowledgeBase, query string) string {
	if kb == nil {
		return StillLoadingReply
	}

	keywords := knowledge.QueryKeywords(query)
	if len(keywords) == 0 {
		return NoKeywordsReply
	}

	// Repo matches take precedence over skill matches.
	if repos := matchRepos(kb, keywords); len(repos) > 0 {
		return fmt.Sprintf("That sounds related to %s. Ask about one of them for more detail.",
			joinNames(repos))
	}

	if skills := matchSkills(kb, query); len(skills) > 0 {
		return fmt.Sprintf("Based on these repositories, there is likely experience with %s.",
			joinNames(skills))
	}

	return NoSignalsReply
}

// matchRepos collects repos whose name, description, or README contains any
// query keyword as a substring, in knowledge-base order, capped at
// maxRepoMatches.
func matchRepos(kb *knowledge.KnowledgeBase, keywords []string) []string {
	var matched []string
	for _, repo := range kb.Repos {
		haystack := strings.ToLower(repo.Name + " " + repo.Description + " " + repo.Readme)
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				matched = append(matched, repo.Name)
				break
			}
		}
		if len(matched) == maxRepoMatches {
			break
		}
	}
	return matched
}

// matchSkills collects skills whose literal text appears in the lower-cased
// query, in skill-index order, capped at maxSkillMatches. Literal containment
// is intentional: it also catches skills the tokenizer would split apart.
func matchSkills(kb *knowledge.KnowledgeBase, query string) []string {
	lowered := strings.ToLower(query)
	var matched []string
	for _, skill := range kb.Skills {
		if strings.Contains(lowered, strings.ToLower(skill)) {
			matched = append(matched, skill)
			if len(matched) == maxSkillMatches {
				break
			}
		}
	}
	return matched
}

// joinNames renders a list as "a", "a and b", or "a, b and c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}
