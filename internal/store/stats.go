package store

import "fmt"

// SearchStats holds aggregate statistics for a single search.
type SearchStats struct {
	Search       Search
	RepoCount    int
	SkillCount   int
	MessageCount int
}

// GetSearchStats returns aggregate statistics for a single search.
func (d *DB) GetSearchStats(searchID int64) (*SearchStats, error) {
	search, err := d.GetSearch(searchID)
	if err != nil {
		return nil, fmt.Errorf("getting search: %w", err)
	}

	stats := &SearchStats{Search: *search}

	// Repos captured for the search
	err = d.db.QueryRow(
		`SELECT COUNT(*) FROM search_repos WHERE search_id = ?`, searchID,
	).Scan(&stats.RepoCount)
	if err != nil {
		return nil, fmt.Errorf("counting repos: %w", err)
	}

	// Skills come from the persisted knowledge base, if any
	kb, err := d.GetKnowledge(searchID)
	if err != nil {
		return nil, fmt.Errorf("getting knowledge: %w", err)
	}
	if kb != nil {
		stats.SkillCount = len(kb.Skills)
	}

	// Transcript length
	err = d.db.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE search_id = ?`, searchID,
	).Scan(&stats.MessageCount)
	if err != nil {
		return nil, fmt.Errorf("counting messages: %w", err)
	}

	return stats, nil
}

// GetAllSearchStats returns statistics for all recorded searches.
func (d *DB) GetAllSearchStats() ([]SearchStats, error) {
	searches, err := d.ListSearches()
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}

	var results []SearchStats
	for _, s := range searches {
		stats, err := d.GetSearchStats(s.ID)
		if err != nil {
			return nil, fmt.Errorf("getting stats for %s: %w", s.Handle, err)
		}
		results = append(results, *stats)
	}

	return results, nil
}
