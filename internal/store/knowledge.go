package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Knowledge is one persisted knowledge base belonging to a search. Skills
// and repo records are stored as JSON blobs; the row is replaced wholesale
// when a newer build for the same search completes.
type Knowledge struct {
	ID       int64
	SearchID int64
	Handle   string
	Mode     string
	Skills   []string
	Repos    []KnowledgeRepo
	BuiltAt  time.Time
}

// KnowledgeRepo mirrors one per-repo text index entry.
type KnowledgeRepo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Readme      string `json:"readme,omitempty"`
	Language    string `json:"language,omitempty"`
}

// SaveKnowledge inserts or replaces the knowledge base for a search.
func (d *DB) SaveKnowledge(k Knowledge) error {
	skills, err := json.Marshal(k.Skills)
	if err != nil {
		return fmt.Errorf("encoding skills: %w", err)
	}
	repos, err := json.Marshal(k.Repos)
	if err != nil {
		return fmt.Errorf("encoding repo records: %w", err)
	}

	_, err = d.db.Exec(
		`INSERT INTO knowledge (search_id, handle, mode, skills, repos, built_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(search_id) DO UPDATE SET
		   handle = excluded.handle,
		   mode = excluded.mode,
		   skills = excluded.skills,
		   repos = excluded.repos,
		   built_at = excluded.built_at`,
		k.SearchID, k.Handle, k.Mode, string(skills), string(repos),
		k.BuiltAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving knowledge: %w", err)
	}
	return nil
}

// GetKnowledge retrieves the knowledge base for a search, or nil if no build
// has been persisted for it.
func (d *DB) GetKnowledge(searchID int64) (*Knowledge, error) {
	row := d.db.QueryRow(
		`SELECT id, search_id, handle, mode, skills, repos, built_at
		 FROM knowledge WHERE search_id = ?`, searchID,
	)

	var k Knowledge
	var skills, repos, builtAt string
	err := row.Scan(&k.ID, &k.SearchID, &k.Handle, &k.Mode, &skills, &repos, &builtAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning knowledge: %w", err)
	}

	if err := json.Unmarshal([]byte(skills), &k.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}
	if err := json.Unmarshal([]byte(repos), &k.Repos); err != nil {
		return nil, fmt.Errorf("decoding repo records: %w", err)
	}
	k.BuiltAt = parseStoredTime(builtAt)

	return &k, nil
}
