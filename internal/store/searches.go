package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Search is one persisted search-by-handle result: the profile snapshot at
// fetch time. Repo snapshots and knowledge hang off it by search ID.
type Search struct {
	ID          int64
	Handle      string
	DisplayName string
	Bio         string
	Followers   int
	Following   int
	PublicRepos int
	FetchedAt   time.Time
}

// SearchRepo is one persisted repository snapshot belonging to a search.
// Position preserves the fetched list order.
type SearchRepo struct {
	ID          int64
	SearchID    int64
	Position    int
	Name        string
	FullName    string
	Description string
	Language    string
	Stars       int
	Forks       int
	Fork        bool
	UpdatedAt   time.Time
}

// CreateSearch inserts a new search record from a profile snapshot.
func (d *DB) CreateSearch(s Search) (*Search, error) {
	result, err := d.db.Exec(
		`INSERT INTO searches (handle, display_name, bio, followers, following, public_repos)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.Handle, s.DisplayName, s.Bio, s.Followers, s.Following, s.PublicRepos,
	)
	if err != nil {
		return nil, fmt.Errorf("creating search: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting search id: %w", err)
	}

	return d.GetSearch(id)
}

// GetSearch retrieves a search by its ID.
func (d *DB) GetSearch(id int64) (*Search, error) {
	row := d.db.QueryRow(
		`SELECT id, handle, display_name, bio, followers, following, public_repos, fetched_at
		 FROM searches WHERE id = ?`, id,
	)
	return scanSearch(row)
}

// LatestSearchByHandle retrieves the most recent search for a handle.
func (d *DB) LatestSearchByHandle(handle string) (*Search, error) {
	row := d.db.QueryRow(
		`SELECT id, handle, display_name, bio, followers, following, public_repos, fetched_at
		 FROM searches WHERE handle = ? ORDER BY id DESC LIMIT 1`, handle,
	)
	return scanSearch(row)
}

// ListSearches returns all searches, most recent first.
func (d *DB) ListSearches() ([]Search, error) {
	rows, err := d.db.Query(
		`SELECT id, handle, display_name, bio, followers, following, public_repos, fetched_at
		 FROM searches ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}
	defer rows.Close()

	var searches []Search
	for rows.Next() {
		var s Search
		var name, bio sql.NullString
		var fetchedAt string
		if err := rows.Scan(&s.ID, &s.Handle, &name, &bio,
			&s.Followers, &s.Following, &s.PublicRepos, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning search: %w", err)
		}
		s.DisplayName = name.String
		s.Bio = bio.String
		s.FetchedAt = parseStoredTime(fetchedAt)
		searches = append(searches, s)
	}
	return searches, rows.Err()
}

// SaveSearchRepos replaces the repo snapshots for a search.
func (d *DB) SaveSearchRepos(searchID int64, repos []SearchRepo) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM search_repos WHERE search_id = ?`, searchID); err != nil {
		return fmt.Errorf("clearing repo snapshots: %w", err)
	}

	for i, r := range repos {
		_, err := tx.Exec(
			`INSERT INTO search_repos (search_id, position, name, full_name, description, language, stars, forks, fork, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			searchID, i, r.Name, r.FullName, r.Description, r.Language,
			r.Stars, r.Forks, boolToInt(r.Fork), r.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting repo snapshot: %w", err)
		}
	}

	return tx.Commit()
}

// ListSearchRepos returns a search's repo snapshots in fetched order.
func (d *DB) ListSearchRepos(searchID int64) ([]SearchRepo, error) {
	rows, err := d.db.Query(
		`SELECT id, search_id, position, name, full_name, description, language, stars, forks, fork, updated_at
		 FROM search_repos WHERE search_id = ? ORDER BY position`, searchID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing repo snapshots: %w", err)
	}
	defer rows.Close()

	var repos []SearchRepo
	for rows.Next() {
		var r SearchRepo
		var desc, lang, updatedAt sql.NullString
		var fork int
		if err := rows.Scan(&r.ID, &r.SearchID, &r.Position, &r.Name, &r.FullName,
			&desc, &lang, &r.Stars, &r.Forks, &fork, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning repo snapshot: %w", err)
		}
		r.Description = desc.String
		r.Language = lang.String
		r.Fork = fork != 0
		if updatedAt.Valid {
			r.UpdatedAt = parseStoredTime(updatedAt.String)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

func scanSearch(row *sql.Row) (*Search, error) {
	var s Search
	var name, bio sql.NullString
	var fetchedAt string

	err := row.Scan(&s.ID, &s.Handle, &name, &bio,
		&s.Followers, &s.Following, &s.PublicRepos, &fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("scanning search: %w", err)
	}

	s.DisplayName = name.String
	s.Bio = bio.String
	s.FetchedAt = parseStoredTime(fetchedAt)
	return &s, nil
}

// parseStoredTime handles both RFC3339 and SQLite's datetime('now') format.
func parseStoredTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02 15:04:05", s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
