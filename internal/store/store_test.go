package store

import (
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigration(t *testing.T) {
	db := setupTestDB(t)

	var version int
	err := db.Conn().QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		t.Fatalf("failed to read user_version: %v", err)
	}
	if version != 1 {
		t.Errorf("expected user_version 1, got %d", version)
	}
}

func TestSearchesCRUD(t *testing.T) {
	db := setupTestDB(t)

	// Create
	search, err := db.CreateSearch(Search{
		Handle:      "octocat",
		DisplayName: "The Octocat",
		Bio:         "Ships demos",
		Followers:   100,
		Following:   5,
		PublicRepos: 8,
	})
	if err != nil {
		t.Fatalf("CreateSearch failed: %v", err)
	}
	if search.Handle != "octocat" || search.DisplayName != "The Octocat" {
		t.Errorf("unexpected search: %+v", search)
	}
	if search.FetchedAt.IsZero() {
		t.Error("expected fetched_at to be set")
	}

	// Get by ID
	got, err := db.GetSearch(search.ID)
	if err != nil {
		t.Fatalf("GetSearch failed: %v", err)
	}
	if got.Followers != 100 || got.PublicRepos != 8 {
		t.Errorf("unexpected search: %+v", got)
	}
}

func TestLatestSearchByHandle(t *testing.T) {
	db := setupTestDB(t)

	first, err := db.CreateSearch(Search{Handle: "octocat", Followers: 1})
	if err != nil {
		t.Fatalf("CreateSearch failed: %v", err)
	}
	second, err := db.CreateSearch(Search{Handle: "octocat", Followers: 2})
	if err != nil {
		t.Fatalf("CreateSearch failed: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
	}

	latest, err := db.LatestSearchByHandle("octocat")
	if err != nil {
		t.Fatalf("LatestSearchByHandle failed: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("expected latest search %d, got %d", second.ID, latest.ID)
	}
	if latest.Followers != 2 {
		t.Errorf("expected followers 2, got %d", latest.Followers)
	}
}

func TestListSearchesOrder(t *testing.T) {
	db := setupTestDB(t)

	for _, handle := range []string{"alpha", "beta", "gamma"} {
		if _, err := db.CreateSearch(Search{Handle: handle}); err != nil {
			t.Fatalf("CreateSearch failed: %v", err)
		}
	}

	searches, err := db.ListSearches()
	if err != nil {
		t.Fatalf("ListSearches failed: %v", err)
	}
	if len(searches) != 3 {
		t.Fatalf("expected 3 searches, got %d", len(searches))
	}
	// Most recent first
	if searches[0].Handle != "gamma" || searches[2].Handle != "alpha" {
		t.Errorf("unexpected order: %s, %s, %s",
			searches[0].Handle, searches[1].Handle, searches[2].Handle)
	}
}

func TestSaveSearchReposPreservesOrder(t *testing.T) {
	db := setupTestDB(t)

	search, err := db.CreateSearch(Search{Handle: "octocat"})
	if err != nil {
		t.Fatalf("CreateSearch failed: %v", err)
	}

	updated := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repos := []SearchRepo{
		{Name: "zeta", FullName: "octocat/zeta", Language: "Go", Stars: 3, UpdatedAt: updated},
		{Name: "alpha", FullName: "octocat/alpha", Description: "a tool", Stars: 10, Fork: true, UpdatedAt: updated},
		{Name: "mid", FullName: "octocat/mid", Stars: 7, UpdatedAt: updated},
	}
	if err := db.SaveSearchRepos(search.ID, repos); err != nil {
		t.Fatalf("SaveSearchRepos failed: %v", err)
	}

	got, err := db.ListSearchRepos(search.ID)
	if err != nil {
		t.Fatalf("ListSearchRepos failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 repos, got %d", len(got))
	}
	for i, want := range []string{"zeta", "alpha", "mid"} {
		if got[i].Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].Name)
		}
		if got[i].Position != i {
			t.Errorf("position %d: stored position %d", i, got[i].Position)
		}
	}
	if !got[1].Fork {
		t.Error("expected fork flag to round-trip")
	}
	if !got[0].UpdatedAt.Equal(updated) {
		t.Errorf("expected updated_at %v, got %v", updated, got[0].UpdatedAt)
	}

	// Saving again replaces, not appends
	if err := db.SaveSearchRepos(search.ID, repos[:1]); err != nil {
		t.Fatalf("SaveSearchRepos failed: %v", err)
	}
	got, err = db.ListSearchRepos(search.ID)
	if err != nil {
		t.Fatalf("ListSearchRepos failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 repo after resave, got %d", len(got))
	}
}

func TestKnowledgeRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	search, err := db.CreateSearch(Search{Handle: "octocat"})
	if err != nil {
		t.Fatalf("CreateSearch failed: %v", err)
	}

	builtAt := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
	k := Knowledge{
		SearchID: search.ID,
		Handle:   "octocat",
		Mode:     "full",
		Skills:   []string{"go", "docker", "grpc"},
		Repos: []KnowledgeRepo{
			{Name: "alpha", Description: "a tool", Readme: "usage notes", Language: "Go"},
			{Name: "zeta", Language: "Python"},
		},
		BuiltAt: builtAt,
	}
	if err := db.SaveKnowledge(k); err != nil {
		t.Fatalf("SaveKnowledge failed: %v", err)
	}

	got, err := db.GetKnowledge(search.ID)
	if err != nil {
		t.Fatalf("GetKnowledge failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected knowledge, got nil")
	}
	if got.Mode != "full" || got.Handle != "octocat" {
		t.Errorf("unexpected knowledge: %+v", got)
	}
	if len(got.Skills) != 3 || got.Skills[0] != "go" {
		t.Errorf("unexpected skills: %v", got.Skills)
	}
	if len(got.Repos) != 2 || got.Repos[0].Readme != "usage notes" {
		t.Errorf("unexpected repos: %+v", got.Repos)
	}
	if !got.BuiltAt.Equal(builtAt) {
		t.Errorf("expected built_at %v, got %v", builtAt, got.BuiltAt)
	}
}

func TestSaveKnowledgeReplaces(t *testing.T) {
	db := setupTestDB(t)

	search, err := db.CreateSearch(Search{Handle: "octocat"})
	if err != nil {
		t.Fatalf("CreateSearch failed: %v", err)
	}

	built := time.Now().UTC().Truncate(time.Second)
	first := Knowledge{SearchID: search.ID, Handle: "octocat", Mode: "shallow",
		Skills: []string{"go"}, Repos: []KnowledgeRepo{{Name: "alpha"}}, BuiltAt: built}
	if err := db.SaveKnowledge(first); err != nil {
		t.Fatalf("SaveKnowledge failed: %v", err)
	}

	second := first
	second.Mode = "full"
	second.Skills = []string{"go", "rust"}
	if err := db.SaveKnowledge(second); err != nil {
		t.Fatalf("SaveKnowledge (replace) failed: %v", err)
	}

	got, err := db.GetKnowledge(search.ID)
	if err != nil {
		t.Fatalf("GetKnowledge failed: %v", err)
	}
	if got.Mode != "full" || len(got.Skills) != 2 {
		t.Errorf("expected replaced knowledge, got %+v", got)
	}
}

func TestGetKnowledgeMissing(t *testing.T) {
	db := setupTestDB(t)

	search, err := db.CreateSearch(Search{Handle: "octocat"})
	if err != nil {
		t.Fatalf("CreateSearch failed: %v", err)
	}

	got, err := db.GetKnowledge(search.ID)
	if err != nil {
		t.Fatalf("GetKnowledge failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing knowledge, got %+v", got)
	}
}

func TestMessagesTranscript(t *testing.T) {
	db := setupTestDB(t)

	search, err := db.CreateSearch(Search{Handle: "octocat"})
	if err != nil {
		t.Fatalf("CreateSearch failed: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	for _, m := range []Message{
		{SearchID: search.ID, Role: "user", Content: "what about docker?", CreatedAt: now},
		{SearchID: search.ID, Role: "bot", Content: "likely experience with docker.", CreatedAt: now},
	} {
		if _, err := db.AppendMessage(m); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	msgs, err := db.ListMessages(search.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "bot" {
		t.Errorf("unexpected roles: %s, %s", msgs[0].Role, msgs[1].Role)
	}

	if err := db.ClearMessages(search.ID); err != nil {
		t.Fatalf("ClearMessages failed: %v", err)
	}
	msgs, err = db.ListMessages(search.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected empty transcript after clear, got %d messages", len(msgs))
	}
}
