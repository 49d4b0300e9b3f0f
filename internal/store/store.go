package store

// Store defines the storage operations used by the command layer. It is
// satisfied by *DB and can be replaced with a mock for testing.
type Store interface {
	// CreateSearch inserts a new search record.
	CreateSearch(s Search) (*Search, error)

	// GetSearch retrieves a search by id.
	GetSearch(id int64) (*Search, error)

	// LatestSearchByHandle retrieves the most recent search for a handle.
	LatestSearchByHandle(handle string) (*Search, error)

	// ListSearches returns all searches, most recent first.
	ListSearches() ([]Search, error)

	// SaveSearchRepos replaces the captured repo list for a search.
	SaveSearchRepos(searchID int64, repos []SearchRepo) error

	// ListSearchRepos returns a search's repo snapshots in fetched order.
	ListSearchRepos(searchID int64) ([]SearchRepo, error)

	// SaveKnowledge inserts or replaces the knowledge base for a search.
	SaveKnowledge(k Knowledge) error

	// GetKnowledge retrieves the knowledge base for a search.
	GetKnowledge(searchID int64) (*Knowledge, error)

	// AppendMessage adds a message to a search's transcript.
	AppendMessage(m Message) (int64, error)

	// ListMessages returns a search's transcript in insertion order.
	ListMessages(searchID int64) ([]Message, error)

	// ClearMessages deletes a search's transcript.
	ClearMessages(searchID int64) error
}

// Compile-time check that *DB satisfies the Store interface.
var _ Store = (*DB)(nil)
