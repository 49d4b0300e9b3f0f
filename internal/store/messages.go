package store

import (
	"fmt"
	"time"
)

// Message is one chat transcript entry tied to a search.
type Message struct {
	ID        int64
	SearchID  int64
	Role      string
	Content   string
	CreatedAt time.Time
}

// AppendMessage adds a message to the end of a search's transcript.
func (d *DB) AppendMessage(m Message) (int64, error) {
	res, err := d.db.Exec(
		`INSERT INTO messages (search_id, role, content, created_at)
		 VALUES (?, ?, ?, ?)`,
		m.SearchID, m.Role, m.Content, m.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("appending message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting message id: %w", err)
	}
	return id, nil
}

// ListMessages returns a search's transcript in insertion order.
func (d *DB) ListMessages(searchID int64) ([]Message, error) {
	rows, err := d.db.Query(
		`SELECT id, search_id, role, content, created_at
		 FROM messages WHERE search_id = ? ORDER BY id`, searchID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.SearchID, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.CreatedAt = parseStoredTime(createdAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ClearMessages deletes a search's transcript.
func (d *DB) ClearMessages(searchID int64) error {
	if _, err := d.db.Exec(`DELETE FROM messages WHERE search_id = ?`, searchID); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	return nil
}
