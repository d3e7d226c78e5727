package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/earpanel-core/internal/session"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	// timeFormat is fixed width so created_at sorts lexically.
	timeFormat = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrInvalidEvent is returned when an event has no type.
var ErrInvalidEvent = errors.New("invalid journal event")

// Entry is one journal row.
type Entry struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	DeviceID  string         `json:"device_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Query filters Recent.
type Query struct {
	// DeviceID restricts entries to one device when non-empty.
	DeviceID string
	// Type restricts entries to one event type when non-empty.
	Type string
	// Limit defaults to 50 and is capped at 500.
	Limit int
}

// Store reads and writes the journal table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a store over an open, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Record appends e. A zero timestamp is replaced by the current time.
func (s *Store) Record(ctx context.Context, e session.Event) error {
	if e.Type == "" {
		return fmt.Errorf("%w: type is required", ErrInvalidEvent)
	}

	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshalling event data: %w", err)
	}

	ts := e.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO journal (event_type, device_id, data, created_at) VALUES (?, ?, ?, ?)",
		string(e.Type),
		e.DeviceID,
		string(dataJSON),
		ts.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

// Recent returns entries newest first.
func (s *Store) Recent(ctx context.Context, q Query) ([]Entry, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_type, device_id, data, created_at
		 FROM journal
		 WHERE (? = '' OR device_id = ?) AND (? = '' OR event_type = ?)
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		q.DeviceID, q.DeviceID,
		q.Type, q.Type,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var dataJSON, createdAt string
		if err := rows.Scan(&entry.ID, &entry.Type, &entry.DeviceID, &dataJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		if err := json.Unmarshal([]byte(dataJSON), &entry.Data); err != nil {
			return nil, fmt.Errorf("unmarshalling event data: %w", err)
		}
		if len(entry.Data) == 0 {
			entry.Data = nil
		}
		entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}
	return entries, nil
}

// Prune deletes entries older than olderThan and returns how many went.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := s.now().UTC().Add(-olderThan).Format(timeFormat)
	result, err := s.db.ExecContext(ctx, "DELETE FROM journal WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting journal entries: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return n, nil
}
