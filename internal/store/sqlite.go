package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/hypersec/hypersecretary/internal/model"
)

// SQLiteStore implements InboxStore and CursorStore using a local SQLite
// database. Every operation is a single transaction against the database,
// so concurrent webhook deliveries and queries are safe.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Store inserts one new inbox item and returns its assigned id.
// The item type is normalized onto the closed enumeration before storage.
func (s *SQLiteStore) Store(ctx context.Context, item NewItem) (int64, error) {
	itemType := item.Type
	if !model.ValidType(itemType) {
		itemType = model.TypeOther
	}

	metadata := item.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, &StorageError{Op: "store", Err: fmt.Errorf("marshaling metadata: %w", err)}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO inbox (received_at, type, source, title, body, metadata, read)
		VALUES (?, ?, ?, ?, ?, ?, 0)`,
		time.Now().UTC(), string(itemType), item.Source, item.Title,
		item.Body, string(metaJSON),
	)
	if err != nil {
		return 0, &StorageError{Op: "store", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "store", Err: err}
	}

	return id, nil
}

// Recent retrieves at most limit items, newest first, optionally
// restricted to one type. An empty result is not an error.
func (s *SQLiteStore) Recent(
	ctx context.Context,
	limit int,
	typeFilter model.ItemType,
) ([]model.InboxItem, error) {
	query := "SELECT * FROM inbox"
	var args []interface{}

	if typeFilter != "" {
		query += " WHERE type = ?"
		args = append(args, string(typeFilter))
	}

	query += " ORDER BY received_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	return s.queryItems(ctx, "recent", query, args...)
}

// Search retrieves items whose title, body, or source contains the keyword,
// newest first, capped at limit. SQLite LIKE is case-insensitive for ASCII.
func (s *SQLiteStore) Search(
	ctx context.Context,
	keyword string,
	limit int,
) ([]model.InboxItem, error) {
	pattern := "%" + keyword + "%"
	return s.queryItems(ctx, "search", `
		SELECT * FROM inbox
		WHERE title LIKE ? OR body LIKE ? OR source LIKE ?
		ORDER BY received_at DESC, id DESC LIMIT ?`,
		pattern, pattern, pattern, limit,
	)
}

// UnreadCount counts unread items, optionally restricted to one type.
func (s *SQLiteStore) UnreadCount(
	ctx context.Context,
	typeFilter model.ItemType,
) (int, error) {
	var count int
	var err error
	if typeFilter != "" {
		err = s.db.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM inbox WHERE read = 0 AND type = ?",
			string(typeFilter),
		)
	} else {
		err = s.db.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM inbox WHERE read = 0",
		)
	}
	if err != nil {
		return 0, &StorageError{Op: "unread_count", Err: err}
	}
	return count, nil
}

// MarkAllRead marks every currently-unread item read in a single
// statement, optionally restricted to one type.
func (s *SQLiteStore) MarkAllRead(
	ctx context.Context,
	typeFilter model.ItemType,
) error {
	var err error
	if typeFilter != "" {
		_, err = s.db.ExecContext(ctx,
			"UPDATE inbox SET read = 1 WHERE read = 0 AND type = ?",
			string(typeFilter),
		)
	} else {
		_, err = s.db.ExecContext(ctx,
			"UPDATE inbox SET read = 1 WHERE read = 0",
		)
	}
	if err != nil {
		return &StorageError{Op: "mark_all_read", Err: err}
	}
	return nil
}

// TypeCounts returns total and unread counts grouped by item type.
func (s *SQLiteStore) TypeCounts(
	ctx context.Context,
) (map[model.ItemType]model.TypeCount, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT type, COUNT(*) AS total,
		       SUM(CASE WHEN read = 0 THEN 1 ELSE 0 END) AS unread
		FROM inbox GROUP BY type`,
	)
	if err != nil {
		return nil, &StorageError{Op: "type_counts", Err: err}
	}
	defer rows.Close()

	counts := make(map[model.ItemType]model.TypeCount)
	for rows.Next() {
		var (
			itemType string
			total    int
			unread   int
		)
		if err := rows.Scan(&itemType, &total, &unread); err != nil {
			return nil, &StorageError{Op: "type_counts", Err: err}
		}
		counts[model.ItemType(itemType)] = model.TypeCount{
			Total:  total,
			Unread: unread,
		}
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "type_counts", Err: err}
	}
	return counts, nil
}

// GetCursor returns the persisted cursor for a poller source, or the
// empty string when the source has no cursor yet.
func (s *SQLiteStore) GetCursor(
	ctx context.Context,
	source string,
) (string, error) {
	var cursor string
	err := s.db.GetContext(ctx, &cursor,
		"SELECT cursor FROM poller_cursors WHERE source = ?", source,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", &StorageError{Op: "get_cursor", Err: err}
	}
	return cursor, nil
}

// SetCursor persists the cursor for a poller source, replacing any
// previous value in a single atomic write.
func (s *SQLiteStore) SetCursor(
	ctx context.Context,
	source string,
	cursor string,
) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO poller_cursors (source, cursor, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET cursor = excluded.cursor,
		                                  updated_at = excluded.updated_at`,
		source, cursor, time.Now().UTC(),
	)
	if err != nil {
		return &StorageError{Op: "set_cursor", Err: err}
	}
	return nil
}

// queryItems runs an item query and scans the result rows.
func (s *SQLiteStore) queryItems(
	ctx context.Context,
	op string,
	query string,
	args ...interface{},
) ([]model.InboxItem, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	defer rows.Close()

	items := []model.InboxItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, &StorageError{Op: op, Err: err}
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	return items, nil
}

// scanItem scans an inbox row from a sqlx.Rows result set.
func scanItem(rows *sqlx.Rows) (model.InboxItem, error) {
	var (
		item       model.InboxItem
		receivedAt time.Time
		itemType   string
		metaJSON   string
		readInt    int
	)

	err := rows.Scan(
		&item.ID, &receivedAt, &itemType, &item.Source,
		&item.Title, &item.Body, &metaJSON, &readInt,
	)
	if err != nil {
		return model.InboxItem{}, fmt.Errorf("scanning inbox row: %w", err)
	}

	item.ReceivedAt = receivedAt
	item.Type = model.ItemType(itemType)
	item.Read = readInt != 0

	if metaJSON != "" {
		if err := json.Unmarshal([]byte(metaJSON), &item.Metadata); err != nil {
			return model.InboxItem{}, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return item, nil
}
