// Package storage keeps local chat history and occupant sightings in a
// sqlite database fed from the client's event bus.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tavern/internal/models"
)

type Store struct {
	db *sql.DB
}

// SessionDB bundles the store with its background writers.
type SessionDB struct {
	Store   *Store
	History *HistoryManager
	Seen    *SeenManager
}

// NewSQLiteStore opens (or creates) a sqlite DB file.
func NewSQLiteStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA synchronous = NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set synchronous: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}

	return &Store{db: db}, nil
}

// DefaultPath is the per-account database under ~/.tavern.
func DefaultPath(account string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if account == "" {
		account = "anonymous"
	}
	return filepath.Join(homeDir, ".tavern", fmt.Sprintf("history_%s.db", account)), nil
}

// InitSessionDB opens the database at dbPath, creating its directory,
// migrates it and starts the writers.
func InitSessionDB(dbPath string, writeQSize int, log *slog.Logger) (*SessionDB, error) {
	if dbPath == "" {
		return nil, ErrInvalidPath.WithDetails("empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, ErrInvalidPath.WithDetails(err.Error())
	}
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("init %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	h := NewHistoryManager(writeQSize, log)
	h.Start(store)

	s := NewSeenManager(writeQSize, log)
	s.Start(store)

	return &SessionDB{
		Store:   store,
		History: h,
		Seen:    s,
	}, nil
}

// Close drains both writers and closes the database.
func (sdb *SessionDB) Close() {
	sdb.History.Stop()
	sdb.Seen.Stop()
	sdb.Store.Close()
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Migrate creates the tables and indexes. This is idempotent.
func (s *Store) Migrate() error {
	const sqlStmt = `
CREATE TABLE IF NOT EXISTS messages (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  room_jid TEXT NOT NULL,
  sender TEXT NOT NULL,
  body TEXT NOT NULL,
  msg_type TEXT NOT NULL,
  delayed INTEGER NOT NULL DEFAULT 0, -- boolean (0/1)
  timestamp INTEGER NOT NULL -- unix micro
);

-- rooms replay recent history on every join
CREATE UNIQUE INDEX IF NOT EXISTS uq_message ON messages (room_jid, sender, timestamp, body);
CREATE INDEX IF NOT EXISTS idx_room_time ON messages (room_jid, timestamp DESC);

CREATE TABLE IF NOT EXISTS occupants (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  room_jid TEXT NOT NULL,
  nick TEXT NOT NULL,
  affiliation TEXT,
  role TEXT,
  last_action TEXT,
  last_seen INTEGER NOT NULL -- unix micro
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_occupant ON occupants (room_jid, nick);
`
	_, err := s.db.Exec(sqlStmt)
	return err
}

const insertMessage = `
INSERT OR IGNORE INTO messages
(room_jid, sender, body, msg_type, delayed, timestamp)
VALUES (?, ?, ?, ?, ?, ?);
`

// SaveMessage stores one message. Duplicates are ignored.
func (s *Store) SaveMessage(ctx context.Context, m models.StoredMessage) error {
	return saveMessage(ctx, s.db, m)
}

// SaveMessages stores a batch in one transaction.
func (s *Store) SaveMessages(ctx context.Context, msgs []models.StoredMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, m := range msgs {
		if err := saveMessage(ctx, tx, m); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveMessage(ctx context.Context, db execer, m models.StoredMessage) error {
	_, err := db.ExecContext(ctx, insertMessage,
		m.RoomJID,
		m.Sender,
		m.Body,
		m.MsgType,
		boolToInt(m.Delayed),
		m.Timestamp.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// LatestMessages returns the newest limit messages of a room, oldest
// first.
func (s *Store) LatestMessages(ctx context.Context, roomJID string, limit int) ([]models.StoredMessage, error) {
	const q = `
SELECT id, room_jid, sender, body, msg_type, delayed, timestamp
FROM messages
WHERE room_jid = ?
ORDER BY timestamp DESC, id DESC
LIMIT ?;
`
	out, err := s.queryMessages(ctx, q, roomJID, limit)
	if err != nil {
		return nil, fmt.Errorf("select latest messages: %w", err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MessagesSince returns a room's messages newer than since, oldest first.
func (s *Store) MessagesSince(ctx context.Context, roomJID string, since time.Time, limit int) ([]models.StoredMessage, error) {
	const q = `
SELECT id, room_jid, sender, body, msg_type, delayed, timestamp
FROM messages
WHERE room_jid = ? AND timestamp > ?
ORDER BY timestamp ASC, id ASC
LIMIT ?;
`
	out, err := s.queryMessages(ctx, q, roomJID, since.UnixMicro(), limit)
	if err != nil {
		return nil, fmt.Errorf("select messages since: %w", err)
	}
	return out, nil
}

func (s *Store) queryMessages(ctx context.Context, q string, args ...any) ([]models.StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StoredMessage
	for rows.Next() {
		var (
			m       models.StoredMessage
			delayed int64
			ts      int64
		)
		if err := rows.Scan(&m.ID, &m.RoomJID, &m.Sender, &m.Body, &m.MsgType, &delayed, &ts); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		m.Delayed = delayed != 0
		m.Timestamp = time.UnixMicro(ts).UTC()
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestTimestamp returns the time of the newest message in a room, or
// ErrNoRows.
func (s *Store) LatestTimestamp(ctx context.Context, roomJID string) (time.Time, error) {
	const q = `
SELECT MAX(timestamp) FROM messages WHERE room_jid = ?;
`
	var ts sql.NullInt64
	if err := s.db.QueryRowContext(ctx, q, roomJID).Scan(&ts); err != nil {
		return time.Time{}, fmt.Errorf("select latest timestamp: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, ErrNoRows
	}
	return time.UnixMicro(ts.Int64).UTC(), nil
}

// DeleteOlderThan deletes a room's messages older than `before` and
// returns rows deleted.
func (s *Store) DeleteOlderThan(ctx context.Context, roomJID string, before time.Time) (int64, error) {
	const q = `
DELETE FROM messages WHERE room_jid = ? AND timestamp < ?;
`
	res, err := s.db.ExecContext(ctx, q, roomJID, before.UnixMicro())
	if err != nil {
		return 0, fmt.Errorf("delete older than: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Sighting is the last known state of a nickname in a room.
type Sighting struct {
	RoomJID     string
	Nick        string
	Affiliation models.Affiliation
	Role        models.Role
	LastAction  models.PresenceAction
	LastSeen    time.Time
}

func (s *Store) SaveSighting(ctx context.Context, sg Sighting) error {
	const q = `
INSERT INTO occupants (room_jid, nick, affiliation, role, last_action, last_seen)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(room_jid, nick) DO UPDATE SET
    affiliation = excluded.affiliation,
    role = excluded.role,
    last_action = excluded.last_action,
    last_seen = excluded.last_seen;
`
	_, err := s.db.ExecContext(ctx, q,
		sg.RoomJID,
		sg.Nick,
		string(sg.Affiliation),
		string(sg.Role),
		string(sg.LastAction),
		sg.LastSeen.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("save sighting: %w", err)
	}
	return nil
}

// LastSeen returns the sighting of nick in room, or ErrNoRows.
func (s *Store) LastSeen(ctx context.Context, roomJID, nick string) (Sighting, error) {
	const q = `
SELECT room_jid, nick, affiliation, role, last_action, last_seen
FROM occupants
WHERE room_jid = ? AND nick = ?
LIMIT 1;
`
	var (
		sg          Sighting
		affiliation sql.NullString
		role        sql.NullString
		action      sql.NullString
		lastSeen    int64
	)
	err := s.db.QueryRowContext(ctx, q, roomJID, nick).Scan(&sg.RoomJID, &sg.Nick, &affiliation, &role, &action, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return Sighting{}, ErrNoRows
	}
	if err != nil {
		return Sighting{}, fmt.Errorf("select sighting: %w", err)
	}
	sg.Affiliation = models.Affiliation(affiliation.String)
	sg.Role = models.Role(role.String)
	sg.LastAction = models.PresenceAction(action.String)
	sg.LastSeen = time.UnixMicro(lastSeen).UTC()
	return sg, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
