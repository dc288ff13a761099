package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/whistle-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ComplaintStore = (*Store)(nil)

const timeLayout = time.RFC3339Nano

// Store keeps complaints in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.whistle/data/complaints.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".whistle", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "complaints.db")

	// WAL mode lets readers proceed while a status change commits
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies each pending migration in its own transaction and
// records its version.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	all, err := migrations.All()
	if err != nil {
		return err
	}
	for _, m := range all {
		if m.Version <= current {
			continue
		}
		if err := s.apply(m); err != nil {
			return fmt.Errorf("migration %03d_%s: %w", m.Version, m.Name, err)
		}
	}
	return nil
}

func (s *Store) apply(m migrations.Migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(m.Up); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
		return err
	}
	return tx.Commit()
}

const complaintColumns = `id, text, category, urgency, spam_score, sentiment_label,
	sentiment_magnitude, status, created_at, confidence`

// Append stores a new complaint.
func (s *Store) Append(ctx context.Context, c *domain.Complaint) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO complaints (`+complaintColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		c.ID, c.Text, string(c.Category), string(c.Urgency), c.SpamScore,
		string(c.Sentiment.Label), c.Sentiment.Magnitude, string(c.Status),
		c.CreatedAt.UTC().Format(timeLayout), c.Confidence,
	)
	if err != nil {
		return fmt.Errorf("inserting complaint: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("inserting complaint: %w", err)
	}
	if n == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Get retrieves a complaint by id.
func (s *Store) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = ?`, id)
	c, err := scanComplaint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting complaint: %w", err)
	}
	return c, nil
}

// UpdateStatus changes the status and appends the history row in one transaction.
func (s *Store) UpdateStatus(ctx context.Context, change domain.StatusChange) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `UPDATE complaints SET status = ? WHERE id = ?`,
		string(change.To), change.ComplaintID)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO status_history (complaint_id, from_status, to_status, note, changed_at)
		VALUES (?, ?, ?, ?, ?)
	`, change.ComplaintID, string(change.From), string(change.To), change.Note,
		change.ChangedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("recording status change: %w", err)
	}

	return tx.Commit()
}

// All returns every complaint in insertion order.
func (s *Store) All(ctx context.Context) ([]domain.Complaint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+complaintColumns+` FROM complaints ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("listing complaints: %w", err)
	}
	defer rows.Close()

	var out []domain.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning complaint: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// History returns the status changes of a complaint, oldest first.
func (s *Store) History(ctx context.Context, id string) ([]domain.StatusChange, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT complaint_id, from_status, to_status, note, changed_at
		FROM status_history WHERE complaint_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusChange
	for rows.Next() {
		var h domain.StatusChange
		var from, to, changedAt string
		if err := rows.Scan(&h.ComplaintID, &from, &to, &h.Note, &changedAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		h.From, h.To = domain.Status(from), domain.Status(to)
		if h.ChangedAt, err = time.Parse(timeLayout, changedAt); err != nil {
			return nil, fmt.Errorf("parsing changed_at: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row scanner) (*domain.Complaint, error) {
	var c domain.Complaint
	var category, urgency, label, status, createdAt string
	err := row.Scan(&c.ID, &c.Text, &category, &urgency, &c.SpamScore,
		&label, &c.Sentiment.Magnitude, &status, &createdAt, &c.Confidence)
	if err != nil {
		return nil, err
	}
	c.Category = domain.Category(category)
	c.Urgency = domain.Urgency(urgency)
	c.Sentiment.Label = domain.SentimentLabel(label)
	c.Status = domain.Status(status)
	if c.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &c, nil
}
