package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for credential persistence.
// The authorization resolver re-reads the store on every scan; there is
// no in-memory credential cache.
type Repository interface {
	// GetByUID retrieves a credential by its tag UID.
	// Returns ErrNotFound if the UID is not registered.
	GetByUID(ctx context.Context, uid string) (*Credential, error)

	// List retrieves all credentials ordered by UID.
	List(ctx context.Context) ([]Credential, error)

	// Create registers a new credential.
	// Returns ErrExists if the UID is already registered.
	Create(ctx context.Context, c *Credential) error

	// SetActive enables or disables a credential without deleting it,
	// preserving the event-log linkage to its holder.
	SetActive(ctx context.Context, uid string, active bool) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByUID retrieves a credential by its tag UID.
func (r *SQLiteRepository) GetByUID(ctx context.Context, uid string) (*Credential, error) {
	query := `SELECT uid, holder, role, active, created_at FROM credentials WHERE uid = ?`

	var c Credential
	var active int
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&c.UID, &c.Holder, &c.Role, &active, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying credential: %w", err)
	}

	c.Active = active != 0
	c.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &c, nil
}

// List retrieves all credentials ordered by UID.
func (r *SQLiteRepository) List(ctx context.Context) ([]Credential, error) {
	query := `SELECT uid, holder, role, active, created_at FROM credentials ORDER BY uid`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying credentials: %w", err)
	}
	defer rows.Close()

	var creds []Credential
	for rows.Next() {
		var c Credential
		var active int
		var createdAt string
		if err := rows.Scan(&c.UID, &c.Holder, &c.Role, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning credential: %w", err)
		}
		c.Active = active != 0
		c.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		creds = append(creds, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating credentials: %w", err)
	}

	return creds, nil
}

// Create registers a new credential.
func (r *SQLiteRepository) Create(ctx context.Context, c *Credential) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO credentials (uid, holder, role, active, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		c.UID, c.Holder, c.Role, boolToInt(c.Active), c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrExists
		}
		return fmt.Errorf("inserting credential: %w", err)
	}

	return nil
}

// SetActive enables or disables a credential.
func (r *SQLiteRepository) SetActive(ctx context.Context, uid string, active bool) error {
	query := `UPDATE credentials SET active = ? WHERE uid = ?`

	result, err := r.db.ExecContext(ctx, query, boolToInt(active), uid)
	if err != nil {
		return fmt.Errorf("updating credential: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
