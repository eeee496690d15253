package bin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for bin persistence operations.
// This abstraction allows for different implementations (SQLite, mock)
// and enables unit testing without database dependencies.
//
// Every method is atomic per call; message handlers rely on that for
// correctness instead of application-level locks.
type Repository interface {
	// GetByID retrieves a bin by its unique identifier.
	// Returns ErrBinNotFound if the bin does not exist.
	GetByID(ctx context.Context, id string) (*Bin, error)

	// List retrieves all bins ordered by ID.
	List(ctx context.Context) ([]Bin, error)

	// Create inserts a new bin (provisioning via the admin API).
	// Returns ErrBinExists if a bin with the same ID already exists.
	Create(ctx context.Context, b *Bin) error

	// UpdateTelemetry updates the latest fill percentage, raw distance,
	// and last-seen timestamp. Last-writer-wins on these fields.
	UpdateTelemetry(ctx context.Context, id string, levelPercent int, distanceCM float64) error

	// UpdatePresence updates the online flag and last-seen timestamp.
	UpdatePresence(ctx context.Context, id string, online bool) error

	// UpdateConfig applies the non-nil fields of a partial config update.
	// Returns ErrEmptyUpdate if no field is set.
	UpdateConfig(ctx context.Context, id string, update ConfigUpdate) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection with the schema
// applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const binColumns = `id, name, location, mode, threshold_cm, capacity_cm,
	online, level_percent, distance_cm, last_seen, created_at, updated_at`

// GetByID retrieves a bin by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Bin, error) {
	query := `SELECT ` + binColumns + ` FROM bins WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	b, err := scanBin(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBinNotFound
		}
		return nil, fmt.Errorf("querying bin by id: %w", err)
	}
	return b, nil
}

// List retrieves all bins ordered by ID.
func (r *SQLiteRepository) List(ctx context.Context) ([]Bin, error) {
	query := `SELECT ` + binColumns + ` FROM bins ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying bins: %w", err)
	}
	defer rows.Close()

	var bins []Bin
	for rows.Next() {
		b, err := scanBin(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bin: %w", err)
		}
		bins = append(bins, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bins: %w", err)
	}

	return bins, nil
}

// Create inserts a new bin.
func (r *SQLiteRepository) Create(ctx context.Context, b *Bin) error {
	if !b.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, b.Mode)
	}

	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	query := `
		INSERT INTO bins (` + binColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		b.Name,
		b.Location,
		string(b.Mode),
		b.ThresholdCM,
		b.CapacityCM,
		boolToInt(b.Online),
		b.LevelPercent,
		b.DistanceCM,
		nullableTime(b.LastSeen),
		b.CreatedAt.Format(time.RFC3339),
		b.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrBinExists
		}
		return fmt.Errorf("inserting bin: %w", err)
	}

	return nil
}

// UpdateTelemetry updates fill percentage, raw distance, and last-seen.
func (r *SQLiteRepository) UpdateTelemetry(ctx context.Context, id string, levelPercent int, distanceCM float64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		UPDATE bins
		SET level_percent = ?, distance_cm = ?, last_seen = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, levelPercent, distanceCM, now, now, id)
	if err != nil {
		return fmt.Errorf("updating bin telemetry: %w", err)
	}
	return requireRow(result)
}

// UpdatePresence updates the online flag and last-seen timestamp.
func (r *SQLiteRepository) UpdatePresence(ctx context.Context, id string, online bool) error {
	now := time.Now().UTC().Format(time.RFC3339)
	query := `
		UPDATE bins
		SET online = ?, last_seen = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, boolToInt(online), now, now, id)
	if err != nil {
		return fmt.Errorf("updating bin presence: %w", err)
	}
	return requireRow(result)
}

// UpdateConfig applies the non-nil fields of a partial config update.
// The SET clause is built dynamically so untouched fields keep their
// stored values (last-writer-wins per field).
func (r *SQLiteRepository) UpdateConfig(ctx context.Context, id string, update ConfigUpdate) error {
	if update.IsEmpty() {
		return ErrEmptyUpdate
	}

	var sets []string
	var args []any

	if update.Mode != nil {
		if !update.Mode.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidMode, *update.Mode)
		}
		sets = append(sets, "mode = ?")
		args = append(args, string(*update.Mode))
	}
	if update.ThresholdCM != nil {
		sets = append(sets, "threshold_cm = ?")
		args = append(args, *update.ThresholdCM)
	}
	if update.CapacityCM != nil {
		sets = append(sets, "capacity_cm = ?")
		args = append(args, *update.CapacityCM)
	}
	if update.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Location != nil {
		sets = append(sets, "location = ?")
		args = append(args, *update.Location)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339))
	args = append(args, id)

	query := "UPDATE bins SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating bin config: %w", err)
	}
	return requireRow(result)
}

// requireRow converts a zero-row update into ErrBinNotFound.
func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrBinNotFound
	}
	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanBin scans a row or rows result into a Bin.
func scanBin(scanner rowScanner) (*Bin, error) {
	var b Bin
	var mode string
	var online int
	var lastSeen sql.NullString
	var createdAt, updatedAt string

	err := scanner.Scan(
		&b.ID,
		&b.Name,
		&b.Location,
		&mode,
		&b.ThresholdCM,
		&b.CapacityCM,
		&online,
		&b.LevelPercent,
		&b.DistanceCM,
		&lastSeen,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Mode = Mode(mode)
	b.Online = online != 0

	if lastSeen.Valid {
		t, err := time.Parse(time.RFC3339, lastSeen.String)
		if err == nil {
			b.LastSeen = &t
		}
	}

	var parseErr error
	b.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	b.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	return &b, nil
}

// nullableTime returns a sql.NullString for optional time pointers (as RFC3339 strings).
func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

// boolToInt converts a boolean to 0/1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
