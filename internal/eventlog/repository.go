package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for the append-only event log.
// There are no update or delete operations.
type Repository interface {
	// Append writes a new entry. The ID and CreatedAt fields are
	// assigned here if unset.
	Append(ctx context.Context, e *Entry) error

	// ListByBin retrieves the most recent entries for one bin, newest
	// first, up to limit rows.
	ListByBin(ctx context.Context, binID string, limit int) ([]Entry, error)

	// ListRecent retrieves the most recent entries across all bins,
	// newest first, up to limit rows.
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

// defaultListLimit caps list queries when the caller passes limit <= 0.
const defaultListLimit = 100

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Append writes a new entry.
func (r *SQLiteRepository) Append(ctx context.Context, e *Entry) error {
	if e.BinID == "" {
		return ErrMissingBinID
	}
	if e.Event == "" {
		return ErrMissingEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO event_log (id, bin_id, event, uid, holder, level_percent, distance_cm, success, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	success := 0
	if e.Success {
		success = 1
	}

	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.BinID,
		e.Event,
		nullableString(e.UID),
		nullableString(e.Holder),
		nullableInt(e.LevelPercent),
		nullableFloat(e.DistanceCM),
		success,
		e.Message,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	return nil
}

const entryColumns = `id, bin_id, event, uid, holder, level_percent, distance_cm, success, message, created_at`

// ListByBin retrieves the most recent entries for one bin.
func (r *SQLiteRepository) ListByBin(ctx context.Context, binID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT ` + entryColumns + ` FROM event_log WHERE bin_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, binID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListRecent retrieves the most recent entries across all bins.
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT ` + entryColumns + ` FROM event_log ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// collectEntries scans all rows into entries.
func collectEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var uid, holder sql.NullString
		var levelPercent sql.NullInt64
		var distanceCM sql.NullFloat64
		var success int
		var createdAt string

		err := rows.Scan(
			&e.ID, &e.BinID, &e.Event,
			&uid, &holder, &levelPercent, &distanceCM,
			&success, &e.Message, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}

		if uid.Valid {
			e.UID = &uid.String
		}
		if holder.Valid {
			e.Holder = &holder.String
		}
		if levelPercent.Valid {
			v := int(levelPercent.Int64)
			e.LevelPercent = &v
		}
		if distanceCM.Valid {
			v := distanceCM.Float64
			e.DistanceCM = &v
		}
		e.Success = success != 0
		e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return entries, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
