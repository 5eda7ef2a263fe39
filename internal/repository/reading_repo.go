package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/NNikoGG/water-quality-monitoring/internal/models"

	"github.com/google/uuid"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite {
	return &ReadingSQLite{db: db}
}

var _ ReadingRepo = (*ReadingSQLite)(nil)

const (
	insertReadingSQL = `
		INSERT INTO readings (id, recorded_at, ph, turbidity, tds, temperature, conductivity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	// Bounds the window server-side; callers reverse to ascending order.
	selectLatestReadingsSQL = `
		SELECT id, recorded_at, ph, turbidity, tds, temperature, conductivity
		FROM readings ORDER BY recorded_at DESC LIMIT ?
	`

	selectAllReadingsSQL = `
		SELECT id, recorded_at, ph, turbidity, tds, temperature, conductivity
		FROM readings ORDER BY recorded_at ASC
	`
)

// Insert persists a reading. If ID or Timestamp are empty, they're set.
func (r *ReadingSQLite) Insert(ctx context.Context, reading models.Reading) error {
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	ts := reading.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertReadingSQL,
		reading.ID,
		ts,
		reading.PH,
		reading.Turbidity,
		reading.TDS,
		reading.Temperature,
		reading.Conductivity,
	)
	if err != nil {
		return fmt.Errorf("insert reading %q: %w", reading.ID, err)
	}
	return nil
}

// Latest fetches the n most recent readings and returns them ordered
// ascending by timestamp (oldest first, latest last).
func (r *ReadingSQLite) Latest(ctx context.Context, n int) ([]models.Reading, error) {
	rows, err := r.db.QueryContext(ctx, selectLatestReadingsSQL, n)
	if err != nil {
		return nil, fmt.Errorf("select latest %d readings: %w", n, err)
	}
	defer func() { _ = rows.Close() }()

	readings, err := scanReadings(rows)
	if err != nil {
		return nil, err
	}

	// Query returned newest-first; flip to the canonical ascending order.
	for i, j := 0, len(readings)-1; i < j; i, j = i+1, j-1 {
		readings[i], readings[j] = readings[j], readings[i]
	}
	return readings, nil
}

// All fetches the entire collection ascending by timestamp (bulk export only).
func (r *ReadingSQLite) All(ctx context.Context) ([]models.Reading, error) {
	rows, err := r.db.QueryContext(ctx, selectAllReadingsSQL)
	if err != nil {
		return nil, fmt.Errorf("select all readings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]models.Reading, error) {
	var readings []models.Reading
	for rows.Next() {
		var m models.Reading
		if err := rows.Scan(
			&m.ID,
			&m.Timestamp,
			&m.PH,
			&m.Turbidity,
			&m.TDS,
			&m.Temperature,
			&m.Conductivity,
		); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		m.Timestamp = m.Timestamp.UTC()
		readings = append(readings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return readings, nil
}
