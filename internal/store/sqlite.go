package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go SQLite driver (no CGO required)

	"github.com/i474232898/weather-gateway/internal/weather"
)

var (
	// ErrNotFound is returned when no row exists for a given id.
	ErrNotFound = weather.ErrNotFound
)

// PersistenceError wraps a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// timeLayout is fixed-width so that created_at sorts lexically in time order.
const timeLayout = "2006-01-02 15:04:05.000000000"

const schema = `
CREATE TABLE IF NOT EXISTS weather_queries (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    location     TEXT NOT NULL,
    date_from    TEXT,
    date_to      TEXT,
    weather_data TEXT,
    created_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_weather_queries_created_at ON weather_queries(created_at DESC);
`

// SQLiteStore implements weather.Store on a single SQLite table.
type SQLiteStore struct {
	db *sql.DB

	now func() time.Time
}

// NewSQLite opens (or creates) the database at path and creates the table if needed.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}

	// A single connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "pragma", Err: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "create schema", Err: err}
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Insert stores a new row and returns its id. created_at is set here.
func (s *SQLiteStore) Insert(ctx context.Context, q weather.WeatherQuery) (int64, error) {
	data, err := marshalRecord(q.WeatherData)
	if err != nil {
		return 0, &PersistenceError{Op: "insert", Err: err}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO weather_queries(location, date_from, date_to, weather_data, created_at) VALUES(?,?,?,?,?)`,
		q.Location, nullString(q.DateFrom), nullString(q.DateTo), data, s.now().UTC().Format(timeLayout))
	if err != nil {
		return 0, &PersistenceError{Op: "insert", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &PersistenceError{Op: "insert", Err: fmt.Errorf("getting last insert id: %w", err)}
	}
	return id, nil
}

// List returns all rows, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]weather.WeatherQuery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, location, date_from, date_to, weather_data, created_at FROM weather_queries ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	out := make([]weather.WeatherQuery, 0)
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return out, nil
}

// GetByID returns one row or an error wrapping ErrNotFound.
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (weather.WeatherQuery, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, location, date_from, date_to, weather_data, created_at FROM weather_queries WHERE id = ?`, id)

	q, err := scanQuery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.WeatherQuery{}, fmt.Errorf("query %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return weather.WeatherQuery{}, &PersistenceError{Op: "get", Err: err}
	}
	return q, nil
}

// Update replaces location, dates and weather data of an existing row.
// id and created_at never change.
func (s *SQLiteStore) Update(ctx context.Context, id int64, q weather.WeatherQuery) error {
	data, err := marshalRecord(q.WeatherData)
	if err != nil {
		return &PersistenceError{Op: "update", Err: err}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE weather_queries SET location = ?, date_from = ?, date_to = ?, weather_data = ? WHERE id = ?`,
		q.Location, nullString(q.DateFrom), nullString(q.DateTo), data, id)
	if err != nil {
		return &PersistenceError{Op: "update", Err: err}
	}
	return checkAffected(res, id, "update")
}

// Delete removes exactly one row.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM weather_queries WHERE id = ?`, id)
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	return checkAffected(res, id, "delete")
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func checkAffected(res sql.Result, id int64, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: op, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("query %d: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuery(row scanner) (weather.WeatherQuery, error) {
	var (
		q                weather.WeatherQuery
		dateFrom, dateTo sql.NullString
		data             sql.NullString
		createdAt        string
	)
	if err := row.Scan(&q.ID, &q.Location, &dateFrom, &dateTo, &data, &createdAt); err != nil {
		return q, err
	}

	if dateFrom.Valid {
		q.DateFrom = &dateFrom.String
	}
	if dateTo.Valid {
		q.DateTo = &dateTo.String
	}
	if data.Valid && data.String != "" {
		var rec weather.Record
		if err := json.Unmarshal([]byte(data.String), &rec); err != nil {
			return q, fmt.Errorf("decoding weather_data of query %d: %w", q.ID, err)
		}
		q.WeatherData = &rec
	}

	ts, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return q, fmt.Errorf("parsing created_at of query %d: %w", q.ID, err)
	}
	q.CreatedAt = ts.UTC()
	return q, nil
}

// marshalRecord serializes before any SQL runs, so a row never holds partial JSON.
func marshalRecord(rec *weather.Record) (sql.NullString, error) {
	if rec == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding weather_data: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
