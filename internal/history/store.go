package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modlens/modlens/internal/db"
	"github.com/modlens/modlens/internal/moderation"
)

// Store records analyses. It satisfies orchestrator.Recorder.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Record stores a completed analysis under a new UUID.
func (s *Store) Record(ctx context.Context, text string, resp *moderation.DetailedAnalyzeResponse) error {
	if resp == nil {
		return fmt.Errorf("recording analysis: nil response")
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshalling response: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (
			id, created_at, text, classification, confidence,
			action, severity, policy_count, response
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(),
		s.now().UTC().Format(time.DateTime),
		text,
		resp.HateSpeech.Classification,
		string(resp.HateSpeech.Confidence),
		string(resp.Action.Action),
		string(resp.Action.Severity),
		len(resp.Policies),
		string(raw),
	)
	if err != nil {
		return fmt.Errorf("inserting analysis: %w", err)
	}
	return nil
}

// GetByID retrieves a single analysis including its full response.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" FROM analyses WHERE id = ?", id)
	e, err := scanEntry(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

// QueryFilter controls which analyses are returned by Query.
type QueryFilter struct {
	Classification string
	Action         moderation.ActionType
	Since          *time.Time
	Until          *time.Time
	Limit          int
	Offset         int
}

const selectColumns = `SELECT id, created_at, text, classification, confidence, action, severity, policy_count, response`

// Query returns analyses matching the filter, newest first. Responses are
// omitted from list results.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Classification != "" {
		clauses = append(clauses, "classification = ?")
		args = append(args, normalizeLabel(filter.Classification))
	}
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}
	if filter.Until != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, filter.Until.UTC().Format(time.DateTime))
	}

	query := selectColumns + " FROM analyses"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows, false)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes analyses older than the given time and returns the
// number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM analyses WHERE created_at < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old analyses: %w", err)
	}
	return res.RowsAffected()
}

// RecordIngest logs that count documents were added from source.
func (s *Store) RecordIngest(ctx context.Context, source string, count int) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO policy_ingests (id, created_at, source, document_count) VALUES (?, ?, ?, ?)",
		uuid.New().String(), s.now().UTC().Format(time.DateTime), source, count,
	)
	if err != nil {
		return fmt.Errorf("inserting policy ingest: %w", err)
	}
	return nil
}

// Ingests lists recorded policy ingests, newest first.
func (s *Store) Ingests(ctx context.Context, limit int) ([]Ingest, error) {
	query := "SELECT id, created_at, source, document_count FROM policy_ingests ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying policy ingests: %w", err)
	}
	defer rows.Close()

	out := []Ingest{}
	for rows.Next() {
		var (
			in Ingest
			ts string
		)
		if err := rows.Scan(&in.ID, &ts, &in.Source, &in.DocumentCount); err != nil {
			return nil, err
		}
		in.CreatedAt = parseTime(ts)
		out = append(out, in)
	}
	return out, rows.Err()
}

// normalizeLabel maps "hate" or "HATE" to the stored "Hate".
func normalizeLabel(s string) string {
	return moderation.Label(strings.ToLower(strings.TrimSpace(s))).Title()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner, withResponse bool) (*Entry, error) {
	var (
		e                       Entry
		ts                      string
		confidence, action, sev string
		raw                     string
	)
	err := sc.Scan(&e.ID, &ts, &e.Text, &e.Classification, &confidence, &action, &sev, &e.PolicyCount, &raw)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(ts)
	e.Confidence = moderation.ConfidenceLevel(confidence)
	e.Action = moderation.ActionType(action)
	e.Severity = moderation.SeverityLevel(sev)

	if withResponse {
		var resp moderation.DetailedAnalyzeResponse
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			return nil, fmt.Errorf("decoding stored response %s: %w", e.ID, err)
		}
		e.Response = &resp
	}
	return &e, nil
}

func parseTime(ts string) time.Time {
	if t, err := time.Parse(time.DateTime, ts); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t
	}
	return time.Time{}
}
