package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sngm3741/pcb-intake-services/api/internal/domain"
)

const submissionColumns = `id, name, email, phone, notes, file_name, file_url, object_key, status, created_at`

// Repository stores submissions in a relational database through database/sql.
type Repository struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// NewRepository binds a migrated database. driver decides the placeholder style.
func NewRepository(db *sql.DB, driver string) *Repository {
	name, _ := DriverName(driver)
	return &Repository{db: db, driver: name, now: time.Now}
}

func (r *Repository) Create(ctx context.Context, sub *domain.Submission) error {
	id := uuid.NewString()
	createdAt := r.now().UTC().Truncate(time.Microsecond)

	_, err := r.db.ExecContext(ctx, r.rebind(
		`INSERT INTO submissions (`+submissionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id, sub.Name, sub.Email, sub.Phone, sub.Notes, sub.FileName, sub.FileURL, sub.ObjectKey,
		string(domain.StatusNew), createdAt,
	)
	if err != nil {
		return err
	}

	sub.ID = id
	sub.CreatedAt = createdAt
	sub.Status = domain.StatusNew
	return nil
}

// List returns every submission, newest first; equal timestamps keep insertion order reversed.
func (r *Repository) List(ctx context.Context) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]domain.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// UpdateStatus overwrites the status column and returns the stored row.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Submission, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	if _, err := r.db.ExecContext(ctx, r.rebind(`UPDATE submissions SET status = ? WHERE id = ?`), string(status), id); err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT `+submissionColumns+` FROM submissions WHERE id = ?`), id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(s scanner) (domain.Submission, error) {
	var (
		sub       domain.Submission
		status    string
		createdAt time.Time
	)
	if err := s.Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Phone, &sub.Notes, &sub.FileName, &sub.FileURL, &sub.ObjectKey, &status, &createdAt); err != nil {
		return domain.Submission{}, err
	}
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		parsed = domain.StatusNew
	}
	sub.Status = parsed
	sub.CreatedAt = createdAt.UTC()
	return sub, nil
}

// rebind rewrites ? placeholders to $n for the postgres driver.
func (r *Repository) rebind(query string) string {
	if r.driver != "pgx" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
