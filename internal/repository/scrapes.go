package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/contact-scraper/internal/dto"
	"github.com/octobees/contact-scraper/internal/entity"
	"github.com/octobees/contact-scraper/internal/extractor"
)

// ErrScrapeNotFound is returned when no scrape record matches the id.
var ErrScrapeNotFound = errors.New("scrape not found")

// ScrapesRepository persists scrape attempts.
type ScrapesRepository interface {
	Create(ctx context.Context, scrape *entity.Scrape) error
	List(ctx context.Context, filter dto.ScrapeListFilter) ([]entity.Scrape, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Scrape, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGXScrapesRepository implements ScrapesRepository using pgx.
type PGXScrapesRepository struct {
	pool pgxPool
}

// NewPGXScrapesRepository wires a pgx backed repository.
func NewPGXScrapesRepository(pool *pgxpool.Pool) *PGXScrapesRepository {
	return &PGXScrapesRepository{pool: pool}
}

// Create inserts scrape and fills in its id and created_at.
func (r *PGXScrapesRepository) Create(ctx context.Context, scrape *entity.Scrape) error {
	if scrape == nil {
		return fmt.Errorf("scrape payload is nil")
	}

	var resultJSON []byte
	if scrape.Result != nil {
		encoded, err := json.Marshal(scrape.Result)
		if err != nil {
			return fmt.Errorf("marshal scrape result: %w", err)
		}
		resultJSON = encoded
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO scrapes (
			user_id, url, success, total_contacts, scraping_time_ms,
			result, error_kind, error_message, scraped_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`,
		scrape.UserID,
		scrape.URL,
		scrape.Success,
		scrape.TotalContacts,
		scrape.ScrapingTimeMS,
		resultJSON,
		scrape.ErrorKind,
		scrape.ErrorMessage,
		scrape.ScrapedAt,
	).Scan(&scrape.ID, &scrape.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scrape: %w", err)
	}
	return nil
}

// List returns scrape records newest first without their result payload.
func (r *PGXScrapesRepository) List(ctx context.Context, filter dto.ScrapeListFilter) ([]entity.Scrape, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, user_id, url, success, total_contacts, scraping_time_ms,
			error_kind, error_message, scraped_at, created_at
		FROM scrapes
	`)

	var (
		clauses []string
		args    []any
	)
	if filter.UserID != "" {
		userID, err := uuid.Parse(filter.UserID)
		if err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		args = append(args, userID)
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Q != "" {
		args = append(args, "%"+filter.Q+"%")
		clauses = append(clauses, fmt.Sprintf("url ILIKE $%d", len(args)))
	}
	if filter.Success != nil {
		args = append(args, *filter.Success)
		clauses = append(clauses, fmt.Sprintf("success = $%d", len(args)))
	}
	if len(clauses) > 0 {
		query.WriteString(" WHERE ")
		query.WriteString(strings.Join(clauses, " AND "))
	}

	query.WriteString(" ORDER BY scraped_at DESC")
	if filter.PerPage > 0 {
		page := max(filter.Page, 1)
		args = append(args, filter.PerPage, (page-1)*filter.PerPage)
		query.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))
	}

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list scrapes: %w", err)
	}
	defer rows.Close()

	scrapes := make([]entity.Scrape, 0)
	for rows.Next() {
		var s entity.Scrape
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.URL, &s.Success, &s.TotalContacts, &s.ScrapingTimeMS,
			&s.ErrorKind, &s.ErrorMessage, &s.ScrapedAt, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan scrape row: %w", err)
		}
		scrapes = append(scrapes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scrapes: %w", err)
	}
	return scrapes, nil
}

// FindByID loads a scrape record including its result.
func (r *PGXScrapesRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Scrape, error) {
	var (
		s          entity.Scrape
		resultJSON []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, url, success, total_contacts, scraping_time_ms,
			result, error_kind, error_message, scraped_at, created_at
		FROM scrapes
		WHERE id = $1
	`, id).Scan(
		&s.ID, &s.UserID, &s.URL, &s.Success, &s.TotalContacts, &s.ScrapingTimeMS,
		&resultJSON, &s.ErrorKind, &s.ErrorMessage, &s.ScrapedAt, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScrapeNotFound
		}
		return nil, fmt.Errorf("query scrape: %w", err)
	}

	if len(resultJSON) > 0 {
		var result extractor.Result
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("decode scrape result: %w", err)
		}
		s.Result = &result
	}
	return &s, nil
}

// Delete removes a scrape record.
func (r *PGXScrapesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM scrapes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scrape: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrScrapeNotFound
	}
	return nil
}
