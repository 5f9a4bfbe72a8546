package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/contact-scraper/internal/dto"
	"github.com/octobees/contact-scraper/internal/entity"
	"github.com/octobees/contact-scraper/internal/extractor"
	middleware "github.com/octobees/contact-scraper/internal/middleware"
)

var errNotImplemented = errors.New("not implemented")

type stubUsersRepo struct {
	findByEmail func(ctx context.Context, email string) (*entity.User, error)
	create      func(ctx context.Context, email, passwordHash, role string) (*entity.User, error)
	list        func(ctx context.Context) ([]entity.User, error)
	update      func(ctx context.Context, id uuid.UUID, email, passwordHash, role *string) (*entity.User, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if s.findByEmail != nil {
		return s.findByEmail(ctx, email)
	}
	return nil, errNotImplemented
}

func (s *stubUsersRepo) FindByID(context.Context, uuid.UUID) (*entity.User, error) {
	return nil, errNotImplemented
}

func (s *stubUsersRepo) Create(ctx context.Context, email, passwordHash, role string) (*entity.User, error) {
	if s.create != nil {
		return s.create(ctx, email, passwordHash, role)
	}
	return nil, errNotImplemented
}

func (s *stubUsersRepo) List(ctx context.Context) ([]entity.User, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, errNotImplemented
}

func (s *stubUsersRepo) Update(ctx context.Context, id uuid.UUID, email, passwordHash, role *string) (*entity.User, error) {
	if s.update != nil {
		return s.update(ctx, id, email, passwordHash, role)
	}
	return nil, errNotImplemented
}

func (s *stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return errNotImplemented
}

type stubScrapesRepo struct {
	create   func(ctx context.Context, scrape *entity.Scrape) error
	list     func(ctx context.Context, filter dto.ScrapeListFilter) ([]entity.Scrape, error)
	findByID func(ctx context.Context, id uuid.UUID) (*entity.Scrape, error)
	delete   func(ctx context.Context, id uuid.UUID) error
}

func (s *stubScrapesRepo) Create(ctx context.Context, scrape *entity.Scrape) error {
	if s.create != nil {
		return s.create(ctx, scrape)
	}
	return errNotImplemented
}

func (s *stubScrapesRepo) List(ctx context.Context, filter dto.ScrapeListFilter) ([]entity.Scrape, error) {
	if s.list != nil {
		return s.list(ctx, filter)
	}
	return nil, errNotImplemented
}

func (s *stubScrapesRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Scrape, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, errNotImplemented
}

func (s *stubScrapesRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return errNotImplemented
}

type stubScraper struct {
	result *extractor.Result
	err    error
}

func (s *stubScraper) Scrape(context.Context, string) (*extractor.Result, error) {
	return s.result, s.err
}

// newJSONContext builds an echo context for method/path with an optional JSON
// body. A string body is sent verbatim.
func newJSONContext(t *testing.T, method, path string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf *bytes.Reader
	switch b := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case string:
		buf = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

// authenticate stores the identity the JWT middleware would have set.
func authenticate(c echo.Context, userID uuid.UUID, role string) {
	c.Set(middleware.ContextKeyUserID, userID.String())
	c.Set(middleware.ContextKeyUserRole, role)
}

// withID sets the :id route parameter.
func withID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
