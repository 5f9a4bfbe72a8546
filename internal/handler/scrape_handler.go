package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/octobees/contact-scraper/internal/acquirer"
	"github.com/octobees/contact-scraper/internal/dto"
	"github.com/octobees/contact-scraper/internal/export"
	middleware "github.com/octobees/contact-scraper/internal/middleware"
	"github.com/octobees/contact-scraper/internal/repository"
	"github.com/octobees/contact-scraper/internal/service"
)

// ScrapeHandler runs scrapes and serves the caller's scrape history.
type ScrapeHandler struct {
	scrapes *service.ScrapeService
}

// NewScrapeHandler constructs a scrape handler.
func NewScrapeHandler(scrapes *service.ScrapeService) *ScrapeHandler {
	return &ScrapeHandler{scrapes: scrapes}
}

// actorFrom reads the identity stored by the JWT middleware.
func actorFrom(c echo.Context) (service.Actor, bool) {
	id, err := uuid.Parse(middleware.UserIDFromContext(c))
	if err != nil {
		return service.Actor{}, false
	}
	return service.Actor{UserID: id, Role: middleware.RoleFromContext(c)}, true
}

// acquisitionStatus maps a fetch failure onto the status returned to clients.
func acquisitionStatus(kind acquirer.Kind) int {
	switch kind {
	case acquirer.KindRateLimited:
		return http.StatusTooManyRequests
	case acquirer.KindTimeout:
		return http.StatusGatewayTimeout
	case acquirer.KindNotFound:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// lookupError renders the errors shared by the :id routes.
func lookupError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidScrapeID):
		return Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrScrapeNotFound):
		return Error(c, http.StatusNotFound, "scrape not found")
	default:
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Str("scrape_id", c.Param("id")).Msg("load scrape")
		return Error(c, http.StatusInternalServerError, "failed to load scrape")
	}
}

// Scrape handles POST /scrape: it fetches the page, extracts contacts and
// stores the attempt.
func (h *ScrapeHandler) Scrape(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	var req dto.ScrapeRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.URL) == "" {
		return Error(c, http.StatusBadRequest, "url is required")
	}

	record, err := h.scrapes.Scrape(c.Request().Context(), actor, req.URL)
	if err != nil {
		var acqErr *acquirer.Error
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			return Error(c, http.StatusBadRequest, err.Error())
		case errors.As(err, &acqErr):
			return Fail(c, acquisitionStatus(acqErr.Kind), acqErr.Error(), record)
		default:
			return Error(c, http.StatusInternalServerError, "failed to scrape url")
		}
	}

	return Success(c, http.StatusOK, "scrape completed", record)
}

// List handles GET /scrapes.
func (h *ScrapeHandler) List(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	filter := dto.ScrapeListFilter{Q: c.QueryParam("q")}
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "page must be a number")
		}
		filter.Page = page
	}
	if raw := c.QueryParam("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "per_page must be a number")
		}
		filter.PerPage = perPage
	}
	if raw := c.QueryParam("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "success must be true or false")
		}
		filter.Success = &success
	}

	records, err := h.scrapes.List(c.Request().Context(), actor, filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list scrapes")
	}
	return Success(c, http.StatusOK, "scrapes retrieved", records)
}

// Get handles GET /scrapes/:id.
func (h *ScrapeHandler) Get(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	record, err := h.scrapes.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return lookupError(c, err)
	}
	return Success(c, http.StatusOK, "scrape retrieved", record)
}

// Export handles GET /scrapes/:id/export and streams the result as a file.
func (h *ScrapeHandler) Export(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	record, err := h.scrapes.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return lookupError(c, err)
	}
	if !record.Success || record.Result == nil {
		return Error(c, http.StatusConflict, "scrape has no contacts to export")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, format.ContentType())
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.Filename(format, record.ScrapedAt)+`"`)
	res.WriteHeader(http.StatusOK)
	return export.Write(res, format, record.Result)
}

// Summary handles GET /scrapes/:id/summary.
func (h *ScrapeHandler) Summary(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	verify := false
	if raw := c.QueryParam("verify"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "verify must be true or false")
		}
		verify = parsed
	}

	summary, err := h.scrapes.Summary(c.Request().Context(), actor, c.Param("id"), verify)
	if err != nil {
		if errors.Is(err, service.ErrScrapeFailed) {
			return Error(c, http.StatusConflict, err.Error())
		}
		return lookupError(c, err)
	}
	return Success(c, http.StatusOK, "summary generated", summary)
}

// Delete handles DELETE /scrapes/:id.
func (h *ScrapeHandler) Delete(c echo.Context) error {
	actor, ok := actorFrom(c)
	if !ok {
		return Error(c, http.StatusUnauthorized, "invalid token subject")
	}

	if err := h.scrapes.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return lookupError(c, err)
	}
	return Success(c, http.StatusOK, "scrape deleted", nil)
}
