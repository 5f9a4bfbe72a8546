package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/contact-scraper/internal/config"
)

// ScrapePath is the only route the scrape limiter throttles.
const ScrapePath = "/scrape"

// clientLimiters hands out one token bucket per caller.
type clientLimiters struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

func (l *clientLimiters) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.buckets[key]
	if !ok {
		limiter = rate.NewLimiter(l.every, l.burst)
		l.buckets[key] = limiter
	}
	return limiter.Allow()
}

// ScrapeRateLimiter applies a token bucket per authenticated user (or client
// IP when anonymous) to POST /scrape.
func ScrapeRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	retryAfter := strconv.Itoa(int(math.Ceil(perRequest.Seconds())))

	limiters := &clientLimiters{
		every:   rate.Every(perRequest),
		burst:   cfg.Requests,
		buckets: make(map[string]*rate.Limiter),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() != ScrapePath || c.Request().Method != http.MethodPost {
				return next(c)
			}

			key := UserIDFromContext(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			if !limiters.allow(key) {
				c.Response().Header().Set("Retry-After", retryAfter)
				return deny(c, http.StatusTooManyRequests, "scrape rate limit exceeded")
			}

			return next(c)
		}
	}
}
