package acquirer

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/idtoken"
)

// NewProxyClient returns the HTTP client used to reach the proxies. When
// audience is set, requests carry a Google-signed ID token so that proxies
// deployed behind Cloud Run IAM accept them.
func NewProxyClient(ctx context.Context, audience string) *http.Client {
	audience = strings.TrimSpace(audience)
	if audience == "" {
		return &http.Client{}
	}
	client, err := idtoken.NewClient(ctx, audience)
	if err != nil {
		log.Warn().Err(err).Str("audience", audience).Msg("id token client unavailable, falling back to plain client")
		return &http.Client{}
	}
	return client
}
