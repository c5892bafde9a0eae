package metadata

import (
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"civiclink/pkg/requestcontext"
)

// Client platforms recorded on issues.
const (
	PlatformMobile  = "mobile"
	PlatformDesktop = "desktop"
	PlatformBot     = "bot"
)

// ClientMetadata extracts client IP address, User-Agent and the parsed client
// platform from the request and adds them to the context for services.
// Apply it early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")

		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), ua)
		ctx = requestcontext.WithClientPlatform(ctx, PlatformFromUserAgent(ua))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PlatformFromUserAgent classifies a User-Agent header. Empty input yields "".
func PlatformFromUserAgent(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	ua := useragent.New(raw)
	switch {
	case ua.Bot():
		return PlatformBot
	case ua.Mobile():
		return PlatformMobile
	default:
		return PlatformDesktop
	}
}

// ClientIPFromRequest extracts the client IP, honoring proxy headers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For: client, proxy1, proxy2
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}
