package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"civiclink/pkg/requestcontext"
)

const (
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	botUA     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestPlatformFromUserAgent(t *testing.T) {
	assert.Equal(t, PlatformMobile, PlatformFromUserAgent(iphoneUA))
	assert.Equal(t, PlatformDesktop, PlatformFromUserAgent(desktopUA))
	assert.Equal(t, PlatformBot, PlatformFromUserAgent(botUA))
	assert.Equal(t, "", PlatformFromUserAgent("  "))
}

func TestClientMetadata(t *testing.T) {
	var gotIP, gotUA, gotPlatform string
	h := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
		gotPlatform = requestcontext.ClientPlatform(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/issues", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	req.Header.Set("User-Agent", iphoneUA)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.7", gotIP)
	assert.Equal(t, iphoneUA, gotUA)
	assert.Equal(t, PlatformMobile, gotPlatform)
}

func TestClientIPFromRequest_RemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:51234"
	assert.Equal(t, "192.0.2.10", ClientIPFromRequest(req))
}
