package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnease_backend/internal/config"
)

func newProxyRouter(upstreamURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{ChatUpstreamURL: upstreamURL, ChatUpstreamAPIKey: "test-key"}
	h := NewHandler(cfg, zap.NewNop())

	router := gin.New()
	noopAuth := func(c *gin.Context) { c.Next() }
	h.RegisterRoutes(router.Group("/api"), noopAuth)
	return router
}

func TestCompletions_StreamsUpstreamBody(t *testing.T) {
	var gotAuth, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, chunk := range []string{"data: hello\n\n", "data: world\n\n", "data: [DONE]\n\n"} {
			w.Write([]byte(chunk))
			flusher.Flush()
		}
	}))
	defer upstream.Close()

	router := newProxyRouter(upstream.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/completions", strings.NewReader(`{"messages":[]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data: hello")
	assert.Contains(t, rec.Body.String(), "data: [DONE]")

	// The key is attached server-side; the client body passes through opaquely.
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, `{"messages":[]}`, gotBody)
}

func TestCompletions_UpstreamDownMapsToServiceUnavailable(t *testing.T) {
	// Point at a closed port.
	router := newProxyRouter("http://127.0.0.1:1")
	req := httptest.NewRequest(http.MethodPost, "/api/chat/completions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCompletions_UpstreamServerErrorMapsToServiceUnavailable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	router := newProxyRouter(upstream.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/completions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCompletions_NotConfigured(t *testing.T) {
	router := newProxyRouter("")
	req := httptest.NewRequest(http.MethodPost, "/api/chat/completions", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
