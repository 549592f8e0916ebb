package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/Kosench/keyed-url-shortener/internal/errors"
	"github.com/Kosench/keyed-url-shortener/internal/model"
)

type mockURLService struct {
	entries map[string]*model.URLEntry
	failErr error
}

func newMockURLService() *mockURLService {
	return &mockURLService{
		entries: make(map[string]*model.URLEntry),
	}
}

func (m *mockURLService) add(entry model.URLEntry) {
	m.entries[entry.SecretKey] = &entry
}

func (m *mockURLService) byKey(key string) *model.URLEntry {
	for _, entry := range m.entries {
		if entry.Key == key {
			return entry
		}
	}
	return nil
}

func (m *mockURLService) CreateEntry(ctx context.Context, targetURL string) (model.URLEntry, error) {
	if m.failErr != nil {
		return model.URLEntry{}, m.failErr
	}
	if targetURL == "" || targetURL == "not-a-url" {
		return model.URLEntry{}, apperrors.NewValidationError("target_url", "invalid URL format")
	}

	entry := model.URLEntry{
		ID:        int64(len(m.entries) + 1),
		Key:       "aZ3kQ",
		SecretKey: "aZ3kQ_Xb8mP2qR",
		TargetURL: targetURL,
		IsActive:  true,
	}
	m.add(entry)
	return entry, nil
}

func (m *mockURLService) ResolveForRedirect(ctx context.Context, key string) (model.URLEntry, error) {
	if m.failErr != nil {
		return model.URLEntry{}, m.failErr
	}
	entry := m.byKey(key)
	if entry == nil || !entry.IsActive {
		return model.URLEntry{}, apperrors.ErrURLNotFound
	}
	entry.Clicks++
	return *entry, nil
}

func (m *mockURLService) ResolveForAdmin(ctx context.Context, secretKey string) (model.URLEntry, error) {
	if m.failErr != nil {
		return model.URLEntry{}, m.failErr
	}
	entry, ok := m.entries[secretKey]
	if !ok {
		return model.URLEntry{}, apperrors.ErrURLNotFound
	}
	return *entry, nil
}

func (m *mockURLService) setActive(secretKey string, active bool) (model.URLEntry, error) {
	if m.failErr != nil {
		return model.URLEntry{}, m.failErr
	}
	entry, ok := m.entries[secretKey]
	if !ok {
		return model.URLEntry{}, apperrors.ErrURLNotFound
	}
	entry.IsActive = active
	return *entry, nil
}

func (m *mockURLService) Activate(ctx context.Context, secretKey string) (model.URLEntry, error) {
	return m.setActive(secretKey, true)
}

func (m *mockURLService) Deactivate(ctx context.Context, secretKey string) (model.URLEntry, error) {
	return m.setActive(secretKey, false)
}

func (m *mockURLService) Info(entry model.URLEntry) model.URLInfo {
	return model.URLInfo{
		TargetURL: entry.TargetURL,
		IsActive:  entry.IsActive,
		Clicks:    entry.Clicks,
		URL:       "http://localhost:8080/" + entry.Key,
		AdminURL:  "http://localhost:8080/admin/" + entry.SecretKey,
	}
}

func setupRouter(service URLService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewURLHandler(service, zap.NewNop())
	router := gin.New()
	router.GET("/", h.Welcome)
	router.POST("/url", h.CreateURL)
	router.GET("/admin/:secretKey", h.GetAdminInfo)
	router.POST("/admin/:secretKey", h.ActivateURL)
	router.DELETE("/admin/:secretKey", h.DeactivateURL)
	router.GET("/:key", h.RedirectURL)
	router.NoRoute(h.NotFound)

	return router
}

func serve(router *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp model.DetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Detail
}

func TestURLHandler_Welcome(t *testing.T) {
	router := setupRouter(newMockURLService())

	w := serve(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"Welcome to the URL shortener API :)"`, w.Body.String())
}

func TestURLHandler_CreateURL(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		failErr        error
		expectedStatus int
		expectedDetail string
	}{
		{
			name:           "valid request",
			body:           `{"target_url":"https://example.com"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid URL",
			body:           `{"target_url":"not-a-url"}`,
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Your provided URL is not valid",
		},
		{
			name:           "missing target_url",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Your provided URL is not valid",
		},
		{
			name:           "malformed JSON",
			body:           `{"target_url":`,
			expectedStatus: http.StatusBadRequest,
			expectedDetail: "Invalid JSON body",
		},
		{
			name:           "keyspace exhausted",
			body:           `{"target_url":"https://example.com"}`,
			failErr:        apperrors.NewBusinessError(apperrors.CodeKeyspaceExhausted, "failed to generate a unique key", nil),
			expectedStatus: http.StatusInternalServerError,
			expectedDetail: "Internal server error",
		},
		{
			name:           "store timeout",
			body:           `{"target_url":"https://example.com"}`,
			failErr:        apperrors.NewDatabaseError("failed to create URL", context.DeadlineExceeded),
			expectedStatus: http.StatusServiceUnavailable,
			expectedDetail: "Service temporarily unavailable",
		},
		{
			name:           "unexpected error",
			body:           `{"target_url":"https://example.com"}`,
			failErr:        errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedDetail: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newMockURLService()
			service.failErr = tt.failErr
			router := setupRouter(service)

			w := serve(router, http.MethodPost, "/url", []byte(tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, tt.expectedDetail, decodeDetail(t, w))
				return
			}

			var info model.URLInfo
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
			assert.Equal(t, model.URLInfo{
				TargetURL: "https://example.com",
				IsActive:  true,
				Clicks:    0,
				URL:       "http://localhost:8080/aZ3kQ",
				AdminURL:  "http://localhost:8080/admin/aZ3kQ_Xb8mP2qR",
			}, info)
		})
	}
}

func TestURLHandler_RedirectURL(t *testing.T) {
	service := newMockURLService()
	service.add(model.URLEntry{Key: "aZ3kQ", SecretKey: "aZ3kQ_Xb8mP2qR", TargetURL: "https://example.com", IsActive: true})
	service.add(model.URLEntry{Key: "off00", SecretKey: "off00_Xb8mP2qR", TargetURL: "https://example.org", IsActive: false})
	router := setupRouter(service)

	t.Run("active entry redirects", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/aZ3kQ", nil)

		assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
		assert.Equal(t, "https://example.com", w.Header().Get("Location"))
		assert.Equal(t, int64(1), service.entries["aZ3kQ_Xb8mP2qR"].Clicks)
	})

	t.Run("inactive entry is not found", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/off00", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "URL 'http://example.com/off00' doesn't exist", decodeDetail(t, w))
	})

	t.Run("unknown key keeps the query string", func(t *testing.T) {
		w := serve(router, http.MethodGet, "/zzzzz?ref=mail", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "URL 'http://example.com/zzzzz?ref=mail' doesn't exist", decodeDetail(t, w))
	})
}

func TestURLHandler_Admin(t *testing.T) {
	service := newMockURLService()
	service.add(model.URLEntry{Key: "aZ3kQ", SecretKey: "aZ3kQ_Xb8mP2qR", TargetURL: "https://example.com", IsActive: true, Clicks: 4})
	router := setupRouter(service)

	w := serve(router, http.MethodGet, "/admin/aZ3kQ_Xb8mP2qR", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var info model.URLInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, int64(4), info.Clicks)
	assert.Equal(t, "http://localhost:8080/admin/aZ3kQ_Xb8mP2qR", info.AdminURL)

	w = serve(router, http.MethodDelete, "/admin/aZ3kQ_Xb8mP2qR", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully deactivated the shortened URL for 'https://example.com'", decodeDetail(t, w))
	assert.False(t, service.entries["aZ3kQ_Xb8mP2qR"].IsActive)

	w = serve(router, http.MethodPost, "/admin/aZ3kQ_Xb8mP2qR", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Successfully activated the shortened URL for 'https://example.com'", decodeDetail(t, w))
	assert.True(t, service.entries["aZ3kQ_Xb8mP2qR"].IsActive)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		w = serve(router, method, "/admin/nope_12345678", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, "URL 'http://example.com/admin/nope_12345678' doesn't exist", decodeDetail(t, w), method)
	}
}

func TestURLHandler_NoRoute(t *testing.T) {
	router := setupRouter(newMockURLService())

	w := serve(router, http.MethodGet, "/a/b/c", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, fmt.Sprintf(msgNotFound, "http://example.com/a/b/c"), decodeDetail(t, w))
}

func TestRequestURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://short.example/abc?x=1", nil)
	assert.Equal(t, "http://short.example/abc?x=1", requestURL(req))

	req.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://short.example/abc?x=1", requestURL(req))
}
