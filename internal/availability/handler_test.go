package availability

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerGet(t *testing.T) {
	h := NewHandler(newTestService(t, &stubStore{}), nil)

	req := httptest.NewRequest(http.MethodGet, "/availability?days=3", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var w Window
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
	assert.Equal(t, "Europe/Madrid", w.Timezone)
	assert.Len(t, w.Days, 3)
}

func TestHandlerGetDefaultsDays(t *testing.T) {
	h := NewHandler(newTestService(t, &stubStore{}), nil)

	req := httptest.NewRequest(http.MethodGet, "/availability", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var w Window
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &w))
	assert.Len(t, w.Days, 14)
}

func TestHandlerGetBadDays(t *testing.T) {
	h := NewHandler(newTestService(t, &stubStore{}), nil)

	req := httptest.NewRequest(http.MethodGet, "/availability?days=soon", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
	assert.Equal(t, "days", body["field"])
}

func TestHandlerGetStorageError(t *testing.T) {
	h := NewHandler(newTestService(t, &stubStore{err: errors.New("boom")}), nil)

	req := httptest.NewRequest(http.MethodGet, "/availability", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.NotContains(t, body["message"], "boom")
}
