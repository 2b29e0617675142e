package bookings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casaondara/booking-platform/internal/schedule"
)

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandlerCreateReturns201(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubLimiter{max: 2}, nil)
	h := NewHandler(svc, nil)

	rec := postJSON(t, h.Create, validRequest())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res ReserveResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "lucia@example.com", res.CustomerKey)
	assert.Equal(t, 120, res.BlockMinutes)
	assert.NotNil(t, res.Start)
}

func TestHandlerCreateInvalidJSON(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubLimiter{max: 2}, nil)
	h := NewHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var rej Rejection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rej))
	assert.Equal(t, CodeValidation, rej.Code)
}

func TestHandlerCreateValidationError(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubLimiter{max: 2}, nil)
	h := NewHandler(svc, nil)

	body := validRequest()
	body.Phone = "12345"
	rec := postJSON(t, h.Create, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var rej Rejection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rej))
	assert.Equal(t, CodeValidation, rej.Code)
	assert.Equal(t, "phone", rej.Field)
}

func TestHandlerCreateRateLimited(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubLimiter{max: 0}, nil)
	h := NewHandler(svc, nil)

	rec := postJSON(t, h.Create, validRequest())
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	var rej Rejection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rej))
	assert.Equal(t, CodeRateLimit, rej.Code)
}

func TestHandlerCreateSlotTaken(t *testing.T) {
	store := &stubStore{busy: []schedule.Interval{{
		Kind:  schedule.KindBooking,
		Start: time.Date(2026, time.January, 20, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2026, time.January, 20, 11, 0, 0, 0, time.UTC),
	}}}
	svc := newTestService(store, &stubLimiter{max: 2}, nil)
	h := NewHandler(svc, nil)

	rec := postJSON(t, h.Create, validRequest())
	require.Equal(t, http.StatusConflict, rec.Code)
	var rej Rejection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rej))
	assert.Equal(t, CodeSlotTaken, rej.Code)
}

func TestHandlerCreateStoreErrorReturns500(t *testing.T) {
	store := &stubStore{createErr: assertableErr("db down")}
	svc := newTestService(store, &stubLimiter{max: 2}, nil)
	h := NewHandler(svc, nil)

	rec := postJSON(t, h.Create, validRequest())
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.NotContains(t, body["message"], "db down")
}

func TestHandlerEnquireReturns201(t *testing.T) {
	svc := newTestService(&stubStore{}, &stubLimiter{max: 0}, nil)
	h := NewHandler(svc, nil)

	body := validRequest()
	body.Start = ""
	rec := postJSON(t, h.Enquire, body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var res ReserveResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Nil(t, res.Start)
	assert.Equal(t, StatusEnquiry, res.Booking.Status)
}

type assertableErr string

func (e assertableErr) Error() string { return string(e) }
