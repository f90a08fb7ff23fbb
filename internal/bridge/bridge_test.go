package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restopos/internal/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *HTTPBridge {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewHTTP(ts.URL, 5*time.Second)
}

func TestCallPostsToInvokePath(t *testing.T) {
	var gotPath, gotRequestID string
	var gotBody map[string]any
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get("X-Request-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	})

	var out struct {
		OK bool `json:"ok"`
	}
	err := b.Call(context.Background(), "cash_get_active_shift", map[string]string{"session_id": "s1"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "/invoke/cash_get_active_shift", gotPath)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "s1", gotBody["session_id"])
	assert.True(t, out.OK)
}

func TestCallNilOutSkipsDecode(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"whatever": 1}`))
	})
	assert.NoError(t, b.Call(context.Background(), "logout", map[string]string{}, nil))
}

func TestUnauthorizedBecomesSessionInvalid(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": "Sesión inválida o expirada"}`))
	})

	err := b.Call(context.Background(), "cash_open_shift", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, apierror.IsSessionInvalid(err))
	assert.Equal(t, "Sesión inválida o expirada", err.Error())
}

func TestUnauthorizedWithoutBodyGetsDefaultDetail(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := b.Call(context.Background(), "cash_open_shift", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, apierror.IsSessionInvalid(err))
	assert.Equal(t, "Sesión inválida o expirada", err.Error())
}

func TestRejectionDetailTravelsVerbatim(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Ya existe una caja abierta"}`))
	})

	err := b.Call(context.Background(), "cash_open_shift", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, apierror.IsRejected(err))
	assert.Equal(t, "Ya existe una caja abierta", err.Error())
}

func TestSessionMessageIn400IsStillSessionInvalid(t *testing.T) {
	// Some backend builds answer 400 instead of 401 for a stale session;
	// the message pattern decides.
	b := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail": "Sesión expirada, vuelva a ingresar"}`))
	})

	err := b.Call(context.Background(), "cash_close_shift", map[string]string{}, nil)
	require.Error(t, err)
	assert.True(t, apierror.IsSessionInvalid(err))
}

func TestServerErrorIsGenericTransport(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail": "panic: index out of range"}`))
	})

	err := b.Call(context.Background(), "cash_open_shift", map[string]string{}, nil)
	require.Error(t, err)
	assert.Equal(t, apierror.KindTransport, apierror.KindOf(err))
	// Internals never leak to the operator.
	assert.Equal(t, "Error interno del servidor", err.Error())
}

func TestConnectionRefusedIsTransport(t *testing.T) {
	b := NewHTTP("http://127.0.0.1:1", 2*time.Second)
	err := b.Call(context.Background(), "login", map[string]string{}, nil)
	require.Error(t, err)
	assert.Equal(t, apierror.KindTransport, apierror.KindOf(err))
	assert.Equal(t, "Error de conexión con el servidor", err.Error())
}

func TestMalformedSuccessBodyIsTransport(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"truncated": `))
	})

	var out map[string]any
	err := b.Call(context.Background(), "cash_get_active_shift", map[string]string{}, &out)
	require.Error(t, err)
	assert.Equal(t, apierror.KindTransport, apierror.KindOf(err))
}
