package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/marketplace-backend/internal/models"
)

func newTestClient(t *testing.T, serverURL string, onLoginRedirect func()) (*Client, *CredentialStore) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "session.json")
	store, err := NewCredentialStore(path)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(serverURL, store, logger, onLoginRedirect), store
}

func TestLogin_Success(t *testing.T) {
	// Сценарий из приёмки: вход с вложенным конвертом data
	// даёт сессию user.id=1, token="abc".
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "login must not carry a bearer token")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","data":{"user":{"id":"1","role":"client"},"token":"abc"}}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, nil)

	session, err := client.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "1", session.User.ID)
	assert.Equal(t, "abc", session.Token)

	saved, ok := store.Current()
	require.True(t, ok, "session should be persisted")
	assert.Equal(t, "abc", saved.Token)
}

func TestLogin_FlatResponseBody(t *testing.T) {
	// Бэкенды без конверта data отвечают плоским {"user":...,"token":...};
	// клиент принимает обе формы.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"5","role":"client"},"token":"flat.jwt"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, nil)

	session, err := client.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "5", session.User.ID)
	assert.Equal(t, "flat.jwt", session.Token)

	saved, ok := store.Current()
	require.True(t, ok)
	assert.Equal(t, "flat.jwt", saved.Token)
}

func TestLogin_TokenWithoutUser(t *testing.T) {
	// 2xx с токеном, но без пользователя — ошибка без изменения сессии.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK","data":{"token":"abc"}}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, nil)

	_, err := client.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "x"})
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, ok := store.Current()
	assert.False(t, ok, "failed login must not create a session")
}

func TestLogin_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"Error","error":"invalid credentials"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, nil)

	_, err := client.Login(context.Background(), LoginParams{Email: "a@b.com", Password: "bad"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, ok := store.Current()
	assert.False(t, ok)
}

func TestRegister_AgentRouting(t *testing.T) {
	// Агент уходит на агентскую конечную точку; отсутствующие поля
	// комиссии и выплат не отправляются вовсе.
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"status":"OK","data":{"user":{"id":"7","role":"agent"},"token":"agent.jwt"}}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, nil)

	session, err := client.Register(context.Background(), RegisterParams{
		Email:    "agent@example.com",
		Username: "agent1",
		Password: "secret12",
		Phone:    "+70000000001",
		Role:     models.RoleAgent,
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/agents/register-new", gotPath)
	assert.Equal(t, "agent.jwt", session.Token)

	_, hasCommission := gotBody["commissionRate"]
	assert.False(t, hasCommission, "absent commission rate must be omitted, not fabricated")
	_, hasPayout := gotBody["payoutMethod"]
	assert.False(t, hasPayout)
}

func TestRegister_ClientAdminGeolocationDefaults(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register/client-admin", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"status":"OK","data":{"user":{"id":"2","role":"client_admin"},"token":"admin.jwt"}}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, nil)

	_, err := client.Register(context.Background(), RegisterParams{
		Email:    "admin@example.com",
		Username: "admin1",
		Password: "secret12",
		Role:     models.RoleClientAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, gotBody["latitude"])
	assert.Equal(t, 0.0, gotBody["longitude"])
}

func TestSessionExpired_ClearsOncePerRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(StatusSessionExpired)
	}))
	defer server.Close()

	var redirects atomic.Int32
	client, store := newTestClient(t, server.URL, func() {
		redirects.Add(1)
	})
	require.NoError(t, store.Save(UserRecord{ID: "1", Role: models.RoleClient}, "stale.jwt"))

	req := &request{method: http.MethodGet, path: "/api/products"}

	err := client.do(context.Background(), req, nil)
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, ok := store.Current()
	assert.False(t, ok, "498 must clear stored credentials")
	assert.Equal(t, int32(1), redirects.Load())

	// Повторный проход того же запроса не повторяет очистку и редирект.
	err = client.do(context.Background(), req, nil)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), redirects.Load(), "login redirect must fire exactly once per originating request")
}

func TestUnauthorized_KeepsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var redirects atomic.Int32
	client, store := newTestClient(t, server.URL, func() {
		redirects.Add(1)
	})
	require.NoError(t, store.Save(UserRecord{ID: "1", Role: models.RoleClient}, "live.jwt"))

	err := client.do(context.Background(), &request{method: http.MethodGet, path: "/api/products"}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, ok := store.Current()
	assert.True(t, ok, "401 must not clear stored credentials")
	assert.Equal(t, int32(0), redirects.Load())
}

func TestBearerInjection(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, nil)
	require.NoError(t, store.Save(UserRecord{ID: "1", Role: models.RoleClient}, "live.jwt"))

	err := client.do(context.Background(), &request{method: http.MethodGet, path: "/api/products"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer live.jwt", gotAuth)
}

func TestCredentialStore_HydrateAndExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	store, err := NewCredentialStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(UserRecord{ID: "1", Role: models.RoleClient}, "persisted.jwt"))

	// Новый экземпляр гидрирует сессию из файла без сети.
	reloaded, err := NewCredentialStore(path)
	require.NoError(t, err)
	session, ok := reloaded.Current()
	require.True(t, ok)
	assert.Equal(t, "persisted.jwt", session.Token)

	// Просроченная запись отбрасывается при загрузке.
	stale := Session{
		User:    UserRecord{ID: "1"},
		Token:   "old.jwt",
		SavedAt: time.Now().Add(-SessionTTL - time.Hour),
	}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	expired, err := NewCredentialStore(path)
	require.NoError(t, err)
	_, ok = expired.Current()
	assert.False(t, ok, "expired session must not hydrate")
}
