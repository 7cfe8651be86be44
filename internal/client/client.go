package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/marketplace-backend/internal/lib/sl"
)

// StatusSessionExpired — нестандартный код истечения сессии.
const StatusSessionExpired = 498

// Ошибки клиента API.
var (
	// ErrSessionExpired возвращается на 498: учётные данные уже очищены,
	// пользователя нужно отправить на вход.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnauthorized возвращается на 401. Сессия при этом не трогается.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMalformedResponse возвращается на 2xx без ожидаемых полей.
	ErrMalformedResponse = errors.New("malformed response body")
)

// Client — клиент REST API маркетплейса. Подставляет bearer-токен из
// хранилища во все запросы, кроме конечных точек входа и регистрации,
// и обрабатывает коды 498 и 401.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *CredentialStore
	log        *slog.Logger

	// onLoginRedirect вызывается ровно один раз на исходный запрос,
	// получивший 498, после очистки учётных данных.
	onLoginRedirect func()
}

// New создает клиент API с хранилищем учётных данных.
// onLoginRedirect может быть nil.
func New(baseURL string, store *CredentialStore, log *slog.Logger, onLoginRedirect func()) *Client {
	return &Client{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		store:           store,
		log:             log,
		onLoginRedirect: onLoginRedirect,
	}
}

// request — один логический исходящий запрос. Флаг retried гарантирует,
// что очистка сессии по 498 выполнится не более одного раза, даже если
// запрос проходит через do повторно.
type request struct {
	method  string
	path    string
	body    any
	noAuth  bool
	retried bool
}

// errorEnvelope — формат ошибки бэкенда: {"status":"Error","error":"..."}.
type errorEnvelope struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// do выполняет запрос и декодирует тело ответа в out (если out != nil).
// Все ошибки бэкенда нормализуются в error с человекочитаемым сообщением.
func (c *Client) do(ctx context.Context, r *request, out any) error {
	const op = "client.do"

	var buf bytes.Buffer
	if r.body != nil {
		if err := json.NewEncoder(&buf).Encode(r.body); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, &buf)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if !r.noAuth {
		if session, ok := c.store.Current(); ok {
			req.Header.Set("Authorization", "Bearer "+session.Token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == StatusSessionExpired:
		if !r.retried {
			r.retried = true
			if err := c.store.Clear(); err != nil {
				c.log.Error("failed to clear expired session", sl.Err(err))
			}
			if c.onLoginRedirect != nil {
				c.onLoginRedirect()
			}
		}
		return ErrSessionExpired
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode >= 400:
		return errors.New(extractErrorMessage(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// extractErrorMessage достает сообщение из тела ошибки бэкенда
// или возвращает общий текст, если тело нечитаемо.
func extractErrorMessage(body io.Reader) string {
	var envelope errorEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return "request failed"
}
