package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/GiridharSalana/ShreeAdvaya/internal/domain"
)

// кол-во повторов сверх первой попытки (итого до 3 запросов)
const maxRetries = 2

// API — клиент админ-бэкенда для CLI/фронтовых утилит. Сетевые сбои,
// 5xx и битые ответы ретраятся с экспоненциальной паузой; 401 не
// ретраится — сессия сбрасывается, оператору нужен новый логин.
type API struct {
	base string
	hc   *http.Client

	mu    sync.Mutex
	token domain.Token
}

type LoginResult struct {
	Token     domain.Token    `json:"token"`
	User      domain.AuthUser `json:"user"`
	ExpiresIn int             `json:"expires_in"`
}

func NewAPI(baseURL string) *API {
	return &API{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Token возвращает текущий токен сессии ("" — не залогинены).
func (c *API) Token() domain.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *API) setToken(t domain.Token) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

// Login получает токен и запоминает его для последующих вызовов.
func (c *API) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var res LoginResult
	body := map[string]string{"username": username, "password": password}
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/login", body, &res); err != nil {
		return LoginResult{}, err
	}
	c.setToken(res.Token)
	return res, nil
}

// Commit отправляет накопленный батч. Успешный ответ сбрасывает
// аккумулятор; повторная отправка того же Snapshot после сетевого
// таймаута может продублировать create-ы — это цена отсутствия
// идемпотентного ключа на сервере.
func (c *API) Commit(ctx context.Context, acc *Accumulator) (domain.BatchResult, error) {
	var res domain.BatchResult
	snap := acc.Snapshot()
	if len(snap) == 0 {
		return domain.BatchResult{Committed: false}, nil
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/batch", snap, &res); err != nil {
		return domain.BatchResult{}, err
	}
	acc.Reset()
	return res, nil
}

// Collection читает публичную коллекцию.
func (c *API) Collection(ctx context.Context, name string) ([]domain.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/v1/"+name, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("collection %s: %w", name, statusErr(resp.StatusCode))
	}
	var items []domain.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// call — один логический вызов с ретраями и разбором конверта.
func (c *API) call(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if t := c.Token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+string(t))
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			return err // сетевые сбои ретраим
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			c.setToken("")
			return backoff.Permanent(domain.ErrUnauth)
		case resp.StatusCode >= 500:
			return statusErr(resp.StatusCode)
		case resp.StatusCode >= 400:
			var env domain.APIEnvelope
			if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && env.Error != nil {
				return backoff.Permanent(fmt.Errorf("%s: %w", env.Error.Text, statusErr(resp.StatusCode)))
			}
			return backoff.Permanent(statusErr(resp.StatusCode))
		}

		var env domain.APIEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return err // обрезанный ответ — можно повторить
		}
		if out == nil {
			return nil
		}
		raw := env.Response
		if raw == nil {
			raw = env.Data
		}
		buf, err := json.Marshal(raw)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := json.Unmarshal(buf, out); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	return backoff.Retry(attempt, bo)
}

func statusErr(code int) error {
	switch {
	case code == http.StatusNotFound:
		return domain.ErrNotFound
	case code == http.StatusForbidden:
		return domain.ErrForbidden
	case code == http.StatusConflict:
		return domain.ErrConflict
	case code >= 500:
		return domain.ErrUpstream
	default:
		return domain.ErrBadParams
	}
}
