// Пакет datafetch загружает строки для блока «dataFetch»: GET произвольного
// endpoint или SQL-запрос через backend (POST /api/v1/redacteur/query).
package datafetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/hashicorp/go-retryablehttp"
)

const QueryPath = "/api/v1/redacteur/query"

const maxResponseSize = 10 << 20

var (
	ErrNoEndpoint = errors.New("Aucun endpoint configuré")
	ErrNoQuery    = errors.New("Aucune requête configurée")
	ErrBadPayload = errors.New("Réponse invalide : un tableau JSON est attendu")
)

// StatusError - ответ с кодом вне диапазона 2xx.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

type Options struct {
	RetryMax     int
	RetryWaitMin time.Duration
	Timeout      time.Duration
	Token        string
}

type Fetcher struct {
	client  *retryablehttp.Client
	backend *url.URL
	token   string
}

// NewFetcher создает загрузчик. Относительные endpoint и запросы к БД
// отправляются на backend.
func NewFetcher(backend string, opts Options) (*Fetcher, error) {
	u, err := url.Parse(backend)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}

	cl := retryablehttp.NewClient()
	cl.RetryMax = opts.RetryMax
	cl.RetryWaitMin = opts.RetryWaitMin
	if cl.RetryWaitMin == 0 {
		cl.RetryWaitMin = time.Second
	}
	if opts.Timeout > 0 {
		cl.HTTPClient.Timeout = opts.Timeout
	}
	cl.Logger = slog.Default()
	// Ответ с ошибкой нужен целиком, чтобы показать код статуса
	cl.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Fetcher{client: cl, backend: u, token: opts.Token}, nil
}

// Client возвращает HTTP клиент загрузчика для переиспользования.
func (f *Fetcher) Client() *retryablehttp.Client {
	return f.client
}

// Backend возвращает базовый адрес backend.
func (f *Fetcher) Backend() *url.URL {
	return f.backend
}

// Fetch выполняет загрузку согласно конфигурации блока.
func (f *Fetcher) Fetch(ctx context.Context, cfg *edtypes.DataFetch) ([]edtypes.Row, error) {
	var req *retryablehttp.Request
	var err error

	switch cfg.Source {
	case edtypes.SourceDatabase:
		if strings.TrimSpace(cfg.Query) == "" {
			return nil, ErrNoQuery
		}
		body, _ := json.Marshal(map[string]string{"query": cfg.Query})
		req, err = retryablehttp.NewRequestWithContext(ctx, http.MethodPost, f.Resolve(QueryPath), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
	default:
		if strings.TrimSpace(cfg.Endpoint) == "" {
			return nil, ErrNoEndpoint
		}
		req, err = retryablehttp.NewRequestWithContext(ctx, http.MethodGet, f.Resolve(cfg.Endpoint), nil)
		if err != nil {
			return nil, err
		}
	}

	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	rows, err := decodeRows(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	return Project(ctx, rows, cfg.Fields)
}

// Resolve превращает относительный путь в адрес на backend.
func (f *Fetcher) Resolve(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.IsAbs() || f.backend == nil {
		return endpoint
	}
	return f.backend.ResolveReference(u).String()
}

// decodeRows принимает массив JSON или объект {data: [...]}.
func decodeRows(r io.Reader) ([]edtypes.Row, error) {
	var payload any
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	if obj, ok := payload.(map[string]any); ok {
		payload = obj["data"]
	}

	arr, ok := payload.([]any)
	if !ok {
		return nil, ErrBadPayload
	}

	rows := make([]edtypes.Row, 0, len(arr))
	for _, item := range arr {
		if row, ok := item.(map[string]any); ok {
			rows = append(rows, row)
		} else {
			rows = append(rows, edtypes.Row{"value": item})
		}
	}
	return rows, nil
}
