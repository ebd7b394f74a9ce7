// Пакет reference строит ссылки блока «reference» и загружает метаданные
// отчетов и документов.
package reference

import (
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
	"golang.org/x/sync/singleflight"
)

const (
	ReportsPath   = "/api/v1/redacteur/reports/"
	DocumentsPath = "/api/v1/redacteur/documents/"

	ReportRoute   = "/redacteur/"
	DocumentRoute = "/documents/"

	DefaultTimeout = 30 * time.Second
)

// ErrInvalidMetadata - ответ backend не удалось разобрать.
var ErrInvalidMetadata = errors.New("métadonnées invalides")

// StatusError - ответ backend с кодом вне диапазона 2xx.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// SectionAnchor возвращает якорь раздела на странице.
func SectionAnchor(id string) string {
	return "#section-" + id
}

// URL строит адрес перехода по ссылке в зависимости от типа.
func URL(r *edtypes.Reference) string {
	switch r.ReferenceType {
	case edtypes.RefReport:
		if r.ReferenceId == "" {
			return ""
		}
		u := ReportRoute + url.PathEscape(r.ReferenceId)
		if r.SectionId != "" {
			u += SectionAnchor(r.SectionId)
		}
		return u
	case edtypes.RefDocument:
		if r.ReferenceId == "" {
			return ""
		}
		return DocumentRoute + url.PathEscape(r.ReferenceId)
	case edtypes.RefSection:
		id := r.SectionId
		if id == "" {
			id = r.ReferenceId
		}
		if id == "" {
			return ""
		}
		return SectionAnchor(id)
	case edtypes.RefExternal:
		return r.ReferenceId
	}
	return ""
}

// Label возвращает подпись ссылки: заголовок метаданных, referenceTitle или идентификатор.
func Label(r *edtypes.Reference) string {
	if r.ReferenceType != edtypes.RefExternal && r.Metadata != nil && r.Metadata.Title != "" {
		return r.Metadata.Title
	}
	if r.ReferenceTitle != "" {
		return r.ReferenceTitle
	}
	if r.ReferenceId != "" {
		return r.ReferenceId
	}
	return "Référence non configurée"
}

// NeedsMetadata сообщает, нужно ли загружать метаданные для ссылки.
// Внешние ссылки и разделы метаданных не имеют.
func NeedsMetadata(r *edtypes.Reference) bool {
	switch r.ReferenceType {
	case edtypes.RefReport, edtypes.RefDocument:
		return r.ReferenceId != ""
	}
	return false
}

// Configure применяет новую конфигурацию. Если цель ссылки изменилась,
// метаданные сбрасываются; возвращает true, когда нужна повторная загрузка.
func Configure(cur *edtypes.Reference, next *edtypes.Reference) bool {
	changed := cur.ReferenceType != next.ReferenceType ||
		cur.ReferenceId != next.ReferenceId ||
		cur.SectionId != next.SectionId

	next.ID = cur.ID
	if changed {
		next.Metadata = nil
		next.Error = ""
	} else if next.Metadata == nil {
		next.Metadata = cur.Metadata
	}
	*cur = *next

	return changed && NeedsMetadata(cur)
}

// Resolver загружает метаданные с backend. Одновременные запросы одной цели
// из разных блоков объединяются в один. Общий запрос не зависит от контекста
// отдельного блока и ограничен только timeout.
type Resolver struct {
	client  *retryablehttp.Client
	backend *url.URL
	token   string
	timeout time.Duration

	group singleflight.Group
}

// NewResolver создает загрузчик метаданных. Пустой token - запросы без авторизации,
// timeout <= 0 заменяется на DefaultTimeout.
func NewResolver(client *retryablehttp.Client, backend *url.URL, token string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{client: client, backend: backend, token: token, timeout: timeout}
}

// metadataPayload - ответ backend, поля берутся по первому непустому варианту.
type metadataPayload struct {
	Title         string `json:"title"`
	Name          string `json:"name"`
	CreatedByName string `json:"created_by_name"`
	CreatedAt     string `json:"created_at"`
	Description   string `json:"description"`
	Excerpt       string `json:"excerpt"`
}

func (p metadataPayload) metadata() *edtypes.ReferenceMetadata {
	return &edtypes.ReferenceMetadata{
		Title:     firstNonEmpty(p.Title, p.Name),
		Author:    p.CreatedByName,
		CreatedAt: p.CreatedAt,
		Excerpt:   firstNonEmpty(p.Description, p.Excerpt),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Apply записывает результат загрузки метаданных в блок.
func Apply(ref *edtypes.Reference, meta *edtypes.ReferenceMetadata, err error) {
	if err != nil {
		ref.Error = Message(err)
		return
	}
	ref.Metadata = meta
	ref.Error = ""
}

// Resolve загружает метаданные ссылки. Для типов без метаданных возвращает nil, nil.
func (r *Resolver) Resolve(ctx context.Context, ref *edtypes.Reference) (*edtypes.ReferenceMetadata, error) {
	if !NeedsMetadata(ref) {
		return nil, nil
	}

	base := ReportsPath
	if ref.ReferenceType == edtypes.RefDocument {
		base = DocumentsPath
	}
	target := r.backend.ResolveReference(&url.URL{
		Path:    base + ref.ReferenceId,
		RawPath: base + url.PathEscape(ref.ReferenceId),
	})

	cfg := *ref
	ch := r.group.DoChan(target.String(), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		return r.fetch(fctx, &cfg, target)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		meta := *res.Val.(*edtypes.ReferenceMetadata)
		return &meta, nil
	}
}

// Message переводит ошибку загрузки метаданных в текст для пользователя.
func Message(err error) string {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		switch se.Code {
		case http.StatusNotFound:
			return "Référence introuvable"
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Accès refusé à la référence"
		}
		return fmt.Sprintf("Erreur du serveur (HTTP %d)", se.Code)
	case errors.Is(err, ErrInvalidMetadata):
		return "Métadonnées de la référence invalides"
	case errors.Is(err, context.DeadlineExceeded):
		return "Délai d'attente dépassé"
	case errors.Is(err, context.Canceled):
		return "Requête annulée"
	}
	return "Service de références indisponible"
}

func (r *Resolver) fetch(ctx context.Context, ref *edtypes.Reference, target *url.URL) (*edtypes.ReferenceMetadata, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	var payload metadataPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Debug("Decode reference metadata", "type", ref.ReferenceType, "id", ref.ReferenceId, "err", err)
		return nil, fmt.Errorf("%w : %w", ErrInvalidMetadata, err)
	}
	return payload.metadata(), nil
}
