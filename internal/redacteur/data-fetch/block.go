package datafetch

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

// Apply записывает результат загрузки в блок. При ошибке заполняется только
// error, ранее загруженные data и lastFetch не меняются.
func Apply(b *edtypes.DataFetch, rows []edtypes.Row, err error, now time.Time) {
	if err != nil {
		b.Error = Message(err)
		return
	}
	if rows == nil {
		rows = make([]edtypes.Row, 0)
	}
	b.Data = rows
	b.LastFetch = &now
	b.Error = ""
}

// Message переводит ошибку загрузки в текст для пользователя.
func Message(err error) string {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "Délai d'attente dépassé"
	case errors.Is(err, context.Canceled):
		return "Requête annulée"
	}
	return err.Error()
}

// Interval возвращает период автообновления или 0.
func Interval(b *edtypes.DataFetch) time.Duration {
	if b.Refresh <= 0 {
		return 0
	}
	return time.Duration(b.Refresh) * time.Minute
}

// SameSource сообщает, что изменение конфигурации не затрагивает источник данных.
func SameSource(a, b *edtypes.DataFetch) bool {
	return a.Source == b.Source && a.Endpoint == b.Endpoint && a.Query == b.Query &&
		slices.Equal(a.Fields, b.Fields)
}

// ForStorage возвращает копию блока для сохранения: без cache данные не сохраняются.
func ForStorage(b *edtypes.DataFetch) *edtypes.DataFetch {
	c := *b
	if !b.Cache {
		c.Data = nil
		c.LastFetch = nil
	}
	return &c
}

// Configured сообщает, задан ли источник: запрос для database, адрес для api и file.
func Configured(b *edtypes.DataFetch) bool {
	if b.Source == edtypes.SourceDatabase {
		return b.Query != ""
	}
	return b.Endpoint != ""
}
