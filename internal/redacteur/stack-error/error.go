// Пакет stack_error привязывает ошибки к месту в документе (документ, блок)
// и к трассе вызовов и пишет их в лог одной записью.
package stack_error

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/labstack/echo/v4"
)

// TrackerError - ошибка с трассой и адресом блока, в котором она возникла.
type TrackerError struct {
	DocId     string
	BlockId   string
	BlockType string

	Context  map[string]any
	ErrStack []string
	cause    error
}

// TrackErrorStack добавляет в трассу место вызова. Повторный вызов для
// TrackerError продолжает ту же трассу.
func TrackErrorStack(err error) *TrackerError {
	var te *TrackerError
	if !errors.As(err, &te) {
		te = &TrackerError{Context: make(map[string]any), cause: err}
	}
	te.ErrStack = append(te.ErrStack, caller(2))
	return te
}

// InBlock задает адрес блока. Уже заданные поля не перезаписываются.
func (te *TrackerError) InBlock(docId, blockId, blockType string) *TrackerError {
	if te.DocId == "" {
		te.DocId = docId
	}
	if te.BlockId == "" {
		te.BlockId = blockId
	}
	if te.BlockType == "" {
		te.BlockType = blockType
	}
	return te
}

func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	if _, ok := te.Context[k]; !ok {
		te.Context[k] = v
	}
	return te
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

// GetError пишет ошибку в лог. Для запроса docId и blockId берутся из
// параметров маршрута, если не заданы явно. c может быть nil для фоновых задач.
// Отмена и истечение контекста пишутся на уровне Warn.
func GetError(c echo.Context, err error) {
	var te *TrackerError
	if !errors.As(err, &te) {
		te = &TrackerError{Context: make(map[string]any), cause: err}
	}

	if c != nil {
		te.InBlock(c.Param("docId"), c.Param("blockId"), "")
	}
	attrs := te.attrs()
	if c != nil {
		attrs = append(attrs,
			slog.String("method", c.Request().Method),
			slog.String("url", c.Request().URL.String()))
		if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
	}

	level := slog.LevelError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		level = slog.LevelWarn
	}
	slog.Default().Log(context.Background(), level, "redacteur error", attrs...)
}

func (te *TrackerError) attrs() []any {
	res := []any{slog.String("err", te.Error())}
	if te.DocId != "" {
		res = append(res, slog.String("doc_id", te.DocId))
	}
	if te.BlockId != "" {
		res = append(res, slog.String("block_id", te.BlockId))
	}
	if te.BlockType != "" {
		res = append(res, slog.String("block_type", te.BlockType))
	}
	for k, v := range te.Context {
		res = append(res, slog.Any(k, v))
	}
	if len(te.ErrStack) > 0 {
		res = append(res, slog.String("trace", strings.Join(te.ErrStack, " <- ")))
	}
	return res
}

func caller(skip int) string {
	pc, path, no, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	_, file := filepath.Split(path)
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		return fmt.Sprintf("%s:%d %s", file, no, name)
	}
	return fmt.Sprintf("%s:%d", file, no)
}
