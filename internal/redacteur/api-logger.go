// Возврат ошибок API с нужным кодом HTTP и запись их в лог.
//
// Основные возможности:
//   - Единый формат ответа apierrors.DefinedError.
//   - Перевод ошибок пакетов редактора в ошибки каталога.
//   - Запись неизвестных ошибок в лог с методом, адресом, автором и местом вызова.
package redacteur

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/apierrors"
	blockruntime "github.com/aisa-it/redacteur/internal/redacteur/block-runtime"
	"github.com/aisa-it/redacteur/internal/redacteur/blocks"
	"github.com/aisa-it/redacteur/internal/redacteur/comments"
	filestorage "github.com/aisa-it/redacteur/internal/redacteur/file-storage"
	"github.com/aisa-it/redacteur/internal/redacteur/formula"
	"github.com/aisa-it/redacteur/internal/redacteur/signature"
	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// Возврат ошибки 400 с универсальным сообщением
func EError(c echo.Context, err error) error {
	var customErr apierrors.DefinedError
	if errors.As(err, &customErr) {
		return EErrorDefined(c, customErr)
	}
	if defined, ok := definedError(err); ok {
		return EErrorDefined(c, defined)
	}

	var user *Author
	if ctx, ok := c.(AuthContext); ok {
		user = ctx.User
	} else if ctx, ok := c.(DocContext); ok {
		user = ctx.User
	}
	if err == nil {
		slog.Error("Unknown API error",
			"method", c.Request().Method,
			"url", c.Request().URL,
			"user", user,
			getCallerFile(),
		)
	} else {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			"url", c.Request().URL,
			"user", user,
			getCallerFile(),
		)
	}
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// Возврат ошибки <status> без сообщения (ошибки echo: 404, 405, 413)
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	if status == http.StatusRequestEntityTooLarge {
		return EErrorDefined(c, apierrors.ErrEntityToLarge)
	}
	if err != nil && status != http.StatusNotFound {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			slog.Int("status", status),
			"url", c.Request().URL,
			getCallerFile(),
		)
	}
	er := apierrors.ErrGeneric
	er.StatusCode = status
	if err != nil {
		er.Err = err.Error()
	}
	return EErrorDefined(c, er)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением об ошибке. Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	// If unknown code use 400 Bad Request
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

// definedError переводит ошибки пакетов редактора в ошибки каталога.
func definedError(err error) (apierrors.DefinedError, bool) {
	var validationErrors validator.ValidationErrors
	switch {
	case err == nil:
		return apierrors.DefinedError{}, false
	case errors.As(err, &validationErrors):
		fields := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return apierrors.ErrValidation.WithFormattedMessage(strings.Join(fields, ", ")), true

	case errors.Is(err, blockruntime.ErrBlockNotFound):
		return apierrors.ErrBlockNotFound, true
	case errors.Is(err, blockruntime.ErrNotRefreshable):
		return apierrors.ErrBlockNotRefresh, true
	case errors.Is(err, blockruntime.ErrBadPosition):
		return apierrors.ErrBlockPosition, true
	case errors.Is(err, blockruntime.ErrUnknownCommand):
		return apierrors.ErrCommandUnknown.WithFormattedMessage(detail(err, blockruntime.ErrUnknownCommand)), true
	case errors.Is(err, blockruntime.ErrClosed):
		return apierrors.ErrServiceClosed, true
	case errors.Is(err, blocks.ErrUnknownBlock):
		return apierrors.ErrBlockTypeUnknown.WithFormattedMessage(detail(err, blocks.ErrUnknownBlock)), true
	case errors.Is(err, blocks.ErrInvalidAttrs):
		return apierrors.ErrBlockAttrsInvalid.WithFormattedMessage(detail(err, blocks.ErrInvalidAttrs)), true

	case errors.Is(err, formula.ErrForbiddenChars):
		return apierrors.ErrFormulaForbiddenChars, true
	case errors.Is(err, formula.ErrNotFinite):
		return apierrors.ErrFormulaNotFinite, true
	case errors.Is(err, formula.ErrEvaluation):
		return apierrors.ErrFormulaEvaluation, true

	case errors.Is(err, comments.ErrEmpty):
		return apierrors.ErrCommentEmpty, true
	case errors.Is(err, comments.ErrNotFound):
		return apierrors.ErrCommentNotFound, true
	case errors.Is(err, comments.ErrThreadResolved):
		return apierrors.ErrCommentResolved, true
	case errors.Is(err, comments.ErrBadSelection):
		return apierrors.ErrCommentSelection, true

	case errors.Is(err, signature.ErrEmptyDrawing):
		return apierrors.ErrSignatureEmpty, true
	case errors.Is(err, signature.ErrAlreadySigned):
		return apierrors.ErrSignatureAlreadySign, true
	case errors.Is(err, signature.ErrUnsupportedImage):
		return apierrors.ErrSignatureImage, true
	case errors.Is(err, signature.ErrTooManyPoints):
		return apierrors.ErrSignatureTooLong, true
	case errors.Is(err, filestorage.ErrNotFound):
		return apierrors.ErrFileNotFound, true
	}
	return apierrors.DefinedError{}, false
}

// detail возвращает текст ошибки без префикса sentinel-ошибки.
func detail(err error, sentinel error) string {
	return strings.TrimPrefix(strings.TrimPrefix(err.Error(), sentinel.Error()), ": ")
}

// getCallerFile возвращает строку с именем файла и номером строки, из которых была вызвана функция.
func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
