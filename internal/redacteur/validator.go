// Проверка тел запросов через go-playground/validator.
//
// Дополнительные проверки:
//   - docTitle: непустой заголовок документа без управляющих символов, до 150 символов.
//   - editorCommand: команда редактора из каталога блоков или служебная команда.
package redacteur

import (
	"strings"
	"unicode"
	"unicode/utf8"

	blockruntime "github.com/aisa-it/redacteur/internal/redacteur/block-runtime"
	"github.com/aisa-it/redacteur/internal/redacteur/blocks"
	"github.com/aisa-it/redacteur/internal/redacteur/utils"
	"github.com/go-playground/validator"
)

var runtimeCommands = []string{
	blockruntime.CommandUpdate,
	blockruntime.CommandDelete,
	blockruntime.CommandRefresh,
	blockruntime.CommandEditChartData,
}

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	if err := v.RegisterValidation("docTitle", docTitleValidator); err != nil {
		return nil
	}
	if err := v.RegisterValidation("editorCommand", editorCommandValidator); err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

func docTitleValidator(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" || utf8.RuneCountInString(value) > 150 {
		return false
	}
	return strings.IndexFunc(value, unicode.IsControl) < 0
}

func editorCommandValidator(fl validator.FieldLevel) bool {
	command := fl.Field().String()
	if utils.CheckInSlice(runtimeCommands, command) {
		return true
	}
	_, ok := blocks.LookupCommand(command)
	return ok
}
