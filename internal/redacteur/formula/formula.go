// Пакет formula вычисляет арифметические выражения блока «formula».
//
// Вычисление проходит три шага: подстановка переменных по границам слов,
// проверка допустимых символов и разбор выражения рекурсивным спуском.
// Никакой динамический код не исполняется.
package formula

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

var (
	ErrForbiddenChars = errors.New("Formule invalide : caractères non autorisés")
	ErrEvaluation     = errors.New("Erreur d'évaluation de la formule")

	// ErrNotFinite - причина ошибки вычисления для NaN и ±Inf.
	ErrNotFinite = errors.New("result is not finite")
)

var allowedReg = regexp.MustCompile(`^[0-9\s+\-*/().%]*$`)

// Error - ошибка вычисления. Error() возвращает только сообщение Kind,
// подробности доступны через Detail.
type Error struct {
	Kind   error
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func evalError(format string, args ...any) *Error {
	return &Error{Kind: ErrEvaluation, Detail: fmt.Sprintf(format, args...)}
}

// Substitute подставляет значения переменных вместо их имен.
// Более длинные имена подставляются первыми, чтобы «AB» не затиралось подстановкой «A».
func Substitute(expr string, vars map[string]float64) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		reg, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
		if err != nil {
			continue
		}
		expr = reg.ReplaceAllLiteralString(expr, formatOperand(vars[name]))
	}
	return expr
}

func formatOperand(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}

// CheckAllowed проверяет, что выражение состоит только из цифр, пробелов и + - * / ( ) . %
func CheckAllowed(expr string) error {
	if !allowedReg.MatchString(expr) {
		return &Error{Kind: ErrForbiddenChars, Detail: expr}
	}
	return nil
}

// Evaluate вычисляет выражение с переменными. Нечисловой результат (NaN, ±Inf)
// считается ошибкой вычисления.
func Evaluate(expr string, vars map[string]float64) (float64, error) {
	substituted := Substitute(expr, vars)
	if err := CheckAllowed(substituted); err != nil {
		return 0, err
	}

	node, err := Parse(substituted)
	if err != nil {
		return 0, evalError("%s: %v", substituted, err)
	}

	v, err := node.Eval(nil)
	if err != nil {
		return 0, evalError("%s: %v", substituted, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		err := evalError("%s: result is not finite", substituted)
		err.Cause = ErrNotFinite
		return 0, err
	}
	return v, nil
}

// Recompute пересчитывает блок. При успехе записывает result и очищает error,
// при ошибке записывает error и оставляет прежний result. Пустая формула
// сбрасывает оба значения.
func Recompute(f *edtypes.Formula) error {
	if strings.TrimSpace(f.Formula) == "" {
		f.Result = nil
		f.Error = ""
		return nil
	}
	v, err := Evaluate(f.Formula, f.Variables)
	if err != nil {
		f.Error = err.Error()
		return err
	}
	f.Result = &v
	f.Error = ""
	return nil
}

// NeedsCompute сообщает, что у блока еще нет ни результата, ни ошибки.
func NeedsCompute(f *edtypes.Formula) bool {
	return f.Result == nil && f.Error == ""
}
