package redacteur

import (
	"net/http"
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/dto"
	"github.com/aisa-it/redacteur/internal/redacteur/formula"
	"github.com/labstack/echo/v4"
)

func (s *Services) AddFormulaServices(g *echo.Group) {
	g.POST("formula/evaluate/", s.evaluateFormula)
}

// evaluateFormula godoc
// @id evaluateFormula
// @Summary formula: предпросмотр
// @Description Вычисляет формулу без сохранения в документ. Ошибка вычисления возвращается в поле error с кодом 200.
// @Tags Formula
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param data body FormulaRequest true "формула"
// @Success 200 {object} dto.FormulaResult "результат"
// @Failure 400 {object} apierrors.DefinedError "Ошибка валидации"
// @Failure 401 {object} apierrors.DefinedError "Необходима авторизация"
// @Router /api/v1/redacteur/formula/evaluate/ [post]
func (s *Services) evaluateFormula(c echo.Context) error {
	var req FormulaRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return EError(c, err)
	}

	f := req.Block()
	var res dto.FormulaResult
	if strings.TrimSpace(f.Formula) == "" {
		return c.JSON(http.StatusOK, res)
	}

	v, err := formula.Evaluate(f.Formula, f.Variables)
	if err != nil {
		defined, ok := definedError(err)
		if !ok {
			return EError(c, err)
		}
		res.Error = defined.FrErr
		res.Code = defined.Code
		res.Display = defined.FrErr
		return c.JSON(http.StatusOK, res)
	}

	f.Result = &v
	res.Result = &v
	res.Display = formula.Display(f, cfg.Locale)
	return c.JSON(http.StatusOK, res)
}
