// Генерация документации в формате Markdown: таблица кодов ошибок API
// (разбор apierrors.go) и каталог пользовательских блоков редактора.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/blocks"
	md "github.com/nao1215/markdown"
)

func main() {
	errorsFile := flag.String("src", "internal/redacteur/apierrors/apierrors.go", "Path of apierrors.go")
	outputMd := flag.String("out", "api_errors.md", "Path to output md")
	blocksMd := flag.String("blocks", "", "Path to output blocks catalog md, empty to skip")
	flag.Parse()

	slog.Info("Generate api errors docs", "src", *errorsFile, "out", *outputMd)

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, *errorsFile, nil, 0)
	if err != nil {
		slog.Error("Parse errors file", "err", err)
		os.Exit(1)
	}

	if err := writeErrors(*outputMd, getRows(f)); err != nil {
		slog.Error("Generate docs fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Docs generated")

	if *blocksMd != "" {
		if err := writeBlocks(*blocksMd); err != nil {
			slog.Error("Generate blocks docs fail", "err", err)
			os.Exit(1)
		}
		slog.Info("Blocks catalog generated", "out", *blocksMd)
	}
}

func writeErrors(path string, rows [][]string) error {
	ff, err := os.Create(path)
	if err != nil {
		return err
	}
	defer ff.Close()

	return md.NewMarkdown(ff).
		H1("Перечень кодов ошибок").
		PlainText("Данный раздел посвящен описанию возможных ошибок от сервера.").
		CustomTable(md.TableSet{
			Header: []string{"Код", "HTTP код", "Сообщение", "Сообщение на французском"},
			Rows:   rows,
		}, md.TableOptions{
			AutoWrapText: false,
		}).Build()
}

// writeBlocks выводит каталог блоков, сгруппированный по категориям, как в меню вставки.
func writeBlocks(path string) error {
	ff, err := os.Create(path)
	if err != nil {
		return err
	}
	defer ff.Close()

	doc := md.NewMarkdown(ff).
		H1("Пользовательские блоки").
		PlainText("Блоки, доступные в меню вставки редактора.")
	for _, group := range blocks.Grouped() {
		rows := make([][]string, 0, len(group.Entries))
		for _, e := range group.Entries {
			rows = append(rows, []string{md.Code(string(e.Type)), e.Name, e.Description, md.Code(e.Command)})
		}
		doc = doc.H2(group.Title).
			CustomTable(md.TableSet{
				Header: []string{"Тип", "Название", "Описание", "Команда"},
				Rows:   rows,
			}, md.TableOptions{AutoWrapText: false})
	}
	return doc.Build()
}

// getRows собирает строки таблицы из объявлений DefinedError.
func getRows(f *ast.File) [][]string {
	var rows [][]string
	for _, d := range f.Decls {
		decl, ok := d.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, spec := range decl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok || len(vs.Values) == 0 {
				continue
			}
			for i := range vs.Names {
				if i >= len(vs.Values) {
					break
				}
				definedError, ok := vs.Values[i].(*ast.CompositeLit)
				if !ok {
					continue
				}
				row := make([]string, 4)
				for _, v := range definedError.Elts {
					param, ok := v.(*ast.KeyValueExpr)
					if !ok {
						continue
					}
					switch fmt.Sprint(param.Key) {
					case "Code":
						if lit, ok := param.Value.(*ast.BasicLit); ok {
							row[0] = md.Bold(lit.Value)
						}
					case "StatusCode":
						if sel, ok := param.Value.(*ast.SelectorExpr); ok {
							row[1] = fmt.Sprintf("%s %s", getStatusCode(sel.Sel.Name), md.Italic(sel.Sel.Name))
						}
					case "Err":
						row[2] = md.Code(exprString(param.Value))
					case "FrErr":
						row[3] = md.Code(exprString(param.Value))
					}
				}
				if row[0] == "" {
					continue
				}
				if row[1] == "" {
					row[1] = fmt.Sprintf("%s %s", getStatusCode("StatusBadRequest"), md.Italic("StatusBadRequest"))
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func exprString(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.BasicLit:
		return strings.Trim(x.Value, "\"`")
	case *ast.BinaryExpr:
		return exprString(x.X) + exprString(x.Y)
	}
	return ""
}

var statusCodes = map[string]string{
	"StatusOK":                    "200",
	"StatusNoContent":             "204",
	"StatusBadRequest":            "400",
	"StatusUnauthorized":          "401",
	"StatusForbidden":             "403",
	"StatusNotFound":              "404",
	"StatusConflict":              "409",
	"StatusGone":                  "410",
	"StatusRequestEntityTooLarge": "413",
	"StatusUnprocessableEntity":   "422",
	"StatusInternalServerError":   "500",
	"StatusBadGateway":            "502",
	"StatusServiceUnavailable":    "503",
	"StatusGatewayTimeout":        "504",
}

func getStatusCode(status string) string {
	return statusCodes[status]
}
