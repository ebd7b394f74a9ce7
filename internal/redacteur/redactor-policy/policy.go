// Политики bluemonday для HTML документа и текста комментариев.
//
// Основные возможности:
//   - UgcPolicy для HTML документа: разметка текста, таблицы, изображения и контейнеры пользовательских блоков.
//   - StripTagsPolicy для текста комментариев.
//   - Ограничение допустимых значений атрибутов и стилей регулярными выражениями.
//   - Flatten: статический HTML без служебных атрибутов блоков.
package policy

import (
	"container/list"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/microcosm-cc/bluemonday"
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var UgcPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	blockTypeRegexp := regexp.MustCompile(`^(dataFetch|chart|formula|signature|reference|variable)$`)
	colorRegexp := regexp.MustCompile(`^(#(?:[0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgb\((\d+),\s*(\d+),\s*(\d+)\)|inherit)$`)
	sizeRegexp := regexp.MustCompile(`^(\d+(px|em|rem|%)?|auto|inherit)$`)
	classRegexp := regexp.MustCompile(`^[a-z][a-z0-9-]*( [a-z][a-z0-9-]*)*$`)
	idRegexp := regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	languageRegexp := regexp.MustCompile(`^language-[A-Za-z0-9+#-]+$`)

	UgcPolicy.AllowElements("figure", "figcaption", "mark", "s", "u", "dl", "dt", "dd")

	UgcPolicy.AllowAttrs("data-type").Matching(blockTypeRegexp).OnElements("div", "span")
	UgcPolicy.AllowAttrs("data-block-id").Matching(idRegexp).OnElements("div", "span")
	UgcPolicy.AllowAttrs("data-attrs").OnElements("div", "span")
	UgcPolicy.AllowAttrs("data-comment-id").Matching(idRegexp).OnElements("span")
	UgcPolicy.AllowAttrs("data-color").OnElements("mark")
	UgcPolicy.AllowAttrs("class").Matching(classRegexp).OnElements("div", "span", "figure", "figcaption", "table", "ul", "li", "dl", "dt", "dd", "p", "img", "a")
	UgcPolicy.AllowAttrs("class").Matching(languageRegexp).OnElements("code")
	UgcPolicy.AllowAttrs("id").Matching(idRegexp).OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	UgcPolicy.AllowAttrs("data-type").Matching(regexp.MustCompile("^taskList$")).OnElements("ul")
	UgcPolicy.AllowAttrs("data-checked").Matching(regexp.MustCompile("^(true|false)$")).OnElements("li")

	UgcPolicy.AllowStyles("color", "background-color").Matching(colorRegexp).Globally()
	UgcPolicy.AllowStyles("width").Matching(sizeRegexp).OnElements("img", "table")
	UgcPolicy.AllowStyles("text-align").Matching(bluemonday.CellAlign).Globally()

	// Подписи хранятся как data:image/png;base64
	UgcPolicy.AllowDataURIImages()
}

// Sanitize очищает HTML документа.
func Sanitize(htmlContent string) string {
	return UgcPolicy.Sanitize(htmlContent)
}

// SanitizeComment оставляет в тексте комментария только текст.
func SanitizeComment(text string) string {
	return strings.TrimSpace(html.UnescapeString(StripTagsPolicy.Sanitize(text)))
}

// Flatten убирает служебные атрибуты блоков (data-attrs) и заменяет строчные
// переменные их текстом. Результат предназначен для статического экспорта.
func Flatten(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	queue := list.New()
	queue.PushBack(doc)

	for queue.Len() > 0 {
		element := queue.Front()
		queue.Remove(element)
		node := element.Value.(*html.Node)

		var next *html.Node

		for child := node.FirstChild; child != nil; child = next {
			next = child.NextSibling
			if child.Type != html.ElementNode {
				continue
			}
			if child.Data == "span" && getAttrValue(child, "data-type") == "variable" {
				processVariableNode(child)
				continue
			}
			child.Attr = removeAttr(child.Attr, "data-attrs")
			if child.FirstChild != nil {
				queue.PushBack(child)
			}
		}
	}

	body := findBody(doc)
	var result strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&result, c)
	}

	return result.String()
}

func processVariableNode(node *html.Node) {
	var text strings.Builder
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	textNode := &html.Node{
		Type: html.TextNode,
		Data: text.String(),
	}

	node.Parent.InsertBefore(textNode, node)
	node.Parent.RemoveChild(node)
}

func getAttrValue(node *html.Node, key string) string {
	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func removeAttr(attrs []html.Attribute, key string) []html.Attribute {
	res := attrs[:0]
	for _, attr := range attrs {
		if attr.Key != key {
			res = append(res, attr)
		}
	}
	return res
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return n
}
