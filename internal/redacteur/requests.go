// Тела запросов API и их перенос в модели.
package redacteur

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aisa-it/redacteur/internal/redacteur/apierrors"
	blockruntime "github.com/aisa-it/redacteur/internal/redacteur/block-runtime"
	"github.com/aisa-it/redacteur/internal/redacteur/blocks"
	"github.com/aisa-it/redacteur/internal/redacteur/comments"
	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	"github.com/aisa-it/redacteur/internal/redacteur/editor"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/tiptap"
	"github.com/aisa-it/redacteur/internal/redacteur/signature"
	"github.com/aisa-it/redacteur/internal/redacteur/utils"
	"github.com/gofrs/uuid"
)

const (
	maxContentSize = 4 << 20
	excerptLength  = 500
)


// Content - содержимое документа: TipTap JSON или HTML редактора.
type Content struct {
	Content json.RawMessage `json:"content,omitempty" swaggertype:"object"`
	Html    *string         `json:"html,omitempty"`
}

func (req Content) empty() bool {
	return len(bytes.TrimSpace(req.Content)) == 0 && req.Html == nil
}

// Document разбирает содержимое и проверяет атрибуты блоков по схемам.
func (req Content) Document() (*edtypes.Document, error) {
	if len(req.Content) > maxContentSize || (req.Html != nil && len(*req.Html) > maxContentSize) {
		return nil, apierrors.ErrDocContentTooLarge
	}

	var doc *edtypes.Document
	var err error
	switch {
	case req.Html != nil:
		doc, err = editor.ParseDocument(strings.NewReader(*req.Html))
		if err != nil {
			return nil, apierrors.ErrDocHTMLInvalid
		}
	case len(bytes.TrimSpace(req.Content)) > 0 && !bytes.Equal(bytes.TrimSpace(req.Content), []byte("null")):
		doc, err = tiptap.ParseJSON(bytes.NewReader(req.Content))
		if err != nil {
			return nil, apierrors.ErrDocContentInvalid
		}
	default:
		doc = &edtypes.Document{Elements: make([]any, 0)}
	}

	if err := normalizeBlocks(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalizeBlocks дополняет атрибуты блоков значениями по умолчанию, проверяет их
// по схемам и выдает новые идентификаторы блокам без id или с повторяющимся id.
func normalizeBlocks(doc *edtypes.Document) error {
	seen := make(map[string]struct{})
	for _, b := range doc.Blocks() {
		nb, err := withDefaults(b)
		if err != nil {
			return err
		}
		if _, dup := seen[nb.BlockID()]; dup {
			nb, err = withDefaults(nb, dao.GenID())
			if err != nil {
				return err
			}
		}
		seen[nb.BlockID()] = struct{}{}
		replaceElement(doc, b, nb)
	}
	return nil
}

func withDefaults(b edtypes.Block, id ...string) (edtypes.Block, error) {
	def, err := blocks.New(b.BlockType())
	if err != nil {
		return nil, err
	}
	res, err := tiptap.BlockAttrs(def)
	if err != nil {
		return nil, err
	}
	attrs, err := tiptap.BlockAttrs(b)
	if err != nil {
		return nil, err
	}
	for k, v := range attrs {
		if s, ok := v.(string); v == nil || (ok && s == "") {
			continue
		}
		res[k] = v
	}
	if len(id) > 0 {
		res["id"] = id[0]
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	return blocks.Decode(b.BlockType(), raw)
}

// replaceElement заменяет конкретный экземпляр блока (по указателю), а не по id:
// у дубликатов id совпадает.
func replaceElement(doc *edtypes.Document, old, nb edtypes.Block) {
	for i, el := range doc.Elements {
		if el == any(old) {
			doc.Elements[i] = nb
			return
		}
	}
	doc.WalkInline(func(_ edtypes.Path, content *[]any) bool {
		for i, c := range *content {
			if c == any(old) {
				(*content)[i] = nb
				return false
			}
		}
		return true
	})
}

type CreateDocRequest struct {
	Title string `json:"title" validate:"docTitle"`
	Content
}

func (req *CreateDocRequest) Bind(doc *dao.Doc, author *Author) error {
	content, err := req.Document()
	if err != nil {
		return err
	}
	blockruntime.StripDerived(content)

	doc.Title = strings.TrimSpace(req.Title)
	doc.Content = *content
	doc.Excerpt = excerpt(content)
	doc.CreatedById = author.Id
	doc.AuthorName = author.Name
	return nil
}

type UpdateDocRequest struct {
	Title *string `json:"title,omitempty" validate:"omitempty,docTitle"`
	Content
}

type CommandRequest struct {
	Command  string          `json:"command" validate:"required,editorCommand"`
	Position *int            `json:"position,omitempty" validate:"omitempty,min=0"`
	Path     edtypes.Path    `json:"path,omitempty"`
	Offset   int             `json:"offset,omitempty" validate:"min=0"`
	BlockId  string          `json:"blockId,omitempty"`
	Attrs    json.RawMessage `json:"attrs,omitempty" swaggertype:"object"`
}

func (req *CommandRequest) ToCommand() blockruntime.Command {
	return blockruntime.Command{
		Command:  req.Command,
		Position: req.Position,
		Path:     req.Path,
		Offset:   req.Offset,
		BlockId:  req.BlockId,
		Attrs:    req.Attrs,
	}
}

type CommentRequest struct {
	Text      string             `json:"text" validate:"required,max=5000"`
	Selection comments.Selection `json:"selection"`
}

func (req *CommentRequest) Bind(comment *dao.Comment, docId uuid.UUID, author *Author) {
	comment.Id = dao.GenUUID()
	comment.DocId = docId
	comment.Text = req.Text
	comment.AuthorId = author.Id
	comment.AuthorName = author.Name
	comment.AuthorAvatar = author.Avatar
}

type ReplyRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

type SignRequest struct {
	Strokes []signature.Stroke `json:"strokes" validate:"required,min=1"`
	Width   int                `json:"width" validate:"omitempty,min=1,max=4000"`
	Height  int                `json:"height" validate:"omitempty,min=1,max=4000"`
}

type ChartDataRequest struct {
	Data string `json:"data" validate:"required"`
}

type FormulaRequest struct {
	Formula   string                `json:"formula"`
	Variables map[string]float64    `json:"variables"`
	Format    edtypes.FormulaFormat `json:"format" validate:"omitempty,oneof=number currency percentage"`
	Decimals  int                   `json:"decimals" validate:"min=0,max=20"`
	Currency  string                `json:"currency" validate:"omitempty,len=3"`
}

func (req *FormulaRequest) Block() *edtypes.Formula {
	f := &edtypes.Formula{
		Formula:   req.Formula,
		Variables: req.Variables,
		Format:    req.Format,
		Decimals:  req.Decimals,
		Currency:  req.Currency,
	}
	if f.Format == "" {
		f.Format = edtypes.FormatNumber
	}
	return f
}

// excerpt - начало текста документа для списков и метаданных ссылок.
func excerpt(doc *edtypes.Document) string {
	var parts []string
	doc.WalkInline(func(_ edtypes.Path, content *[]any) bool {
		if text := strings.TrimSpace(edtypes.PlainText(*content)); text != "" {
			parts = append(parts, text)
		}
		return len(parts) < 20
	})
	return utils.Excerpt(strings.Join(parts, " "), excerptLength)
}

func formatError(format string) error {
	return apierrors.ErrExportFormatUnknown.WithFormattedMessage(fmt.Sprintf("%q", format))
}
