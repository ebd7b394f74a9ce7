package edtypes

import (
	"time"
)

// BlockType - имя пользовательского блока, совпадает с типом узла в TipTap JSON.
type BlockType string

const (
	DataFetchBlock BlockType = "dataFetch"
	ChartBlock     BlockType = "chart"
	FormulaBlock   BlockType = "formula"
	SignatureBlock BlockType = "signature"
	ReferenceBlock BlockType = "reference"
	VariableBlock  BlockType = "variable"
)

// BlockTypes перечисляет все пользовательские блоки в порядке меню вставки.
var BlockTypes = []BlockType{
	DataFetchBlock,
	ChartBlock,
	FormulaBlock,
	SignatureBlock,
	ReferenceBlock,
	VariableBlock,
}

// Block - атрибуты пользовательского блока. Реализуется только типами этого пакета:
// *DataFetch, *Chart, *Formula, *Signature, *Reference, *Variable.
type Block interface {
	BlockType() BlockType
	BlockID() string
	isBlock()
}

type DataSource string

const (
	SourceAPI      DataSource = "api"
	SourceDatabase DataSource = "database"
	SourceFile     DataSource = "file"
)

type DisplayAs string

const (
	DisplayTable DisplayAs = "table"
	DisplayList  DisplayAs = "list"
	DisplayCards DisplayAs = "cards"
	DisplayRaw   DisplayAs = "raw"
)

type Row = map[string]any

// DataFetch - блок загрузки данных из API, SQL-запроса или файла.
type DataFetch struct {
	ID        string     `json:"id"`
	Source    DataSource `json:"source"`
	Endpoint  string     `json:"endpoint,omitempty"`
	Query     string     `json:"query,omitempty"`
	Fields    []string   `json:"fields"`
	Refresh   int        `json:"refresh"` // минуты, 0 - без автообновления
	Cache     bool       `json:"cache"`
	DisplayAs DisplayAs  `json:"displayAs"`

	Data      []Row      `json:"data"`
	LastFetch *time.Time `json:"lastFetch,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type ChartType string

const (
	ChartLine ChartType = "line"
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
	ChartArea ChartType = "area"
)

type ChartSource string

const (
	ChartManual    ChartSource = "manual"
	ChartAPI       ChartSource = "api"
	ChartReference ChartSource = "reference"
)

type Chart struct {
	ID         string      `json:"id"`
	ChartType  ChartType   `json:"chartType"`
	DataSource ChartSource `json:"dataSource"`
	Endpoint   string      `json:"endpoint,omitempty"`
	Data       []Row       `json:"data"`
	XAxisKey   string      `json:"xAxisKey"`
	YAxisKey   string      `json:"yAxisKey,omitempty"`
	DataKeys   []string    `json:"dataKeys"`
	Colors     []string    `json:"colors"`
	Title      string      `json:"title"`
	ShowLegend bool        `json:"showLegend"`
	ShowGrid   bool        `json:"showGrid"`
}

type FormulaFormat string

const (
	FormatNumber     FormulaFormat = "number"
	FormatCurrency   FormulaFormat = "currency"
	FormatPercentage FormulaFormat = "percentage"
)

type Formula struct {
	ID        string             `json:"id"`
	Formula   string             `json:"formula"`
	Variables map[string]float64 `json:"variables"`
	Format    FormulaFormat      `json:"format"`
	Decimals  int                `json:"decimals"`
	Currency  string             `json:"currency,omitempty"`

	Result *float64 `json:"result,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type Signature struct {
	ID        string `json:"id"`
	Signatory string `json:"signatory"`
	Role      string `json:"role"`
	Location  string `json:"location,omitempty"`
	Required  bool   `json:"required"`

	Signature string     `json:"signature,omitempty"` // data URL изображения
	SignedAt  *time.Time `json:"signedAt,omitempty"`
	IPAddress string     `json:"ipAddress,omitempty"`
	AssetId   string     `json:"assetId,omitempty"`
}

// Signed сообщает, есть ли сохраненная подпись.
func (s *Signature) Signed() bool {
	return s.Signature != ""
}

type ReferenceType string

const (
	RefReport   ReferenceType = "report"
	RefDocument ReferenceType = "document"
	RefSection  ReferenceType = "section"
	RefExternal ReferenceType = "external"
)

type ReferenceDisplay string

const (
	RefLink  ReferenceDisplay = "link"
	RefCard  ReferenceDisplay = "card"
	RefEmbed ReferenceDisplay = "embed"
)

type ReferenceMetadata struct {
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
}

type Reference struct {
	ID             string           `json:"id"`
	ReferenceType  ReferenceType    `json:"referenceType"`
	ReferenceId    string           `json:"referenceId,omitempty"`
	ReferenceTitle string           `json:"referenceTitle,omitempty"`
	DisplayAs      ReferenceDisplay `json:"displayAs"`
	SectionId      string           `json:"sectionId,omitempty"`

	Metadata *ReferenceMetadata `json:"metadata,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type VariableKind string

const (
	VariableSystem VariableKind = "system"
	VariableCustom VariableKind = "custom"
)

// Variable - встроенный (inline) блок, значение вычисляется при отображении.
type Variable struct {
	ID             string       `json:"id"`
	Type           VariableKind `json:"type"`
	SystemVariable string       `json:"systemVariable,omitempty"`
	CustomKey      string       `json:"customKey,omitempty"`
	CustomValue    string       `json:"customValue,omitempty"`
	Format         string       `json:"format,omitempty"`
}

func (b *DataFetch) BlockType() BlockType { return DataFetchBlock }
func (b *Chart) BlockType() BlockType     { return ChartBlock }
func (b *Formula) BlockType() BlockType   { return FormulaBlock }
func (b *Signature) BlockType() BlockType { return SignatureBlock }
func (b *Reference) BlockType() BlockType { return ReferenceBlock }
func (b *Variable) BlockType() BlockType  { return VariableBlock }

func (b *DataFetch) BlockID() string { return b.ID }
func (b *Chart) BlockID() string     { return b.ID }
func (b *Formula) BlockID() string   { return b.ID }
func (b *Signature) BlockID() string { return b.ID }
func (b *Reference) BlockID() string { return b.ID }
func (b *Variable) BlockID() string  { return b.ID }

func (*DataFetch) isBlock() {}
func (*Chart) isBlock()     {}
func (*Formula) isBlock()   {}
func (*Signature) isBlock() {}
func (*Reference) isBlock() {}
func (*Variable) isBlock()  {}

// NewBlock возвращает пустой блок указанного типа или nil для неизвестного типа.
func NewBlock(t BlockType) Block {
	switch t {
	case DataFetchBlock:
		return &DataFetch{}
	case ChartBlock:
		return &Chart{}
	case FormulaBlock:
		return &Formula{}
	case SignatureBlock:
		return &Signature{}
	case ReferenceBlock:
		return &Reference{}
	case VariableBlock:
		return &Variable{}
	}
	return nil
}

// IsInline сообщает, встраивается ли блок в содержимое параграфа.
func IsInline(t BlockType) bool {
	return t == VariableBlock
}
