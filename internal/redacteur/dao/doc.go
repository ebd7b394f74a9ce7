package dao

import (
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/dto"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	_ "github.com/aisa-it/redacteur/internal/redacteur/editor/tiptap"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Doc struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CreatedAt   time.Time `json:"created_at"`
	CreatedById string    `json:"created_by" gorm:"index"`
	AuthorName  string    `json:"author_name"`

	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedById *string   `json:"updated_by" extensions:"x-nullable"`

	Title   string           `json:"title" validate:"required,max=150"`
	Excerpt string           `json:"excerpt" validate:"max=500"`
	Content edtypes.Document `json:"content"`

	Comments []Comment `json:"-" gorm:"foreignKey:DocId;constraint:OnDelete:CASCADE"`
}

// TableName возвращает имя таблицы документов.
func (Doc) TableName() string { return "redacteur_docs" }

func (d *Doc) BeforeCreate(tx *gorm.DB) error {
	if d.ID.IsNil() {
		d.ID = GenUUID()
	}
	return nil
}

// Comment - комментарий к фрагменту документа. Фрагмент помечается отметкой
// comment с commentId = Id, сам комментарий хранится отдельно от дерева.
type Comment struct {
	Id        uuid.UUID `json:"id" gorm:"column:id;primaryKey;type:uuid"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	DocId    uuid.UUID     `json:"docId" gorm:"type:uuid;index"`
	ParentId uuid.NullUUID `json:"parentId" gorm:"type:uuid;index"`

	Text         string  `json:"text"`
	Quote        string  `json:"quote,omitempty"`
	AuthorId     string  `json:"authorId"`
	AuthorName   string  `json:"authorName"`
	AuthorAvatar *string `json:"authorAvatar,omitempty" extensions:"x-nullable"`

	Resolved     bool       `json:"resolved"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty" extensions:"x-nullable"`
	ResolvedById *string    `json:"resolvedBy,omitempty" extensions:"x-nullable"`

	Replies []Comment `json:"replies" gorm:"foreignKey:ParentId"`
}

func (Comment) TableName() string { return "redacteur_comments" }

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.Id.IsNil() {
		c.Id = GenUUID()
	}
	return nil
}

// FileAsset - файл, сохраненный в хранилище (изображения подписей).
type FileAsset struct {
	Id          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedById *string   `json:"created_by,omitempty" extensions:"x-nullable"`

	DocId   uuid.UUID `json:"doc" gorm:"type:uuid;index"`
	BlockId string    `json:"block_id" gorm:"index"`

	Name        string `json:"name" gorm:"index"`
	FileSize    int    `json:"size"`
	ContentType string `json:"content_type"`
}

func (FileAsset) TableName() string { return "redacteur_file_assets" }

func (d *Doc) ToLightDTO() *dto.DocLight {
	if d == nil {
		return nil
	}
	return &dto.DocLight{
		Id:        d.ID.String(),
		Title:     d.Title,
		Excerpt:   d.Excerpt,
		Author:    &dto.UserLight{Id: d.CreatedById, Name: d.AuthorName},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d *Doc) ToDTO() *dto.Doc {
	if d == nil {
		return nil
	}
	return &dto.Doc{
		DocLight:    *d.ToLightDTO(),
		UpdatedById: d.UpdatedById,
		Content:     d.Content,
		Warnings:    make([]dto.BlockWarning, 0),
	}
}

// ToMetadataDTO возвращает метаданные документа для блоков reference.
func (d *Doc) ToMetadataDTO() dto.DocMetadata {
	return dto.DocMetadata{
		Id:            d.ID.String(),
		Title:         d.Title,
		CreatedByName: d.AuthorName,
		CreatedAt:     d.CreatedAt.UTC().Format(time.RFC3339),
		Excerpt:       d.Excerpt,
	}
}

func (c *Comment) ToDTO() *dto.Comment {
	if c == nil {
		return nil
	}
	res := &dto.Comment{
		Id:           c.Id.String(),
		DocId:        c.DocId.String(),
		Text:         c.Text,
		Quote:        c.Quote,
		Author:       dto.UserLight{Id: c.AuthorId, Name: c.AuthorName, Avatar: c.AuthorAvatar},
		CreatedAt:    c.CreatedAt,
		Resolved:     c.Resolved,
		ResolvedAt:   c.ResolvedAt,
		ResolvedById: c.ResolvedById,
	}
	if c.ParentId.Valid {
		parent := c.ParentId.UUID.String()
		res.ParentId = &parent
	}
	for i := range c.Replies {
		res.Replies = append(res.Replies, *c.Replies[i].ToDTO())
	}
	return res
}
