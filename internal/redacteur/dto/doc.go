// Содержит структуры данных (DTO) для передачи документов, комментариев и блоков
// через API.
//
// Основные возможности:
//   - Краткое и полное представление документа.
//   - Ветки комментариев для боковой панели.
//   - Ответы по блокам, формулам и метаданным для ссылок.
package dto

import (
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
)

type UserLight struct {
	Id     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty" extensions:"x-nullable"`
}

type DocLight struct {
	Id      string `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Url     string `json:"url,omitempty"`

	Author    *UserLight `json:"author,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Doc struct {
	DocLight

	UpdatedById *string `json:"updated_by,omitempty" extensions:"x-nullable"`

	Content edtypes.Document `json:"content" swaggertype:"object"`

	// Предупреждения блоков (неподписанные обязательные подписи и т.п.)
	Warnings []BlockWarning `json:"warnings"`
}

type BlockWarning struct {
	BlockId   string            `json:"block_id"`
	BlockType edtypes.BlockType `json:"block_type"`
	Message   string            `json:"message"`
}

// DocMetadata - метаданные документа в формате, который ожидает блок reference.
type DocMetadata struct {
	Id            string `json:"id"`
	Title         string `json:"title"`
	CreatedByName string `json:"created_by_name"`
	CreatedAt     string `json:"created_at"`
	Excerpt       string `json:"excerpt"`
}
