// DAO (Data Access Object) - модели базы данных редактора: документы,
// комментарии и файлы подписей.
package dao

import (
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// GenID генерирует строковый UUID v4.
func GenID() string {
	u2, _ := uuid.NewV4()
	return u2.String()
}

// GenUUID генерирует UUID v4.
func GenUUID() uuid.UUID {
	u2, _ := uuid.NewV4()
	return u2
}

// Models - все модели для AutoMigrate.
func Models() []any {
	return []any{&Doc{}, &Comment{}, &FileAsset{}}
}

// -migration
type PaginationResponse struct {
	Count  int64 `json:"count"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
	Result any   `json:"result"`
}

func PaginationRequest(offset int, limit int, query *gorm.DB, target any) (res PaginationResponse, err error) {
	if err := query.Session(&gorm.Session{}).Model(target).Count(&res.Count).Error; err != nil {
		return res, err
	}

	if err := query.Offset(offset).Limit(limit).Find(target).Error; err != nil {
		return res, err
	}

	res.Result = target
	res.Limit = limit
	res.Offset = offset

	return res, nil
}
