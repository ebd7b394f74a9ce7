package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmpty          = errors.New("comment text is empty")
	ErrNotFound       = errors.New("comment not found")
	ErrThreadResolved = errors.New("comment thread is resolved")
)

// Store - хранилище комментариев в БД.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// List возвращает корневые комментарии документа с ответами.
func (s *Store) List(ctx context.Context, docId uuid.UUID) ([]dao.Comment, error) {
	var list []dao.Comment
	err := s.db.WithContext(ctx).
		Where("doc_id = ?", docId).
		Where("parent_id IS NULL").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at")
		}).
		Order("created_at").
		Find(&list).Error
	return list, err
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (dao.Comment, error) {
	var c dao.Comment
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c, ErrNotFound
		}
		return c, err
	}
	return c, nil
}

// Create сохраняет новый корневой комментарий.
func (s *Store) Create(ctx context.Context, c *dao.Comment) error {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return ErrEmpty
	}
	c.ParentId = uuid.NullUUID{}
	c.Resolved = false
	return s.db.WithContext(ctx).Omit("Replies").Create(c).Error
}

// Reply добавляет ответ в ветку. Ответ на ответ прикрепляется к корню ветки.
func (s *Store) Reply(ctx context.Context, parentId uuid.UUID, reply *dao.Comment) error {
	reply.Text = strings.TrimSpace(reply.Text)
	if reply.Text == "" {
		return ErrEmpty
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		root, err := threadRoot(tx, parentId)
		if err != nil {
			return err
		}
		if root.Resolved {
			return ErrThreadResolved
		}
		reply.DocId = root.DocId
		reply.ParentId = uuid.NullUUID{UUID: root.Id, Valid: true}
		reply.Quote = ""
		return tx.Omit("Replies").Create(reply).Error
	})
}

func threadRoot(tx *gorm.DB, id uuid.UUID) (dao.Comment, error) {
	var c dao.Comment
	for range 16 {
		if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c, ErrNotFound
			}
			return c, err
		}
		if !c.ParentId.Valid {
			return c, nil
		}
		id = c.ParentId.UUID
	}
	return c, ErrNotFound
}

// Resolve помечает ветку решенной.
func (s *Store) Resolve(ctx context.Context, id uuid.UUID, userId string) (dao.Comment, error) {
	now := time.Now()
	return s.setResolved(ctx, id, map[string]any{
		"resolved":       true,
		"resolved_at":    now,
		"resolved_by_id": userId,
	})
}

// Reopen снимает отметку решения с ветки.
func (s *Store) Reopen(ctx context.Context, id uuid.UUID) (dao.Comment, error) {
	return s.setResolved(ctx, id, map[string]any{
		"resolved":       false,
		"resolved_at":    nil,
		"resolved_by_id": nil,
	})
}

func (s *Store) setResolved(ctx context.Context, id uuid.UUID, fields map[string]any) (dao.Comment, error) {
	var root dao.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		root, err = threadRoot(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Model(&dao.Comment{}).Where("id = ?", root.Id).Updates(fields).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", root.Id).First(&root).Error
	})
	return root, err
}

// Delete удаляет комментарий вместе с ответами. Отметку в документе снимает вызывающий.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (dao.Comment, error) {
	var c dao.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.Where("parent_id = ?", id).Delete(&dao.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&c).Error
	})
	return c, err
}

// DeleteDoc удаляет все комментарии документа.
func (s *Store) DeleteDoc(ctx context.Context, docId uuid.UUID) error {
	return s.db.WithContext(ctx).Where("doc_id = ?", docId).Delete(&dao.Comment{}).Error
}

// Resolved возвращает функцию проверки решенности для Decorations.
func (s *Store) Resolved(ctx context.Context, docId uuid.UUID) (func(id string) bool, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&dao.Comment{}).
		Where("doc_id = ? AND parent_id IS NULL AND resolved", docId).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(id string) bool {
		_, ok := set[id]
		return ok
	}, nil
}

// OrphanGrace - возраст, после которого корневой комментарий без отметки
// считается брошенным. Отметка попадает в сохраненный документ позже записи.
const OrphanGrace = 10 * time.Minute

// CollectOrphans удаляет корневые комментарии, созданные раньше before, отметки
// которых исчезли из документов, вместе с ответами. Возвращает число удаленных веток.
func (s *Store) CollectOrphans(ctx context.Context, before time.Time) (int, error) {
	total := 0
	var docs []dao.Doc
	res := s.db.WithContext(ctx).Select("id", "content").FindInBatches(&docs, 50, func(tx *gorm.DB, batch int) error {
		for i := range docs {
			n, err := s.collectDoc(ctx, docs[i].ID, &docs[i].Content, before)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	return total, res.Error
}

func (s *Store) collectDoc(ctx context.Context, docId uuid.UUID, doc *edtypes.Document, before time.Time) (int, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&dao.Comment{}).
		Where("doc_id = ? AND parent_id IS NULL", docId).
		Where("created_at < ?", before).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	orphans := Orphans(doc, ids)
	if len(orphans) == 0 {
		return 0, nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id IN ?", orphans).Delete(&dao.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", orphans).Delete(&dao.Comment{}).Error
	})
	if err != nil {
		return 0, err
	}
	return len(orphans), nil
}
