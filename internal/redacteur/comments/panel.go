package comments

import (
	"sort"

	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	"github.com/aisa-it/redacteur/internal/redacteur/dto"
	"github.com/aisa-it/redacteur/internal/redacteur/utils"
)

// Thread - ветка боковой панели: корневой комментарий и плоский список ответов.
type Thread struct {
	Comment    dao.Comment   `json:"comment"`
	Replies    []dao.Comment `json:"replies"`
	CanReply   bool          `json:"canReply"`
	CanResolve bool          `json:"canResolve"`
	CanReopen  bool          `json:"canReopen"`
}

// Panel строит ветки из корневых комментариев. Вложенные ответы выводятся
// одним уровнем. Решенные ветки доступны только для чтения и скрываются при
// showResolved = false.
func Panel(list []dao.Comment, showResolved bool) []Thread {
	res := make([]Thread, 0, len(list))
	for _, c := range list {
		if c.ParentId.Valid {
			continue
		}
		if c.Resolved && !showResolved {
			continue
		}
		replies := flatten(c.Replies)
		sort.SliceStable(replies, func(i, j int) bool {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		})
		root := c
		root.Replies = nil
		res = append(res, Thread{
			Comment:    root,
			Replies:    replies,
			CanReply:   !c.Resolved,
			CanResolve: !c.Resolved,
			CanReopen:  c.Resolved,
		})
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Comment.CreatedAt.Before(res[j].Comment.CreatedAt)
	})
	return res
}

func flatten(list []dao.Comment) []dao.Comment {
	var res []dao.Comment
	for _, c := range list {
		nested := c.Replies
		c.Replies = nil
		res = append(res, c)
		res = append(res, flatten(nested)...)
	}
	return res
}

func (t Thread) ToDTO() dto.CommentThread {
	return dto.CommentThread{
		Comment:    *t.Comment.ToDTO(),
		Replies:    utils.SliceToSlice(&t.Replies, func(c *dao.Comment) dto.Comment { return *c.ToDTO() }),
		CanReply:   t.CanReply,
		CanResolve: t.CanResolve,
		CanReopen:  t.CanReopen,
	}
}
