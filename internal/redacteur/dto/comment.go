package dto

import (
	"time"
)

type Comment struct {
	Id       string  `json:"id"`
	DocId    string  `json:"doc_id"`
	ParentId *string `json:"parent_id,omitempty" extensions:"x-nullable"`

	Text   string    `json:"text"`
	Quote  string    `json:"quote,omitempty"`
	Author UserLight `json:"author"`

	CreatedAt    time.Time  `json:"created_at"`
	Resolved     bool       `json:"resolved"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty" extensions:"x-nullable"`
	ResolvedById *string    `json:"resolved_by,omitempty" extensions:"x-nullable"`

	Replies []Comment `json:"replies,omitempty"`
}

type CommentThread struct {
	Comment    Comment   `json:"comment"`
	Replies    []Comment `json:"replies"`
	CanReply   bool      `json:"can_reply"`
	CanResolve bool      `json:"can_resolve"`
	CanReopen  bool      `json:"can_reopen"`
}
