package comments_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aisa-it/redacteur/internal/redacteur/comments"
	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDoc() *edtypes.Document {
	return &edtypes.Document{Elements: []any{
		&edtypes.Paragraph{Content: []any{
			edtypes.Text{Content: "Le chiffre "},
			edtypes.Text{Content: "d'affaires", Strong: true},
			edtypes.Text{Content: " progresse."},
		}},
		&edtypes.Heading{Level: 2, Content: []any{edtypes.Text{Content: "Conclusion"}}},
	}}
}

func TestAttachAndDecorations(t *testing.T) {
	doc := newDoc()

	require.NoError(t, comments.Attach(doc, comments.Selection{Path: edtypes.Path{0}, From: 3, To: 21}, "c1"))
	require.NoError(t, comments.Attach(doc, comments.Selection{Path: edtypes.Path{1}, From: 0, To: 10}, "c2"))

	quote, err := comments.Quote(doc, comments.Selection{Path: edtypes.Path{0}, From: 3, To: 21})
	require.NoError(t, err)
	assert.Equal(t, "chiffre d'affaires", quote)

	decorations := comments.Decorations(doc, func(id string) bool { return id == "c2" })
	require.Len(t, decorations, 2)

	assert.Equal(t, comments.Decoration{Path: edtypes.Path{0}, From: 3, To: 21, CommentId: "c1"}, decorations[0])
	assert.Equal(t, comments.ClassComment, decorations[0].Class())
	assert.True(t, decorations[1].Resolved)
	assert.Equal(t, comments.ClassResolved, decorations[1].Class())

	// Отметка не меняет текст
	p := doc.Elements[0].(*edtypes.Paragraph)
	assert.Equal(t, "Le chiffre d'affaires progresse.", edtypes.PlainText(p.Content))
	assert.Equal(t, []string{"c1", "c2"}, comments.MarkedIds(doc))
}

func TestAttachBadSelection(t *testing.T) {
	tests := []struct {
		name string
		sel  comments.Selection
	}{
		{"empty", comments.Selection{Path: edtypes.Path{0}, From: 2, To: 2}},
		{"reversed", comments.Selection{Path: edtypes.Path{0}, From: 5, To: 2}},
		{"out of range", comments.Selection{Path: edtypes.Path{0}, From: 0, To: 500}},
		{"missing path", comments.Selection{Path: edtypes.Path{7}, From: 0, To: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, comments.Attach(newDoc(), tt.sel, "c"), comments.ErrBadSelection)
		})
	}
}

func TestDetachMergesRuns(t *testing.T) {
	doc := newDoc()
	require.NoError(t, comments.Attach(doc, comments.Selection{Path: edtypes.Path{0}, From: 0, To: 5}, "c1"))
	p := doc.Elements[0].(*edtypes.Paragraph)
	require.Len(t, p.Content, 4)

	assert.Equal(t, 1, comments.Detach(doc, "c1"))
	assert.Len(t, p.Content, 3)
	assert.Empty(t, comments.MarkedIds(doc))
	assert.Equal(t, 0, comments.Detach(doc, "c1"))
}

func TestOrphans(t *testing.T) {
	doc := newDoc()
	require.NoError(t, comments.Attach(doc, comments.Selection{Path: edtypes.Path{1}, From: 0, To: 4}, "kept"))

	assert.Equal(t, []string{"gone"}, comments.Orphans(doc, []string{"kept", "gone"}))
}

func TestPanel(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	open := dao.Comment{Id: uuid.Must(uuid.NewV4()), Text: "A revoir", CreatedAt: base}
	reply := dao.Comment{Id: uuid.Must(uuid.NewV4()), Text: "D'accord", CreatedAt: base.Add(time.Minute),
		ParentId: uuid.NullUUID{UUID: open.Id, Valid: true}}
	nested := dao.Comment{Id: uuid.Must(uuid.NewV4()), Text: "Fait", CreatedAt: base.Add(2 * time.Minute),
		ParentId: uuid.NullUUID{UUID: reply.Id, Valid: true}}
	reply.Replies = []dao.Comment{nested}
	open.Replies = []dao.Comment{reply}
	resolved := dao.Comment{Id: uuid.Must(uuid.NewV4()), Text: "Typo", CreatedAt: base.Add(-time.Hour), Resolved: true}

	threads := comments.Panel([]dao.Comment{open, resolved}, false)
	require.Len(t, threads, 1)
	assert.True(t, threads[0].CanReply)
	assert.True(t, threads[0].CanResolve)
	require.Len(t, threads[0].Replies, 2)
	assert.Equal(t, "Fait", threads[0].Replies[1].Text)
	assert.Nil(t, threads[0].Replies[0].Replies)

	threads = comments.Panel([]dao.Comment{open, resolved}, true)
	require.Len(t, threads, 2)
	assert.Equal(t, "Typo", threads[0].Comment.Text)
	assert.False(t, threads[0].CanReply)
	assert.False(t, threads[0].CanResolve)
	assert.True(t, threads[0].CanReopen)
}

func openStore(t *testing.T) (*comments.Store, *gorm.DB) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := dao.Open("file:"+name+"?mode=memory&cache=shared", &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return comments.NewStore(db), db
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store, db := openStore(t)

	doc := dao.Doc{Title: "Note"}
	require.NoError(t, db.Create(&doc).Error)

	assert.ErrorIs(t, store.Create(ctx, &dao.Comment{DocId: doc.ID, Text: "   "}), comments.ErrEmpty)

	root := dao.Comment{DocId: doc.ID, Text: " Vérifier ce chiffre ", AuthorId: "u1", AuthorName: "Alice"}
	require.NoError(t, store.Create(ctx, &root))
	assert.Equal(t, "Vérifier ce chiffre", root.Text)

	reply := dao.Comment{Text: "Vérifié", AuthorId: "u2"}
	require.NoError(t, store.Reply(ctx, root.Id, &reply))
	nested := dao.Comment{Text: "Merci", AuthorId: "u1"}
	require.NoError(t, store.Reply(ctx, reply.Id, &nested))
	assert.Equal(t, root.Id, nested.ParentId.UUID)

	list, err := store.List(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Replies, 2)

	resolved, err := store.Resolve(ctx, reply.Id, "u1")
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	assert.Equal(t, root.Id, resolved.Id)

	assert.ErrorIs(t, store.Reply(ctx, root.Id, &dao.Comment{Text: "Encore"}), comments.ErrThreadResolved)

	isResolved, err := store.Resolved(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, isResolved(root.Id.String()))

	reopened, err := store.Reopen(ctx, root.Id)
	require.NoError(t, err)
	assert.False(t, reopened.Resolved)

	_, err = store.Delete(ctx, root.Id)
	require.NoError(t, err)
	list, err = store.List(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.Get(ctx, reply.Id)
	assert.ErrorIs(t, err, comments.ErrNotFound)
}

func TestCollectOrphans(t *testing.T) {
	ctx := context.Background()
	store, db := openStore(t)

	kept := dao.Comment{Id: uuid.Must(uuid.NewV4()), Text: "garde"}
	orphan := dao.Comment{Id: uuid.Must(uuid.NewV4()), Text: "orphelin"}

	content := newDoc()
	require.NoError(t, comments.Attach(content, comments.Selection{Path: edtypes.Path{1}, From: 0, To: 4}, kept.Id.String()))
	doc := dao.Doc{Title: "GC", Content: *content}
	require.NoError(t, db.Create(&doc).Error)

	kept.DocId, orphan.DocId = doc.ID, doc.ID
	require.NoError(t, store.Create(ctx, &kept))
	require.NoError(t, store.Create(ctx, &orphan))
	require.NoError(t, store.Reply(ctx, orphan.Id, &dao.Comment{Text: "réponse"}))

	n, err := store.CollectOrphans(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := store.List(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept.Id, list[0].Id)

	var total int64
	require.NoError(t, db.Model(&dao.Comment{}).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestCollectOrphansSkipsFreshComments(t *testing.T) {
	ctx := context.Background()
	store, db := openStore(t)

	doc := dao.Doc{Title: "GC", Content: *newDoc()}
	require.NoError(t, db.Create(&doc).Error)

	old := dao.Comment{Id: uuid.Must(uuid.NewV4()), DocId: doc.ID, Text: "ancien"}
	fresh := dao.Comment{Id: uuid.Must(uuid.NewV4()), DocId: doc.ID, Text: "tout juste créé"}
	require.NoError(t, store.Create(ctx, &old))
	require.NoError(t, store.Create(ctx, &fresh))
	require.NoError(t, db.Model(&old).Update("created_at", time.Now().Add(-2*comments.OrphanGrace)).Error)

	// отметка fresh еще не сохранена в документе
	n, err := store.CollectOrphans(ctx, time.Now().Add(-comments.OrphanGrace))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := store.List(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fresh.Id, list[0].Id)
}
