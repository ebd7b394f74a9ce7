package dao_test

import (
	"strings"
	"testing"

	"github.com/aisa-it/redacteur/internal/redacteur/dao"
	"github.com/aisa-it/redacteur/internal/redacteur/editor/edtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := dao.Open("file:"+name+"?mode=memory&cache=shared", &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func TestDialector(t *testing.T) {
	tests := []struct {
		dsn     string
		name    string
		wantErr bool
	}{
		{dsn: "postgres://u:p@localhost/db", name: "postgres"},
		{dsn: "sqlite://redacteur.db", name: "sqlite"},
		{dsn: "file::memory:", name: "sqlite"},
		{dsn: "mysql://localhost", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			d, err := dao.Dialector(tt.dsn)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestDocContentRoundTrip(t *testing.T) {
	db := openDB(t)

	doc := dao.Doc{
		Title:       "Rapport",
		CreatedById: "u1",
		Content: edtypes.Document{Elements: []any{
			&edtypes.Paragraph{Content: []any{edtypes.Text{Content: "Bonjour", CommentIds: []string{"c1"}}}},
			&edtypes.Formula{ID: "f1", Formula: "A+B", Variables: map[string]float64{"A": 1, "B": 2}, Decimals: 2},
		}},
	}
	require.NoError(t, db.Create(&doc).Error)
	assert.False(t, doc.ID.IsNil())

	var loaded dao.Doc
	require.NoError(t, db.Where("id = ?", doc.ID).First(&loaded).Error)
	require.Len(t, loaded.Content.Elements, 2)
	f, ok := loaded.Content.Elements[1].(*edtypes.Formula)
	require.True(t, ok)
	assert.Equal(t, "A+B", f.Formula)
	assert.Equal(t, []string{"c1"}, loaded.Content.Elements[0].(*edtypes.Paragraph).Content[0].(edtypes.Text).CommentIds)
}

func TestPaginationRequest(t *testing.T) {
	db := openDB(t)
	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, db.Create(&dao.Doc{Title: title}).Error)
	}

	var docs []dao.Doc
	res, err := dao.PaginationRequest(1, 1, db.Order("title"), &docs)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Count)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].Title)
}
