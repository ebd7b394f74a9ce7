package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckInSlice(t *testing.T) {
	formats := []string{"html", "md", "pdf"}

	assert.True(t, CheckInSlice(formats, "pdf"))
	assert.True(t, CheckInSlice(formats, "docx", "md"))
	assert.False(t, CheckInSlice(formats, "docx"))
	assert.False(t, CheckInSlice(formats))
}

func TestSliceToSlice(t *testing.T) {
	in := []int{1, 2, 3}
	out := SliceToSlice(&in, func(v *int) string { return string(rune('a' + *v - 1)) })
	assert.Equal(t, []string{"a", "b", "c"}, out)

	assert.Empty(t, SliceToSlice[int, string](nil, func(v *int) string { return "" }))
}

func TestFilterCollect(t *testing.T) {
	even := Collect(Filter(All([]int{1, 2, 3, 4}), func(v int) bool { return v%2 == 0 }))
	assert.Equal(t, []int{2, 4}, even)

	none := Collect(Filter(All([]int{1, 3}), func(v int) bool { return v%2 == 0 }))
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"short", "Bilan  annuel\n", 20, "Bilan annuel"},
		{"cut", "Synthèse des ventes", 10, "Synthèse…"},
		{"exact", "abcde", 5, "abcde"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.text, tt.limit))
		})
	}
}
