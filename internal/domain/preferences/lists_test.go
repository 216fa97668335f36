package preferences

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushFront(t *testing.T) {
	tests := []struct {
		name  string
		list  []string
		id    string
		limit int
		want  []string
	}{
		{"empty", nil, "a", 8, []string{"a"}},
		{"new id", []string{"b", "c"}, "a", 8, []string{"a", "b", "c"}},
		{"existing id moves", []string{"b", "a", "c"}, "a", 8, []string{"a", "b", "c"}},
		{"truncates", []string{"b", "c", "d"}, "a", 3, []string{"a", "b", "c"}},
		{"no limit", []string{"b", "c", "d"}, "a", 0, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PushFront(tt.list, tt.id, tt.limit))
		})
	}
}

func TestPushFrontDoesNotAlias(t *testing.T) {
	list := []string{"b", "c"}
	_ = PushFront(list, "a", 8)
	assert.Equal(t, []string{"b", "c"}, list)
}

func TestToggle(t *testing.T) {
	list, in := Toggle([]string{"a", "b"}, "c", 8)
	assert.True(t, in)
	assert.Equal(t, []string{"c", "a", "b"}, list)

	list, in = Toggle(list, "a", 8)
	assert.False(t, in)
	assert.Equal(t, []string{"c", "b"}, list)
}

func TestDedupeAndFilter(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Dedupe([]string{"a", "", "b", "a"}))
	assert.Equal(t, []string{}, Dedupe(nil))

	keep := func(id string) bool { return id != "x" }
	assert.Equal(t, []string{"a", "b"}, Filter([]string{"x", "a", "x", "b"}, keep))
	assert.Equal(t, []string{"a"}, Remove([]string{"a", "x"}, "x"))
}
