package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"hello", "hello", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Hello", "hello", 1},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Distance(tt.a, tt.b))
			assert.Equal(t, tt.expected, Distance(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("user_name", "UserName"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("abcd", "abce"), 1e-9)
}

func TestClosest(t *testing.T) {
	handlers := []string{"one_to_one", "one_to_many", "many_to_many"}

	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{name: "one_to_onw", want: "one_to_one", ok: true},
		{name: "OneToMany", want: "one_to_many", ok: true},
		{name: "many-to-man", want: "many_to_many", ok: true},
		{name: "reflect", ok: false},
		{name: "one_to_one", want: "one_to_many", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Closest(tt.name, handlers)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHint(t *testing.T) {
	assert.Equal(t, ` (did you mean "users"?)`, Hint("user", []string{"tags", "users"}))
	assert.Empty(t, Hint("orders", []string{"tags"}))
	assert.Empty(t, Hint("x", nil))
}
