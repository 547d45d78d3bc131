package inquiries

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddLabel(t *testing.T) {
	tests := []struct {
		name    string
		labels  []string
		text    string
		want    []string
		changed bool
	}{
		{"append", []string{"vip"}, "export", []string{"vip", "export"}, true},
		{"trimmed", nil, "  urgent ", []string{"urgent"}, true},
		{"blank", []string{"vip"}, "   ", []string{"vip"}, false},
		{"duplicate", []string{"vip"}, "vip", []string{"vip"}, false},
		{"case sensitive", []string{"vip"}, "VIP", []string{"vip", "VIP"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := AddLabel(tt.labels, tt.text)
			assert.Equal(t, tt.changed, changed)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddLabelIsIdempotent(t *testing.T) {
	once, _ := AddLabel([]string{"a"}, "x")
	twice, changed := AddLabel(once, "x")
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestAddLabelDoesNotMutateInput(t *testing.T) {
	in := make([]string, 1, 4)
	in[0] = "a"
	_, _ = AddLabel(in, "b")
	assert.Equal(t, []string{"a"}, in)
}

func TestRemoveLabel(t *testing.T) {
	got, changed := RemoveLabel([]string{"a", "b", "c"}, "b")
	assert.True(t, changed)
	assert.Equal(t, []string{"a", "c"}, got)

	got, changed = RemoveLabel([]string{"a", "b"}, "z")
	assert.False(t, changed)
	assert.Equal(t, []string{"a", "b"}, got)

	got, changed = RemoveLabel([]string{"a", "b"}, "A")
	assert.False(t, changed)
	assert.Equal(t, []string{"a", "b"}, got)
}
