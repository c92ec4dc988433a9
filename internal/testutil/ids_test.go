package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDGenerator(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"explicit", "req-42", "req-42"},
		{"default", "", "test-request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewFixedIDGenerator(tt.id)
			assert.Equal(t, tt.want, g.Generate())
			assert.Equal(t, tt.want, g.Generate())
		})
	}
}

func TestSequentialIDGenerator(t *testing.T) {
	g := NewSequentialIDGenerator("req")
	assert.Equal(t, "req-1", g.Generate())
	assert.Equal(t, "req-2", g.Generate())
	assert.Equal(t, "req-3", g.Generate())
}
