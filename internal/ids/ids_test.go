package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := New()
		assert.Len(t, id, 27)
		_, dup := seen[id]
		assert.False(t, dup, "ids must be unique")
		seen[id] = struct{}{}
	}
}
