package register

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liujun01203/spdk/internal/nvmf/types"
)

func TestFind(t *testing.T) {
	d, ok := Find(types.OffsetCC)
	assert.True(t, ok)
	assert.Equal(t, "cc", d.Name)
	assert.True(t, d.Writable)
	assert.Equal(t, uint8(4), d.Size)

	d, ok = Find(types.OffsetCAP)
	assert.True(t, ok)
	assert.Equal(t, "cap", d.Name)
	assert.False(t, d.Writable)
	assert.Equal(t, uint8(8), d.Size)
}

func TestFind_UnknownOffset(t *testing.T) {
	_, ok := Find(0xFFFF)
	assert.False(t, ok)
}
