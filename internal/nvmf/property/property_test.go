package property

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liujun01203/spdk/internal/nvmf/controller"
	"github.com/liujun01203/spdk/internal/nvmf/types"
)

func newTestVC() *controller.VirtualController {
	return controller.NewDiscovery(controller.Config{
		DefaultMaxQueueDepth: 128,
		H2CMaxMsg:            8192,
		C2HMaxMsg:            8192,
	})
}

func TestGet_CAP(t *testing.T) {
	vc := newTestVC()
	value, err := Get(context.Background(), vc, types.OffsetCAP, 8)
	require.NoError(t, err)
	assert.Equal(t, uint64(vc.CAP), value)
}

func TestGet_SizeMismatch(t *testing.T) {
	vc := newTestVC()
	_, err := Get(context.Background(), vc, types.OffsetCAP, 4)
	assert.Error(t, err)
}

func TestGet_ReservedOffsetReadsZero(t *testing.T) {
	vc := newTestVC()
	value, err := Get(context.Background(), vc, 0xFF, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), value)
}

func TestSet_CC_Enable(t *testing.T) {
	vc := newTestVC()
	err := Set(context.Background(), vc, types.OffsetCC, 4, uint64(vc.CC.WithEN(true)))
	require.NoError(t, err)
	assert.True(t, vc.CC.EN())
	assert.True(t, vc.CSTS.RDY())
}

func TestSet_ReadOnlyOffsetRejected(t *testing.T) {
	vc := newTestVC()
	err := Set(context.Background(), vc, types.OffsetCAP, 8, 0)
	assert.Error(t, err)
}

func TestSet_UnknownOffsetRejected(t *testing.T) {
	vc := newTestVC()
	err := Set(context.Background(), vc, 0xFF, 4, 0)
	assert.Error(t, err)
}

func TestSet_SizeMismatch(t *testing.T) {
	vc := newTestVC()
	err := Set(context.Background(), vc, types.OffsetCC, 8, 0)
	assert.Error(t, err)
}
