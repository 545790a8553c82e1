package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liujun01203/spdk/internal/nvmf/types"
)

func testConfig() Config {
	return Config{
		DefaultMaxQueueDepth: 128,
		H2CMaxMsg:            8192,
		C2HMaxMsg:            8192,
		MaxRecvDataXfer:      131072,
	}
}

func TestNewDiscovery(t *testing.T) {
	vc := NewDiscovery(testConfig())

	assert.True(t, vc.CAP.CQR())
	assert.True(t, vc.CAP.CSSNVM())
	assert.Equal(t, uint16(127), vc.CAP.MQES())
	assert.False(t, vc.CC.EN())
	assert.False(t, vc.CSTS.RDY())
}

func TestNewNVM(t *testing.T) {
	base := types.ControllerIdentify{AERL: 3, KAS: 20}
	vc := NewNVM(base, testConfig())

	assert.False(t, vc.CAP.CQR())
	assert.Equal(t, uint8(1), vc.CAP.TO())
	assert.Equal(t, uint8(0), vc.Identify.AERL, "AERL is overridden by the session layer")
	assert.Equal(t, uint16(10), vc.Identify.KAS)
}

func TestGetRegister(t *testing.T) {
	vc := NewDiscovery(testConfig())
	assert.Equal(t, uint64(vc.CAP), vc.GetRegister("cap"))
	assert.Equal(t, uint64(vc.VS), vc.GetRegister("vs"))
	assert.Equal(t, uint64(vc.CC), vc.GetRegister("cc"))
	assert.Equal(t, uint64(vc.CSTS), vc.GetRegister("csts"))
	assert.Equal(t, uint64(0), vc.GetRegister("bogus"))
}

func TestSetCC_Enable(t *testing.T) {
	vc := NewDiscovery(testConfig())

	err := vc.SetCC(vc.CC.WithEN(true))
	require.NoError(t, err)
	assert.True(t, vc.CC.EN())
	assert.True(t, vc.CSTS.RDY())
}

func TestSetCC_EnableToDisableRejected(t *testing.T) {
	vc := NewDiscovery(testConfig())
	require.NoError(t, vc.SetCC(vc.CC.WithEN(true)))

	err := vc.SetCC(vc.CC.WithEN(false))
	assert.Error(t, err, "EN 1->0 (reset) is not supported and must be rejected")
	assert.True(t, vc.CC.EN(), "state must be unchanged on rejection")
	assert.True(t, vc.CSTS.RDY())
}

func TestSetCC_ShutdownNormal(t *testing.T) {
	vc := NewDiscovery(testConfig())
	require.NoError(t, vc.SetCC(vc.CC.WithEN(true)))

	err := vc.SetCC(vc.CC.WithSHN(types.SHNNormal))
	require.NoError(t, err)
	assert.False(t, vc.CC.EN())
	assert.False(t, vc.CSTS.RDY())
	assert.Equal(t, types.SHSTComplete, vc.CSTS.SHST())
}

func TestSetCC_ShutdownAbrupt(t *testing.T) {
	vc := NewDiscovery(testConfig())
	require.NoError(t, vc.SetCC(vc.CC.WithEN(true)))

	err := vc.SetCC(vc.CC.WithSHN(types.SHNAbrupt))
	require.NoError(t, err)
	assert.False(t, vc.CC.EN())
	assert.Equal(t, types.SHSTComplete, vc.CSTS.SHST())
}

func TestSetCC_ShutdownNoneClearsWithoutCSTSChange(t *testing.T) {
	vc := NewDiscovery(testConfig())
	require.NoError(t, vc.SetCC(vc.CC.WithSHN(types.SHNNormal)))
	preCSTS := vc.CSTS

	err := vc.SetCC(vc.CC.WithSHN(types.SHNNone))
	require.NoError(t, err)
	assert.Equal(t, types.SHNNone, vc.CC.SHN())
	assert.Equal(t, preCSTS, vc.CSTS)
}

func TestSetCC_InvalidSHNRejected(t *testing.T) {
	vc := NewDiscovery(testConfig())

	err := vc.SetCC(types.CC(uint32(vc.CC) | (0x3 << 14)))
	assert.Error(t, err)
}

func TestSetCC_IOSQESIOCQESAcceptedUnvalidated(t *testing.T) {
	vc := NewDiscovery(testConfig())

	err := vc.SetCC(vc.CC.WithIOSQES(0xF).WithIOCQES(0xF))
	require.NoError(t, err, "IOSQES/IOCQES are only validated at I/O Connect time")
	assert.Equal(t, uint8(0xF), vc.CC.IOSQES())
	assert.Equal(t, uint8(0xF), vc.CC.IOCQES())
}

func TestSetCC_ReservedBitsRejected(t *testing.T) {
	vc := NewDiscovery(testConfig())

	newCC := types.CC(uint32(vc.CC) | (1 << 7)) // MPS bit
	err := vc.SetCC(newCC)
	assert.Error(t, err)
	assert.Equal(t, types.CC(0), vc.CC, "rejected write must leave CC unchanged")
}
