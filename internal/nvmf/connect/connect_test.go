package connect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liujun01203/spdk/internal/nvmf/controller"
	"github.com/liujun01203/spdk/internal/nvmf/session"
	"github.com/liujun01203/spdk/internal/nvmf/subsystem"
	"github.com/liujun01203/spdk/internal/nvmf/types"
)

func testConfig() Config {
	return Config{
		ControllerConfig: controller.Config{
			DefaultMaxQueueDepth: 128,
			H2CMaxMsg:            8192,
			C2HMaxMsg:            8192,
			MaxRecvDataXfer:      131072,
		},
		MaxQueuesPerSession: 4,
		BackingIdentify: func(subnqn string) (types.ControllerIdentify, error) {
			return types.ControllerIdentify{}, nil
		},
	}
}

func newRegistryWith(sub *subsystem.Subsystem) *subsystem.Registry {
	r := subsystem.NewRegistry()
	r.Register(sub)
	return r
}

func TestHandle_AdminConnect(t *testing.T) {
	sub := &subsystem.Subsystem{NQN: "nqn.test", Subtype: subsystem.SubtypeDiscovery}
	reg := newRegistryWith(sub)

	conn, resp, err := Handle(context.Background(), reg, testConfig(),
		Command{RecFmt: 0, QID: 0, SQSize: 31},
		Data{CntlID: DynamicCntlID, SubNQN: "nqn.test", HostNQN: "nqn.host"})

	require.NoError(t, err)
	assert.Equal(t, FixedCntlID, resp.CntlID)
	assert.Equal(t, session.ConnTypeAdmin, conn.Type)
	assert.NotNil(t, sub.Session())
}

func TestHandle_AdminConnect_UnknownSubsystem(t *testing.T) {
	reg := subsystem.NewRegistry()
	_, _, err := Handle(context.Background(), reg, testConfig(),
		Command{QID: 0}, Data{CntlID: DynamicCntlID, SubNQN: "nqn.missing"})
	assert.Error(t, err)
}

func TestHandle_AdminConnect_RejectsFixedCntlID(t *testing.T) {
	sub := &subsystem.Subsystem{NQN: "nqn.test"}
	reg := newRegistryWith(sub)

	_, _, err := Handle(context.Background(), reg, testConfig(),
		Command{QID: 0}, Data{CntlID: FixedCntlID, SubNQN: "nqn.test"})
	assert.Error(t, err)
}

func TestHandle_AdminConnect_BusyWhenAlreadyBound(t *testing.T) {
	sub := &subsystem.Subsystem{NQN: "nqn.test"}
	reg := newRegistryWith(sub)
	cfg := testConfig()

	_, _, err := Handle(context.Background(), reg, cfg, Command{QID: 0}, Data{CntlID: DynamicCntlID, SubNQN: "nqn.test"})
	require.NoError(t, err)

	_, _, err = Handle(context.Background(), reg, cfg, Command{QID: 0}, Data{CntlID: DynamicCntlID, SubNQN: "nqn.test"})
	ferr, ok := err.(*types.FabricError)
	require.True(t, ok)
	assert.Equal(t, types.StatusFabricControllerBusy, ferr.StatusCode)
}

func TestHandle_IOConnect_BeforeEnableRejected(t *testing.T) {
	sub := &subsystem.Subsystem{NQN: "nqn.test"}
	reg := newRegistryWith(sub)
	cfg := testConfig()

	_, _, err := Handle(context.Background(), reg, cfg, Command{QID: 0}, Data{CntlID: DynamicCntlID, SubNQN: "nqn.test"})
	require.NoError(t, err)

	_, _, err = Handle(context.Background(), reg, cfg, Command{QID: 1}, Data{CntlID: FixedCntlID, SubNQN: "nqn.test"})
	assert.Error(t, err)
}

func TestHandle_IOConnect_AfterEnableSucceeds(t *testing.T) {
	sub := &subsystem.Subsystem{NQN: "nqn.test"}
	reg := newRegistryWith(sub)
	cfg := testConfig()

	_, _, err := Handle(context.Background(), reg, cfg, Command{QID: 0}, Data{CntlID: DynamicCntlID, SubNQN: "nqn.test"})
	require.NoError(t, err)

	sess, ok := sub.Session().(*session.Session)
	require.True(t, ok)
	require.NoError(t, sess.Controller.SetCC(sess.Controller.CC.
		WithEN(true).
		WithIOSQES(controller.ValidIOSQES).
		WithIOCQES(controller.ValidIOCQES)))

	conn, resp, err := Handle(context.Background(), reg, cfg, Command{QID: 1}, Data{CntlID: FixedCntlID, SubNQN: "nqn.test"})
	require.NoError(t, err)
	assert.Equal(t, FixedCntlID, resp.CntlID)
	assert.Equal(t, session.ConnTypeIO, conn.Type)
	assert.Equal(t, 2, sess.NumConnections())
}

func TestHandle_IOConnect_BadIOSQESRejected(t *testing.T) {
	sub := &subsystem.Subsystem{NQN: "nqn.test"}
	reg := newRegistryWith(sub)
	cfg := testConfig()

	_, _, err := Handle(context.Background(), reg, cfg, Command{QID: 0}, Data{CntlID: DynamicCntlID, SubNQN: "nqn.test"})
	require.NoError(t, err)

	sess, _ := sub.Session().(*session.Session)
	require.NoError(t, sess.Controller.SetCC(sess.Controller.CC.WithEN(true).WithIOSQES(0xF)))

	_, _, err = Handle(context.Background(), reg, cfg, Command{QID: 1}, Data{CntlID: FixedCntlID, SubNQN: "nqn.test"})
	assert.Error(t, err)
}

func TestHandle_IOConnect_ConnectionLimitReached(t *testing.T) {
	sub := &subsystem.Subsystem{NQN: "nqn.test"}
	reg := newRegistryWith(sub)
	cfg := testConfig()
	cfg.MaxQueuesPerSession = 1

	_, _, err := Handle(context.Background(), reg, cfg, Command{QID: 0}, Data{CntlID: DynamicCntlID, SubNQN: "nqn.test"})
	require.NoError(t, err)

	sess, _ := sub.Session().(*session.Session)
	require.NoError(t, sess.Controller.SetCC(sess.Controller.CC.
		WithEN(true).WithIOSQES(controller.ValidIOSQES).WithIOCQES(controller.ValidIOCQES)))

	_, _, err = Handle(context.Background(), reg, cfg, Command{QID: 1}, Data{CntlID: FixedCntlID, SubNQN: "nqn.test"})
	ferr, ok := err.(*types.FabricError)
	require.True(t, ok)
	assert.Equal(t, types.StatusFabricControllerBusy, ferr.StatusCode)
}
