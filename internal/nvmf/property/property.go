// Package property implements the Fabrics Property Get/Set handlers:
// validation against the Register Property Table
// (internal/nvmf/register) and dispatch to the virtual controller.
//
// Grounded on nvmf_property_get/nvmf_property_set in
// original_source/lib/nvmf/session.c.
package property

import (
	"context"

	"github.com/liujun01203/spdk/internal/logger"
	"github.com/liujun01203/spdk/internal/nvmf/controller"
	"github.com/liujun01203/spdk/internal/nvmf/register"
	"github.com/liujun01203/spdk/internal/nvmf/types"
)

// Get validates size and offset against the register table and, if an
// entry matches, returns its raw value. An offset matching no entry
// succeeds with value 0 (a reserved property reads as zero), matching
// the original's "prop == NULL || prop->get_cb == NULL" early return.
func Get(ctx context.Context, vc *controller.VirtualController, offset uint32, size uint8) (uint64, error) {
	if size != 4 && size != 8 {
		return 0, types.InvalidConnectCommandField("property get: invalid size", 0)
	}

	desc, ok := register.Find(offset)
	if !ok {
		logger.DebugCtx(ctx, "property get: reserved offset", logger.Offset(offset))
		return 0, nil
	}

	if size != desc.Size {
		logger.DebugCtx(ctx, "property get: size mismatch",
			logger.Offset(offset), logger.Register(desc.Name), logger.Size(size))
		return 0, types.InvalidConnectCommandField("property get: size mismatch", uint16(offset))
	}

	value := vc.GetRegister(desc.Name)
	logger.DebugCtx(ctx, "property get",
		logger.Offset(offset), logger.Register(desc.Name), logger.Value(value))
	return value, nil
}

// Set validates size and offset against the register table and, for a
// writable entry, dispatches the write to the virtual controller. An
// unknown or read-only offset is rejected, matching the original's
// "prop == NULL || prop->set_cb == NULL" check.
func Set(ctx context.Context, vc *controller.VirtualController, offset uint32, size uint8, value uint64) error {
	desc, ok := register.Find(offset)
	if !ok || !desc.Writable {
		logger.DebugCtx(ctx, "property set: invalid offset", logger.Offset(offset))
		return types.InvalidConnectCommandField("property set: invalid offset", uint16(offset))
	}

	if size != desc.Size {
		logger.DebugCtx(ctx, "property set: size mismatch",
			logger.Offset(offset), logger.Register(desc.Name), logger.Size(size))
		return types.InvalidConnectCommandField("property set: size mismatch", uint16(offset))
	}

	if size == 4 {
		value = uint64(uint32(value))
	}

	logger.DebugCtx(ctx, "property set",
		logger.Offset(offset), logger.Register(desc.Name), logger.Value(value))

	switch desc.Name {
	case "cc":
		if err := vc.SetCC(types.CC(value)); err != nil {
			logger.WarnCtx(ctx, "property set: rejected", logger.Err(err))
			return types.InvalidConnectCommandField(err.Error(), uint16(offset))
		}
	default:
		return types.InvalidConnectCommandField("property set: invalid offset", uint16(offset))
	}

	return nil
}
