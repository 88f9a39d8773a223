package wren

import (
	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/internal/registry"
)

// Handle pins a VM value so it survives past the current native call. The
// value stays reachable until Release; a handle that is never released leaks
// for the lifetime of the interpreter.
type Handle struct {
	raw hostapi.Handle
}

// Raw returns the host's opaque handle token.
func (h Handle) Raw() hostapi.Handle {
	return h.raw
}

// GetSlotHandleUnchecked pins the value in slot without validating the
// index.
func (vm VM) GetSlotHandleUnchecked(slot int) Handle {
	return Handle{raw: registry.VM().GetSlotHandle(vm.raw, slot)}
}

// GetSlotHandle pins the value in slot and returns the handle keeping it
// alive.
func (vm VM) GetSlotHandle(slot int) Handle {
	vm.validateSlot(slot)
	return vm.GetSlotHandleUnchecked(slot)
}

// SetSlotHandleUnchecked stores the value pinned by handle into slot without
// validating the index.
func (vm VM) SetSlotHandleUnchecked(slot int, handle Handle) {
	registry.VM().SetSlotHandle(vm.raw, slot, handle.raw)
}

// SetSlotHandle stores the value pinned by handle into slot. The handle
// stays valid; storing does not release it.
func (vm VM) SetSlotHandle(slot int, handle Handle) {
	vm.validateSlot(slot)
	vm.SetSlotHandleUnchecked(slot, handle)
}

// Release unpins the handle's value. The handle must not be used afterward.
func (h Handle) Release(vm VM) {
	registry.VM().ReleaseHandle(vm.raw, h.raw)
}
