package wren

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/domekit/domekit/errors"
	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/internal/registry"
	"github.com/domekit/domekit/panics"
)

// wrapper is what this layer stores in a host-allocated foreign cell: the
// payload pointer plus a type tag checked on every retrieval. A cell whose
// Data is not a wrapper was populated by someone else and is never touched.
type wrapper struct {
	tag reflect.Type
	ptr any
}

// Finalizer is implemented by foreign payloads that need teardown when the
// VM collects the owning object. Finalize runs on the interpreter thread,
// under panic capture, with no slot access available.
type Finalizer interface {
	Finalize()
}

// SetSlotNewForeign asks the VM to allocate a foreign object of the class
// held in classSlot, places it in slot, and installs instance as its
// payload. It returns the installed payload pointer so the allocator can
// finish construction in place.
//
// Package-level rather than a VM method so each payload type gets its own
// tag.
func SetSlotNewForeign[T any](vm VM, slot, classSlot int, instance T) *T {
	vm.validateSlot(slot)
	vm.validateSlot(classSlot)
	return SetSlotNewForeignUnchecked(vm, slot, classSlot, instance)
}

// SetSlotNewForeignUnchecked is SetSlotNewForeign without slot validation.
func SetSlotNewForeignUnchecked[T any](vm VM, slot, classSlot int, instance T) *T {
	cell := registry.VM().SetSlotNewForeign(vm.raw, slot, classSlot)
	ptr := &instance
	cell.Data = wrapper{tag: reflect.TypeOf((*T)(nil)).Elem(), ptr: ptr}
	return ptr
}

// GetSlotForeign retrieves the payload of the foreign object in slot,
// faulting unless the object was installed by this layer with exactly type
// T.
func GetSlotForeign[T any](vm VM, slot int) *T {
	vm.validateSlotType(slot, hostapi.TypeForeign)
	cell := registry.VM().GetSlotForeign(vm.raw, slot)
	w, ok := cell.Data.(wrapper)
	if !ok {
		panic(errors.TypeMismatch(errors.PhaseForeign, slot,
			reflect.TypeOf((*T)(nil)).Elem().String(), "a foreign object not installed by this layer"))
	}
	want := reflect.TypeOf((*T)(nil)).Elem()
	if w.tag != want {
		panic(errors.TypeMismatch(errors.PhaseForeign, slot, want.String(), w.tag.String()))
	}
	return w.ptr.(*T)
}

// GetSlotForeignUnchecked retrieves the payload of the foreign object in
// slot without any validation. The slot must hold a foreign object installed
// by this layer with exactly type T.
func GetSlotForeignUnchecked[T any](vm VM, slot int) *T {
	cell := registry.VM().GetSlotForeign(vm.raw, slot)
	return cell.Data.(wrapper).ptr.(*T)
}

// GetSlotRawForeign returns the host-allocated cell of the foreign object in
// slot without interpreting its payload. For objects created outside this
// layer.
func GetSlotRawForeign(vm VM, slot int) *hostapi.ForeignCell {
	vm.validateSlotType(slot, hostapi.TypeForeign)
	return GetSlotRawForeignUnchecked(vm, slot)
}

// GetSlotRawForeignUnchecked is GetSlotRawForeign without validation.
func GetSlotRawForeignUnchecked(vm VM, slot int) *hostapi.ForeignCell {
	return registry.VM().GetSlotForeign(vm.raw, slot)
}

// CellFinalizer is the finalizer installed for every class registered
// through this layer. It runs the payload's Finalize method when the payload
// has one, under panic capture: the VM is deallocating the object and an
// unwind here must not reach it. There is no way to surface the failure to
// the fiber at this point, so it only goes to the logger.
func CellFinalizer(cell *hostapi.ForeignCell) {
	w, ok := cell.Data.(wrapper)
	if !ok {
		return
	}
	f, ok := w.ptr.(Finalizer)
	if !ok {
		return
	}
	if rec := panics.Capture(f.Finalize); rec != nil {
		Logger().Warn("foreign finalizer panicked",
			zap.String("type", w.tag.String()),
			zap.String("message", rec.Message))
	}
}
