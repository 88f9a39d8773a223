package wren

import (
	"unicode/utf8"

	"github.com/domekit/domekit/errors"
	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/internal/registry"
)

// Type is the kind of value held in a slot.
type Type = hostapi.ValueType

// ForeignMethod is a native method or allocator as plugin code writes it:
// it receives the validated VM wrapper instead of the raw host token.
type ForeignMethod func(vm VM)

// VM is the gate for all slot operations. Plugin code receives one in every
// foreign method and audio callback; it must not outlive that call.
type VM struct {
	raw hostapi.VM
}

// FromRaw wraps the host's opaque VM token. Trampolines and test hosts use
// it; plugin code normally receives a ready-made VM.
func FromRaw(raw hostapi.VM) VM {
	return VM{raw: raw}
}

// Raw returns the host's opaque VM token.
func (vm VM) Raw() hostapi.VM {
	return vm.raw
}

// EnsureSlots makes sure the slot array holds at least slotCount slots.
func (vm VM) EnsureSlots(slotCount int) {
	registry.VM().EnsureSlots(vm.raw, slotCount)
}

// SlotCount returns the number of slots available to the current call.
func (vm VM) SlotCount() int {
	return registry.VM().SlotCount(vm.raw)
}

func (vm VM) validateSlot(slot int) {
	count := vm.SlotCount()
	if slot < 0 || slot >= count {
		panic(errors.OutOfBounds(errors.PhaseSlot, "slot", slot, count))
	}
}

func (vm VM) validateSlotType(slot int, want Type) {
	got := vm.SlotType(slot)
	if got != want {
		panic(errors.TypeMismatch(errors.PhaseSlot, slot, want.String(), got.String()))
	}
}

// SlotTypeUnchecked returns the kind of value in slot without validating the
// index.
func (vm VM) SlotTypeUnchecked(slot int) Type {
	return registry.VM().SlotType(vm.raw, slot)
}

// SlotType returns the kind of value in slot.
func (vm VM) SlotType(slot int) Type {
	vm.validateSlot(slot)
	return vm.SlotTypeUnchecked(slot)
}

// SetSlotNullUnchecked sets slot to null without validating the index.
func (vm VM) SetSlotNullUnchecked(slot int) {
	registry.VM().SetSlotNull(vm.raw, slot)
}

// SetSlotNull sets slot to null.
func (vm VM) SetSlotNull(slot int) {
	vm.validateSlot(slot)
	vm.SetSlotNullUnchecked(slot)
}

// SetSlotBoolUnchecked sets slot to a Bool without validating the index.
func (vm VM) SetSlotBoolUnchecked(slot int, value bool) {
	registry.VM().SetSlotBool(vm.raw, slot, value)
}

// SetSlotBool sets slot to a Bool.
func (vm VM) SetSlotBool(slot int, value bool) {
	vm.validateSlot(slot)
	vm.SetSlotBoolUnchecked(slot, value)
}

// SetSlotDoubleUnchecked sets slot to a Num without validating the index.
func (vm VM) SetSlotDoubleUnchecked(slot int, value float64) {
	registry.VM().SetSlotDouble(vm.raw, slot, value)
}

// SetSlotDouble sets slot to a Num.
func (vm VM) SetSlotDouble(slot int, value float64) {
	vm.validateSlot(slot)
	vm.SetSlotDoubleUnchecked(slot, value)
}

// SetSlotBytesUnchecked sets slot to a String from raw bytes without
// validating the index.
func (vm VM) SetSlotBytesUnchecked(slot int, data []byte) {
	registry.VM().SetSlotBytes(vm.raw, slot, data)
}

// SetSlotBytes sets slot to a String from raw bytes. The VM copies the data;
// the slice may be reused after the call.
func (vm VM) SetSlotBytes(slot int, data []byte) {
	vm.validateSlot(slot)
	vm.SetSlotBytesUnchecked(slot, data)
}

// SetSlotStringUnchecked sets slot to a String without validating the index.
func (vm VM) SetSlotStringUnchecked(slot int, text string) {
	vm.SetSlotBytesUnchecked(slot, []byte(text))
}

// SetSlotString sets slot to a String.
func (vm VM) SetSlotString(slot int, text string) {
	vm.SetSlotBytes(slot, []byte(text))
}

// SetSlotNewListUnchecked sets slot to a new empty List without validating
// the index.
func (vm VM) SetSlotNewListUnchecked(slot int) {
	registry.VM().SetSlotNewList(vm.raw, slot)
}

// SetSlotNewList sets slot to a new empty List.
func (vm VM) SetSlotNewList(slot int) {
	vm.validateSlot(slot)
	vm.SetSlotNewListUnchecked(slot)
}

// SetSlotNewMapUnchecked sets slot to a new empty Map without validating the
// index.
func (vm VM) SetSlotNewMapUnchecked(slot int) {
	registry.VM().SetSlotNewMap(vm.raw, slot)
}

// SetSlotNewMap sets slot to a new empty Map.
func (vm VM) SetSlotNewMap(slot int) {
	vm.validateSlot(slot)
	vm.SetSlotNewMapUnchecked(slot)
}

// GetSlotBoolUnchecked reads a Bool from slot without validating index or
// kind.
func (vm VM) GetSlotBoolUnchecked(slot int) bool {
	return registry.VM().GetSlotBool(vm.raw, slot)
}

// GetSlotBool reads a Bool from slot.
func (vm VM) GetSlotBool(slot int) bool {
	vm.validateSlotType(slot, hostapi.TypeBool)
	return vm.GetSlotBoolUnchecked(slot)
}

// GetSlotDoubleUnchecked reads a Num from slot without validating index or
// kind.
func (vm VM) GetSlotDoubleUnchecked(slot int) float64 {
	return registry.VM().GetSlotDouble(vm.raw, slot)
}

// GetSlotDouble reads a Num from slot.
func (vm VM) GetSlotDouble(slot int) float64 {
	vm.validateSlotType(slot, hostapi.TypeNum)
	return vm.GetSlotDoubleUnchecked(slot)
}

// GetSlotBytesUnchecked reads a String from slot as raw bytes without
// validating index or kind. The returned slice is a copy and stays valid
// after control returns to the host.
func (vm VM) GetSlotBytesUnchecked(slot int) []byte {
	data := registry.VM().GetSlotBytes(vm.raw, slot)
	return append([]byte(nil), data...)
}

// GetSlotBytes reads a String from slot as raw bytes.
func (vm VM) GetSlotBytes(slot int) []byte {
	vm.validateSlotType(slot, hostapi.TypeString)
	return vm.GetSlotBytesUnchecked(slot)
}

// GetSlotStringUnchecked reads a String from slot without validating index
// or kind. VM strings are arbitrary bytes; a sequence that is not valid
// UTF-8 yields a decode error instead of corrupting data.
func (vm VM) GetSlotStringUnchecked(slot int) (string, error) {
	data := registry.VM().GetSlotBytes(vm.raw, slot)
	if !utf8.Valid(data) {
		return "", errors.InvalidUTF8(slot, data)
	}
	return string(data), nil
}

// GetSlotString reads a String from slot, validating it decodes as UTF-8.
func (vm VM) GetSlotString(slot int) (string, error) {
	vm.validateSlotType(slot, hostapi.TypeString)
	return vm.GetSlotStringUnchecked(slot)
}

// GetListCountUnchecked returns the length of the List in listSlot without
// validating index or kind.
func (vm VM) GetListCountUnchecked(listSlot int) int {
	return registry.VM().GetListCount(vm.raw, listSlot)
}

// GetListCount returns the length of the List in listSlot.
func (vm VM) GetListCount(listSlot int) int {
	vm.validateSlotType(listSlot, hostapi.TypeList)
	return vm.GetListCountUnchecked(listSlot)
}

// List indices follow the interpreter's convention: negative values count
// from the end. Insertion additionally accepts one past either end.
func (vm VM) validateListIndex(listSlot, index int, insert bool) {
	count := vm.GetListCount(listSlot)
	lo, hi := -count, count-1
	if insert {
		lo, hi = -count-1, count
	}
	if index < lo || index > hi {
		panic(errors.OutOfBounds(errors.PhaseSlot, "list index", index, count))
	}
}

// GetListElementUnchecked copies the index-th element of the List in
// listSlot into elementSlot without validation.
func (vm VM) GetListElementUnchecked(listSlot, index, elementSlot int) {
	registry.VM().GetListElement(vm.raw, listSlot, index, elementSlot)
}

// GetListElement copies the index-th element of the List in listSlot into
// elementSlot.
func (vm VM) GetListElement(listSlot, index, elementSlot int) {
	vm.validateListIndex(listSlot, index, false)
	vm.validateSlot(elementSlot)
	vm.GetListElementUnchecked(listSlot, index, elementSlot)
}

// SetListElementUnchecked stores the value in elementSlot as the index-th
// element of the List in listSlot without validation.
func (vm VM) SetListElementUnchecked(listSlot, index, elementSlot int) {
	registry.VM().SetListElement(vm.raw, listSlot, index, elementSlot)
}

// SetListElement stores the value in elementSlot as the index-th element of
// the List in listSlot.
func (vm VM) SetListElement(listSlot, index, elementSlot int) {
	vm.validateListIndex(listSlot, index, false)
	vm.validateSlot(elementSlot)
	vm.SetListElementUnchecked(listSlot, index, elementSlot)
}

// InsertInListUnchecked inserts the value in elementSlot into the List in
// listSlot at index without validation.
func (vm VM) InsertInListUnchecked(listSlot, index, elementSlot int) {
	registry.VM().InsertInList(vm.raw, listSlot, index, elementSlot)
}

// InsertInList inserts the value in elementSlot into the List in listSlot at
// index. One past the end is a valid insertion point.
func (vm VM) InsertInList(listSlot, index, elementSlot int) {
	vm.validateListIndex(listSlot, index, true)
	vm.validateSlot(elementSlot)
	vm.InsertInListUnchecked(listSlot, index, elementSlot)
}

// GetMapCountUnchecked returns the number of entries in the Map in mapSlot
// without validation.
func (vm VM) GetMapCountUnchecked(mapSlot int) int {
	return registry.VM().GetMapCount(vm.raw, mapSlot)
}

// GetMapCount returns the number of entries in the Map in mapSlot.
func (vm VM) GetMapCount(mapSlot int) int {
	vm.validateSlotType(mapSlot, hostapi.TypeMap)
	return vm.GetMapCountUnchecked(mapSlot)
}

// MapContainsKeyUnchecked reports whether the Map in mapSlot contains the
// key in keySlot, without validation.
func (vm VM) MapContainsKeyUnchecked(mapSlot, keySlot int) bool {
	return registry.VM().MapContainsKey(vm.raw, mapSlot, keySlot)
}

// MapContainsKey reports whether the Map in mapSlot contains the key in
// keySlot. The key must be hashable; the accessor cannot verify that, so it
// is an obligation on the caller.
func (vm VM) MapContainsKey(mapSlot, keySlot int) bool {
	vm.validateSlotType(mapSlot, hostapi.TypeMap)
	vm.validateSlot(keySlot)
	return vm.MapContainsKeyUnchecked(mapSlot, keySlot)
}

// GetMapValueUnchecked copies the value keyed by keySlot in the Map in
// mapSlot into valueSlot, without validation.
func (vm VM) GetMapValueUnchecked(mapSlot, keySlot, valueSlot int) {
	registry.VM().GetMapValue(vm.raw, mapSlot, keySlot, valueSlot)
}

// GetMapValue copies the value keyed by keySlot in the Map in mapSlot into
// valueSlot. The key must be hashable (caller obligation).
func (vm VM) GetMapValue(mapSlot, keySlot, valueSlot int) {
	vm.validateSlotType(mapSlot, hostapi.TypeMap)
	vm.validateSlot(keySlot)
	vm.validateSlot(valueSlot)
	vm.GetMapValueUnchecked(mapSlot, keySlot, valueSlot)
}

// SetMapValueUnchecked stores the value in valueSlot under the key in
// keySlot in the Map in mapSlot, without validation.
func (vm VM) SetMapValueUnchecked(mapSlot, keySlot, valueSlot int) {
	registry.VM().SetMapValue(vm.raw, mapSlot, keySlot, valueSlot)
}

// SetMapValue stores the value in valueSlot under the key in keySlot in the
// Map in mapSlot. The key must be hashable (caller obligation).
func (vm VM) SetMapValue(mapSlot, keySlot, valueSlot int) {
	vm.validateSlotType(mapSlot, hostapi.TypeMap)
	vm.validateSlot(keySlot)
	vm.validateSlot(valueSlot)
	vm.SetMapValueUnchecked(mapSlot, keySlot, valueSlot)
}

// RemoveMapValueUnchecked removes the entry keyed by keySlot from the Map in
// mapSlot, storing the removed value in removedValueSlot, without validation.
func (vm VM) RemoveMapValueUnchecked(mapSlot, keySlot, removedValueSlot int) {
	registry.VM().RemoveMapValue(vm.raw, mapSlot, keySlot, removedValueSlot)
}

// RemoveMapValue removes the entry keyed by keySlot from the Map in mapSlot,
// storing the removed value (or null) in removedValueSlot. The key must be
// hashable (caller obligation).
func (vm VM) RemoveMapValue(mapSlot, keySlot, removedValueSlot int) {
	vm.validateSlotType(mapSlot, hostapi.TypeMap)
	vm.validateSlot(keySlot)
	vm.validateSlot(removedValueSlot)
	vm.RemoveMapValueUnchecked(mapSlot, keySlot, removedValueSlot)
}

// AbortFiberUnchecked aborts the current fiber with the error value in slot,
// without validating the index.
func (vm VM) AbortFiberUnchecked(slot int) {
	registry.VM().AbortFiber(vm.raw, slot)
}

// AbortFiber aborts the current fiber with the error value in slot. After a
// successful abort request the current native call must return without
// touching the slot array again.
func (vm VM) AbortFiber(slot int) {
	vm.validateSlot(slot)
	vm.AbortFiberUnchecked(slot)
}

// GetVariableUnchecked looks up the top-level variable name in module and
// stores it in slot, without validating the index. The variable must exist;
// the interpreter surface gives no way to check.
func (vm VM) GetVariableUnchecked(module, name string, slot int) {
	registry.VM().GetVariable(vm.raw, module, name, slot)
}

// GetVariable looks up the top-level variable name in module and stores it
// in slot. The variable must exist (caller obligation).
func (vm VM) GetVariable(module, name string, slot int) {
	vm.validateSlot(slot)
	vm.GetVariableUnchecked(module, name, slot)
}
