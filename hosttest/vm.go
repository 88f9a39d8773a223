package hosttest

import (
	"fmt"

	"github.com/domekit/domekit/hostapi"
)

// value is one slot cell. nil is null; bool, float64 and []byte carry the
// primitive kinds; the pointer types below carry the rest.
type value any

type listValue struct {
	items []value
}

type mapValue struct {
	entries map[string]mapEntry
}

type mapEntry struct {
	key value
	val value
}

type foreignValue struct {
	cell  *hostapi.ForeignCell
	class string
}

// classValue stands in for a class object looked up with GetVariable; the
// native interop surface reports it as Unknown.
type classValue struct {
	module string
	name   string
}

type handleToken struct {
	id int
}

// VM is a fake interpreter: a slot array plus a handle table and an abort
// flag. One VM models one native call's view of the interpreter.
type VM struct {
	host       *Host
	slots      []value
	handles    map[int]value
	nextHandle int

	aborted bool
	aborts  []string
}

// NewVM returns a fresh interpreter view bound to this host.
func (h *Host) NewVM() *VM {
	return &VM{host: h, handles: map[int]value{}}
}

// Aborted reports whether a fiber abort was requested on this VM.
func (vm *VM) Aborted() bool {
	return vm.aborted
}

// AbortMessages returns the rendered error value of every abort request, in
// order.
func (vm *VM) AbortMessages() []string {
	return append([]string(nil), vm.aborts...)
}

// ClearAbort resets the abort flag, as the interpreter does between fiber
// runs.
func (vm *VM) ClearAbort() {
	vm.aborted = false
}

// HandleCount returns the number of live handles, for leak checks.
func (vm *VM) HandleCount() int {
	return len(vm.handles)
}

func (vm *VM) ensureSlots(n int) {
	for len(vm.slots) < n {
		vm.slots = append(vm.slots, nil)
	}
}

func render(v value) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return fmt.Sprintf("%t", t)
	case float64:
		return fmt.Sprintf("%g", t)
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// keyRepr is the hash key of a map key value. Only null, booleans, numbers
// and strings are hashable; anything else is a host-level fault, which is
// exactly why the accessor documents hashability as a caller obligation.
func keyRepr(v value) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return fmt.Sprintf("b:%t", t)
	case float64:
		return fmt.Sprintf("n:%g", t)
	case []byte:
		return "s:" + string(t)
	default:
		panic(fmt.Sprintf("hosttest: unhashable map key %T", v))
	}
}

func slotTypeOf(v value) hostapi.ValueType {
	switch v.(type) {
	case nil:
		return hostapi.TypeNull
	case bool:
		return hostapi.TypeBool
	case float64:
		return hostapi.TypeNum
	case []byte:
		return hostapi.TypeString
	case *listValue:
		return hostapi.TypeList
	case *mapValue:
		return hostapi.TypeMap
	case foreignValue:
		return hostapi.TypeForeign
	default:
		return hostapi.TypeUnknown
	}
}

func asVM(raw hostapi.VM) *VM {
	return raw.(*VM)
}

// listIndex normalizes a possibly negative index the way the interpreter
// does.
func listIndex(idx, length int, insert bool) int {
	if idx < 0 {
		if insert {
			return idx + length + 1
		}
		return idx + length
	}
	return idx
}

func vmTable() hostapi.VMAPIv0 {
	return hostapi.VMAPIv0{
		EnsureSlots: func(raw hostapi.VM, n int) {
			asVM(raw).ensureSlots(n)
		},
		SlotCount: func(raw hostapi.VM) int {
			return len(asVM(raw).slots)
		},
		SlotType: func(raw hostapi.VM, slot int) hostapi.ValueType {
			return slotTypeOf(asVM(raw).slots[slot])
		},

		SetSlotNull: func(raw hostapi.VM, slot int) {
			asVM(raw).slots[slot] = nil
		},
		SetSlotBool: func(raw hostapi.VM, slot int, v bool) {
			asVM(raw).slots[slot] = v
		},
		SetSlotDouble: func(raw hostapi.VM, slot int, v float64) {
			asVM(raw).slots[slot] = v
		},
		SetSlotBytes: func(raw hostapi.VM, slot int, data []byte) {
			asVM(raw).slots[slot] = append([]byte(nil), data...)
		},
		SetSlotNewList: func(raw hostapi.VM, slot int) {
			asVM(raw).slots[slot] = &listValue{}
		},
		SetSlotNewMap: func(raw hostapi.VM, slot int) {
			asVM(raw).slots[slot] = &mapValue{entries: map[string]mapEntry{}}
		},
		SetSlotNewForeign: func(raw hostapi.VM, slot, classSlot int) *hostapi.ForeignCell {
			vm := asVM(raw)
			class := ""
			if cv, ok := vm.slots[classSlot].(classValue); ok {
				class = cv.name
			}
			cell := &hostapi.ForeignCell{}
			vm.slots[slot] = foreignValue{cell: cell, class: class}
			return cell
		},

		GetSlotBool: func(raw hostapi.VM, slot int) bool {
			return asVM(raw).slots[slot].(bool)
		},
		GetSlotDouble: func(raw hostapi.VM, slot int) float64 {
			return asVM(raw).slots[slot].(float64)
		},
		GetSlotBytes: func(raw hostapi.VM, slot int) []byte {
			return asVM(raw).slots[slot].([]byte)
		},
		GetSlotForeign: func(raw hostapi.VM, slot int) *hostapi.ForeignCell {
			return asVM(raw).slots[slot].(foreignValue).cell
		},

		GetListCount: func(raw hostapi.VM, listSlot int) int {
			return len(asVM(raw).slots[listSlot].(*listValue).items)
		},
		GetListElement: func(raw hostapi.VM, listSlot, index, elementSlot int) {
			vm := asVM(raw)
			list := vm.slots[listSlot].(*listValue)
			vm.slots[elementSlot] = list.items[listIndex(index, len(list.items), false)]
		},
		SetListElement: func(raw hostapi.VM, listSlot, index, elementSlot int) {
			vm := asVM(raw)
			list := vm.slots[listSlot].(*listValue)
			list.items[listIndex(index, len(list.items), false)] = vm.slots[elementSlot]
		},
		InsertInList: func(raw hostapi.VM, listSlot, index, elementSlot int) {
			vm := asVM(raw)
			list := vm.slots[listSlot].(*listValue)
			at := listIndex(index, len(list.items), true)
			list.items = append(list.items, nil)
			copy(list.items[at+1:], list.items[at:])
			list.items[at] = vm.slots[elementSlot]
		},

		GetMapCount: func(raw hostapi.VM, mapSlot int) int {
			return len(asVM(raw).slots[mapSlot].(*mapValue).entries)
		},
		MapContainsKey: func(raw hostapi.VM, mapSlot, keySlot int) bool {
			vm := asVM(raw)
			m := vm.slots[mapSlot].(*mapValue)
			_, ok := m.entries[keyRepr(vm.slots[keySlot])]
			return ok
		},
		GetMapValue: func(raw hostapi.VM, mapSlot, keySlot, valueSlot int) {
			vm := asVM(raw)
			m := vm.slots[mapSlot].(*mapValue)
			vm.slots[valueSlot] = m.entries[keyRepr(vm.slots[keySlot])].val
		},
		SetMapValue: func(raw hostapi.VM, mapSlot, keySlot, valueSlot int) {
			vm := asVM(raw)
			m := vm.slots[mapSlot].(*mapValue)
			key := vm.slots[keySlot]
			m.entries[keyRepr(key)] = mapEntry{key: key, val: vm.slots[valueSlot]}
		},
		RemoveMapValue: func(raw hostapi.VM, mapSlot, keySlot, removedValueSlot int) {
			vm := asVM(raw)
			m := vm.slots[mapSlot].(*mapValue)
			repr := keyRepr(vm.slots[keySlot])
			entry, ok := m.entries[repr]
			if ok {
				delete(m.entries, repr)
				vm.slots[removedValueSlot] = entry.val
			} else {
				vm.slots[removedValueSlot] = nil
			}
		},

		AbortFiber: func(raw hostapi.VM, slot int) {
			vm := asVM(raw)
			vm.aborted = true
			vm.aborts = append(vm.aborts, render(vm.slots[slot]))
		},
		GetVariable: func(raw hostapi.VM, module, name string, slot int) {
			asVM(raw).slots[slot] = classValue{module: module, name: name}
		},

		GetSlotHandle: func(raw hostapi.VM, slot int) hostapi.Handle {
			vm := asVM(raw)
			vm.nextHandle++
			vm.handles[vm.nextHandle] = vm.slots[slot]
			return &handleToken{id: vm.nextHandle}
		},
		SetSlotHandle: func(raw hostapi.VM, slot int, handle hostapi.Handle) {
			vm := asVM(raw)
			vm.slots[slot] = vm.handles[handle.(*handleToken).id]
		},
		ReleaseHandle: func(raw hostapi.VM, handle hostapi.Handle) {
			delete(asVM(raw).handles, handle.(*handleToken).id)
		},
	}
}
