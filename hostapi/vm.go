package hostapi

// ValueType is the kind of value held in a slot, as reported by the VM.
type ValueType int32

const (
	TypeBool ValueType = iota
	TypeNum
	TypeForeign
	TypeList
	TypeMap
	TypeNull
	TypeString

	// TypeUnknown covers objects the native interop surface cannot
	// distinguish, foreign class objects included.
	TypeUnknown
)

func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "Bool"
	case TypeNum:
		return "Num"
	case TypeForeign:
		return "Foreign"
	case TypeList:
		return "List"
	case TypeMap:
		return "Map"
	case TypeNull:
		return "Null"
	case TypeString:
		return "String"
	default:
		return "Unknown"
	}
}

// VMAPIv0 is the interpreter table: the full slot-manipulation surface.
//
// None of these functions validate their arguments; the wren package layers
// bounds and kind checks on top. Map operations require the key slot to hold
// a hashable value (bool, number, string, null) — an obligation the surface
// cannot itself verify.
type VMAPIv0 struct {
	EnsureSlots func(vm VM, slotCount int)
	SlotCount   func(vm VM) int
	SlotType    func(vm VM, slot int) ValueType

	SetSlotNull    func(vm VM, slot int)
	SetSlotBool    func(vm VM, slot int, value bool)
	SetSlotDouble  func(vm VM, slot int, value float64)
	SetSlotBytes   func(vm VM, slot int, data []byte)
	SetSlotNewList func(vm VM, slot int)
	SetSlotNewMap  func(vm VM, slot int)

	// SetSlotNewForeign asks the VM to allocate the block backing a new
	// foreign object of the class held in classSlot, placing the object in
	// slot and returning the block.
	SetSlotNewForeign func(vm VM, slot, classSlot int) *ForeignCell

	GetSlotBool    func(vm VM, slot int) bool
	GetSlotDouble  func(vm VM, slot int) float64
	GetSlotBytes   func(vm VM, slot int) []byte
	GetSlotForeign func(vm VM, slot int) *ForeignCell

	GetListCount   func(vm VM, listSlot int) int
	GetListElement func(vm VM, listSlot, index, elementSlot int)
	SetListElement func(vm VM, listSlot, index, elementSlot int)
	InsertInList   func(vm VM, listSlot, index, elementSlot int)

	GetMapCount    func(vm VM, mapSlot int) int
	MapContainsKey func(vm VM, mapSlot, keySlot int) bool
	GetMapValue    func(vm VM, mapSlot, keySlot, valueSlot int)
	SetMapValue    func(vm VM, mapSlot, keySlot, valueSlot int)
	RemoveMapValue func(vm VM, mapSlot, keySlot, removedValueSlot int)

	AbortFiber  func(vm VM, slot int)
	GetVariable func(vm VM, module, name string, slot int)

	GetSlotHandle func(vm VM, slot int) Handle
	SetSlotHandle func(vm VM, slot int, handle Handle)
	ReleaseHandle func(vm VM, handle Handle)
}
