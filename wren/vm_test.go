package wren_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/domekit/domekit"
	"github.com/domekit/domekit/errors"
	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/hosttest"
	"github.com/domekit/domekit/wren"
)

func newVM(t *testing.T) (*hosttest.Host, wren.VM) {
	t.Helper()
	host := hosttest.New()
	if res := domekit.Init(host.GetAPI, host.Context(), domekit.Hooks{}); res != hostapi.ResultSuccess {
		t.Fatalf("init: %s", res)
	}
	return host, wren.FromRaw(host.NewVM())
}

func wantFault(t *testing.T, kind errors.Kind, f func()) {
	t.Helper()
	defer func() {
		v := recover()
		if v == nil {
			t.Fatal("expected a fault")
		}
		err, ok := v.(*errors.Error)
		if !ok {
			t.Fatalf("fault value is %T, want *errors.Error", v)
		}
		if err.Kind != kind {
			t.Fatalf("kind = %s, want %s (%s)", err.Kind, kind, err)
		}
	}()
	f()
}

func TestPrimitiveRoundTrips(t *testing.T) {
	_, vm := newVM(t)
	vm.EnsureSlots(4)

	vm.SetSlotBool(0, true)
	if !vm.GetSlotBool(0) {
		t.Fatal("bool round trip")
	}

	vm.SetSlotDouble(1, 440.5)
	if got := vm.GetSlotDouble(1); got != 440.5 {
		t.Fatalf("double round trip: %v", got)
	}

	vm.SetSlotString(2, "synth")
	if got, err := vm.GetSlotString(2); err != nil || got != "synth" {
		t.Fatalf("string round trip: %q, %v", got, err)
	}

	vm.SetSlotNull(3)
	if vm.SlotType(3) != hostapi.TypeNull {
		t.Fatal("null round trip")
	}
}

func TestSlotTypeReporting(t *testing.T) {
	_, vm := newVM(t)
	vm.EnsureSlots(3)
	vm.SetSlotNewList(0)
	vm.SetSlotNewMap(1)
	vm.SetSlotBytes(2, []byte{0x00, 0x01})

	tests := []struct {
		slot int
		want wren.Type
	}{
		{0, hostapi.TypeList},
		{1, hostapi.TypeMap},
		{2, hostapi.TypeString},
	}
	for _, tt := range tests {
		if got := vm.SlotType(tt.slot); got != tt.want {
			t.Fatalf("slot %d type = %s, want %s", tt.slot, got, tt.want)
		}
	}
}

func TestCheckedAccessFaultsBeforeHostCall(t *testing.T) {
	_, vm := newVM(t)
	vm.EnsureSlots(2)
	vm.SetSlotDouble(0, 1)

	wantFault(t, errors.KindOutOfBounds, func() { vm.GetSlotDouble(5) })
	wantFault(t, errors.KindOutOfBounds, func() { vm.SetSlotBool(-1, true) })
	wantFault(t, errors.KindOutOfBounds, func() { vm.SlotType(2) })
	wantFault(t, errors.KindTypeMismatch, func() { vm.GetSlotBool(0) })
	wantFault(t, errors.KindTypeMismatch, func() { vm.GetListCount(0) })
}

func TestGetSlotStringRejectsInvalidUTF8(t *testing.T) {
	_, vm := newVM(t)
	vm.EnsureSlots(1)
	vm.SetSlotBytes(0, []byte{0x66, 0xff, 0x6f})

	if _, err := vm.GetSlotString(0); err == nil {
		t.Fatal("expected a decode error")
	} else if e, ok := err.(*errors.Error); !ok || e.Kind != errors.KindInvalidUTF8 {
		t.Fatalf("err = %v", err)
	}

	// The raw bytes stay reachable.
	if got := vm.GetSlotBytes(0); len(got) != 3 || got[1] != 0xff {
		t.Fatalf("bytes = %x", got)
	}
}

func TestBytesAreCopiedOut(t *testing.T) {
	_, vm := newVM(t)
	vm.EnsureSlots(1)
	vm.SetSlotBytes(0, []byte("abc"))
	got := vm.GetSlotBytes(0)
	got[0] = 'z'
	if again := vm.GetSlotBytes(0); again[0] != 'a' {
		t.Fatal("slot content aliased a returned slice")
	}
}

func TestListOperations(t *testing.T) {
	_, vm := newVM(t)
	vm.EnsureSlots(3)
	vm.SetSlotNewList(0)

	for i, v := range []float64{10, 20, 30} {
		vm.SetSlotDouble(1, v)
		vm.InsertInList(0, i, 1)
	}
	if got := vm.GetListCount(0); got != 3 {
		t.Fatalf("count = %d", got)
	}

	// Negative indices count from the end.
	vm.GetListElement(0, -1, 2)
	if got := vm.GetSlotDouble(2); got != 30 {
		t.Fatalf("list[-1] = %v", got)
	}

	vm.SetSlotDouble(1, 99)
	vm.SetListElement(0, -3, 1)
	vm.GetListElement(0, 0, 2)
	if got := vm.GetSlotDouble(2); got != 99 {
		t.Fatalf("list[0] = %v", got)
	}

	// Insertion accepts one past the end; access does not.
	vm.SetSlotDouble(1, 40)
	vm.InsertInList(0, 3, 1)
	if got := vm.GetListCount(0); got != 4 {
		t.Fatalf("count after tail insert = %d", got)
	}
	wantFault(t, errors.KindOutOfBounds, func() { vm.GetListElement(0, 4, 2) })
	wantFault(t, errors.KindOutOfBounds, func() { vm.InsertInList(0, 6, 1) })
}

func TestMapOperations(t *testing.T) {
	_, vm := newVM(t)
	vm.EnsureSlots(4)
	vm.SetSlotNewMap(0)

	vm.SetSlotString(1, "freq")
	vm.SetSlotDouble(2, 440)
	vm.SetMapValue(0, 1, 2)

	if !vm.MapContainsKey(0, 1) {
		t.Fatal("key missing after set")
	}
	if got := vm.GetMapCount(0); got != 1 {
		t.Fatalf("count = %d", got)
	}

	vm.GetMapValue(0, 1, 3)
	if got := vm.GetSlotDouble(3); got != 440 {
		t.Fatalf("value = %v", got)
	}

	vm.RemoveMapValue(0, 1, 3)
	if got := vm.GetSlotDouble(3); got != 440 {
		t.Fatalf("removed value = %v", got)
	}
	if vm.MapContainsKey(0, 1) {
		t.Fatal("key still present after remove")
	}

	// Removing an absent key yields null.
	vm.RemoveMapValue(0, 1, 3)
	if vm.SlotType(3) != hostapi.TypeNull {
		t.Fatal("absent removal must store null")
	}

	wantFault(t, errors.KindTypeMismatch, func() { vm.GetMapCount(1) })
}

func TestHandlesOutliveSlots(t *testing.T) {
	host, vm := newVM(t)
	raw := host.NewVM()
	vm = wren.FromRaw(raw)
	vm.EnsureSlots(2)

	vm.SetSlotString(0, "persistent")
	h := vm.GetSlotHandle(0)
	vm.SetSlotNull(0)

	vm.SetSlotHandle(1, h)
	if got, err := vm.GetSlotString(1); err != nil || got != "persistent" {
		t.Fatalf("through handle: %q, %v", got, err)
	}

	if raw.HandleCount() != 1 {
		t.Fatalf("handle count = %d", raw.HandleCount())
	}
	h.Release(vm)
	if raw.HandleCount() != 0 {
		t.Fatal("handle leaked after release")
	}
}

func TestGetVariablePlacesClassObject(t *testing.T) {
	_, vm := newVM(t)
	vm.EnsureSlots(1)
	vm.GetVariable("synth", "Osc", 0)
	if got := vm.SlotType(0); got != hostapi.TypeUnknown {
		t.Fatalf("class object reported as %s", got)
	}
}

func TestSlotRoundTripProperty(t *testing.T) {
	_, vm := newVM(t)
	vm.EnsureSlots(1)
	properties := gopter.NewProperties(nil)

	properties.Property("doubles survive the slot array", prop.ForAll(
		func(v float64) bool {
			vm.SetSlotDouble(0, v)
			return vm.GetSlotDouble(0) == v
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("strings survive the slot array", prop.ForAll(
		func(s string) bool {
			vm.SetSlotString(0, s)
			got, err := vm.GetSlotString(0)
			return err == nil && got == s
		},
		gen.AnyString(),
	))

	properties.Property("bools survive the slot array", prop.ForAll(
		func(b bool) bool {
			vm.SetSlotBool(0, b)
			return vm.GetSlotBool(0) == b
		},
		gen.Bool(),
	))

	properties.TestingRun(t)
}
