package dome

import (
	"go.uber.org/zap"

	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/internal/registry"
	"github.com/domekit/domekit/panics"
	"github.com/domekit/domekit/wren"
)

// genericAbortMessage is what a scripted fiber sees when native code
// panicked. The original panic text goes only to the host log; exposing it
// to script would leak native implementation detail into script-visible
// state.
const genericAbortMessage = "Plugin panicked. See DOME's log for details."

// LogPanic writes a captured failure to the host log. The message travels as
// a data argument under a fixed format; it is never interpreted as a format
// string.
func (c Context) LogPanic(rec *panics.Record) {
	registry.Core().Log(c.raw, "Plugin panicked: %s\n", rec.Message)
}

// AbortWithGenericMessage aborts the current fiber with the fixed generic
// failure text.
func AbortWithGenericMessage(vm wren.VM) {
	vm.EnsureSlots(2)
	vm.SetSlotString(1, genericAbortMessage)
	vm.AbortFiber(1)
}

// ReportPanic is the main-thread failure path shared by foreign methods and
// audio callbacks: log the original message, then abort the executing fiber
// with the generic text when a VM is available.
func ReportPanic(vm hostapi.VM, rec *panics.Record) {
	if vm == nil {
		Logger().Error("captured panic with no VM available to report through",
			zap.String("message", rec.Message))
		return
	}
	FromVM(wren.FromRaw(vm)).LogPanic(rec)
	AbortWithGenericMessage(wren.FromRaw(vm))
}
