package dome

import (
	"github.com/domekit/domekit/errors"
	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/internal/registry"
	"github.com/domekit/domekit/panics"
	"github.com/domekit/domekit/wren"
)

// guard wraps a plugin-written method for the host: every VM entry into
// native code runs under panic capture, and a captured failure is logged and
// converted into a fiber abort rather than unwinding into the host.
func guard(method wren.ForeignMethod) hostapi.ForeignMethodFn {
	return func(raw hostapi.VM) {
		if rec := panics.Capture(func() {
			method(wren.FromRaw(raw))
		}); rec != nil {
			ReportPanic(raw, rec)
		}
	}
}

// Context identifies the host engine instance. It is handed to the plugin's
// lifecycle hooks and recoverable from any VM during a foreign method call.
type Context struct {
	raw hostapi.Context
}

// FromRaw wraps the host's opaque context token.
func FromRaw(raw hostapi.Context) Context {
	return Context{raw: raw}
}

// FromVM recovers the engine context owning the given interpreter. Foreign
// methods use it when they need host services beyond the slot array.
func FromVM(vm wren.VM) Context {
	return Context{raw: registry.Core().GetContext(vm.Raw())}
}

// Raw returns the host's opaque context token.
func (c Context) Raw() hostapi.Context {
	return c.raw
}

// RegisterModule registers a new interpreter module with the given source.
// The host rejects a name that already exists, including the engine's
// built-in modules.
func (c Context) RegisterModule(name, source string) error {
	if registry.Core().RegisterModule(c.raw, name, source) != hostapi.ResultSuccess {
		return errors.ModuleRejected(name)
	}
	return nil
}

// RegisterFn binds a native method to the given signature in module. The
// signature follows the host's convention, e.g. "static Synth.playTone(_,_)"
// or "Point.x" for a getter; ModuleBuilder computes these automatically.
func (c Context) RegisterFn(module, signature string, method wren.ForeignMethod) error {
	if registry.Core().RegisterFn(c.raw, module, signature, guard(method)) != hostapi.ResultSuccess {
		return errors.MethodRejected(module, signature)
	}
	return nil
}

// RegisterClass binds a foreign class in module. allocate runs when the
// interpreter constructs an instance and must install the payload with
// wren.SetSlotNewForeign; the finalizer teardown path is installed
// unconditionally so payloads implementing wren.Finalizer are released.
func (c Context) RegisterClass(module, class string, allocate wren.ForeignMethod) error {
	if registry.Core().RegisterClass(c.raw, module, class, guard(allocate), wren.CellFinalizer) != hostapi.ResultSuccess {
		return errors.ClassRejected(module, class)
	}
	return nil
}

// LockModule marks the module immutable. Further class or method
// registrations against it will be rejected by the host.
func (c Context) LockModule(name string) {
	registry.Core().LockModule(c.raw, name)
}

// Log writes text to the host's log. The host's entry point is
// printf-shaped, so text travels as a data argument under a fixed format and
// can never be interpreted as a format string.
func (c Context) Log(text string) {
	registry.Core().Log(c.raw, "%s", text)
}
