package hosttest

import (
	"fmt"
	"sync"

	"github.com/domekit/domekit/hostapi"
)

// engineToken is the opaque context the fake host mints. It deliberately is
// not the *Host itself, so code that round-trips the token cannot shortcut
// past the tables.
type engineToken struct {
	host *Host
}

type module struct {
	source  string
	locked  bool
	classes map[string]foreignClass
	methods map[string]hostapi.ForeignMethodFn
}

type foreignClass struct {
	allocate hostapi.ForeignMethodFn
	finalize hostapi.FinalizerFn
}

// Host is the in-memory engine. Zero value is not usable; construct with
// New.
type Host struct {
	// NilCore/NilVM/NilAudio make GetAPI deny the corresponding table,
	// simulating a host built without that capability.
	NilCore  bool
	NilVM    bool
	NilAudio bool

	mu      sync.Mutex
	ctx     *engineToken
	modules map[string]*module
	calls   []string
	logs    []string

	Audio *AudioEngine

	coreTable  hostapi.CoreAPIv0
	vmTable    hostapi.VMAPIv0
	audioTable hostapi.AudioAPIv0
}

// New builds a fresh host with empty registries and one audio engine.
func New() *Host {
	h := &Host{modules: map[string]*module{}}
	h.ctx = &engineToken{host: h}
	h.Audio = newAudioEngine(h)
	h.coreTable = hostapi.CoreAPIv0{
		RegisterModule: h.registerModule,
		RegisterFn:     h.registerFn,
		RegisterClass:  h.registerClass,
		LockModule:     h.lockModule,
		GetContext:     h.getContext,
		Log:            h.log,
	}
	h.vmTable = vmTable()
	h.audioTable = h.Audio.table()
	return h
}

// Context returns the opaque token the host would pass to the plugin's init
// entry point.
func (h *Host) Context() hostapi.Context {
	return h.ctx
}

// GetAPI is the capability-resolution function handed to Init.
func (h *Host) GetAPI(kind hostapi.APIKind, version int) any {
	switch kind {
	case hostapi.APICore:
		if h.NilCore || version != hostapi.CoreAPIVersion {
			return nil
		}
		return &h.coreTable
	case hostapi.APIVM:
		if h.NilVM || version != hostapi.VMAPIVersion {
			return nil
		}
		return &h.vmTable
	case hostapi.APIAudio:
		if h.NilAudio || version != hostapi.AudioAPIVersion {
			return nil
		}
		return &h.audioTable
	}
	return nil
}

// Calls returns the ordered record of registration calls the host received.
func (h *Host) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

// Logs returns every line written to the host log so far.
func (h *Host) Logs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.logs...)
}

// ModuleSource returns the registered source of a module.
func (h *Host) ModuleSource(name string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.modules[name]
	if !ok {
		return "", false
	}
	return m.source, true
}

// ModuleLocked reports whether a module has been locked.
func (h *Host) ModuleLocked(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.modules[name]
	return ok && m.locked
}

func (h *Host) record(format string, args ...any) {
	h.calls = append(h.calls, fmt.Sprintf(format, args...))
}

func (h *Host) checkCtx(ctx hostapi.Context) {
	if ctx != hostapi.Context(h.ctx) {
		panic("hosttest: call with a context token this host did not mint")
	}
}

func (h *Host) registerModule(ctx hostapi.Context, name, source string) hostapi.Result {
	h.checkCtx(ctx)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("RegisterModule(%s)", name)
	if _, exists := h.modules[name]; exists {
		return hostapi.ResultFailure
	}
	h.modules[name] = &module{
		source:  source,
		classes: map[string]foreignClass{},
		methods: map[string]hostapi.ForeignMethodFn{},
	}
	return hostapi.ResultSuccess
}

func (h *Host) registerFn(ctx hostapi.Context, mod, signature string, method hostapi.ForeignMethodFn) hostapi.Result {
	h.checkCtx(ctx)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("RegisterFn(%s, %s)", mod, signature)
	m, ok := h.modules[mod]
	if !ok || m.locked {
		return hostapi.ResultFailure
	}
	m.methods[signature] = method
	return hostapi.ResultSuccess
}

func (h *Host) registerClass(ctx hostapi.Context, mod, class string, allocate hostapi.ForeignMethodFn, finalize hostapi.FinalizerFn) hostapi.Result {
	h.checkCtx(ctx)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("RegisterClass(%s, %s)", mod, class)
	m, ok := h.modules[mod]
	if !ok || m.locked {
		return hostapi.ResultFailure
	}
	m.classes[class] = foreignClass{allocate: allocate, finalize: finalize}
	return hostapi.ResultSuccess
}

func (h *Host) lockModule(ctx hostapi.Context, name string) {
	h.checkCtx(ctx)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("LockModule(%s)", name)
	if m, ok := h.modules[name]; ok {
		m.locked = true
	}
}

func (h *Host) getContext(vm hostapi.VM) hostapi.Context {
	return vm.(*VM).host.ctx
}

func (h *Host) log(ctx hostapi.Context, format string, args ...any) {
	h.checkCtx(ctx)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logs = append(h.logs, fmt.Sprintf(format, args...))
}

// Invoke runs a registered foreign method by signature on the given VM, the
// way the interpreter would when script calls it.
func (h *Host) Invoke(vm *VM, mod, signature string) bool {
	h.mu.Lock()
	m, ok := h.modules[mod]
	var fn hostapi.ForeignMethodFn
	if ok {
		fn = m.methods[signature]
	}
	h.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(vm)
	return true
}

// Construct runs a registered class allocator on the given VM, simulating
// script constructing a foreign instance. The class object is placed in slot
// 0 first, as the interpreter does.
func (h *Host) Construct(vm *VM, mod, class string) bool {
	h.mu.Lock()
	m, ok := h.modules[mod]
	var fc foreignClass
	if ok {
		fc, ok = m.classes[class]
	}
	h.mu.Unlock()
	if !ok || fc.allocate == nil {
		return false
	}
	vm.ensureSlots(1)
	vm.slots[0] = classValue{module: mod, name: class}
	fc.allocate(vm)
	return true
}

// Finalize runs the registered finalizer of a class on the given cell,
// simulating the interpreter collecting the instance.
func (h *Host) Finalize(mod, class string, cell *hostapi.ForeignCell) bool {
	h.mu.Lock()
	m, ok := h.modules[mod]
	var fc foreignClass
	if ok {
		fc, ok = m.classes[class]
	}
	h.mu.Unlock()
	if !ok || fc.finalize == nil {
		return false
	}
	fc.finalize(cell)
	return true
}
