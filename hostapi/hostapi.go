package hostapi

// APIKind selects one of the host's capability tables.
type APIKind int32

const (
	APICore APIKind = iota
	APIVM
	APIAudio
)

// Versions requested for each table. The host returns nil for a version it
// does not provide; there is no partial fallback.
const (
	CoreAPIVersion  = 0
	VMAPIVersion    = 0
	AudioAPIVersion = 0
)

// GetAPIFunc is the capability-resolution function the host passes to the
// plugin's init entry point. It returns a *CoreAPIv0, *VMAPIv0 or *AudioAPIv0
// depending on kind, or nil when the kind/version pair is unsupported.
type GetAPIFunc func(kind APIKind, version int) any

// Result is the three-valued status code crossing the plugin boundary.
type Result int32

const (
	ResultSuccess Result = iota
	ResultFailure
	ResultUnknown
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Context is an opaque token identifying the host engine instance. The host
// mints it; plugin code passes it back on every core-table call.
type Context any

// VM is an opaque token identifying the embedded interpreter for the duration
// of one native call. Slot references derived from it are invalidated the
// moment control returns to the host.
type VM any

// Engine is an opaque token identifying the host's audio engine.
type Engine any

// Handle is an opaque reference to a VM value that stays valid across calls,
// unlike a slot. It must be released through VMAPIv0.ReleaseHandle.
type Handle any

// ForeignMethodFn is a method the VM invokes on a foreign class. All typed
// argument and return traffic goes through the slot array.
type ForeignMethodFn func(vm VM)

// FinalizerFn is invoked by the host when it destroys the VM object owning a
// foreign cell. It may run during garbage-collection pauses, outside any
// plugin-controlled call.
type FinalizerFn func(cell *ForeignCell)

// ForeignCell is the host-allocated block backing one foreign object inside
// the VM's heap. The bridging layer stores a type-tagged wrapper in Data; the
// host never inspects it.
type ForeignCell struct {
	Data any
}
