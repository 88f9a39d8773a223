package hostapi

// ChannelRef identifies one host-managed playback channel. It is plain data
// and may be copied freely; ownership semantics live in the audio package.
type ChannelRef struct {
	ID     uint64
	Engine Engine
}

// ChannelState is the host-owned lifecycle state of a channel. The plugin
// only reads it or requests a transition; it never writes arbitrary states.
type ChannelState int32

const (
	StateInvalid ChannelState = iota
	StateInitialize
	StateToPlay
	StateDevirtualize
	StateLoading
	StatePlaying
	StateStopping
	StateStopped
	StateVirtualizing
	StateVirtual
	StateLast
)

var channelStateNames = [...]string{
	"Invalid", "Initialize", "ToPlay", "Devirtualize", "Loading",
	"Playing", "Stopping", "Stopped", "Virtualizing", "Virtual", "Last",
}

func (s ChannelState) String() string {
	if s < 0 || int(s) >= len(channelStateNames) {
		return "Invalid"
	}
	return channelStateNames[s]
}

// ChannelMixFn renders audio on the host's realtime thread. buffer is stereo
// interleaved and holds 2*requestedSamples float32 values.
type ChannelMixFn func(ref ChannelRef, buffer []float32, requestedSamples int)

// ChannelCallbackFn runs on the host's main thread, once per frame (update)
// or exactly once at teardown (finish).
type ChannelCallbackFn func(ref ChannelRef, vm VM)

// AudioAPIv0 is the audio engine table.
type AudioAPIv0 struct {
	ChannelCreate func(ctx Context, mix ChannelMixFn, update, finish ChannelCallbackFn, data any) ChannelRef
	GetState      func(ref ChannelRef) ChannelState
	SetState      func(ref ChannelRef, state ChannelState)
	Stop          func(ref ChannelRef)
	GetData       func(ref ChannelRef) any
}
