package audio

import (
	"github.com/domekit/domekit/dome"
	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/internal/registry"
	"github.com/domekit/domekit/panics"
)

// ChannelState re-exports the host-owned channel lifecycle states.
type ChannelState = hostapi.ChannelState

func blockFor(ref hostapi.ChannelRef) (channelBlock, bool) {
	block, ok := registry.Audio().GetData(ref).(channelBlock)
	return block, ok
}

func report(vm hostapi.VM, rec *panics.Record) {
	dome.ReportPanic(vm, rec)
}

// Channel is the plugin's owning view of one playback channel. It stays
// valid for the life of the plugin; once the host finishes the channel,
// payload access reports absence instead of touching freed state.
type Channel[T any] struct {
	ref  hostapi.ChannelRef
	data *channelData[T]
}

// CreateChannel allocates a channel on the host with the given mix and
// (optional, may be nil) update callbacks and the initial payload. The
// channel starts in the host's initialization state and must be set ToPlay
// to become audible.
//
// If the payload implements wren.Finalizer, Finalize runs exactly once when
// the host finishes the channel.
func CreateChannel[T any](ctx dome.Context, mix MixFn[T], update UpdateFn[T], payload T) *Channel[T] {
	d := &channelData[T]{mix: mix, update: update, payload: payload}
	ref := registry.Audio().ChannelCreate(ctx.Raw(),
		mixTrampoline, updateTrampoline, finishTrampoline, d)
	return &Channel[T]{ref: ref, data: d}
}

// Ref returns the host's channel reference.
func (c *Channel[T]) Ref() hostapi.ChannelRef {
	return c.ref
}

// State returns the host-owned lifecycle state.
func (c *Channel[T]) State() ChannelState {
	return registry.Audio().GetState(c.ref)
}

// SetState requests a lifecycle transition.
func (c *Channel[T]) SetState(state ChannelState) {
	registry.Audio().SetState(c.ref, state)
}

// Stop asks the host to wind the channel down. The mix callback may still
// run while the host fades out; finish runs afterward.
func (c *Channel[T]) Stop() {
	registry.Audio().Stop(c.ref)
}

// Close stops the channel. The owning view mirrors drop semantics: letting
// go of the channel means letting go of the sound.
func (c *Channel[T]) Close() {
	c.Stop()
}

// Data runs f with shared access to the payload. It returns false without
// running f once the channel is stopped or the host has finished it.
func (c *Channel[T]) Data(f func(payload *T)) bool {
	if c.State() == hostapi.StateStopped {
		return false
	}
	c.data.mu.RLock()
	defer c.data.mu.RUnlock()
	if c.data.finished {
		return false
	}
	f(&c.data.payload)
	return true
}

// DataMut runs f with exclusive access to the payload. Same availability
// rules as Data.
func (c *Channel[T]) DataMut(f func(payload *T)) bool {
	if c.State() == hostapi.StateStopped {
		return false
	}
	c.data.mu.Lock()
	defer c.data.mu.Unlock()
	if c.data.finished {
		return false
	}
	f(&c.data.payload)
	return true
}

// CallbackChannel is the borrowing view handed to mix and update callbacks.
// It exists only for the duration of the callback; the host guarantees the
// channel is live while a callback runs, so payload access skips the
// stopped check but still takes the lock against the owning view.
type CallbackChannel[T any] struct {
	ref  hostapi.ChannelRef
	data *channelData[T]
}

// Ref returns the host's channel reference.
func (c CallbackChannel[T]) Ref() hostapi.ChannelRef {
	return c.ref
}

// State returns the host-owned lifecycle state.
func (c CallbackChannel[T]) State() ChannelState {
	return registry.Audio().GetState(c.ref)
}

// SetState requests a lifecycle transition.
func (c CallbackChannel[T]) SetState(state ChannelState) {
	registry.Audio().SetState(c.ref, state)
}

// Stop asks the host to wind the channel down.
func (c CallbackChannel[T]) Stop() {
	registry.Audio().Stop(c.ref)
}

// Data runs f with shared access to the payload.
func (c CallbackChannel[T]) Data(f func(payload *T)) {
	c.data.mu.RLock()
	defer c.data.mu.RUnlock()
	f(&c.data.payload)
}

// DataMut runs f with exclusive access to the payload. The lock is released
// even if f panics, so a captured mix-time failure never strands the owning
// view.
func (c CallbackChannel[T]) DataMut(f func(payload *T)) {
	c.data.mu.Lock()
	defer c.data.mu.Unlock()
	f(&c.data.payload)
}
