package audio

import (
	"sync"

	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/panics"
	"github.com/domekit/domekit/wren"
)

// MixFn renders audio for one channel. It runs on the host's realtime
// thread: buffer is stereo interleaved with 2*requestedSamples float32
// values, already containing whatever the host pre-filled.
type MixFn[T any] func(ch CallbackChannel[T], buffer []float32, requestedSamples int)

// UpdateFn runs on the main thread once per frame while the channel lives.
type UpdateFn[T any] func(ch CallbackChannel[T], vm wren.VM)

// channelData is the block shared between the plugin and the host's three
// callbacks. The host stores it as the channel's opaque data and returns it
// from GetData, which is how the fixed trampolines find it again.
type channelData[T any] struct {
	mix    MixFn[T]
	update UpdateFn[T]

	mu      sync.RWMutex
	payload T

	// pending holds the latest mix-thread failure until a main-thread
	// callback can report it. Last recorded wins.
	pendingMu sync.Mutex
	pending   *panics.Record

	finished bool
}

// channelBlock is how the trampolines drive a channelData without knowing
// its payload type.
type channelBlock interface {
	runMix(ref hostapi.ChannelRef, buffer []float32, requestedSamples int)
	runUpdate(ref hostapi.ChannelRef, vm hostapi.VM)
	runFinish(ref hostapi.ChannelRef, vm hostapi.VM)
}

func (d *channelData[T]) deposit(rec *panics.Record) {
	d.pendingMu.Lock()
	d.pending = rec
	d.pendingMu.Unlock()
}

func (d *channelData[T]) drain() *panics.Record {
	d.pendingMu.Lock()
	rec := d.pending
	d.pending = nil
	d.pendingMu.Unlock()
	return rec
}

// runMix executes the plugin's mix function under capture. A failure here
// cannot be reported from the realtime thread, so the record is parked for
// the next main-thread callback. The buffer is left exactly as the mix
// function left it.
func (d *channelData[T]) runMix(ref hostapi.ChannelRef, buffer []float32, requestedSamples int) {
	ch := CallbackChannel[T]{ref: ref, data: d}
	if rec := panics.Capture(func() {
		d.mix(ch, buffer, requestedSamples)
	}); rec != nil {
		d.deposit(rec)
	}
}

// runUpdate first reports any failure parked by the mix thread, then runs
// the plugin's update function. This path has main-thread VM access, so both
// kinds of failure are reported immediately.
func (d *channelData[T]) runUpdate(ref hostapi.ChannelRef, vm hostapi.VM) {
	if rec := d.drain(); rec != nil {
		report(vm, rec)
	}
	if d.update == nil {
		return
	}
	ch := CallbackChannel[T]{ref: ref, data: d}
	if rec := panics.Capture(func() {
		d.update(ch, wren.FromRaw(vm))
	}); rec != nil {
		report(vm, rec)
	}
}

// runFinish is the channel's last callback. It drains any parked failure,
// tears down the payload, and marks the block finished so the owning handle
// stops granting access. The host guarantees no mix or update runs
// concurrently with or after finish.
func (d *channelData[T]) runFinish(ref hostapi.ChannelRef, vm hostapi.VM) {
	if rec := d.drain(); rec != nil {
		report(vm, rec)
	}
	var rec *panics.Record
	d.mu.Lock()
	if f, ok := any(&d.payload).(wren.Finalizer); ok {
		rec = panics.Capture(f.Finalize)
	}
	d.finished = true
	d.mu.Unlock()
	if rec != nil {
		report(vm, rec)
	}
}

// The three trampolines registered with the host for every channel. They
// are fixed functions; per-channel behavior is recovered from the block the
// host hands back.

func mixTrampoline(ref hostapi.ChannelRef, buffer []float32, requestedSamples int) {
	if block, ok := blockFor(ref); ok {
		block.runMix(ref, buffer, requestedSamples)
	}
}

func updateTrampoline(ref hostapi.ChannelRef, vm hostapi.VM) {
	if block, ok := blockFor(ref); ok {
		block.runUpdate(ref, vm)
	}
}

func finishTrampoline(ref hostapi.ChannelRef, vm hostapi.VM) {
	if block, ok := blockFor(ref); ok {
		block.runFinish(ref, vm)
	}
}
