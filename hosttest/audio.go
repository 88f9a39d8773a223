package hosttest

import (
	"sync"

	"github.com/domekit/domekit/hostapi"
)

type audioToken struct {
	engine *AudioEngine
}

type audioChannel struct {
	state    hostapi.ChannelState
	mix      hostapi.ChannelMixFn
	update   hostapi.ChannelCallbackFn
	finish   hostapi.ChannelCallbackFn
	data     any
	finished bool
}

// AudioEngine is the fake host's channel system. Tests drive it explicitly:
// RenderChannel plays the part of the realtime thread (optionally from its
// own goroutine), UpdateChannels and FinishChannel play the main thread.
type AudioEngine struct {
	host  *Host
	token *audioToken

	mu       sync.Mutex
	nextID   uint64
	channels map[uint64]*audioChannel
}

func newAudioEngine(h *Host) *AudioEngine {
	e := &AudioEngine{host: h, channels: map[uint64]*audioChannel{}}
	e.token = &audioToken{engine: e}
	return e
}

func (e *AudioEngine) table() hostapi.AudioAPIv0 {
	return hostapi.AudioAPIv0{
		ChannelCreate: e.channelCreate,
		GetState:      e.getState,
		SetState:      e.setState,
		Stop:          e.stop,
		GetData:       e.getData,
	}
}

func (e *AudioEngine) channelCreate(ctx hostapi.Context, mix hostapi.ChannelMixFn, update, finish hostapi.ChannelCallbackFn, data any) hostapi.ChannelRef {
	e.host.checkCtx(ctx)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	e.channels[e.nextID] = &audioChannel{
		state:  hostapi.StateInitialize,
		mix:    mix,
		update: update,
		finish: finish,
		data:   data,
	}
	return hostapi.ChannelRef{ID: e.nextID, Engine: e.token}
}

func (e *AudioEngine) getState(ref hostapi.ChannelRef) hostapi.ChannelState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ch := e.channels[ref.ID]; ch != nil {
		return ch.state
	}
	return hostapi.StateInvalid
}

func (e *AudioEngine) setState(ref hostapi.ChannelRef, state hostapi.ChannelState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ch := e.channels[ref.ID]; ch != nil {
		ch.state = state
	}
}

func (e *AudioEngine) stop(ref hostapi.ChannelRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ch := e.channels[ref.ID]; ch != nil && !ch.finished {
		ch.state = hostapi.StateStopping
	}
}

func (e *AudioEngine) getData(ref hostapi.ChannelRef) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ch := e.channels[ref.ID]; ch != nil {
		return ch.data
	}
	return nil
}

// ChannelCount returns the number of channels ever created and not yet
// finished.
func (e *AudioEngine) ChannelCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ch := range e.channels {
		if !ch.finished {
			n++
		}
	}
	return n
}

// RenderChannel invokes a channel's mix callback for the requested number of
// stereo samples and returns the buffer, zero-filled beforehand the way the
// host pre-fills its mix buffers. Safe to call from a separate goroutine;
// the callback runs outside the engine lock, as it does on the real host's
// audio thread.
func (e *AudioEngine) RenderChannel(ref hostapi.ChannelRef, requestedSamples int) []float32 {
	e.mu.Lock()
	ch := e.channels[ref.ID]
	var mix hostapi.ChannelMixFn
	if ch != nil && !ch.finished {
		mix = ch.mix
	}
	e.mu.Unlock()

	buffer := make([]float32, 2*requestedSamples)
	if mix != nil {
		mix(ref, buffer, requestedSamples)
	}
	return buffer
}

// Ref reconstructs the host's reference for a channel id.
func (e *AudioEngine) Ref(id uint64) hostapi.ChannelRef {
	return hostapi.ChannelRef{ID: id, Engine: e.token}
}

// StepFrame performs the host-owned part of one frame: update callbacks run
// first, then channels advance through their transitions — ToPlay becomes
// Playing, playing channels render a mix buffer, stopping channels finish.
func (e *AudioEngine) StepFrame(vm hostapi.VM, samplesPerFrame int) {
	e.UpdateChannels(vm)

	e.mu.Lock()
	var toRender, toFinish []uint64
	for id, ch := range e.channels {
		if ch.finished {
			continue
		}
		switch ch.state {
		case hostapi.StateToPlay:
			ch.state = hostapi.StatePlaying
			toRender = append(toRender, id)
		case hostapi.StatePlaying:
			toRender = append(toRender, id)
		case hostapi.StateStopping:
			toFinish = append(toFinish, id)
		}
	}
	e.mu.Unlock()

	for _, id := range toRender {
		e.RenderChannel(e.Ref(id), samplesPerFrame)
	}
	for _, id := range toFinish {
		e.FinishChannel(e.Ref(id), vm)
	}
}

// UpdateChannels invokes every live channel's update callback with the given
// interpreter, as the host does once per frame on the main thread.
func (e *AudioEngine) UpdateChannels(vm hostapi.VM) {
	e.mu.Lock()
	type pending struct {
		ref    hostapi.ChannelRef
		update hostapi.ChannelCallbackFn
	}
	var updates []pending
	for id, ch := range e.channels {
		if !ch.finished && ch.update != nil {
			updates = append(updates, pending{
				ref:    hostapi.ChannelRef{ID: id, Engine: e.token},
				update: ch.update,
			})
		}
	}
	e.mu.Unlock()

	for _, p := range updates {
		p.update(p.ref, vm)
	}
}

// FinishChannel runs a channel's finish callback exactly once and moves it
// to the stopped state. Subsequent renders and updates skip it.
func (e *AudioEngine) FinishChannel(ref hostapi.ChannelRef, vm hostapi.VM) {
	e.mu.Lock()
	ch := e.channels[ref.ID]
	var finish hostapi.ChannelCallbackFn
	if ch != nil && !ch.finished {
		ch.finished = true
		ch.state = hostapi.StateStopped
		finish = ch.finish
	}
	e.mu.Unlock()

	if finish != nil {
		finish(ref, vm)
	}
}
