package main

import (
	"fmt"
	"math"
	"sync"

	"github.com/domekit/domekit"
	"github.com/domekit/domekit/audio"
	"github.com/domekit/domekit/dome"
	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/hosttest"
	"github.com/domekit/domekit/wren"
)

const sampleRate = 44100

// voice is one playing tone: a sine oscillator plus a frame countdown.
type voice struct {
	frequency float64
	volume    float64
	phase     float64
	remaining int
}

func (v *voice) Finalize() {
	v.frequency = 0
}

// synthPlugin is the demo plugin the harness mounts: it registers a "synth"
// module and plays timed tones on host audio channels.
type synthPlugin struct {
	mu     sync.Mutex
	ctx    dome.Context
	voices []*audio.Channel[voice]
	frames int
}

func (p *synthPlugin) hooks() domekit.Hooks {
	return domekit.Hooks{
		OnInit:     p.onInit,
		PreUpdate:  p.preUpdate,
		OnShutdown: p.onShutdown,
	}
}

func (p *synthPlugin) onInit(ctx dome.Context) error {
	p.ctx = ctx
	ctx.Log("synth plugin loaded\n")
	return dome.NewModule("synth").
		ForeignClass("Synth", p.allocate).
		Constructor("new").
		StaticMethod("playTone", p.wrenPlayTone, "frequency", "time").
		End().
		Register(ctx)
}

func (p *synthPlugin) allocate(vm wren.VM) {
	wren.SetSlotNewForeign(vm, 0, 0, voice{})
}

// wrenPlayTone is the script-facing entry: playTone(frequencyHz, timeMs).
func (p *synthPlugin) wrenPlayTone(vm wren.VM) {
	freq := vm.GetSlotDouble(1)
	ms := vm.GetSlotDouble(2)
	p.PlayTone(freq, int(ms))
	vm.SetSlotNull(0)
}

// PlayTone starts a sine tone at the given frequency for durationMs.
func (p *synthPlugin) PlayTone(frequency float64, durationMs int) {
	ch := audio.CreateChannel(p.ctx, mixVoice, updateVoice, voice{
		frequency: frequency,
		volume:    0.3,
		remaining: durationMs * 60 / 1000,
	})
	ch.SetState(hostapi.StateToPlay)
	p.mu.Lock()
	p.voices = append(p.voices, ch)
	p.mu.Unlock()
	p.ctx.Log(fmt.Sprintf("tone %gHz for %dms\n", frequency, durationMs))
}

func mixVoice(ch audio.CallbackChannel[voice], buffer []float32, requestedSamples int) {
	ch.DataMut(func(v *voice) {
		step := v.frequency * 2 * math.Pi / sampleRate
		for i := 0; i < requestedSamples; i++ {
			s := float32(math.Sin(v.phase) * v.volume)
			buffer[2*i] = s
			buffer[2*i+1] = s
			v.phase += step
		}
	})
}

func updateVoice(ch audio.CallbackChannel[voice], vm wren.VM) {
	done := false
	ch.DataMut(func(v *voice) {
		v.remaining--
		done = v.remaining <= 0
	})
	if done {
		ch.Stop()
	}
}

func (p *synthPlugin) preUpdate(ctx dome.Context) error {
	p.mu.Lock()
	p.frames++
	p.mu.Unlock()
	return nil
}

func (p *synthPlugin) onShutdown(ctx dome.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.voices {
		ch.Close()
	}
	ctx.Log("synth plugin unloaded\n")
	return nil
}

// channelLine describes one channel for display.
type channelLine struct {
	ID    uint64
	State hostapi.ChannelState
	Freq  float64
	Left  int
}

func (p *synthPlugin) frameCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

func (p *synthPlugin) stopChannel(id uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.voices {
		if ch.Ref().ID == id {
			ch.Stop()
			return true
		}
	}
	return false
}

func (p *synthPlugin) channels() []channelLine {
	p.mu.Lock()
	defer p.mu.Unlock()
	lines := make([]channelLine, 0, len(p.voices))
	for _, ch := range p.voices {
		line := channelLine{ID: ch.Ref().ID, State: ch.State()}
		ch.Data(func(v *voice) {
			line.Freq = v.frequency
			line.Left = v.remaining
		})
		lines = append(lines, line)
	}
	return lines
}

// session is one mounted plugin on one fake host, stepped frame by frame.
type session struct {
	host   *hosttest.Host
	plugin *synthPlugin
	vm     *hosttest.VM
}

func newSession() (*session, error) {
	host := hosttest.New()
	plugin := &synthPlugin{}
	if res := domekit.Init(host.GetAPI, host.Context(), plugin.hooks()); res != hostapi.ResultSuccess {
		return nil, fmt.Errorf("plugin init reported %s", res)
	}
	return &session{host: host, plugin: plugin, vm: host.NewVM()}, nil
}

// step advances one frame: lifecycle hooks around the host's own audio
// frame, the way the engine's loop interleaves them.
func (s *session) step(samplesPerFrame int) {
	domekit.PreUpdate(s.host.Context())
	s.host.Audio.StepFrame(s.vm, samplesPerFrame)
	domekit.PostUpdate(s.host.Context())
	domekit.PreDraw(s.host.Context())
	domekit.PostDraw(s.host.Context())
}

func (s *session) shutdown() {
	domekit.OnShutdown(s.host.Context())
}
