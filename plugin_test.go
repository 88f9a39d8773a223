package domekit_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/domekit/domekit"
	"github.com/domekit/domekit/dome"
	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/hosttest"
	"github.com/domekit/domekit/wren"
)

func TestInitRefusesNilArguments(t *testing.T) {
	host := hosttest.New()
	if res := domekit.Init(nil, host.Context(), domekit.Hooks{}); res != hostapi.ResultFailure {
		t.Fatalf("nil getAPI: %s", res)
	}
	if res := domekit.Init(host.GetAPI, nil, domekit.Hooks{}); res != hostapi.ResultFailure {
		t.Fatalf("nil ctx: %s", res)
	}
}

func TestInitRefusesMissingTables(t *testing.T) {
	tests := []struct {
		name string
		prep func(h *hosttest.Host)
	}{
		{"no core", func(h *hosttest.Host) { h.NilCore = true }},
		{"no vm", func(h *hosttest.Host) { h.NilVM = true }},
		{"no audio", func(h *hosttest.Host) { h.NilAudio = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := hosttest.New()
			tt.prep(host)
			res := domekit.Init(host.GetAPI, host.Context(), domekit.Hooks{
				OnInit: func(dome.Context) error {
					t.Fatal("init hook ran despite missing table")
					return nil
				},
			})
			if res != hostapi.ResultFailure {
				t.Fatalf("res = %s, want failure", res)
			}
			if calls := host.Calls(); len(calls) != 0 {
				t.Fatalf("registration reached the host: %q", calls)
			}
		})
	}
}

// The smallest complete plugin: one module, one static getter.
func TestStaticGetterRegistrationFlow(t *testing.T) {
	host := hosttest.New()
	res := domekit.Init(host.GetAPI, host.Context(), domekit.Hooks{
		OnInit: func(ctx dome.Context) error {
			return dome.NewModule("clock").
				Class("Clock").
				StaticGetter("now", func(vm wren.VM) {
					vm.SetSlotDouble(0, 12.5)
				}).
				End().
				Register(ctx)
		},
	})
	if res != hostapi.ResultSuccess {
		t.Fatalf("init: %s", res)
	}

	wantCalls := []string{
		"RegisterModule(clock)",
		"RegisterFn(clock, static Clock.now)",
		"LockModule(clock)",
	}
	if got := host.Calls(); !reflect.DeepEqual(got, wantCalls) {
		t.Fatalf("calls = %q", got)
	}
	src, _ := host.ModuleSource("clock")
	if want := "class Clock {\n  foreign static now\n}\n"; src != want {
		t.Fatalf("source = %q", src)
	}

	vm := host.NewVM()
	raw := wren.FromRaw(vm)
	raw.EnsureSlots(1)
	if !host.Invoke(vm, "clock", "static Clock.now") {
		t.Fatal("getter not callable")
	}
	if got := raw.GetSlotDouble(0); got != 12.5 {
		t.Fatalf("getter returned %v", got)
	}
}

func TestInitRunsOnInitHook(t *testing.T) {
	host := hosttest.New()
	ran := false
	res := domekit.Init(host.GetAPI, host.Context(), domekit.Hooks{
		OnInit: func(ctx dome.Context) error {
			ran = true
			return ctx.RegisterModule("synth", "")
		},
	})
	if res != hostapi.ResultSuccess {
		t.Fatalf("res = %s", res)
	}
	if !ran {
		t.Fatal("OnInit did not run")
	}
	if _, ok := host.ModuleSource("synth"); !ok {
		t.Fatal("module registered during init is missing")
	}
}

func TestInitHookErrorFails(t *testing.T) {
	host := hosttest.New()
	res := domekit.Init(host.GetAPI, host.Context(), domekit.Hooks{
		OnInit: func(dome.Context) error {
			return fmt.Errorf("no space left for samples")
		},
	})
	if res != hostapi.ResultFailure {
		t.Fatalf("res = %s", res)
	}
	found := false
	for _, line := range host.Logs() {
		if strings.Contains(line, "no space left for samples") {
			found = true
		}
	}
	if !found {
		t.Fatalf("hook error not logged: %q", host.Logs())
	}
}

func TestNilHooksSucceed(t *testing.T) {
	host := hosttest.New()
	if res := domekit.Init(host.GetAPI, host.Context(), domekit.Hooks{}); res != hostapi.ResultSuccess {
		t.Fatalf("init: %s", res)
	}
	for name, entry := range map[string]func(hostapi.Context) hostapi.Result{
		"PreUpdate":  domekit.PreUpdate,
		"PostUpdate": domekit.PostUpdate,
		"PreDraw":    domekit.PreDraw,
		"PostDraw":   domekit.PostDraw,
		"OnShutdown": domekit.OnShutdown,
	} {
		if res := entry(host.Context()); res != hostapi.ResultSuccess {
			t.Fatalf("%s = %s", name, res)
		}
	}
}

func TestHookPanicIsLoggedNotPropagated(t *testing.T) {
	host := hosttest.New()
	res := domekit.Init(host.GetAPI, host.Context(), domekit.Hooks{
		PreUpdate: func(dome.Context) error {
			panic("frame exploded")
		},
	})
	if res != hostapi.ResultSuccess {
		t.Fatalf("init: %s", res)
	}

	if res := domekit.PreUpdate(host.Context()); res != hostapi.ResultFailure {
		t.Fatalf("PreUpdate = %s, want failure", res)
	}
	found := false
	for _, line := range host.Logs() {
		if line == "Plugin panicked: frame exploded\n" {
			found = true
		}
	}
	if !found {
		t.Fatalf("logs = %q", host.Logs())
	}
}

func TestHookOrderObservesFrame(t *testing.T) {
	host := hosttest.New()
	var order []string
	mark := func(name string) func(dome.Context) error {
		return func(dome.Context) error {
			order = append(order, name)
			return nil
		}
	}
	res := domekit.Init(host.GetAPI, host.Context(), domekit.Hooks{
		OnInit:     mark("init"),
		PreUpdate:  mark("preUpdate"),
		PostUpdate: mark("postUpdate"),
		PreDraw:    mark("preDraw"),
		PostDraw:   mark("postDraw"),
		OnShutdown: mark("shutdown"),
	})
	if res != hostapi.ResultSuccess {
		t.Fatalf("init: %s", res)
	}

	domekit.PreUpdate(host.Context())
	domekit.PostUpdate(host.Context())
	domekit.PreDraw(host.Context())
	domekit.PostDraw(host.Context())
	domekit.OnShutdown(host.Context())

	want := []string{"init", "preUpdate", "postUpdate", "preDraw", "postDraw", "shutdown"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %q", order)
	}
}

// Full registration flow: a plugin declares a foreign class during init,
// script constructs it and calls a method, and the host sees the exact
// declared source and registration ordering.
func TestEndToEndModuleRegistration(t *testing.T) {
	host := hosttest.New()

	allocate := func(vm wren.VM) {
		wren.SetSlotNewForeign(vm, 0, 0, struct{ calls int }{})
	}
	playTone := func(vm wren.VM) {
		freq := vm.GetSlotDouble(1)
		vm.SetSlotDouble(0, freq*2)
	}

	res := domekit.Init(host.GetAPI, host.Context(), domekit.Hooks{
		OnInit: func(ctx dome.Context) error {
			return dome.NewModule("synth").
				ForeignClass("Osc", allocate).
				Constructor("new").
				StaticMethod("playTone", playTone, "frequency", "time").
				End().
				Register(ctx)
		},
	})
	if res != hostapi.ResultSuccess {
		t.Fatalf("init: %s", res)
	}

	wantCalls := []string{
		"RegisterModule(synth)",
		"RegisterClass(synth, Osc)",
		"RegisterFn(synth, static Osc.playTone(_,_))",
		"LockModule(synth)",
	}
	if got := host.Calls(); !reflect.DeepEqual(got, wantCalls) {
		t.Fatalf("calls = %q", got)
	}

	src, _ := host.ModuleSource("synth")
	wantSrc := "foreign class Osc {\n" +
		"  construct new() {}\n" +
		"  foreign static playTone(frequency, time)\n" +
		"}\n"
	if src != wantSrc {
		t.Fatalf("source = %q", src)
	}

	vm := host.NewVM()
	raw := wren.FromRaw(vm)
	raw.EnsureSlots(3)
	raw.SetSlotDouble(1, 440)
	raw.SetSlotDouble(2, 0.5)
	if !host.Invoke(vm, "synth", "static Osc.playTone(_,_)") {
		t.Fatal("method not callable")
	}
	if got := raw.GetSlotDouble(0); got != 880 {
		t.Fatalf("return = %v", got)
	}
	if vm.Aborted() {
		t.Fatalf("unexpected abort: %q", vm.AbortMessages())
	}

	if !host.Construct(vm, "synth", "Osc") {
		t.Fatal("allocator not callable")
	}
	if vm.Aborted() {
		t.Fatalf("allocator aborted: %q", vm.AbortMessages())
	}
}
