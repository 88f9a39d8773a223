package dome_test

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/domekit/domekit"
	"github.com/domekit/domekit/dome"
	"github.com/domekit/domekit/errors"
	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/hosttest"
	"github.com/domekit/domekit/wren"
)

func newCtx(t *testing.T) (*hosttest.Host, dome.Context) {
	t.Helper()
	host := hosttest.New()
	if res := domekit.Init(host.GetAPI, host.Context(), domekit.Hooks{}); res != hostapi.ResultSuccess {
		t.Fatalf("init: %s", res)
	}
	return host, dome.FromRaw(host.Context())
}

func TestRegisterModule(t *testing.T) {
	host, ctx := newCtx(t)

	if err := ctx.RegisterModule("synth", "class Osc {}\n"); err != nil {
		t.Fatal(err)
	}
	src, ok := host.ModuleSource("synth")
	if !ok || src != "class Osc {}\n" {
		t.Fatalf("source = %q, %v", src, ok)
	}

	err := ctx.RegisterModule("synth", "")
	if err == nil {
		t.Fatal("duplicate registration must be rejected")
	}
	var rejection *errors.Error
	if !stderrors.As(err, &rejection) || rejection.Kind != errors.KindRejected {
		t.Fatalf("err = %v", err)
	}
}

func TestRegistrationAgainstLockedModule(t *testing.T) {
	_, ctx := newCtx(t)
	if err := ctx.RegisterModule("synth", ""); err != nil {
		t.Fatal(err)
	}
	ctx.LockModule("synth")

	if err := ctx.RegisterFn("synth", "static Osc.play(_)", func(wren.VM) {}); err == nil {
		t.Fatal("method on locked module must be rejected")
	}
	if err := ctx.RegisterClass("synth", "Osc", func(wren.VM) {}); err == nil {
		t.Fatal("class on locked module must be rejected")
	}
	if err := ctx.RegisterFn("missing", "Osc.play(_)", func(wren.VM) {}); err == nil {
		t.Fatal("method on unknown module must be rejected")
	}
}

func TestLogTreatsTextAsData(t *testing.T) {
	host, ctx := newCtx(t)
	ctx.Log("progress: 100%s done %d\n")
	logs := host.Logs()
	if len(logs) == 0 || !strings.Contains(logs[len(logs)-1], "100%s done %d") {
		t.Fatalf("logs = %q", logs)
	}
}

func TestGuardedMethodPanicAbortsFiber(t *testing.T) {
	host, ctx := newCtx(t)
	if err := ctx.RegisterModule("synth", ""); err != nil {
		t.Fatal(err)
	}
	if err := ctx.RegisterFn("synth", "static Osc.blow()", func(wren.VM) {
		panic("oscillator exploded")
	}); err != nil {
		t.Fatal(err)
	}

	vm := host.NewVM()
	if !host.Invoke(vm, "synth", "static Osc.blow()") {
		t.Fatal("method not registered")
	}

	if !vm.Aborted() {
		t.Fatal("fiber not aborted")
	}
	msgs := vm.AbortMessages()
	if len(msgs) != 1 || strings.Contains(msgs[0], "oscillator exploded") {
		t.Fatalf("abort message leaked panic text: %q", msgs)
	}
	if !strings.Contains(msgs[0], "Plugin panicked") {
		t.Fatalf("abort message = %q", msgs[0])
	}

	foundLog := false
	for _, line := range host.Logs() {
		if line == "Plugin panicked: oscillator exploded\n" {
			foundLog = true
		}
	}
	if !foundLog {
		t.Fatalf("host log missing panic line: %q", host.Logs())
	}
}

func TestFromVMRecoversContext(t *testing.T) {
	host, ctx := newCtx(t)
	got := dome.FromVM(wren.FromRaw(host.NewVM()))
	if got.Raw() != ctx.Raw() {
		t.Fatal("context round trip through VM failed")
	}
}
