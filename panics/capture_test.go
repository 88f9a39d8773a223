package panics

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCaptureReturnsNilOnSuccess(t *testing.T) {
	ran := false
	rec := Capture(func() { ran = true })
	if !ran {
		t.Fatal("work did not run")
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %q", rec.Message)
	}
}

func TestCaptureRendersPanicValues(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "boom", "boom"},
		{"error", errors.New("wrapped failure"), "wrapped failure"},
		{"int", 42, "42"},
		{"struct", struct{ X int }{7}, "{7}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Capture(func() { panic(tt.value) })
			if rec == nil {
				t.Fatal("expected a record")
			}
			if rec.Message != tt.want {
				t.Fatalf("message = %q, want %q", rec.Message, tt.want)
			}
			if len(rec.Stack) == 0 {
				t.Fatal("expected a captured stack")
			}
		})
	}
}

func TestCaptureStackNamesPanicSite(t *testing.T) {
	rec := Capture(panickyHelper)
	if rec == nil {
		t.Fatal("expected a record")
	}
	if !strings.Contains(string(rec.Stack), "panickyHelper") {
		t.Fatal("stack does not reach the panic site")
	}
}

func panickyHelper() {
	panic("from helper")
}

func TestCaptureErr(t *testing.T) {
	sentinel := errors.New("plain failure")

	err, rec := CaptureErr(func() error { return nil })
	if err != nil || rec != nil {
		t.Fatalf("clean run: err=%v rec=%v", err, rec)
	}

	err, rec = CaptureErr(func() error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if rec != nil {
		t.Fatal("plain error must not produce a record")
	}

	err, rec = CaptureErr(func() error { panic("mid-flight") })
	if err != nil {
		t.Fatalf("panic path returned err %v", err)
	}
	if rec == nil || rec.Message != "mid-flight" {
		t.Fatalf("rec = %v", rec)
	}
}

func TestCaptureNeverPropagates(t *testing.T) {
	// A nested capture must isolate the inner panic completely.
	outer := Capture(func() {
		inner := Capture(func() { panic("inner") })
		if inner == nil {
			t.Fatal("inner panic not captured")
		}
	})
	if outer != nil {
		t.Fatalf("inner capture leaked: %q", outer.Message)
	}
}

func TestCaptureLawProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("panic message survives capture verbatim", prop.ForAll(
		func(msg string) bool {
			rec := Capture(func() { panic(msg) })
			return rec != nil && rec.Message == msg
		},
		gen.AnyString(),
	))

	properties.Property("returning work never yields a record", prop.ForAll(
		func(n int) bool {
			return Capture(func() { _ = n * 2 }) == nil
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}
