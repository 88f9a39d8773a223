package panics

import (
	"fmt"
	"runtime/debug"
)

// Record is one captured failure: the rendered panic message and the stack
// at the point of the panic. It exists from the instant a captured unit of
// work unwinds until it has been logged or converted into a host-visible
// error.
type Record struct {
	Message string
	Stack   []byte
}

func (r *Record) String() string {
	return r.Message
}

// Message renders a panic value the way the host log expects it: errors by
// their Error string, strings as-is, anything else through fmt.
func Message(v any) string {
	switch m := v.(type) {
	case error:
		return m.Error()
	case string:
		return m
	default:
		return fmt.Sprint(m)
	}
}

// Capture runs work and intercepts any unwind started inside it. It returns
// nil on normal completion, or a Record describing the panic. No panic ever
// propagates past Capture; this is the single mechanism that makes the rest
// of the layer safe to call from the host.
func Capture(work func()) (rec *Record) {
	defer func() {
		if v := recover(); v != nil {
			rec = &Record{
				Message: Message(v),
				Stack:   debug.Stack(),
			}
		}
	}()
	work()
	return nil
}

// CaptureErr runs work that may also fail with an ordinary error. The error
// is passed through untouched; a panic is reported as a Record, in which case
// the error is nil.
func CaptureErr(work func() error) (err error, rec *Record) {
	rec = Capture(func() {
		err = work()
	})
	if rec != nil {
		err = nil
	}
	return err, rec
}
