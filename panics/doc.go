// Package panics converts plugin panics into values the host can log.
//
// The host calls into plugin code with no unwind-safety guarantees: a panic
// escaping a callback would cross the embedding boundary as undefined
// behavior. Every lifecycle hook, foreign method, allocator, finalizer and
// audio callback in this layer therefore runs under Capture, which turns an
// unwind into a Record (message plus stack) the caller reports through the
// host's logging entry point or as a fiber abort.
package panics
