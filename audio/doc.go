// Package audio bridges plugin synthesizer code to the host's channel
// system, whose callbacks arrive on two different threads.
//
// The mix callback runs on the host's realtime audio thread; the update and
// finish callbacks run on the main thread. The shared payload sits behind a
// read-write lock, and a failure on the audio thread cannot be reported
// there (no VM, no safe logging), so it is parked in a pending cell and
// surfaced on the next main-thread callback.
//
// Channel[T] is the owning view the plugin keeps; CallbackChannel[T] is the
// borrowing view callbacks receive. Payload access goes through scoped
// callbacks (Data/DataMut) so the lock is held exactly for the duration of
// the access, panic or not.
package audio
