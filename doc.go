// Package domekit is a plugin SDK for the DOME game engine: it turns the
// engine's C-shaped plugin surface into a safe Go one.
//
// A plugin is six optional lifecycle hooks plus whatever modules, foreign
// classes and audio channels it registers during init. The SDK owns the
// boundary discipline the host demands:
//
//   - capability negotiation: Init resolves the core, interpreter and audio
//     tables at fixed versions and refuses to start without all three.
//   - panic capture: no Go panic ever unwinds into the host. Hooks report
//     captured failures through the host log; interpreter-invoked code
//     additionally aborts the executing fiber with a fixed generic message.
//   - slot discipline: the wren package validates every slot access before
//     touching the host, so contract violations fail loudly and descriptively
//     instead of corrupting the interpreter.
//   - thread discipline: the audio package confines realtime-thread failures
//     to a pending cell drained on the main thread.
//
// See cmd/run for a complete synthesizer plugin running against the
// in-memory test host.
package domekit
