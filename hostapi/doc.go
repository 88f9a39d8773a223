// Package hostapi defines the fixed capability surface exchanged with the
// embedding host at plugin initialization.
//
// The host exposes three versioned tables of function pointers: the core
// table (module registration and logging), the VM table (slot manipulation
// for the embedded Wren interpreter), and the audio table (playback channel
// management). A plugin resolves all three exactly once through the
// capability function handed to its init entry point:
//
//	core, _ := getAPI(hostapi.APICore, hostapi.CoreAPIVersion).(*hostapi.CoreAPIv0)
//
// Everything in this package is plain data: opaque tokens minted by the host
// (Context, VM, Engine, Handle) and structs of function values. Behavior
// lives in the packages layered on top (wren, dome, audio).
//
// All tokens are defined as opaque `any` types. The host stores whatever it
// needs inside them; plugin-side code only ever passes them back unchanged.
package hostapi
