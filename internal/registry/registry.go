// Package registry holds the process-wide capability tables resolved at
// plugin initialization.
//
// The host calls the init entry point before any other entry point, so the
// tables are written exactly once before they are ever read; the mutex only
// serializes re-initialization in tests, which mount fresh fake hosts.
package registry

import (
	"sync"

	"github.com/domekit/domekit/hostapi"
)

var (
	mu    sync.RWMutex
	core  *hostapi.CoreAPIv0
	vm    *hostapi.VMAPIv0
	audio *hostapi.AudioAPIv0
)

// Install stores the three resolved tables. Called by the init entry point
// only, after nil-checking every table.
func Install(c *hostapi.CoreAPIv0, v *hostapi.VMAPIv0, a *hostapi.AudioAPIv0) {
	mu.Lock()
	defer mu.Unlock()
	core, vm, audio = c, v, a
}

// Reset clears the tables. Test hosts use it to simulate process restart.
func Reset() {
	Install(nil, nil, nil)
}

// Core returns the core engine table. Accessing it before initialization is
// a programming error; the host guarantees init runs first.
func Core() *hostapi.CoreAPIv0 {
	mu.RLock()
	defer mu.RUnlock()
	if core == nil {
		panic("host core table accessed before plugin initialization")
	}
	return core
}

// VM returns the interpreter table.
func VM() *hostapi.VMAPIv0 {
	mu.RLock()
	defer mu.RUnlock()
	if vm == nil {
		panic("host VM table accessed before plugin initialization")
	}
	return vm
}

// Audio returns the audio engine table.
func Audio() *hostapi.AudioAPIv0 {
	mu.RLock()
	defer mu.RUnlock()
	if audio == nil {
		panic("host audio table accessed before plugin initialization")
	}
	return audio
}
