package domekit

import (
	"sync"

	"go.uber.org/zap"

	"github.com/domekit/domekit/dome"
	"github.com/domekit/domekit/hostapi"
	"github.com/domekit/domekit/internal/hostlog"
	"github.com/domekit/domekit/internal/registry"
	"github.com/domekit/domekit/panics"
	"github.com/domekit/domekit/wren"
)

// Hooks are the plugin's lifecycle callbacks. All are optional; a nil hook
// reports success to the host without doing anything.
//
// OnInit runs once, during Init, after the capability tables are resolved —
// it is where modules, classes and channels get registered. The four frame
// hooks run every frame in the order the host draws it. OnShutdown runs once
// when the host unloads the plugin.
type Hooks struct {
	OnInit     func(ctx dome.Context) error
	PreUpdate  func(ctx dome.Context) error
	PostUpdate func(ctx dome.Context) error
	PreDraw    func(ctx dome.Context) error
	PostDraw   func(ctx dome.Context) error
	OnShutdown func(ctx dome.Context) error
}

var (
	hooksMu sync.RWMutex
	hooks   Hooks
)

func installedHooks() Hooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return hooks
}

// Init is the plugin's entry point, called by the host exactly once before
// any other entry point. It negotiates the three capability tables at their
// supported versions, installs them process-wide, routes the SDK's logging
// through the host, and runs the OnInit hook.
//
// Failure is reported with a status code, never a panic: a nil capability
// function, nil engine context, or missing table means the host and plugin
// do not speak the same surface, and the plugin simply refuses to load.
func Init(getAPI hostapi.GetAPIFunc, ctx hostapi.Context, h Hooks) hostapi.Result {
	if getAPI == nil || ctx == nil {
		return hostapi.ResultFailure
	}
	core, ok := getAPI(hostapi.APICore, hostapi.CoreAPIVersion).(*hostapi.CoreAPIv0)
	if !ok || core == nil {
		return hostapi.ResultFailure
	}
	vmTable, ok := getAPI(hostapi.APIVM, hostapi.VMAPIVersion).(*hostapi.VMAPIv0)
	if !ok || vmTable == nil {
		return hostapi.ResultFailure
	}
	audioTable, ok := getAPI(hostapi.APIAudio, hostapi.AudioAPIVersion).(*hostapi.AudioAPIv0)
	if !ok || audioTable == nil {
		return hostapi.ResultFailure
	}

	registry.Install(core, vmTable, audioTable)

	log := hostlog.New(core, ctx)
	SetLogger(log)
	dome.SetLogger(log.Named("dome"))
	wren.SetLogger(log.Named("wren"))

	hooksMu.Lock()
	hooks = h
	hooksMu.Unlock()

	return invoke(ctx, h.OnInit)
}

// PreUpdate is called by the host before it steps game logic each frame.
func PreUpdate(ctx hostapi.Context) hostapi.Result {
	return invoke(ctx, installedHooks().PreUpdate)
}

// PostUpdate is called by the host after it steps game logic each frame.
func PostUpdate(ctx hostapi.Context) hostapi.Result {
	return invoke(ctx, installedHooks().PostUpdate)
}

// PreDraw is called by the host before it draws each frame.
func PreDraw(ctx hostapi.Context) hostapi.Result {
	return invoke(ctx, installedHooks().PreDraw)
}

// PostDraw is called by the host after it draws each frame.
func PostDraw(ctx hostapi.Context) hostapi.Result {
	return invoke(ctx, installedHooks().PostDraw)
}

// OnShutdown is called by the host when it unloads the plugin.
func OnShutdown(ctx hostapi.Context) hostapi.Result {
	return invoke(ctx, installedHooks().OnShutdown)
}

// invoke runs one hook under panic capture. A captured panic goes to the
// host log in the fixed panic format, with the message as a data argument; a
// returned error goes through the structured logger. Either way the host
// sees a plain failure status.
func invoke(raw hostapi.Context, hook func(dome.Context) error) hostapi.Result {
	if hook == nil {
		return hostapi.ResultSuccess
	}
	ctx := dome.FromRaw(raw)
	err, rec := panics.CaptureErr(func() error {
		return hook(ctx)
	})
	if rec != nil {
		ctx.LogPanic(rec)
		return hostapi.ResultFailure
	}
	if err != nil {
		Logger().Error("lifecycle hook failed", zap.Error(err))
		return hostapi.ResultFailure
	}
	return hostapi.ResultSuccess
}
