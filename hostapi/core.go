package hostapi

// CoreAPIv0 is the core engine table: module registration and logging.
//
// Log is printf-shaped. Callers must pass a fixed format literal and route
// any plugin-controlled text through a %s argument, never through the format
// string itself.
type CoreAPIv0 struct {
	RegisterModule func(ctx Context, name, source string) Result
	RegisterFn     func(ctx Context, module, signature string, method ForeignMethodFn) Result
	RegisterClass  func(ctx Context, module, class string, allocate ForeignMethodFn, finalize FinalizerFn) Result
	LockModule     func(ctx Context, name string)
	GetContext     func(vm VM) Context
	Log            func(ctx Context, format string, args ...any)
}
