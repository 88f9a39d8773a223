// Package dome is the plugin-facing surface of the host engine: module and
// foreign-binding registration, host logging, and audio channel creation.
//
// Registration is a negotiation, not a command. The host may reject a module
// name that already exists, or a class or method aimed at a module that is
// missing or locked; rejections come back as ordinary error values so a
// plugin can react during init. Once a module is locked it is immutable for
// the rest of the process.
//
// ModuleBuilder assembles a module's interpreter source and its native
// bindings together, so declaration and registration cannot drift apart.
package dome
