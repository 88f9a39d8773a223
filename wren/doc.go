// Package wren provides a validated view over the embedded interpreter's
// slot array, the VM's only means of exchanging typed values with native
// code.
//
// Every operation comes in two forms. The checked form verifies slot bounds
// (and, for getters, the value kind) against the live slot array and faults
// immediately with a descriptive error on violation, before any host call is
// made. The Unchecked form performs the raw host call and is meant for hot
// paths where the caller has independent proof the contract holds. A
// contract violation is a programming defect in the plugin, not a runtime
// condition to recover from; the fault is converted to a host-visible
// failure by the panic-capture boundary.
//
// Slots are short-lived: they are invalidated the moment control returns to
// the host. Values that must survive the current call are retained through
// Handle instead.
package wren
