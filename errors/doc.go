// Package errors provides structured error types for the bridging layer.
//
// Errors carry a Phase (where in the plugin lifecycle) and a Kind (what went
// wrong), so hosts and tests can match on both without parsing messages:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseRegistration, Kind: errors.KindRejected}) {
//		// host refused the registration
//	}
//
// Only recoverable conditions are modeled here. Contract violations (bad slot
// index, wrong value kind, foreign type confusion) fault immediately instead
// and are converted to host-visible failures by the panic-capture boundary.
package errors
