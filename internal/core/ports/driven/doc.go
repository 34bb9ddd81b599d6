// Package driven defines the interfaces the core requires from its
// infrastructure adapters (document codec, findings loader, result
// store, config store).
//
// In hexagonal terms these are the driven ports: the core calls out
// through them, adapters under internal/adapters/driven implement
// them. Services depend only on these interfaces, never on a concrete
// adapter.
package driven
