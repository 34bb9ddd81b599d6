// Package driving defines the interfaces the core offers to the
// outside world (the CLI adapter). These are the driving ports of the
// hexagon: callers drive the core through them, and the services under
// internal/core/services implement them.
package driving
