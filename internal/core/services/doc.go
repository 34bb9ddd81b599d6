// Package services implements the driving ports: the review
// orchestrator that drives findings through the mutation engine, and
// the result service over the persisted ledgers.
//
// Services depend on domain types and driven-port interfaces only;
// adapters are injected at startup by the CLI wiring.
package services
