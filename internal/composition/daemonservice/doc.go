// Package daemonservice assembles the JetLumen daemon service from domain
// packages and exposes it through the contracts/ports DaemonService API.
//
// Responsibilities:
//   - Build the wallet bridge, session, ledger builder/submitter/reader, state
//     mirror and workflow from concrete adapters.
//   - Record errors and metrics at the service boundary.
//
// Non-responsibilities:
//   - Transaction and mirror rules (internal/domains/*).
//   - Opening stores and clients (internal/composition/daemon).
package daemonservice
