// Package protocol owns the task wire contract.
//
// Ownership boundary:
// - status codes and standard task identifiers
//
// - header codec (see header)
//
// - task and envelope storage (see task)
//
// - payload converters (see payload)
//
// Dispatch and admission policy live in internal/dispatch; protocol never
// routes or executes tasks.
package protocol
