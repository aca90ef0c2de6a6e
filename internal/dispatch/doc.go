// Package dispatch owns task routing.
//
// Ownership boundary:
// - task table registration and lookup
//
// - per-message validation, ready gating, and handler execution
//
// - standard boot-status and reset tasks
//
// Per-message order:
// - receive -> length -> identifier -> ready gate -> execute -> send
//
// - any failed check produces a header-only response and goes straight to send.
//
// An Engine is not safe for concurrent use. Register tasks before the first
// DispatchOnce and drive the engine from one goroutine.
package dispatch
