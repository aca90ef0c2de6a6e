// Package transport holds dispatch.Transport implementations.
//
// - mem: in-process queues, used by tests and loopback wiring
//
// - udp: one task per datagram; meta carries the sender address
package transport
