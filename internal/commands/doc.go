// Package commands is the reference application served by ticdd.
//
// It registers three tasks on a dispatch.Engine:
//
// - initialization-data (3): stores configuration words and marks the
// application ready
//
// - bank (100): 1-4 (enable, value) pairs, each turned into a bank command word
//
// - output (101): one output selector turned into an output command word
//
// Command words are 32 bits with the command id in bits 28-31 and are handed
// to a Sink in task order.
package commands
