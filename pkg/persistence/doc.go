// Package persistence saves the run summary of a reader process.
//
// The summary is a small JSON document rewritten after every read outcome,
// so an operator (or a supervisor restarting the process) can see what the
// last run did without parsing the read log.
package persistence
