// Package cli implements the command-line interface for nearby-events.
//
// The cli package provides the Cobra-based CLI with the search, locate, export
// and serve commands, output formatting (text/JSON/iCalendar) and sorting. It
// wires the config, source, store and finder packages together; serve hands
// them to the HTTP server.
package cli
