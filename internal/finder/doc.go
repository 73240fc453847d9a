// Package finder runs the event finder's search flows on top of a loaded store.
//
// It resolves where the user is (device position, then a city or postal code
// typed by the user), runs the proximity or global text search and produces
// the status line to show with the results.
//
// Every flow takes a ticket from a Sequencer before it starts resolving a
// position. When a newer flow has started by the time the position arrives,
// the older flow returns ErrStale and its results must be discarded, so the
// last-issued search always wins.
package finder
