// Package store holds the event listing in memory.
//
// A Store fetches its listing from a source.Fetcher exactly once. After a
// successful Load the list never changes for the lifetime of the Store, so
// any number of goroutines may read it concurrently. A failed Load leaves
// the Store empty and unloaded; callers can retry.
package store
