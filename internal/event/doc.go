// Package event provides the event record shared by every part of nearby-events.
//
// Events are loaded once from an external listing and never modified afterwards.
// Missing text fields decode to empty strings, and every event gets a deterministic
// UUIDv5 identifier derived from its title, city and date when the listing does not
// carry one.
package event
