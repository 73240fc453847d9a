// Package source fetches and decodes the event listing.
//
// A listing is addressed by a single location string. HTTP(S) URLs are fetched
// with caching disabled, s3://bucket/key locations are read from S3-compatible
// object storage, and anything else is treated as a local file path.
//
// The fetched document is either JSON (an array of events, or an object with an
// "events" array) or an HTML page carrying schema.org Event objects in
// application/ld+json script blocks.
package source
