// Package server exposes the event search over HTTP.
//
// Routes:
//
//	GET /api/events?lat=&lon=&radius=&q=&upcoming=   matching events as a JSON array
//	GET /api/search?lat=&lon=&city=&radius=&q=       search outcome with mode and status text
//	GET /api/locate?city=                            position of a city from the listing
//	GET /api/events/{id}                             one event
//	GET /api/events/{id}.ics                         one event as iCalendar
//	GET /healthz                                     liveness and listing state
//	GET /metrics                                     Prometheus metrics
//
// lat and lon must be given together; radius defaults to the configured
// radius. Every request stands alone, so handlers use the unsequenced
// finder operations. The listing is loaded on first use and a failed load
// is retried by the next request.
package server
