// Package calendar exports events as iCalendar (RFC 5545) files.
//
// Events with a date only become all-day entries. Events with a start time
// become floating-time entries, since listings carry local times without a
// zone. Events whose date text cannot be parsed cannot be exported.
package calendar
