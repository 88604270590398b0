// Package protocol defines the wire vocabulary exchanged over realtime
// connections: a closed set of tagged JSON envelopes plus the topic strings
// used for subscription routing.
//
// Every frame is a JSON object carrying a "type" tag that fully determines
// the payload shape. Unknown tags and malformed payloads are decode errors,
// never panics; the hub keeps the offending connection alive.
package protocol
