// Package server implements the recordsrv connection pipeline and record API.
//
// Owns:
//   - TCP acceptance, admission control and graceful drain (Server)
//   - (method, path) dispatch (Match) and the record actions (API)
//   - Record persistence behind the Store interface (SQLiteStore, MemoryStore)
//   - Schema migrations embedded from migrations/*.sql
//
// Does not own:
//   - HTTP framing (package wire)
//   - Access log format and storage (package accesslog)
//
// Invariants:
//   - Exactly one worker goroutine owns a connection and closes it once
//   - One request and one response per connection, no keep-alive
//   - Malformed bodies are rejected before the store is touched
//   - SQL text never contains client-supplied values
//   - Zero-row update/delete is ErrNotFound (404), not success
package server
