/*
Package server implements msgpack IPC for ranked history lookups.

The server package exposes the ranked history corpus over stdin/stdout
using msgpack serialization. A front-end (shell widget, editor plugin)
spawns the process once and keeps the pipe open for the whole shell
session instead of reranking the file on every keystroke.

The protocol uses binary msgpack encoding and supports ranked queries,
history entry removal, corpus reloads, and pipeline stats. Messages are
processed synchronously with timing info included in query responses.

# IPC

The server operates on a request response model where clients send
structured messages via stdin and receive responses through stdout.
Each message contains an ID field, an op selector, and other fields
based on the operation type.

Query requests use mainly this structure:

	{"id": "req_001", "op": "query", "q": "git", "l": 24}

The server responds with commands, best rank first:

	{"id": "req_001", "s": [{"cmd": "git status", "p": 0}], "c": 1, "t": 145}

With min_query set to 0 an empty query returns the top of the corpus,
which front-ends use for the initial picker fill.

Removal deletes every history occurrence of one exact command and
rewrites the file in place:

	{"id": "rm_001", "op": "remove", "cmd": "mysql -uroot -phunter2"}

The response carries the occurrence count plus the directive the shell
has to run before its in-memory history matches the file again:

	{"id": "rm_001", "status": "ok", "n": 3, "reload": "history -r"}

Reload re-reads the history file and reranks, picking up entries other
shells appended since startup. Stats reports the ranking pipeline
counters for the loaded corpus, handy for debugging blacklist and
keyspace settings.

Response structures include status information and error details when
an op fails.

# Message Types

Request is the single envelope for all client messages; Op selects the
operation. QueryResponse contains Candidate arrays with command text
and rank position, plus timing data. RemoveResponse and StatusResponse
acknowledge mutations, reloads and health checks. StatsResponse mirrors
the ranking pipeline counters.

msgpack keeps messages roughly a third smaller than JSON and the binary
format parses faster, which matters when the picker queries on every
keystroke.
*/
package server

// Request - single envelope for all client messages
type Request struct {
	ID      string `msgpack:"id"`
	Op      string `msgpack:"op"`
	Query   string `msgpack:"q,omitempty"`
	Limit   int    `msgpack:"l,omitempty"`
	Mode    string `msgpack:"m,omitempty"`
	Command string `msgpack:"cmd,omitempty"`
}

// Candidate - one ranked command in a query response
type Candidate struct {
	Cmd string `msgpack:"cmd"`
	Pos int    `msgpack:"p"`
}

// QueryResponse - ranked lookup response
type QueryResponse struct {
	ID        string      `msgpack:"id"`
	Items     []Candidate `msgpack:"s"`
	Count     int         `msgpack:"c"`
	TimeTaken int64       `msgpack:"t"`
}

// RemoveResponse - removal acknowledgement with the shell reload directive
type RemoveResponse struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Removed int    `msgpack:"n"`
	Reload  string `msgpack:"reload,omitempty"`
}

// StatusResponse - ready, health and reload acknowledgements
type StatusResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Count  int    `msgpack:"c,omitempty"`
}

// StatsResponse - ranking pipeline counters for the loaded corpus
type StatsResponse struct {
	ID          string `msgpack:"id"`
	Status      string `msgpack:"status"`
	Path        string `msgpack:"path"`
	Format      string `msgpack:"format"`
	RawEntries  int    `msgpack:"raw"`
	Ranked      int    `msgpack:"ranked"`
	Blacklisted int    `msgpack:"blacklisted"`
	Skipped     int    `msgpack:"skipped"`
	KeySpace    uint32 `msgpack:"keyspace"`
	MaxKey      uint32 `msgpack:"max_key"`
	Dirty       bool   `msgpack:"dirty"`
}

// RequestError holds basic error information for failed requests
type RequestError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
