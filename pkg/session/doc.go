// Package session is the command surface shared by every pql front end.
//
// A [Session] owns a knowledge base and evaluates queries against it. Each
// query gets a fresh trace log, its own OpenTelemetry span and an entry in the
// session's Prometheus metrics. Shells (the REPL, the TUI, the MCP server and
// the file watcher) only talk to a Session.
package session
