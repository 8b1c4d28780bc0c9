// Package registry compiles named automaton definitions on demand and caches
// the resulting automata for the HTTP, MCP and session layers.
package registry
