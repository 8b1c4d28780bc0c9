// Package file reads and writes automaton definitions as YAML or JSON files
// and persists stepwise sessions as JSON files.
package file
