// Package logger records what happens to every line a session parses as
// newline delimited JSON, and summarizes those logs.
package logger
