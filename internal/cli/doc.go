// Package cli parses the explode command line and runs it.
//
// Flags override the environment defaults loaded by package config. Every
// boolean value policy comes as an allow/disallow pair, for example
// -allow-lax-strings and -disallow-lax-strings; the last one given wins.
//
// Exit codes: 0 on success, 1 when the run fails, 2 for usage and
// configuration errors.
package cli
