// Package object parses and serializes commit objects.
//
// Parsers work on in-memory byte slices and return the unconsumed remainder
// together with the parsed value, so successive calls walk a buffer header by
// header. Every parse failure is a *ParseError that unwraps to one of the
// ErrMalformed* sentinels.
package object
