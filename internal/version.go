// Package internal defines values internal to the proofmarshal
// executables.
package internal

// Version is the current release version of go-proofmarshal.
const Version = "0.1.0"
