// Package core defines the address model used across the daemon. It has no
// third-party dependencies so every other package can import it freely.
package core

import "errors"

// Sentinel errors. Callers wrap these with context and match with errors.Is.
var (
	// Address errors
	ErrNilAddress     = errors.New("strix: nil address")
	ErrInvalidAddress = errors.New("strix: invalid address literal")
	ErrUnknownFamily  = errors.New("strix: unknown address family")
	ErrLCAFAddress    = errors.New("strix: cannot process lcaf address")

	// Prefix errors
	ErrInvalidPrefix = errors.New("strix: invalid prefix")
	ErrPrefixLength  = errors.New("strix: prefix length out of range")

	// Wire decoding errors
	ErrPacketTooShort = errors.New("strix: packet too short")

	// Hostname resolution errors
	ErrResolveFailed   = errors.New("strix: hostname resolution failed")
	ErrNoUsableAddress = errors.New("strix: no usable address")

	// Server selection errors
	ErrNoCompatibleResolver = errors.New("strix: no map-resolver compatible with local rlocs")

	// Interface errors
	ErrNoInterfaceAddress = errors.New("strix: no usable address on interface")

	// Configuration errors
	ErrConfigInvalid = errors.New("strix: invalid configuration")
	ErrInvalidKey    = errors.New("strix: invalid authentication key")
)
