// errors.go - closed set of emulation error kinds

package main

import "fmt"

// ErrorKind identifies the class of failure that stopped a tick. The set is
// closed: every failure the core can raise maps to exactly one of these.
type ErrorKind int

const (
	InvalidOpcode ErrorKind = iota
	InvalidParameter
	UnhandledInstruction
	UnhandledParameter
	ParameterLengthMismatch
	UnsupportedParameter
	UnhandledInterrupt
	MemoryOutOfRange
	UnknownDiskFormat
	IoFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidOpcode:
		return "InvalidOpcode"
	case InvalidParameter:
		return "InvalidParameter"
	case UnhandledInstruction:
		return "UnhandledInstruction"
	case UnhandledParameter:
		return "UnhandledParameter"
	case ParameterLengthMismatch:
		return "ParameterLengthMismatch"
	case UnsupportedParameter:
		return "UnsupportedParameter"
	case UnhandledInterrupt:
		return "UnhandledInterrupt"
	case MemoryOutOfRange:
		return "MemoryOutOfRange"
	case UnknownDiskFormat:
		return "UnknownDiskFormat"
	case IoFailure:
		return "IoFailure"
	default:
		return "UnknownError"
	}
}

// EmulationError carries the (CS,IP) of the instruction that failed
// alongside the kind and a short human message, per the propagation policy
// in spec §7: the lifecycle owner reports this as a single diagnostic and
// transitions the machine to Stopped.
type EmulationError struct {
	Kind ErrorKind
	CS   uint16
	IP   uint16
	Msg  string
	Err  error
}

func (e *EmulationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s at %04X:%04X: %s: %v", e.Kind, e.CS, e.IP, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s at %04X:%04X: %s", e.Kind, e.CS, e.IP, e.Msg)
}

func (e *EmulationError) Unwrap() error { return e.Err }

func newErr(kind ErrorKind, cs, ip uint16, msg string) *EmulationError {
	return &EmulationError{Kind: kind, CS: cs, IP: ip, Msg: msg}
}

func wrapErr(kind ErrorKind, cs, ip uint16, msg string, err error) *EmulationError {
	return &EmulationError{Kind: kind, CS: cs, IP: ip, Msg: msg, Err: err}
}
