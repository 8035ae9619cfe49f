// errors_test.go - EmulationError unit tests

package main

import (
	"errors"
	"testing"
)

func TestErrorKindString(t *testing.T) {
	cases := map[ErrorKind]string{
		InvalidOpcode:           "InvalidOpcode",
		UnhandledInterrupt:      "UnhandledInterrupt",
		MemoryOutOfRange:        "MemoryOutOfRange",
		UnknownDiskFormat:       "UnknownDiskFormat",
		IoFailure:               "IoFailure",
		ErrorKind(999):          "UnknownError",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%v.String(): got %q, want %q", int(kind), got, want)
		}
	}
}

func TestNewErrCarriesLocation(t *testing.T) {
	err := newErr(InvalidOpcode, 0x1234, 0x5678, "bad byte")
	if err.CS != 0x1234 || err.IP != 0x5678 {
		t.Errorf("CS:IP = %04X:%04X, want 1234:5678", err.CS, err.IP)
	}
	if err.Kind != InvalidOpcode {
		t.Errorf("Kind = %v, want InvalidOpcode", err.Kind)
	}
	want := "InvalidOpcode at 1234:5678: bad byte"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapErrUnwraps(t *testing.T) {
	inner := errors.New("disk gone")
	err := wrapErr(IoFailure, 0, 0x7C00, "reading sector", inner)
	if !errors.Is(err, inner) {
		t.Error("wrapErr result should unwrap to the inner error")
	}
	if got := err.Error(); got == "" {
		t.Error("Error() should not be empty")
	}
}
