package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodesAreStableStrings(t *testing.T) {
	cases := map[string]Code{
		"device_absent":   DeviceAbsent,
		"bus_fault":       BusFault,
		"invalid_channel": InvalidChannel,
		"init_failed":     InitFailed,
		"unknown_pin":     UnknownPin,
		"unknown_board":   UnknownBoard,
	}
	for want, c := range cases {
		if c.Error() != want {
			t.Fatalf("code %q mismatch: got %q", want, c.Error())
		}
	}
}

func TestOf(t *testing.T) {
	cause := errors.New("nack")
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", DeviceAbsent, DeviceAbsent},
		{"wrapped E", Wrap(BusFault, "tx", cause), BusFault},
		{"fmt wrapped code", fmt.Errorf("select: %w", InvalidChannel), InvalidChannel},
		{"fmt wrapped E", fmt.Errorf("init: %w", Wrap(InitFailed, "init", cause)), InitFailed},
		{"plain", cause, Error},
	}
	for _, tt := range tests {
		if got := Of(tt.err); got != tt.want {
			t.Errorf("%s: Of() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEIsAndUnwrap(t *testing.T) {
	cause := errors.New("eio")
	err := fmt.Errorf("outer: %w", Wrap(DeviceAbsent, "probe", cause))
	if !errors.Is(err, DeviceAbsent) {
		t.Fatal("errors.Is should match the wrapped code")
	}
	if errors.Is(err, BusFault) {
		t.Fatal("errors.Is matched the wrong code")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause lost through Unwrap")
	}
	if got := Wrap(InvalidChannel, "select", nil).Error(); got != "select: invalid_channel" {
		t.Fatalf("Error() = %q", got)
	}
}
