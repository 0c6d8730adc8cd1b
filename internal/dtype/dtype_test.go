package dtype

import (
	"errors"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	all := []Type{Uint8, Int16, Int32, Int64, Float32, Float64}
	for _, want := range all {
		got, err := Parse(want.String())
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", want.String(), err)
		}
		if got != want {
			t.Errorf("Parse(%q) = %v, want %v", want.String(), got, want)
		}
	}
}

func TestParseUnsupported(t *testing.T) {
	_, err := Parse("complex128")
	if !errors.Is(err, ErrUnsupportedDtype) {
		t.Fatalf("expected ErrUnsupportedDtype, got %v", err)
	}
}

func TestSize(t *testing.T) {
	cases := map[Type]int{
		Uint8:   1,
		Int16:   2,
		Int32:   4,
		Int64:   8,
		Float32: 4,
		Float64: 8,
	}
	for typ, want := range cases {
		if got := typ.Size(); got != want {
			t.Errorf("%v.Size() = %d, want %d", typ, got, want)
		}
	}
}
