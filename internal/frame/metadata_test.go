package frame

import (
	"reflect"
	"testing"

	"framebus/internal/dtype"
)

func TestMetadataRoundTrip(t *testing.T) {
	cases := []struct {
		shape []int
		dt    dtype.Type
	}{
		{[]int{2, 2}, dtype.Uint8},
		{[]int{288, 320, 1}, dtype.Int16},
		{[]int{1}, dtype.Float64},
		{[]int{2, 1024}, dtype.Float32},
	}

	for _, c := range cases {
		buf, err := EncodeMetadata(c.shape, c.dt)
		if err != nil {
			t.Fatalf("EncodeMetadata(%v, %v): %v", c.shape, c.dt, err)
		}
		if len(buf) != MetadataWidth {
			t.Fatalf("encoded record is %d bytes, want %d", len(buf), MetadataWidth)
		}

		shape, dt, err := DecodeMetadata(buf)
		if err != nil {
			t.Fatalf("DecodeMetadata: %v", err)
		}
		if !reflect.DeepEqual(shape, c.shape) {
			t.Errorf("shape = %v, want %v", shape, c.shape)
		}
		if dt != c.dt {
			t.Errorf("dtype = %v, want %v", dt, c.dt)
		}
	}
}

func TestMetadataDiscovery(t *testing.T) {
	// spec.md §8 scenario 6.
	buf, err := EncodeMetadata([]int{288, 320, 1}, dtype.Int16)
	if err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	shape, dt, err := DecodeMetadata(buf)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if !reflect.DeepEqual(shape, []int{288, 320, 1}) || dt != dtype.Int16 {
		t.Fatalf("got (%v, %v), want ([288 320 1], int16)", shape, dt)
	}
}

func TestDecodeMetadataCorrupt(t *testing.T) {
	if _, _, err := DecodeMetadata([]byte("too short")); err == nil {
		t.Fatal("expected error for wrong-length record")
	}
}

func TestDecodeMetadataUnsupportedDtype(t *testing.T) {
	buf, err := EncodeMetadata([]int{1, 2}, dtype.Uint8)
	if err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	// Corrupt the dtype field to an unknown name of the same width.
	corrupt := append([]byte(nil), buf...)
	copy(corrupt[22:], []byte("complex128"))
	if _, _, err := DecodeMetadata(corrupt); err == nil {
		t.Fatal("expected ErrUnsupportedDtype")
	}
}
