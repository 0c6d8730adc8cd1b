// If you are AI: This file implements the fixed-width metadata record codec
// described in spec.md §3 and §6. Layout (40 bytes total):
//
//	[ shape string, '*'-padded to 21 ][ '|' ][ dtype name, '*'-padded to 18 ]
//
// Written once by the publisher before the first publication, read once by
// each subscriber at join (spec.md I4).
package frame

import (
	"fmt"
	"strconv"
	"strings"

	"framebus/internal/dtype"
)

const (
	// MetadataWidth is the total fixed width of a metadata record in bytes.
	MetadataWidth = 40
	// metadataShapeWidth is the padded width of the shape field.
	metadataShapeWidth = 21
	// metadataSeparator separates the shape field from the dtype field.
	metadataSeparator = '|'
	// metadataDTypeWidth is the padded width of the dtype name field.
	metadataDTypeWidth = 18
	// metadataPad is the right-padding byte for both fields.
	metadataPad = '*'
)

// EncodeMetadata serializes shape and dtype into a MetadataWidth-byte record.
// It fails with ErrMetadataOverflow if either field does not fit its width.
func EncodeMetadata(shape []int, dt dtype.Type) ([]byte, error) {
	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	shapeStr := strings.Join(dims, "x")
	dtypeStr := dt.String()

	if len(shapeStr) > metadataShapeWidth {
		return nil, fmt.Errorf("%w: shape %q exceeds %d bytes", ErrMetadataOverflow, shapeStr, metadataShapeWidth)
	}
	if len(dtypeStr) > metadataDTypeWidth {
		return nil, fmt.Errorf("%w: dtype %q exceeds %d bytes", ErrMetadataOverflow, dtypeStr, metadataDTypeWidth)
	}

	buf := make([]byte, 0, MetadataWidth)
	buf = append(buf, shapeStr...)
	for len(buf) < metadataShapeWidth {
		buf = append(buf, metadataPad)
	}
	buf = append(buf, metadataSeparator)
	dtypeStart := len(buf)
	buf = append(buf, dtypeStr...)
	for len(buf)-dtypeStart < metadataDTypeWidth {
		buf = append(buf, metadataPad)
	}
	return buf, nil
}

// DecodeMetadata parses a MetadataWidth-byte record back into shape and
// dtype. It fails with ErrMetadataCorrupt if the record is the wrong size or
// missing its separator, and with ErrUnsupportedDtype if the dtype name is
// outside the closed set.
func DecodeMetadata(buf []byte) ([]int, dtype.Type, error) {
	if len(buf) != MetadataWidth {
		return nil, 0, fmt.Errorf("%w: got %d bytes, want %d", ErrMetadataCorrupt, len(buf), MetadataWidth)
	}

	text := string(buf)
	parts := strings.SplitN(text, string(metadataSeparator), 2)
	if len(parts) != 2 {
		return nil, 0, fmt.Errorf("%w: missing separator", ErrMetadataCorrupt)
	}

	shapeStr := strings.TrimRight(parts[0], string(metadataPad))
	dtypeStr := strings.TrimRight(parts[1], string(metadataPad))

	var shape []int
	if shapeStr != "" {
		for _, tok := range strings.Split(shapeStr, "x") {
			d, err := strconv.Atoi(tok)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: bad shape dimension %q", ErrMetadataCorrupt, tok)
			}
			shape = append(shape, d)
		}
	}

	dt, err := dtype.Parse(dtypeStr)
	if err != nil {
		return nil, 0, err
	}
	return shape, dt, nil
}
