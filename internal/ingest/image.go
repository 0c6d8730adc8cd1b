// If you are AI: original_source has no single file-ingest analogue (it
// only knows live sensor devices); this adapter supplements the spec per
// the expansion rules, resizing a still image into a topic's declared
// shape so the bus has something besides synthetic noise to demo with. The
// resize call is grounded on the teacher repo's
// cmd/ansi_video_renderer/renderer.go, which uses the same
// draw.ApproxBiLinear.Scale call to fit an arbitrary source image into a
// fixed destination rectangle.
package ingest

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	"golang.org/x/image/draw"

	"framebus/internal/dtype"
	"framebus/internal/frame"
)

// imageProducer repeatedly emits the same resized image, standing in for a
// device that would otherwise decode a live video stream (spec.md §1
// explicitly excludes codec negotiation from the core).
type imageProducer struct {
	desc     frame.Descriptor
	interval time.Duration
	payload  []byte
	seq      uint64
}

// NewImageFile decodes the image at path once and resizes it to fit desc's
// declared shape, raising an error up front rather than per frame. desc
// must have a 3-dimensional shape (height, width, channels) and a uint8
// dtype; anything else cannot come from an 8-bit-per-channel image decode.
func NewImageFile(desc frame.Descriptor, path string, rateHz float64) (Producer, error) {
	if desc.DType != dtype.Uint8 {
		return nil, fmt.Errorf("ingest: image_file requires dtype uint8, got %s", desc.DType)
	}
	if len(desc.Shape) != 3 || desc.Shape[2] != 3 {
		return nil, fmt.Errorf("ingest: image_file requires shape [height, width, 3], got %v", desc.Shape)
	}
	height, width := desc.Shape[0], desc.Shape[1]

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open image %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("ingest: decode image %s: %w", path, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	payload := make([]byte, desc.FrameBytes())
	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := dst.At(x, y).RGBA()
			payload[i] = byte(r >> 8)
			payload[i+1] = byte(g >> 8)
			payload[i+2] = byte(b >> 8)
			i += 3
		}
	}

	return &imageProducer{desc: desc, interval: hzToInterval(rateHz), payload: payload}, nil
}

func (p *imageProducer) NextFrame(ctx context.Context) ([]byte, uint64, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	case <-time.After(p.interval):
	}
	p.seq++
	out := make([]byte, len(p.payload))
	copy(out, p.payload)
	return out, p.seq, nil
}
