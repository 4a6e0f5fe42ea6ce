// Copyright 2016 Michael Stapelberg and contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fax implements data encoding using the CCITT (renamed to
// ITU-T in 1993) fax standards: Group 3 One-Dimensional (G31D) coding
// and Group 4 Two-Dimensional (G42D, also called MMR) coding.
//
// It follows the standards ITU-T T.4 (07/2003), section 4.1, and
// ITU-T T.6 (11/1988), section 2:
// https://www.itu.int/rec/T-REC-T.4-200307-I/en
// https://www.itu.int/rec/T-REC-T.6-198811-I/en
//
// Input strips are one byte per pixel, 0 = white and non-zero =
// black, row-major. Output is bit-packed MSB-first, the default TIFF
// fill order.
package fax

import (
	"errors"
	"fmt"
	"io"
)

// Scheme selects the coding scheme.
type Scheme int

const (
	// T4 is Group 3 One-Dimensional coding: every row is encoded
	// independently as Modified Huffman run lengths.
	T4 Scheme = iota + 1
	// T6 is Group 4 Two-Dimensional coding: every row is encoded
	// relative to the previous row.
	T6
)

// T4Options bits, as in the TIFF T4Options tag (292). Only T4FillBits
// is implemented; the remaining bits must be zero.
const (
	T4TwoDimensional = 1 << 0 // T.4 2-D coding, not implemented
	T4Uncompressed   = 1 << 1 // uncompressed mode, not implemented
	T4FillBits       = 1 << 2 // byte-align each EOL with zero fill bits
)

var (
	// ErrUnsupportedOption means an option bit requires coding that
	// is not implemented.
	ErrUnsupportedOption = errors.New("fax: unsupported T4 option")

	// ErrInvalidDimension means the strip width or height is zero,
	// or the pixel buffer does not match width×height.
	ErrInvalidDimension = errors.New("fax: invalid strip dimensions")
)

// Params configures an Encoder.
type Params struct {
	// Width is the row width in pixels. Must be at least 1.
	Width int

	// Scheme selects T4 or T6 coding.
	Scheme Scheme

	// T4Options carries the TIFF T4Options flag word. It is only
	// meaningful for the T4 scheme and ignored for T6.
	T4Options uint32

	// LeadingEOL emits an end-of-line code before the first row of
	// every strip (T.4 4.1.2 requires one prior to the first data
	// line of a page). T4 only.
	LeadingEOL bool

	// RTC terminates every strip with a return-to-control sequence
	// of six consecutive end-of-line codes. T4 only.
	RTC bool
}

// Encoder compresses bi-level pixel strips. An Encoder owns its bit
// sink and reference line exclusively; to encode strips concurrently,
// use one Encoder per goroutine.
type Encoder struct {
	params Params
	bw     bitWriter
	ref    []byte // T6 reference line, nil for T4
}

// NewEncoder returns an Encoder for the given parameters. It fails if
// the width is not positive, the scheme is unknown, or T4Options
// requests coding that is not implemented.
func NewEncoder(p Params) (*Encoder, error) {
	if p.Width < 1 {
		return nil, fmt.Errorf("width %d: %w", p.Width, ErrInvalidDimension)
	}
	switch p.Scheme {
	case T4:
		if p.T4Options&T4TwoDimensional != 0 {
			return nil, fmt.Errorf("2-dimensional T.4 coding: %w", ErrUnsupportedOption)
		}
		if p.T4Options&T4Uncompressed != 0 {
			return nil, fmt.Errorf("uncompressed mode: %w", ErrUnsupportedOption)
		}
	case T6:
	default:
		return nil, fmt.Errorf("fax: unknown scheme %d", p.Scheme)
	}
	e := &Encoder{params: p}
	if p.Scheme == T6 {
		e.ref = make([]byte, p.Width)
	}
	return e, nil
}

// Init preallocates the bit sink for strips of up to rowsPerStrip
// rows. Width×rowsPerStrip bytes is an initial capacity, not an upper
// bound: very narrow strips can need more (a one-pixel T4 row takes at
// least 18 bits, its run code plus the 12-bit EOL). The sink grows on
// demand, so Init is optional.
func (e *Encoder) Init(rowsPerStrip int) {
	e.bw.reset(e.params.Width * rowsPerStrip)
}

// CompressStrip encodes one strip of height rows and writes the
// compressed bytes to w in a single call. pix must hold exactly
// width×height bytes, one per pixel, 0 = white. The bit stream is
// padded with zero bits to a byte boundary.
//
// On error, nothing past previously completed strips has been written
// to w; the caller discards the strip. The Encoder is ready for the
// next strip either way.
func (e *Encoder) CompressStrip(pix []byte, height int, w io.Writer) error {
	width := e.params.Width
	if height < 1 {
		return fmt.Errorf("height %d: %w", height, ErrInvalidDimension)
	}
	if len(pix) != width*height {
		return fmt.Errorf("strip has %d pixels, want %d×%d: %w",
			len(pix), width, height, ErrInvalidDimension)
	}

	e.bw.reset(width * height)

	switch e.params.Scheme {
	case T4:
		if e.params.LeadingEOL {
			e.writeEOL()
		}
		for y := 0; y < height; y++ {
			e.encodeRow1D(pix[y*width : (y+1)*width])
		}
		if e.params.RTC {
			// The last row's EOL is the first of the six.
			for i := 0; i < 5; i++ {
				e.writeEOL()
			}
		}
	case T6:
		for i := range e.ref {
			e.ref[i] = 0 // the strip starts on an all-white reference line
		}
		for y := 0; y < height; y++ {
			e.encodeRow2D(pix[y*width : (y+1)*width])
		}
		e.writeEOFB()
	}

	e.bw.padToByte()
	return e.bw.flushTo(w)
}

// Close releases the Encoder's buffers. The Encoder must not be used
// afterwards.
func (e *Encoder) Close() {
	e.bw.buf = nil
	e.ref = nil
}
