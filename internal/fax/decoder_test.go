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

package fax

// This file implements a small reference decoder, used by the tests
// to verify that encoded strips decode back to their input pixels.

import "testing"

type codeKey struct {
	length int
	value  int
}

var (
	whiteTermByCode   = map[codeKey]int{}
	blackTermByCode   = map[codeKey]int{}
	whiteMakeupByCode = map[codeKey]int{}
	blackMakeupByCode = map[codeKey]int{}
)

func init() {
	for n, c := range terminatingCodesWhite {
		whiteTermByCode[codeKey{c.length, c.value}] = n
	}
	for n, c := range terminatingCodesBlack {
		blackTermByCode[codeKey{c.length, c.value}] = n
	}
	for i, c := range makeupCodesWhite {
		if c.length > 0 {
			whiteMakeupByCode[codeKey{c.length, c.value}] = i * 64
		}
	}
	for i, c := range makeupCodesBlack {
		if c.length > 0 {
			blackMakeupByCode[codeKey{c.length, c.value}] = i * 64
		}
	}
}

type bitReader struct {
	buf []byte
	pos int // absolute bit position, MSB-first
}

func (r *bitReader) next(t *testing.T) int {
	t.Helper()
	if r.pos >= len(r.buf)*8 {
		t.Fatal("bit stream exhausted")
	}
	b := (r.buf[r.pos/8] >> (7 - uint(r.pos%8))) & 1
	r.pos++
	return int(b)
}

// decodeRun reads zero or more make-up codes and one terminating code
// and returns the summed run length.
func decodeRun(t *testing.T, r *bitReader, black bool) int {
	t.Helper()
	term, makeup := whiteTermByCode, whiteMakeupByCode
	if black {
		term, makeup = blackTermByCode, blackMakeupByCode
	}
	total := 0
	for {
		length, value := 0, 0
		for {
			value = value<<1 | r.next(t)
			length++
			if n, ok := term[codeKey{length, value}]; ok {
				return total + n
			}
			if n, ok := makeup[codeKey{length, value}]; ok {
				total += n
				break
			}
			if length > 13 {
				t.Fatalf("invalid run code after %d bits (black=%v)", length, black)
			}
		}
	}
}

// expectEOL consumes zero bits (fill, if any) followed by the
// trailing 1 bit of an end-of-line code.
func expectEOL(t *testing.T, r *bitReader) {
	t.Helper()
	zeros := 0
	for r.next(t) == 0 {
		zeros++
	}
	if zeros < 11 {
		t.Fatalf("EOL has only %d leading zero bits", zeros)
	}
}

// decodeT4 decodes a Group 3 One-Dimensional strip back into
// byte-per-pixel rows (0 = white, 1 = black).
func decodeT4(t *testing.T, data []byte, width, height int, leadingEOL bool) []byte {
	t.Helper()
	r := &bitReader{buf: data}
	if leadingEOL {
		expectEOL(t, r)
	}
	pix := make([]byte, 0, width*height)
	for y := 0; y < height; y++ {
		row := make([]byte, width)
		x, black := 0, false
		for x < width {
			n := decodeRun(t, r, black)
			if x+n > width {
				t.Fatalf("row %d: run overflows width %d at column %d", y, width, x)
			}
			fillRun(row, x, x+n, black)
			x += n
			black = !black
		}
		expectEOL(t, r)
		pix = append(pix, row...)
	}
	return pix
}

func fillRun(row []byte, from, to int, black bool) {
	if from < 0 {
		from = 0
	}
	if to > len(row) {
		to = len(row)
	}
	if !black {
		return
	}
	for i := from; i < to; i++ {
		row[i] = 1
	}
}

// decodeT6 decodes a Group 4 strip, including its trailing EOFB, back
// into byte-per-pixel rows.
func decodeT6(t *testing.T, data []byte, width, height int) []byte {
	t.Helper()
	r := &bitReader{buf: data}
	ref := make([]byte, width)
	pix := make([]byte, 0, width*height)
	for y := 0; y < height; y++ {
		row := decodeRow2D(t, r, ref, width)
		pix = append(pix, row...)
		ref = row
	}
	expectEOL(t, r)
	expectEOL(t, r)
	return pix
}

func decodeRow2D(t *testing.T, r *bitReader, ref []byte, width int) []byte {
	t.Helper()
	row := make([]byte, width)
	a0, a0black := -1, false
	for a0 < width {
		b1 := nextChange(ref, a0)
		if b1 < width && (ref[b1] != 0) == a0black {
			b1 = nextChange(ref, b1)
		}
		b2 := nextChange(ref, b1)

		// Mode codes are distinguished by their count of leading
		// zero bits (1, 011/010, 001, 0001, 000011/000010, ...).
		zeros := 0
		for r.next(t) == 0 {
			zeros++
			if zeros > 6 {
				t.Fatalf("invalid mode code with %d leading zeros", zeros)
			}
		}

		vertical := func(n int) {
			a1 := b1 + n
			fillRun(row, a0, a1, a0black)
			a0 = a1
			a0black = !a0black
		}
		switch zeros {
		case 0:
			vertical(0)
		case 1, 4, 5:
			n := 1 // one leading zero
			if zeros == 4 {
				n = 2
			} else if zeros == 5 {
				n = 3
			}
			if r.next(t) == 1 {
				vertical(n)
			} else {
				vertical(-n)
			}
		case 2: // horizontal
			start := a0
			if start < 0 {
				start = 0
			}
			r1 := decodeRun(t, r, a0black)
			r2 := decodeRun(t, r, !a0black)
			fillRun(row, start, start+r1, a0black)
			fillRun(row, start+r1, start+r1+r2, !a0black)
			a0 = start + r1 + r2
		case 3: // pass
			fillRun(row, a0, b2, a0black)
			a0 = b2
		default:
			t.Fatalf("unexpected mode code with %d leading zeros", zeros)
		}
	}
	return row
}
