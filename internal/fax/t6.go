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

// nextChange returns the first changing element in row strictly right
// of pos: the smallest column > pos whose color differs from the
// pixel to its left, with column -1 defined as white. If there is
// none, it returns len(row), the off-row sentinel.
func nextChange(row []byte, pos int) int {
	i := pos + 1
	if i < 0 {
		i = 0
	}
	if i >= len(row) {
		return len(row)
	}
	prev := false // imaginary white pixel left of column 0
	if i > 0 {
		prev = row[i-1] != 0
	}
	for ; i < len(row); i++ {
		cur := row[i] != 0
		if cur != prev {
			return i
		}
		prev = cur
	}
	return len(row)
}

// encodeRow2D encodes one row relative to the reference line using
// the pass, vertical and horizontal modes of ITU-T T.6, then replaces
// the reference line with the coded row.
func (e *Encoder) encodeRow2D(row []byte) {
	width := len(row)
	ref := e.ref

	// a0 starts on an imaginary white pixel left of column 0.
	a0, a0black := -1, false
	for a0 < width {
		// The run starting at a0 has a0's color, so the next change
		// on the coding line is the next element of opposite color.
		a1 := nextChange(row, a0)

		// b1 is the first changing element on the reference line
		// right of a0 whose color differs from a0's. Changing
		// elements alternate in color, so at most one extra step.
		b1 := nextChange(ref, a0)
		if b1 < width && (ref[b1] != 0) == a0black {
			b1 = nextChange(ref, b1)
		}
		b2 := nextChange(ref, b1)

		switch {
		case b2 < a1:
			e.bw.writeCode(passCode)
			a0 = b2

		case a1-b1 <= 3 && b1-a1 <= 3:
			e.bw.writeCode(verticalCodes[a1-b1+3])
			a0 = a1
			a0black = !a0black

		default:
			a2 := nextChange(row, a1)
			e.bw.writeCode(horizontalCode)
			start := a0
			if start < 0 {
				start = 0
			}
			writeRun(&e.bw, a0black, a1-start)
			writeRun(&e.bw, !a0black, a2-a1)
			a0 = a2
		}
	}

	copy(ref, row)
}

// writeEOFB emits the end-of-facsimile-block code, two consecutive
// end-of-line codes (T.6 2.2.2).
func (e *Encoder) writeEOFB() {
	e.bw.writeCode(endOfLine)
	e.bw.writeCode(endOfLine)
}
