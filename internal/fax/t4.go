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

// runLength returns the number of contiguous pixels in row[start:]
// matching the wanted color. A mismatch at start yields 0, the legal
// zero-length run required when a row begins with a black pixel.
func runLength(row []byte, start int, black bool) int {
	n := 0
	for _, px := range row[start:] {
		if (px != 0) != black {
			break
		}
		n++
	}
	return n
}

// writeEOL emits the 12-bit end-of-line code. With the fill-bits
// option, zero bits are inserted first so that the EOL's trailing
// 1-bit lands on a byte boundary (T.4 4.1.2, "Fill").
func (e *Encoder) writeEOL() {
	if e.params.T4Options&T4FillBits != 0 {
		if rem := (e.bw.bitsWritten() + endOfLine.length) % 8; rem != 0 {
			e.bw.writeBits(0, uint(8-rem))
		}
	}
	e.bw.writeCode(endOfLine)
}

// encodeRow1D encodes one row as alternating white/black runs,
// beginning with a white run (of length zero if the row starts
// black), followed by an end-of-line code.
func (e *Encoder) encodeRow1D(row []byte) {
	black := false // lines always start with a white run
	for x := 0; x < len(row); {
		n := runLength(row, x, black)
		writeRun(&e.bw, black, n)
		black = !black
		x += n
	}
	e.writeEOL()
}
