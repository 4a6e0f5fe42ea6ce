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

package pdf_test

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stapelberg/fax2pdf/internal/pdf"
)

func buildDoc(twoDimensional bool) (*pdf.Catalog, *pdf.DocumentInfo) {
	doc := &pdf.Catalog{
		Common: pdf.Common{ObjectName: "catalog"},
		Pages: &pdf.Pages{
			Common: pdf.Common{ObjectName: "pages"},
			Kids: []pdf.Object{
				&pdf.Page{
					Common: pdf.Common{ObjectName: "page0"},
					Resources: []pdf.Object{
						&pdf.Image{
							Common: pdf.Common{
								ObjectName: "scan0",
								Stream:     []byte{0x98, 0x00, 0x80},
							},
							Width:          8,
							Height:         1,
							TwoDimensional: twoDimensional,
						},
					},
					Parent: "pages",
					Contents: []pdf.Object{
						&pdf.Common{
							ObjectName: "content0",
							Stream:     []byte("q 595.28 0 0 841.89 0.00 0.00 cm /scan0 Do Q\n"),
						},
					},
				},
			},
		},
	}
	info := &pdf.DocumentInfo{
		Common:       pdf.Common{ObjectName: "info"},
		CreationDate: time.Unix(1493650928, 0).UTC(),
		Producer:     "https://github.com/stapelberg/fax2pdf",
	}
	return doc, info
}

func TestEncodeDecodeParms(t *testing.T) {
	for _, test := range []struct {
		name           string
		twoDimensional bool
		want           []string
		notWant        []string
	}{
		{
			name: "group3",
			want: []string{
				"/K 0",
				"/EndOfLine true",
				"/EndOfBlock false",
			},
		},
		{
			name:           "group4",
			twoDimensional: true,
			want: []string{
				"/K -1",
				"/EndOfBlock true",
			},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			doc, info := buildDoc(test.twoDimensional)
			var buf bytes.Buffer
			if err := pdf.NewEncoder(&buf).Encode(doc, info); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			for _, want := range append(test.want,
				"/Filter /CCITTFaxDecode",
				"/Columns 8",
				"/Rows 1",
				"/Width 8",
				"/Height 1",
				"/BlackIs1 false",
				"/MediaBox [ 0 0 595.28 841.89 ]",
			) {
				if !strings.Contains(out, want) {
					t.Errorf("output does not contain %q", want)
				}
			}
		})
	}
}

func TestEncodeXref(t *testing.T) {
	doc, info := buildDoc(true)
	var buf bytes.Buffer
	if err := pdf.NewEncoder(&buf).Encode(doc, info); err != nil {
		t.Fatal(err)
	}
	out := buf.Bytes()

	if !bytes.HasPrefix(out, []byte("%PDF-1.0\n%")) {
		t.Fatalf("output does not start with a PDF header: %q", out[:16])
	}

	// The cross-reference table must point at every object.
	idx := bytes.LastIndex(out, []byte("\nxref\n"))
	if idx == -1 {
		t.Fatal("no xref table in output")
	}
	lines := strings.Split(string(out[idx+1:]), "\n")
	// lines[0] = "xref", lines[1] = "0 n+1", lines[2] = free entry.
	count, err := strconv.Atoi(strings.Fields(lines[1])[1])
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < count; i++ {
		offset, err := strconv.Atoi(strings.Fields(lines[2+i])[0])
		if err != nil {
			t.Fatal(err)
		}
		want := fmt.Sprintf("%d 0 obj", i)
		if !bytes.HasPrefix(out[offset:], []byte(want)) {
			t.Errorf("xref entry %d points at %q, want %q", i, out[offset:offset+len(want)], want)
		}
	}

	// startxref must point at the xref table.
	sx := bytes.LastIndex(out, []byte("startxref\n"))
	if sx == -1 {
		t.Fatal("no startxref in output")
	}
	offset, err := strconv.Atoi(strings.TrimSpace(strings.Split(string(out[sx+len("startxref\n"):]), "\n")[0]))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(out[offset:], []byte("\nxref\n")) {
		t.Errorf("startxref points at %q, want the xref table", out[offset:offset+6])
	}
}
