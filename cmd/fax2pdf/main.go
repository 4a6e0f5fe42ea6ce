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

// Program fax2pdf converts scanned page images into a PDF file of
// CCITT fax-compressed (Group 3 or Group 4) bi-level pages, or into
// raw fax bit streams for embedding into other containers.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio"
	"golang.org/x/sync/errgroup"

	"github.com/stapelberg/fax2pdf/internal/fax"
	"github.com/stapelberg/fax2pdf/internal/page"
	"github.com/stapelberg/fax2pdf/internal/pdf"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

var (
	output = flag.String("output",
		"out.pdf",
		"path to the output file, which is replaced atomically")

	group3 = flag.Bool("g3",
		false,
		"compress pages with Group 3 One-Dimensional coding instead of Group 4")

	fillBits = flag.Bool("fill",
		false,
		"byte-align end-of-line codes with fill bits (Group 3 only)")

	rtc = flag.Bool("rtc",
		false,
		"terminate pages with a return-to-control sequence of six EOLs (Group 3 only)")

	rotate = flag.Bool("rotate180",
		false,
		"rotate pages by 180 degrees (for scanners feeding the bottom edge first)")

	raw = flag.Bool("raw",
		false,
		"write one raw fax bit stream per page (-output plus a page suffix) instead of a PDF")

	blankThreshold = flag.Float64("blank_threshold",
		0.99,
		"skip pages whose white pixel ratio exceeds this value (set to 1 to keep blank pages)")
)

type compressedPage struct {
	data   bytes.Buffer
	width  int
	height int
}

func faxParams(width int) fax.Params {
	params := fax.Params{
		Width:  width,
		Scheme: fax.T6,
	}
	if *group3 {
		params.Scheme = fax.T4
		// An EOL before the first line, as the PDF DecodeParms
		// promise (/EndOfLine true).
		params.LeadingEOL = true
		params.RTC = *rtc
		if *fillBits {
			params.T4Options = fax.T4FillBits
		}
	}
	return params
}

// convert binarizes and compresses all pages concurrently, one fax
// encoder per page. Blank pages come back as nil.
func convert(paths []string) ([]*compressedPage, error) {
	compressed := make([]*compressedPage, len(paths))
	var eg errgroup.Group
	for idx, path := range paths {
		idx, path := idx, path // copy for the closure
		eg.Go(func() error {
			b, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			bl, whitePct, err := page.FromBytes(b).Binarized()
			if err != nil {
				return fmt.Errorf("%s: %v", path, err)
			}
			if whitePct > *blankThreshold {
				log.Printf("%s: white percentage is %f, skipping blank page", path, whitePct)
				return nil
			}
			if *rotate {
				bl.Rotate180()
			}

			enc, err := fax.NewEncoder(faxParams(bl.Width))
			if err != nil {
				return err
			}
			defer enc.Close()
			enc.Init(bl.Height)

			cp := &compressedPage{width: bl.Width, height: bl.Height}
			if err := enc.CompressStrip(bl.Pix, bl.Height, &cp.data); err != nil {
				return fmt.Errorf("%s: %v", path, err)
			}
			log.Printf("%s: compressed %dx%d page into %d bytes", path, bl.Width, bl.Height, cp.data.Len())
			compressed[idx] = cp
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return compressed, nil
}

func writePDF(w io.Writer, compressed []*compressedPage) error {
	var kids []pdf.Object
	var cnt int
	for _, m := range compressed {
		if m == nil {
			continue
		}

		scanName := fmt.Sprintf("scan%d", cnt)
		kids = append(kids, &pdf.Page{
			Common: pdf.Common{ObjectName: fmt.Sprintf("page%d", cnt)},
			Resources: []pdf.Object{
				&pdf.Image{
					Common: pdf.Common{
						ObjectName: scanName,
						Stream:     m.data.Bytes(),
					},
					Width:          m.width,
					Height:         m.height,
					TwoDimensional: !*group3,
				},
			},
			Parent: "pages",
			Contents: []pdf.Object{
				&pdf.Common{
					ObjectName: fmt.Sprintf("content%d", cnt),
					Stream:     []byte(fmt.Sprintf("q 595.28 0 0 841.89 0.00 0.00 cm /%s Do Q\n", scanName)),
				},
			},
		})
		cnt++
	}

	doc := &pdf.Catalog{
		Common: pdf.Common{ObjectName: "catalog"},
		Pages: &pdf.Pages{
			Common: pdf.Common{ObjectName: "pages"},
			Kids:   kids,
		},
	}
	info := &pdf.DocumentInfo{
		Common:       pdf.Common{ObjectName: "info"},
		CreationDate: time.Now(),
		Producer:     "https://github.com/stapelberg/fax2pdf",
	}
	return pdf.NewEncoder(w).Encode(doc, info)
}

func fax2pdf(paths []string) error {
	compressed, err := convert(paths)
	if err != nil {
		return err
	}

	if *raw {
		for idx, m := range compressed {
			if m == nil {
				continue
			}
			name := fmt.Sprintf("%s.page%d", *output, idx)
			if err := renameio.WriteFile(name, m.data.Bytes(), 0644); err != nil {
				return err
			}
			log.Printf("wrote %s (%d bytes)", name, m.data.Len())
		}
		return nil
	}

	var buf bytes.Buffer
	if err := writePDF(&buf, compressed); err != nil {
		return err
	}
	if err := renameio.WriteFile(*output, buf.Bytes(), 0644); err != nil {
		return err
	}
	log.Printf("wrote %s (%d bytes)", *output, buf.Len())
	return nil
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatalf("syntax: %s [options] <page.png|jpg|tiff|bmp>...", filepath.Base(os.Args[0]))
	}
	if err := fax2pdf(flag.Args()); err != nil {
		log.Fatal(err)
	}
}
