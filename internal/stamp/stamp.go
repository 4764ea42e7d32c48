// Package stamp prints the CAE granted to a voucher onto its PDF rendering.
package stamp

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/rezonia/wsmtxca-client/internal/model"
)

// ErrNoCAE is returned when stamping a voucher that was not authorized
var ErrNoCAE = errors.New("stamp: voucher has no CAE")

const expiryLayout = "02/01/2006"

// Option configures the stamp
type Option func(*config)

type config struct {
	fontSize int
	position string
	offsetX  int
	offsetY  int
	pages    []string
}

// WithFontSize sets the font size in points
func WithFontSize(points int) Option {
	return func(c *config) {
		c.fontSize = points
	}
}

// WithPosition anchors the stamp (bl, bc, br, tl, tc, tr, l, c, r)
func WithPosition(pos string) Option {
	return func(c *config) {
		c.position = pos
	}
}

// WithOffset moves the stamp away from its anchor
func WithOffset(dx, dy int) Option {
	return func(c *config) {
		c.offsetX = dx
		c.offsetY = dy
	}
}

// WithPages restricts the stamp to the selected pages ("1", "2-3", "odd")
func WithPages(pages ...string) Option {
	return func(c *config) {
		c.pages = pages
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		fontSize: 9,
		position: "bl",
		offsetX:  30,
		offsetY:  30,
		pages:    []string{"1"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Text renders the lines printed for result
func Text(result *model.VoucherResult) (string, error) {
	if result == nil || result.CAE == "" {
		return "", ErrNoCAE
	}
	return fmt.Sprintf("CAE: %s\nVto. CAE: %s", result.CAE, result.CAEExpiry.Format(expiryLayout)), nil
}

// Description renders the watermark description for the given options
func Description(opts ...Option) string {
	c := newConfig(opts)
	return description(c)
}

func description(c *config) string {
	return fmt.Sprintf(
		"fontname:Helvetica, points:%d, position:%s, offset:%d %d, scalefactor:1 abs, rotation:0, fillcolor:#000000, opacity:1",
		c.fontSize, c.position, c.offsetX, c.offsetY,
	)
}

// Stamp reads a PDF from rs and writes it to w with the CAE printed on it
func Stamp(rs io.ReadSeeker, w io.Writer, result *model.VoucherResult, opts ...Option) error {
	text, err := Text(result)
	if err != nil {
		return err
	}

	c := newConfig(opts)
	wm, err := api.TextWatermark(text, description(c), true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("stamp: invalid watermark: %w", err)
	}

	if err := api.AddWatermarks(rs, w, c.pages, wm, nil); err != nil {
		return fmt.Errorf("stamp: failed to stamp PDF: %w", err)
	}
	return nil
}

// StampFile stamps the PDF at inFile into outFile
func StampFile(inFile, outFile string, result *model.VoucherResult, opts ...Option) error {
	in, err := os.Open(inFile)
	if err != nil {
		return fmt.Errorf("stamp: failed to open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("stamp: failed to create output: %w", err)
	}

	if err := Stamp(in, out, result, opts...); err != nil {
		out.Close()
		os.Remove(outFile)
		return err
	}

	return out.Close()
}
