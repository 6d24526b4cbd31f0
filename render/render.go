// Package render turns an invoice into a printable document.
//
// A Formatter writes one document format to an io.Writer. Export wraps a
// Formatter with a file write that either produces the complete document at
// the destination path or leaves nothing there.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xraph/folio/invoice"
)

// Supported document formats.
const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ErrUnsupportedFormat is returned for a format no formatter handles.
var ErrUnsupportedFormat = errors.New("render: unsupported format")

// Formatter renders an invoice in one document format. Every figure comes
// from the invoice's persisted totals and its line totals, so callers must
// pass a normalized invoice.
type Formatter interface {
	// Format returns the format name, which doubles as the file extension.
	Format() string
	// Render writes the whole document to w.
	Render(ctx context.Context, inv *invoice.Invoice, w io.Writer) error
}

// ForFormat returns the formatter for a format name.
func ForFormat(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatPDF:
		return NewPDF(), nil
	case FormatXLSX:
		return NewXLSX(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ForPath picks the formatter by file extension. Paths without a known
// extension get the PDF formatter.
func ForPath(path string) Formatter {
	if strings.EqualFold(filepath.Ext(path), "."+FormatXLSX) {
		return NewXLSX()
	}
	return NewPDF()
}

// Export renders inv with f to path. The document is written to a temporary
// file next to path and renamed into place once complete; on failure the
// temporary file is removed and path is left untouched.
func Export(ctx context.Context, f Formatter, inv *invoice.Invoice, path string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("render: create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = f.Render(ctx, inv, tmp); err != nil {
		return fmt.Errorf("render: %s: %w", f.Format(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	return nil
}
