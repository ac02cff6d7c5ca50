// Package pdfgeom provides the vector-geometry view of a PDF document:
// stroked path primitives with their stroke colours, page text and page
// dimensions. Geometry comes from walking content streams with unipdf,
// which sees all content including optional content (OCG) layers where
// CAD tools commonly place tray linework; text comes from MuPDF.
package pdfgeom

import (
	"bytes"
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/mgmeyers/unipdf/v3/model"
)

// Document is an open PDF ready for geometry and text extraction. Each
// Document owns independent handles over its input buffer; instances are
// not safe for concurrent use.
type Document struct {
	reader   *model.PdfReader
	fitzDoc  *fitz.Document
	numPages int
}

// Open parses a PDF from an in-memory buffer.
func Open(data []byte) (*Document, error) {
	reader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	numPages, err := reader.GetNumPages()
	if err != nil {
		return nil, err
	}

	fitzDoc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}

	return &Document{
		reader:   reader,
		fitzDoc:  fitzDoc,
		numPages: numPages,
	}, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.numPages
}

// PageSize returns the page dimensions in PDF units, 1-based. Pages
// rotated a quarter turn report swapped width and height.
func (d *Document) PageSize(pageNum int) (width, height float64, err error) {
	page, err := d.reader.GetPage(pageNum)
	if err != nil {
		return 0, 0, err
	}

	if page.MediaBox == nil {
		return 0, 0, fmt.Errorf("page %d has no media box", pageNum)
	}

	width = page.MediaBox.Width()
	height = page.MediaBox.Height()

	if page.Rotate != nil && (*page.Rotate == 90 || *page.Rotate == 270) {
		width, height = height, width
	}

	return width, height, nil
}

// Text returns the page's text content, 1-based.
func (d *Document) Text(pageNum int) (string, error) {
	return d.fitzDoc.Text(pageNum - 1)
}

// Close releases the document handles.
func (d *Document) Close() error {
	return d.fitzDoc.Close()
}
