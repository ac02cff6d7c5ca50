package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idoyourquotes/vector-service/internal/extract"
)

type stubDocument struct {
	pages    int
	width    float64
	height   float64
	drawings []extract.Drawing
	text     string
	closed   bool
}

func (d *stubDocument) NumPages() int { return d.pages }

func (d *stubDocument) PageSize(page int) (float64, float64, error) {
	return d.width, d.height, nil
}

func (d *stubDocument) Drawings(page int) ([]extract.Drawing, error) {
	return d.drawings, nil
}

func (d *stubDocument) Text(page int) (string, error) { return d.text, nil }

func (d *stubDocument) Close() error {
	d.closed = true
	return nil
}

func stubOpener(doc *stubDocument, err error) OpenFunc {
	return func(data []byte) (Document, error) {
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
}

func multipartPDF(t *testing.T, field string, size int) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile(field, "drawing.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), size))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func postExtract(t *testing.T, handler http.Handler, url, field string, size int) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartPDF(t, field, size)
	req := httptest.NewRequest(http.MethodPost, url, body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))

	return payload["error"]
}

func TestHealth(t *testing.T) {
	handler := New(stubOpener(nil, errors.New("unused"))).Handler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "vector-extraction", payload["service"])
}

func TestExtractRequiresPost(t *testing.T) {
	handler := New(stubOpener(nil, nil)).Handler()

	req := httptest.NewRequest(http.MethodGet, "/extract", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestExtractMissingUpload(t *testing.T) {
	handler := New(stubOpener(nil, nil)).Handler()

	rec := postExtract(t, handler, "/extract", "document", 500)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "No PDF file uploaded")
}

func TestExtractTinyBuffer(t *testing.T) {
	handler := New(stubOpener(nil, nil)).Handler()

	rec := postExtract(t, handler, "/extract", "pdf", 50)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "empty or too small")
}

func TestExtractOpenFailure(t *testing.T) {
	handler := New(stubOpener(nil, errors.New("bad xref"))).Handler()

	rec := postExtract(t, handler, "/extract", "pdf", 500)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "Failed to open PDF")
}

func TestExtractInvalidPageParam(t *testing.T) {
	handler := New(stubOpener(&stubDocument{pages: 1, width: 1000, height: 700}, nil)).Handler()

	rec := postExtract(t, handler, "/extract?page=abc", "pdf", 500)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "Invalid page number")
}

func TestExtractPageOutOfRange(t *testing.T) {
	doc := &stubDocument{pages: 2, width: 1000, height: 700}
	handler := New(stubOpener(doc, nil)).Handler()

	rec := postExtract(t, handler, "/extract?page=5", "pdf", 500)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "Page 5 out of range (document has 2 pages)")
	assert.True(t, doc.closed, "document must be released on validation failure")
}

func TestExtractSuccess(t *testing.T) {
	doc := &stubDocument{
		pages:  1,
		width:  1000,
		height: 700,
		drawings: []extract.Drawing{
			{StrokeColour: []float64{1, 0, 0}, Items: []extract.DrawingItem{{
				Op:     extract.OpLine,
				Points: []r2.Point{{X: 0, Y: 0}, {X: 400, Y: 0}},
			}}},
		},
	}
	handler := New(stubOpener(doc, nil)).Handler()

	rec := postExtract(t, handler, "/extract?scale=100&paper_size=A1", "pdf", 500)

	require.Equal(t, http.StatusOK, rec.Code)

	var result extract.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, 1000.0, result.PageWidth)
	assert.Equal(t, "1:100", result.Scale)
	assert.Equal(t, "A1", result.PaperSize)
	assert.Equal(t, 1, result.TotalColouredPaths)
	require.Len(t, result.Runs, 1)
	assert.Equal(t, "#ff0000", result.Runs[0].Colour)
	assert.Equal(t, 33.64, result.Runs[0].TotalLengthMetres)

	assert.True(t, doc.closed, "document must be released after success")
}

func TestExtractEmptyDrawingsPayloadShape(t *testing.T) {
	doc := &stubDocument{pages: 1, width: 1000, height: 700}
	handler := New(stubOpener(doc, nil)).Handler()

	rec := postExtract(t, handler, "/extract", "pdf", 500)
	require.Equal(t, http.StatusOK, rec.Code)

	// runs and colour_summary must be present even when empty
	body := rec.Body.String()
	assert.Contains(t, body, `"runs":[]`)
	assert.Contains(t, body, `"colour_summary":{}`)
}

func TestCORSPreflight(t *testing.T) {
	handler := New(stubOpener(nil, nil)).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/extract", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
