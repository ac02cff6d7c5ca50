// Package server exposes the extraction pipeline over HTTP: a multipart
// upload endpoint that measures coloured tray runs on one page of a CAD
// PDF, and a health check.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/idoyourquotes/vector-service/internal/extract"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "1.0.0"

// maxUploadBytes bounds the multipart form held in memory per request.
const maxUploadBytes = 64 << 20

// minPDFBytes is the smallest buffer worth handing to the parser.
const minPDFBytes = 100

// Document is the scoped per-request resource combining page geometry
// access with explicit release.
type Document interface {
	extract.GeometryProvider
	Close() error
}

// OpenFunc opens a Document over an uploaded byte buffer.
type OpenFunc func(data []byte) (Document, error)

// Server routes extraction requests. Each request owns its own document
// handle and workspaces; the Server itself holds no mutable state.
type Server struct {
	open OpenFunc
	log  *logrus.Entry
}

// New builds a Server around a document opener.
func New(open OpenFunc) *Server {
	return &Server{
		open: open,
		log:  logrus.WithField("component", "server"),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", s.handleExtract)
	mux.HandleFunc("/health", s.handleHealth)

	return withCORS(mux)
}

// withCORS allows browser-based quoting UIs on other origins to call the
// service directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "vector-extraction",
		"version": ServiceVersion,
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	started := time.Now()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No PDF file uploaded. Send as multipart form with field name 'pdf'")
		return
	}

	file, _, err := r.FormFile("pdf")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No PDF file uploaded. Send as multipart form with field name 'pdf'")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read upload: %v", err))
		return
	}

	if len(data) < minPDFBytes {
		writeError(w, http.StatusBadRequest, "PDF file appears to be empty or too small")
		return
	}

	query := r.URL.Query()
	opts := extract.Options{
		Scale:     query.Get("scale"),
		PaperSize: query.Get("paper_size"),
	}

	pageNum := 1
	if pageParam := query.Get("page"); pageParam != "" {
		pageNum, err = strconv.Atoi(pageParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid page number %q", pageParam))
			return
		}
	}

	doc, err := s.open(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to open PDF: %v", err))
		return
	}
	defer doc.Close()

	if pageNum < 1 || pageNum > doc.NumPages() {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Page %d out of range (document has %d pages)", pageNum, doc.NumPages()))
		return
	}

	result, err := extract.Page(doc, pageNum, opts)
	if err != nil {
		s.log.WithError(err).Error("extraction failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.WithFields(logrus.Fields{
		"page":     pageNum,
		"paths":    result.TotalColouredPaths,
		"runs":     len(result.Runs),
		"duration": time.Since(started).String(),
	}).Info("extraction complete")

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("writing response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
