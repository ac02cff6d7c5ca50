package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/idoyourquotes/vector-service/internal/extract"
	"github.com/idoyourquotes/vector-service/internal/pdfgeom"
	"github.com/idoyourquotes/vector-service/internal/server"
)

var cli struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Serve   ServeCmd   `cmd:"" help:"Run the extraction HTTP service"`
	Extract ExtractCmd `cmd:"" help:"Extract tray runs from a local PDF and print JSON"`
}

type ServeCmd struct {
	Host string `default:"0.0.0.0" env:"VECTOR_HOST" help:"Listen address"`
	Port int    `default:"5050" env:"VECTOR_PORT" help:"Listen port"`
}

func (c *ServeCmd) Run() error {
	srv := server.New(openDocument)

	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)
	logrus.WithField("addr", addr).Info("vector extraction service starting")

	return http.ListenAndServe(addr, srv.Handler())
}

type ExtractCmd struct {
	Scale     string `short:"s" help:"Scale denominator, e.g. 100 for 1:100. Auto-detected if omitted"`
	PaperSize string `short:"p" enum:",A0,A1,A2,A3,A4" default:"" help:"Paper size. Auto-detected if omitted"`
	Page      int    `default:"1" help:"1-based page number"`
	AllPages  bool   `short:"a" help:"Extract every page"`

	InputPDF string `arg:"" name:"input" help:"Path to input PDF" type:"path"`
}

func (c *ExtractCmd) Run() error {
	data, err := os.ReadFile(c.InputPDF)
	if err != nil {
		return err
	}

	opts := extract.Options{Scale: c.Scale, PaperSize: c.PaperSize}

	if !c.AllPages {
		result, err := extractPage(data, c.Page, opts)
		if err != nil {
			return err
		}
		return printJSON(result)
	}

	probe, err := pdfgeom.Open(data)
	if err != nil {
		return err
	}
	numPages := probe.NumPages()
	probe.Close()

	results := make([]*extract.Result, numPages)

	// Each page worker opens its own document handle; the underlying
	// readers are not safe for concurrent use.
	var g errgroup.Group
	for i := 0; i < numPages; i++ {
		page := i + 1
		g.Go(func() error {
			result, err := extractPage(data, page, opts)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			results[page-1] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return printJSON(results)
}

func extractPage(data []byte, page int, opts extract.Options) (*extract.Result, error) {
	doc, err := pdfgeom.Open(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	if page < 1 || page > doc.NumPages() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", page, doc.NumPages())
	}

	return extract.Page(doc, page, opts)
}

func openDocument(data []byte) (server.Document, error) {
	return pdfgeom.Open(data)
}

func printJSON(payload interface{}) error {
	out, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	oLog := log.New(os.Stdout, "", 0)
	oLog.Println(string(out))

	return nil
}

func main() {
	godotenv.Load()

	ctx := kong.Parse(&cli)

	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.InfoLevel)
	if cli.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx.FatalIfErrorf(ctx.Run())
}
