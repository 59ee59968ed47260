// Package export is the Exporters leaf (spec §4.7): one Exporter
// implementation per output format, each a pure function from a result set
// plus run metadata to a byte sequence. The Scheduler dispatches by
// configured format without any open-world plugin mechanism (spec §9).
package export

import (
	"io"

	"github.com/swiftbench/swiftbench/internal/model"
)

// Exporter is the single capability every format implements.
type Exporter interface {
	Write(results []*model.BenchmarkResult, meta model.RunMetadata, w io.Writer) error
}

// Format names a supported export format, matching the CLI's
// --export-<format> flags.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatAsciiDoc Format = "asciidoc"
	FormatOrgMode  Format = "orgmode"
	FormatHTML     Format = "html"
)

// ForFormat resolves a Format to its Exporter. The zero Exporter (nil) is
// returned for an unrecognized format.
func ForFormat(f Format) Exporter {
	switch f {
	case FormatJSON:
		return JSONExporter{}
	case FormatCSV:
		return CSVExporter{}
	case FormatMarkdown:
		return MarkdownExporter{}
	case FormatAsciiDoc:
		return AsciiDocExporter{}
	case FormatOrgMode:
		return OrgModeExporter{}
	case FormatHTML:
		return HTMLExporter{}
	default:
		return nil
	}
}
