// Package formatter renders an assembled backlog into exportable document
// formats. Used by the CLI; the HTTP API always returns JSON.
package formatter

import (
	"fmt"

	"github.com/vishkar/storycrafter/internal/entity"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

type Formatter interface {
	Format(backlog *entity.Backlog) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format Format) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
