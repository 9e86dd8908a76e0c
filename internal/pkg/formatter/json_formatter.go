package formatter

import (
	"encoding/json"

	"github.com/vishkar/storycrafter/internal/entity"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (jf *JSONFormatter) Format(backlog *entity.Backlog) ([]byte, error) {
	return json.MarshalIndent(backlog, "", "  ")
}

func (jf *JSONFormatter) ContentType() string {
	return "application/json"
}

func (jf *JSONFormatter) FileExtension() string {
	return ".json"
}
