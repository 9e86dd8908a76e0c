package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/vishkar/storycrafter/internal/entity"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the internal name used by gofpdf
	// for the UTF-8 capable font.
	pdfFontName = "DejaVuSans"

	// Relative paths where the TTF font may live.
	// In Docker runtime we copy fonts to /app/ttf,
	// so for the compiled binary the path is ./ttf/DejaVuSans.ttf.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"

	// Source-relative path (useful when running from repo root with `go run`).
	pdfFontSourcePath = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath tries to find the DejaVuSans font in
// runtime layout (next to the binary) or source layout.
func resolveFontPath() string {
	if _, err := os.Stat(pdfFontRuntimePath); err == nil {
		return pdfFontRuntimePath
	}
	if _, err := os.Stat(pdfFontSourcePath); err == nil {
		return pdfFontSourcePath
	}
	return ""
}

func (pf *PDFFormatter) Format(backlog *entity.Backlog) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Use the bundled UTF-8 capable DejaVuSans font when available.
	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	title := backlog.Project.Name
	if title == "" {
		title = "Project Backlog"
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.MultiCell(0, 10, title, "", "", false)
	pdf.Ln(4)

	pdf.SetFont(fontName, "", 10)
	pdf.MultiCell(0, 5, fmt.Sprintf("%d epics, %d stories, ~%d hours. Generated %s by %s.",
		backlog.Metadata.TotalEpics,
		backlog.Metadata.TotalStories,
		backlog.Metadata.TotalEstimatedHours,
		backlog.Metadata.GeneratedAt.Format("2006-01-02 15:04 MST"),
		backlog.Metadata.Generator,
	), "", "", false)
	pdf.Ln(4)

	for _, epic := range backlog.Epics {
		pf.writeEpic(pdf, fontName, epic)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) writeEpic(pdf *gofpdf.Fpdf, fontName string, epic entity.Epic) {
	pdf.SetFont(fontName, "B", 14)
	pdf.MultiCell(0, 8, fmt.Sprintf("%s: %s", epic.ID, epic.Title), "", "", false)

	pdf.SetFont(fontName, "", 10)
	pdf.MultiCell(0, 5, fmt.Sprintf("%s priority, %s", epic.Priority, epic.Category), "", "", false)
	if epic.Description != "" {
		pdf.MultiCell(0, 5, epic.Description, "", "", false)
	}
	pdf.Ln(2)

	for _, story := range epic.Stories {
		pf.writeStory(pdf, fontName, story)
	}
	pdf.Ln(2)
}

func (pf *PDFFormatter) writeStory(pdf *gofpdf.Fpdf, fontName string, story entity.Story) {
	pdf.SetFont(fontName, "B", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf("%s: %s", story.ID, story.Title), "", "", false)

	pdf.SetFont(fontName, "", 10)
	meta := fmt.Sprintf("%s, %s", story.Priority, story.Layer)
	if story.StoryPoints > 0 {
		meta += fmt.Sprintf(", %d points", story.StoryPoints)
	}
	if story.EstimatedHours > 0 {
		meta += fmt.Sprintf(", ~%dh", story.EstimatedHours)
	}
	pdf.MultiCell(0, 5, meta, "", "", false)

	if story.Description != "" {
		pdf.MultiCell(0, 5, story.Description, "", "", false)
	}
	if len(story.AcceptanceCriteria) > 0 {
		pdf.MultiCell(0, 5, "Acceptance criteria:", "", "", false)
		for _, criterion := range story.AcceptanceCriteria {
			pdf.MultiCell(0, 5, "  - "+criterion, "", "", false)
		}
	}
	if len(story.Dependencies) > 0 {
		pdf.MultiCell(0, 5, "Depends on: "+strings.Join(story.Dependencies, ", "), "", "", false)
	}
	pdf.Ln(2)
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
