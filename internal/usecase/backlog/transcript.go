package backlog

import (
	"fmt"
	"strings"

	"github.com/vishkar/storycrafter/internal/entity"
)

// FormatTranscript renders the consensus discussion plus optional project
// metadata into a single prompt context blob. The output is deterministic:
// metadata fields appear in a fixed order (present fields only) and
// messages are rendered "<role>: <content>" in their original order.
// Byte-identical input yields byte-identical output, so the result is
// safe to cache.
func FormatTranscript(messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) (string, error) {
	if len(messages) == 0 {
		return "", entity.ErrEmptyTranscript
	}

	var b strings.Builder

	if meta != nil {
		writeMetadata(&b, meta)
	}

	b.WriteString("### CONSENSUS DISCUSSION\n\n")
	for _, msg := range messages {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}

	return b.String(), nil
}

// writeMetadata emits only the fields that are present, always in the
// same order. Absent fields are omitted, never defaulted.
func writeMetadata(b *strings.Builder, meta *entity.ProjectMetadata) {
	fields := []struct {
		label string
		value string
	}{
		{"Name", meta.ProjectName},
		{"Description", meta.ProjectDescription},
		{"Target Users", meta.TargetUsers},
		{"Platform", meta.Platform},
		{"Timeline", meta.Timeline},
		{"Team Size", meta.TeamSize},
	}

	any := false
	for _, f := range fields {
		if f.value != "" {
			any = true
			break
		}
	}
	if !any {
		return
	}

	b.WriteString("### PROJECT OVERVIEW\n")
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(b, "%s: %s\n", f.label, f.value)
		}
	}
	b.WriteString("\n")
}
