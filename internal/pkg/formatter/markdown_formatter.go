package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/vishkar/storycrafter/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(backlog *entity.Backlog) ([]byte, error) {
	var buf bytes.Buffer

	title := backlog.Project.Name
	if title == "" {
		title = "Project Backlog"
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)

	if backlog.Project.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", backlog.Project.Description)
	}

	fmt.Fprintf(&buf, "**%d epics, %d stories, ~%d hours** · generated %s by %s\n\n",
		backlog.Metadata.TotalEpics,
		backlog.Metadata.TotalStories,
		backlog.Metadata.TotalEstimatedHours,
		backlog.Metadata.GeneratedAt.Format("2006-01-02 15:04 MST"),
		backlog.Metadata.Generator,
	)

	if backlog.Metadata.Partial {
		fmt.Fprintf(&buf, "> **Partial result.** Story expansion failed for: %s\n\n",
			strings.Join(backlog.Metadata.FailedEpics, ", "))
	}

	for _, epic := range backlog.Epics {
		mf.writeEpic(&buf, epic)
	}

	if len(backlog.Metadata.UnresolvedDependencies) > 0 {
		buf.WriteString("## Unresolved Dependencies\n\n")
		for _, dep := range backlog.Metadata.UnresolvedDependencies {
			fmt.Fprintf(&buf, "- %s\n", dep)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) writeEpic(buf *bytes.Buffer, epic entity.Epic) {
	fmt.Fprintf(buf, "## %s: %s\n\n", epic.ID, epic.Title)
	fmt.Fprintf(buf, "*%s priority · %s*\n\n", epic.Priority, epic.Category)

	if epic.Description != "" {
		fmt.Fprintf(buf, "%s\n\n", epic.Description)
	}
	if epic.ExpansionError != "" {
		fmt.Fprintf(buf, "> Story expansion failed: %s\n\n", epic.ExpansionError)
	}

	for _, story := range epic.Stories {
		mf.writeStory(buf, story)
	}
}

func (mf *MarkdownFormatter) writeStory(buf *bytes.Buffer, story entity.Story) {
	fmt.Fprintf(buf, "### %s: %s\n\n", story.ID, story.Title)

	details := []string{string(story.Priority), string(story.Layer)}
	if story.StoryPoints > 0 {
		details = append(details, fmt.Sprintf("%d points", story.StoryPoints))
	}
	if story.EstimatedHours > 0 {
		details = append(details, fmt.Sprintf("~%dh", story.EstimatedHours))
	}
	fmt.Fprintf(buf, "*%s*\n\n", strings.Join(details, " · "))

	if story.Description != "" {
		fmt.Fprintf(buf, "%s\n\n", story.Description)
	}

	if len(story.AcceptanceCriteria) > 0 {
		buf.WriteString("**Acceptance criteria**\n\n")
		for _, criterion := range story.AcceptanceCriteria {
			fmt.Fprintf(buf, "- %s\n", criterion)
		}
		buf.WriteString("\n")
	}

	if len(story.TechnicalTasks) > 0 {
		buf.WriteString("**Technical tasks**\n\n")
		for _, task := range story.TechnicalTasks {
			fmt.Fprintf(buf, "- %s\n", task)
		}
		buf.WriteString("\n")
	}

	if len(story.Dependencies) > 0 {
		fmt.Fprintf(buf, "Depends on: %s\n\n", strings.Join(story.Dependencies, ", "))
	}
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
