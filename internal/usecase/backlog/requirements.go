package backlog

import (
	"regexp"
	"strings"

	"github.com/vishkar/storycrafter/internal/entity"
)

// Requirements is a structured digest of the consensus discussion, built
// by pattern extraction rather than a generative backend. It fills the
// backlog's project echo when explicit metadata is absent and enriches
// CLI summaries.
type Requirements struct {
	ProjectName        string            `json:"project_name"`
	ProjectDescription string            `json:"project_description"`
	TargetUsers        string            `json:"target_users"`
	Platform           string            `json:"platform"`
	Timeline           string            `json:"timeline"`
	TeamSize           string            `json:"team_size"`
	TechStack          map[string]string `json:"tech_stack"`
	MVPFeatures        []string          `json:"mvp_features"`
}

var (
	projectNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Project:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Project Name:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Building\s+(?:a|an)\s+([^\n]+)`),
	}
	listItemRe = regexp.MustCompile(`^[-*•]\s*|^\d+\.\s*`)
	timelineRe = regexp.MustCompile(`(?i)(\d+(?:-\d+)?)\s+(week|month)s?`)
	teamSizeRe = regexp.MustCompile(`(?i)(\d+(?:-\d+)?)\s+(?:developer|dev)s?`)
)

var techKeywords = []string{"frontend", "backend", "database", "framework", "library"}

// ExtractRequirements digests role-tagged messages into requirements.
// Explicit metadata wins over anything mined from message text. Each role
// contributes what that participant owns in the discussion: the system
// prompt names the project, alex lists features, blake names technology,
// casey sets timeline and staffing.
func ExtractRequirements(messages []entity.ConsensusMessage, meta *entity.ProjectMetadata) Requirements {
	req := Requirements{
		ProjectName: "Unnamed Project",
		TechStack:   map[string]string{},
		MVPFeatures: []string{},
	}

	for _, msg := range messages {
		content := msg.Content
		lower := strings.ToLower(content)

		switch msg.Role {
		case entity.RoleSystem:
			if strings.Contains(lower, "project:") {
				if name := extractProjectName(content); name != "" {
					req.ProjectName = name
				}
				req.ProjectDescription = content
			}
		case entity.RoleAlex:
			if strings.Contains(lower, "mvp") || strings.Contains(lower, "core feature") {
				req.MVPFeatures = append(req.MVPFeatures, extractListItems(content)...)
			}
		case entity.RoleBlake:
			for _, keyword := range techKeywords {
				if !strings.Contains(lower, keyword) {
					continue
				}
				if tech := extractTech(content, keyword); tech != "" {
					req.TechStack[keyword] = tech
				}
			}
		case entity.RoleCasey:
			if strings.Contains(lower, "week") || strings.Contains(lower, "month") {
				req.Timeline = timelineRe.FindString(content)
			}
			if strings.Contains(lower, "developer") || strings.Contains(lower, "team") {
				req.TeamSize = teamSizeRe.FindString(content)
			}
		}
	}

	if meta != nil {
		if meta.ProjectName != "" {
			req.ProjectName = meta.ProjectName
		}
		if meta.ProjectDescription != "" {
			req.ProjectDescription = meta.ProjectDescription
		}
		if meta.TargetUsers != "" {
			req.TargetUsers = meta.TargetUsers
		}
		if meta.Platform != "" {
			req.Platform = meta.Platform
		}
		if meta.Timeline != "" {
			req.Timeline = meta.Timeline
		}
		if meta.TeamSize != "" {
			req.TeamSize = meta.TeamSize
		}
	}

	return req
}

// ProjectInfo converts the digest into the backlog's project echo.
func (r Requirements) ProjectInfo() entity.ProjectInfo {
	return entity.ProjectInfo{
		Name:        r.ProjectName,
		Description: r.ProjectDescription,
		TargetUsers: r.TargetUsers,
		Platform:    r.Platform,
	}
}

func extractProjectName(content string) string {
	for _, re := range projectNamePatterns {
		if m := re.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractListItems picks up bullet and numbered list entries. Short
// fragments are noise from list markers, not features.
func extractListItems(content string) []string {
	var items []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !listItemRe.MatchString(line) {
			continue
		}
		item := strings.TrimSpace(listItemRe.ReplaceAllString(line, ""))
		if len(item) > 10 {
			items = append(items, item)
		}
	}
	return items
}

func extractTech(content, keyword string) string {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + keyword + `:\s*([^\n,]+)`),
		regexp.MustCompile(`(?i)` + keyword + `\s+(?:using|with)\s+([^\n,]+)`),
	}
	for _, re := range patterns {
		if m := re.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
