package backlog

import (
	"fmt"
	"strings"

	"github.com/vishkar/storycrafter/internal/entity"
)

// Acceptance-criteria bounds used for warnings and the quality minimum.
const (
	minCriteriaCount = 4
	maxCriteriaCount = 10
	minQualityScore  = 2
)

var nonFunctionalTerms = []string{
	"performance", "security", "usability", "accessibility", "non-functional",
}

// ScoreStory computes the quality report for one story's acceptance
// criteria. Pure: no I/O, no mutation, deterministic for a given story.
//
// Score is the number of indicator families with at least one match across
// all criteria; each family contributes at most 1.
func ScoreStory(story entity.Story) entity.QualityReport {
	report := entity.QualityReport{
		StoryID:       story.ID,
		CriteriaCount: len(story.AcceptanceCriteria),
	}

	if len(story.AcceptanceCriteria) < minCriteriaCount {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"story %s: less than %d acceptance criteria (found %d)",
			story.ID, minCriteriaCount, len(story.AcceptanceCriteria)))
	}
	if len(story.AcceptanceCriteria) > maxCriteriaCount {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"story %s: more than %d criteria may be too granular (found %d)",
			story.ID, maxCriteriaCount, len(story.AcceptanceCriteria)))
	}

	var gwt, edge, nonFunctional, validation bool
	for _, criterion := range story.AcceptanceCriteria {
		c := strings.ToLower(criterion)

		if strings.Contains(c, "given") && strings.Contains(c, "when") && strings.Contains(c, "then") {
			gwt = true
		}
		if strings.Contains(c, "edge case") || strings.Contains(c, "error") || strings.Contains(c, "failure") {
			edge = true
		}
		for _, term := range nonFunctionalTerms {
			if strings.Contains(c, term) {
				nonFunctional = true
				break
			}
		}
		if strings.Contains(c, "validate") || strings.Contains(c, "verify") {
			validation = true
		}
	}

	if gwt {
		report.IndicatorsPresent = append(report.IndicatorsPresent, entity.IndicatorGivenWhenThen)
	}
	if edge {
		report.IndicatorsPresent = append(report.IndicatorsPresent, entity.IndicatorEdgeCase)
	}
	if nonFunctional {
		report.IndicatorsPresent = append(report.IndicatorsPresent, entity.IndicatorNonFunctional)
	}
	if validation {
		report.IndicatorsPresent = append(report.IndicatorsPresent, entity.IndicatorValidation)
	}

	report.Score = len(report.IndicatorsPresent)
	report.PassesMinimum = report.Score >= minQualityScore &&
		report.CriteriaCount >= minCriteriaCount

	if report.Score < minQualityScore {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"story %s: low quality score (%d/4); consider Given-When-Then format, edge cases, or non-functional requirements",
			story.ID, report.Score))
	}

	return report
}
