package models

import (
	"fmt"
	"math"
	"strings"
)

// CategoryScores holds the per-category match percentages. Overall is always
// the rounded mean of the other three, recomputed by Normalize.
type CategoryScores struct {
	SkillsMatch     int `json:"skillsMatch"`
	ExperienceMatch int `json:"experienceMatch"`
	EducationMatch  int `json:"educationMatch"`
	Overall         int `json:"overall"`
}

// CategoryFindings holds short text findings per category. Slices may be
// empty but are never nil after Normalize.
type CategoryFindings struct {
	Skills     []string `json:"skills"`
	Experience []string `json:"experience"`
	Education  []string `json:"education"`
	Overall    []string `json:"overall"`
}

// MatchReport is the canonical analysis result shared by both evaluators.
// Raw is a rendered summary derived only from the structured fields; it is
// rewritten on every Normalize so the two can never disagree.
type MatchReport struct {
	Raw        string           `json:"raw"`
	Scores     CategoryScores   `json:"scores"`
	Strengths  CategoryFindings `json:"strengths"`
	Weaknesses CategoryFindings `json:"weaknesses"`
}

const (
	defaultStrength = "General experience in the field"
	defaultWeakness = "Could improve on meeting specific job requirements"
)

// Normalize clamps the category scores into [0,100], recomputes the overall
// score as the rounded mean of the three categories, replaces nil finding
// slices with empty ones and re-renders Raw.
func (r *MatchReport) Normalize() {
	r.Scores.SkillsMatch = clampScore(r.Scores.SkillsMatch)
	r.Scores.ExperienceMatch = clampScore(r.Scores.ExperienceMatch)
	r.Scores.EducationMatch = clampScore(r.Scores.EducationMatch)
	r.Scores.Overall = OverallScore(r.Scores.SkillsMatch, r.Scores.ExperienceMatch, r.Scores.EducationMatch)

	r.Strengths.normalize()
	r.Weaknesses.normalize()

	r.Raw = r.render()
}

// OverallScore returns the arithmetic mean of the three category scores,
// rounded to the nearest integer.
func OverallScore(skills, experience, education int) int {
	return int(math.Round(float64(skills+experience+education) / 3.0))
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func (f *CategoryFindings) normalize() {
	if f.Skills == nil {
		f.Skills = []string{}
	}
	if f.Experience == nil {
		f.Experience = []string{}
	}
	if f.Education == nil {
		f.Education = []string{}
	}
	if f.Overall == nil {
		f.Overall = []string{}
	}
}

// flatten concatenates the category findings in a fixed order.
func (f *CategoryFindings) flatten() []string {
	var all []string
	all = append(all, f.Skills...)
	all = append(all, f.Experience...)
	all = append(all, f.Education...)
	all = append(all, f.Overall...)
	return all
}

func (r *MatchReport) render() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Skills Match: %d%%\n", r.Scores.SkillsMatch))
	sb.WriteString(fmt.Sprintf("Experience Match: %d%%\n", r.Scores.ExperienceMatch))
	sb.WriteString(fmt.Sprintf("Education Match: %d%%\n", r.Scores.EducationMatch))
	sb.WriteString(fmt.Sprintf("Overall Score: %d%%\n", r.Scores.Overall))

	sb.WriteString("\nStrengths:\n")
	sb.WriteString(renderBullets(r.Strengths.flatten(), defaultStrength))

	sb.WriteString("\nWeaknesses:\n")
	sb.WriteString(renderBullets(r.Weaknesses.flatten(), defaultWeakness))

	return sb.String()
}

func renderBullets(findings []string, fallback string) string {
	if len(findings) == 0 {
		return fmt.Sprintf("- %s\n", fallback)
	}

	var sb strings.Builder
	for _, finding := range findings {
		sb.WriteString(fmt.Sprintf("- %s\n", finding))
	}
	return sb.String()
}
