package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/alfredoptarigan/resume-match-analyzer/internal/models"
)

// heuristicEvaluator is the local, quota-free fallback. It scores keyword
// overlap between the target description and the document, bucketing target
// terms into skills, experience and education categories. Purely
// deterministic: the same inputs always produce the same report.
type heuristicEvaluator struct{}

func NewHeuristicEvaluator() Evaluator {
	return &heuristicEvaluator{}
}

// neutralScore is used when the target description contributes no terms to a
// category, so an absent section neither rewards nor punishes the document.
const neutralScore = 50

var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "for": {}, "with": {}, "you": {}, "your": {},
	"our": {}, "are": {}, "will": {}, "have": {}, "has": {}, "this": {},
	"that": {}, "from": {}, "not": {}, "all": {}, "any": {}, "who": {},
	"must": {}, "should": {}, "able": {}, "etc": {}, "per": {}, "their": {},
	"they": {}, "them": {}, "into": {}, "about": {}, "more": {}, "than": {},
	"other": {}, "such": {}, "team": {}, "work": {}, "working": {},
	"strong": {}, "good": {}, "plus": {}, "required": {}, "preferred": {},
}

var experienceTerms = map[string]struct{}{
	"experience": {}, "experienced": {}, "years": {}, "year": {},
	"senior": {}, "junior": {}, "lead": {}, "led": {}, "leading": {},
	"managed": {}, "managing": {}, "management": {}, "built": {},
	"build": {}, "building": {}, "developed": {}, "developing": {},
	"delivered": {}, "shipped": {}, "maintained": {}, "designed": {},
	"architected": {}, "owned": {}, "mentored": {}, "deployed": {},
	"production": {}, "scale": {}, "scaled": {},
}

var educationTerms = map[string]struct{}{
	"degree": {}, "bachelor": {}, "bachelors": {}, "master": {},
	"masters": {}, "phd": {}, "doctorate": {}, "university": {},
	"college": {}, "education": {}, "graduate": {}, "graduated": {},
	"certification": {}, "certifications": {}, "certified": {},
	"diploma": {}, "coursework": {}, "academic": {},
}

func (h *heuristicEvaluator) Evaluate(_ context.Context, documentText, targetDescription string) (*models.MatchReport, error) {
	targetTokens := tokenize(targetDescription)
	docSet := tokenSet(documentText)

	var skills, experience, education []string
	for _, token := range targetTokens {
		switch {
		case isTerm(experienceTerms, token):
			experience = append(experience, token)
		case isTerm(educationTerms, token):
			education = append(education, token)
		default:
			skills = append(skills, token)
		}
	}

	report := &models.MatchReport{}
	report.Scores.SkillsMatch = scoreCategory(&report.Strengths.Skills, &report.Weaknesses.Skills, "skill", skills, docSet)
	report.Scores.ExperienceMatch = scoreCategory(&report.Strengths.Experience, &report.Weaknesses.Experience, "experience", experience, docSet)
	report.Scores.EducationMatch = scoreCategory(&report.Strengths.Education, &report.Weaknesses.Education, "education", education, docSet)

	overall := models.OverallScore(report.Scores.SkillsMatch, report.Scores.ExperienceMatch, report.Scores.EducationMatch)
	if overall >= 60 {
		report.Strengths.Overall = append(report.Strengths.Overall,
			fmt.Sprintf("Resume matches %d%% of the terms highlighted by the job description", overall))
	} else {
		report.Weaknesses.Overall = append(report.Weaknesses.Overall,
			fmt.Sprintf("Resume matches only %d%% of the terms highlighted by the job description", overall))
	}
	report.Normalize()

	return report, nil
}

// scoreCategory computes the overlap percentage for one category and appends
// a strength or weakness finding describing it.
func scoreCategory(strengths, weaknesses *[]string, label string, terms []string, docSet map[string]struct{}) int {
	if len(terms) == 0 {
		return neutralScore
	}

	var matched, missing []string
	for _, term := range terms {
		if _, ok := docSet[term]; ok {
			matched = append(matched, term)
		} else {
			missing = append(missing, term)
		}
	}

	score := int(math.Round(float64(len(matched)) / float64(len(terms)) * 100))

	if len(matched) > 0 {
		*strengths = append(*strengths, fmt.Sprintf(
			"Covers %d of %d %s terms from the job description (e.g. %s)",
			len(matched), len(terms), label, strings.Join(headOf(matched, 3), ", ")))
	}
	if len(missing) > 0 {
		*weaknesses = append(*weaknesses, fmt.Sprintf(
			"Missing %s terms: %s",
			label, strings.Join(headOf(missing, 5), ", ")))
	}

	return score
}

func headOf(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func isTerm(set map[string]struct{}, token string) bool {
	_, ok := set[token]
	return ok
}

// tokenize returns the unique lowercase terms of the text in first-occurrence
// order, skipping stopwords and terms shorter than three characters.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	var tokens []string
	for _, field := range fields {
		if len(field) < 3 {
			continue
		}
		if _, ok := stopwords[field]; ok {
			continue
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		tokens = append(tokens, field)
	}

	return tokens
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range tokenize(text) {
		set[token] = struct{}{}
	}
	return set
}
