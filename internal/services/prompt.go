package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildMatchAnalysisPrompt creates the prompt asking for per-category match
// scores and findings as a strict JSON payload.
func (pb *PromptBuilder) BuildMatchAnalysisPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`You are an expert in resume analysis for ATS systems. I will provide a resume and a job description. Your task is to analyze the resume against the job description and provide:

1. A percentage match score (0-100%%) for each of the following categories:
   - Skills Match
   - Experience Match
   - Education Match
2. An overall match score (average of the above).
3. A list of strengths (what the resume does well in matching the job description).
4. A list of weaknesses (what the resume lacks or could improve to better match the job description).

**Job Description:**
%s

**Resume:**
%s

Please respond in the following JSON format:
{
  "scores": {
    "skillsMatch": number,
    "experienceMatch": number,
    "educationMatch": number,
    "overall": number
  },
  "strengths": {
    "skills": string[],
    "experience": string[],
    "education": string[],
    "overall": string[]
  },
  "weaknesses": {
    "skills": string[],
    "experience": string[],
    "education": string[],
    "overall": string[]
  }
}`, jobDescription, resumeText)
}

// truncateText bounds input length before prompt construction. Long inputs
// are approximated, not rejected.
func truncateText(text string, maxLength int) string {
	if maxLength <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "... [truncated]"
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	// Remove markdown code blocks
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	// Find JSON object or array boundaries
	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
