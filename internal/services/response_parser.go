package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// ParseAnalysis pulls the JSON object out of a raw model reply. The reply may
// wrap the object in prose or code fences. Only invalid JSON syntax fails;
// any shape mismatch is absorbed by CoerceAnalysis.
func ParseAnalysis(response string) (*models.Analysis, error) {
	jsonStr, ok := extractJSON(response)
	if !ok {
		return nil, fmt.Errorf("%w: no closing brace after opening brace", ErrUnparseableAnalysis)
	}

	// Numbers stay json.Number so a value outside float64 range is a
	// coercion problem, not a syntax error.
	dec := json.NewDecoder(strings.NewReader(jsonStr))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseableAnalysis, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrUnparseableAnalysis)
	}

	analysis := CoerceAnalysis(raw)
	return &analysis, nil
}

// extractJSON returns the span from the first '{' to the last '}'. Without
// an opening brace the span is the empty object.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "{}", true
	}

	end := strings.LastIndex(text, "}")
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}

// CoerceAnalysis maps any decoded JSON value onto a fully defaulted Analysis.
// It never fails: wrong types collapse to null or empty lists.
func CoerceAnalysis(v any) models.Analysis {
	obj, _ := v.(map[string]any)

	return models.Analysis{
		Name:               coerceString(obj["name"]),
		Email:              coerceString(obj["email"]),
		Phone:              coerceString(obj["phone"]),
		LinkedInURL:        coerceString(obj["linkedin_url"]),
		PortfolioURL:       coerceString(obj["portfolio_url"]),
		Summary:            coerceString(obj["summary"]),
		WorkExperience:     coerceObjects(obj["work_experience"], coerceWorkExperience),
		Education:          coerceObjects(obj["education"], coerceEducation),
		TechnicalSkills:    coerceStrings(obj["technical_skills"]),
		SoftSkills:         coerceStrings(obj["soft_skills"]),
		Projects:           coerceObjects(obj["projects"], coerceProject),
		Certifications:     coerceStrings(obj["certifications"]),
		ResumeRating:       coerceNumber(obj["resume_rating"]),
		ImprovementAreas:   coerceString(obj["improvement_areas"]),
		UpskillSuggestions: coerceStrings(obj["upskill_suggestions"]),
	}
}

func coerceString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = stripNUL(s)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// coerceNumber keeps 0 and out-of-range ratings; non-numbers and numbers
// beyond float64 become nil.
func coerceNumber(v any) *float64 {
	switch t := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil
		}
		return &f
	case float64:
		return &t
	default:
		return nil
	}
}

func coerceStrings(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, stripNUL(s))
		}
	}
	return out
}

func coerceObjects[T any](v any, fn func(map[string]any) T) []T {
	items, _ := v.([]any)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, fn(obj))
		}
	}
	return out
}

func coerceWorkExperience(obj map[string]any) models.WorkExperience {
	return models.WorkExperience{
		Role:        coerceText(obj["role"]),
		Company:     coerceText(obj["company"]),
		Duration:    coerceText(obj["duration"]),
		Description: coerceStrings(obj["description"]),
	}
}

func coerceEducation(obj map[string]any) models.Education {
	return models.Education{
		Degree:         coerceText(obj["degree"]),
		Institution:    coerceText(obj["institution"]),
		GraduationYear: coerceText(obj["graduation_year"]),
	}
}

func coerceProject(obj map[string]any) models.Project {
	return models.Project{
		Name:        coerceText(obj["name"]),
		Description: coerceText(obj["description"]),
	}
}

// coerceText is used inside list entries, where the field is a plain string.
// Numbers such as a bare graduation year keep their literal text.
func coerceText(v any) string {
	switch t := v.(type) {
	case string:
		return stripNUL(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// stripNUL drops U+0000, which postgres rejects in text and jsonb.
func stripNUL(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
