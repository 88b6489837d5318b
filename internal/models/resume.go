package models

import (
	"time"

	"gorm.io/datatypes"
)

type WorkExperience struct {
	Role        string   `json:"role"`
	Company     string   `json:"company"`
	Duration    string   `json:"duration"`
	Description []string `json:"description"`
}

type Education struct {
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	GraduationYear string `json:"graduation_year"`
}

type Project struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Analysis is the structured profile derived from a resume by the model.
// List fields are never nil once the analysis went through coercion.
type Analysis struct {
	Name               *string          `json:"name"`
	Email              *string          `json:"email"`
	Phone              *string          `json:"phone"`
	LinkedInURL        *string          `json:"linkedin_url"`
	PortfolioURL       *string          `json:"portfolio_url"`
	Summary            *string          `json:"summary"`
	WorkExperience     []WorkExperience `json:"work_experience"`
	Education          []Education      `json:"education"`
	TechnicalSkills    []string         `json:"technical_skills"`
	SoftSkills         []string         `json:"soft_skills"`
	Projects           []Project        `json:"projects"`
	Certifications     []string         `json:"certifications"`
	ResumeRating       *float64         `json:"resume_rating"`
	ImprovementAreas   *string          `json:"improvement_areas"`
	UpskillSuggestions []string         `json:"upskill_suggestions"`
}

// Resume is the persisted analysis of one uploaded file. Rows are only ever
// inserted and read.
type Resume struct {
	ID                 uint64                              `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName           string                              `gorm:"type:text;not null" json:"file_name"`
	Name               *string                             `gorm:"type:text" json:"name"`
	Email              *string                             `gorm:"type:text" json:"email"`
	Phone              *string                             `gorm:"type:text" json:"phone"`
	LinkedInURL        *string                             `gorm:"column:linkedin_url;type:text" json:"linkedin_url"`
	PortfolioURL       *string                             `gorm:"type:text" json:"portfolio_url"`
	Summary            *string                             `gorm:"type:text" json:"summary"`
	WorkExperience     datatypes.JSONSlice[WorkExperience] `gorm:"not null" json:"work_experience"`
	Education          datatypes.JSONSlice[Education]      `gorm:"not null" json:"education"`
	TechnicalSkills    datatypes.JSONSlice[string]         `gorm:"not null" json:"technical_skills"`
	SoftSkills         datatypes.JSONSlice[string]         `gorm:"not null" json:"soft_skills"`
	Projects           datatypes.JSONSlice[Project]        `gorm:"not null" json:"projects"`
	Certifications     datatypes.JSONSlice[string]         `gorm:"not null" json:"certifications"`
	ResumeRating       *float64                            `json:"resume_rating"`
	ImprovementAreas   *string                             `gorm:"type:text" json:"improvement_areas"`
	UpskillSuggestions datatypes.JSONSlice[string]         `gorm:"not null" json:"upskill_suggestions"`
	UploadedAt         time.Time                           `gorm:"not null;index" json:"uploaded_at"`
}

func (Resume) TableName() string {
	return "resumes"
}

// Analysis returns the analysis part of the record.
func (r *Resume) Analysis() Analysis {
	return Analysis{
		Name:               r.Name,
		Email:              r.Email,
		Phone:              r.Phone,
		LinkedInURL:        r.LinkedInURL,
		PortfolioURL:       r.PortfolioURL,
		Summary:            r.Summary,
		WorkExperience:     CloneWorkExperience(r.WorkExperience),
		Education:          CloneList(r.Education),
		TechnicalSkills:    CloneList(r.TechnicalSkills),
		SoftSkills:         CloneList(r.SoftSkills),
		Projects:           CloneList(r.Projects),
		Certifications:     CloneList(r.Certifications),
		ResumeRating:       r.ResumeRating,
		ImprovementAreas:   r.ImprovementAreas,
		UpskillSuggestions: CloneList(r.UpskillSuggestions),
	}
}

// CloneList copies s into a new slice that is never nil.
func CloneList[T any](s []T) []T {
	out := make([]T, 0, len(s))
	return append(out, s...)
}

// CloneWorkExperience deep-copies entries including their description lists.
func CloneWorkExperience(s []WorkExperience) []WorkExperience {
	out := make([]WorkExperience, 0, len(s))
	for _, w := range s {
		w.Description = CloneList(w.Description)
		out = append(out, w)
	}
	return out
}
