package services

import (
	"gorm.io/datatypes"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// AssembleRecord maps an analysis and the uploaded file name onto a record
// ready to be stored. id and uploaded_at are left for the repository.
func AssembleRecord(analysis models.Analysis, fileName string) *models.Resume {
	return &models.Resume{
		FileName:           fileName,
		Name:               analysis.Name,
		Email:              analysis.Email,
		Phone:              analysis.Phone,
		LinkedInURL:        analysis.LinkedInURL,
		PortfolioURL:       analysis.PortfolioURL,
		Summary:            analysis.Summary,
		WorkExperience:     datatypes.JSONSlice[models.WorkExperience](models.CloneWorkExperience(analysis.WorkExperience)),
		Education:          datatypes.JSONSlice[models.Education](models.CloneList(analysis.Education)),
		TechnicalSkills:    datatypes.JSONSlice[string](models.CloneList(analysis.TechnicalSkills)),
		SoftSkills:         datatypes.JSONSlice[string](models.CloneList(analysis.SoftSkills)),
		Projects:           datatypes.JSONSlice[models.Project](models.CloneList(analysis.Projects)),
		Certifications:     datatypes.JSONSlice[string](models.CloneList(analysis.Certifications)),
		ResumeRating:       analysis.ResumeRating,
		ImprovementAreas:   analysis.ImprovementAreas,
		UpskillSuggestions: datatypes.JSONSlice[string](models.CloneList(analysis.UpskillSuggestions)),
	}
}
