package models

type ErrorResponse struct {
	Error string `json:"error"`
}

type SimilarResume struct {
	Score  float32 `json:"score"`
	Resume Resume  `json:"resume"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
