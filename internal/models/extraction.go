package models

// CandidateStudent is a row extracted from a roster image, staged for human
// confirmation before it becomes a Student.
type CandidateStudent struct {
	FullName         string `json:"full_name" validate:"required"`
	NationalSchoolID string `json:"national_school_id"`
	ClassSection     string `json:"class_section"`
}

// ExtractionResult is the staged output of one extraction attempt.
type ExtractionResult struct {
	GradeLevel string             `json:"grade_level"`
	Students   []CandidateStudent `json:"students"`
}
