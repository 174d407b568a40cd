package domain

import "time"

// EnrollmentStatus solo transiciona pending -> accepted | rejected.
type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentAccepted EnrollmentStatus = "accepted"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

type EnrollmentApplication struct {
	ID                string           `json:"id"`
	StudentID         string           `json:"studentId"`
	TutorID           string           `json:"tutorId"`
	Subject           string           `json:"subject"`
	Grade             string           `json:"grade"`
	PreferredSchedule string           `json:"preferredSchedule"`
	Goals             string           `json:"goals"`
	Experience        string           `json:"experience,omitempty"`
	AdditionalNotes   string           `json:"additionalNotes,omitempty"`
	Status            EnrollmentStatus `json:"status"`
	TutorResponse     string           `json:"tutorResponse,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// EnrollmentPage agrupa una pagina de solicitudes con su paginacion.
type EnrollmentPage struct {
	Applications []EnrollmentApplication `json:"applications"`
	Page         int                     `json:"page"`
	Limit        int                     `json:"limit"`
	Total        int                     `json:"total"`
	TotalPages   int                     `json:"totalPages"`
}
