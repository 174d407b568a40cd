package domain

import "time"

// Certificate vincula una materia con el documento que la acredita.
type Certificate struct {
	Subject        string `json:"subject"`
	CertificateURL string `json:"certificateUrl"`
}

type TutorProfile struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	FullName     string        `json:"fullName"`
	Bio          string        `json:"bio"`
	Experience   string        `json:"experience"`
	ProfileImage string        `json:"profileImage,omitempty"`
	Subjects     []string      `json:"subjects"`
	Grades       []string      `json:"grades"`
	Certificates []Certificate `json:"certificates"`
	Availability []string      `json:"availability"`
	PhoneNumber  string        `json:"phoneNumber,omitempty"`
	Location     string        `json:"location,omitempty"`
	IsVerified   bool          `json:"isVerified"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
