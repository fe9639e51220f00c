package model

import "time"

// Volunteer is a volunteer profile. ID is the identity provider's user ID,
// so creating a profile twice for the same user updates it.
type Volunteer struct {
	ID             string    `json:"id"`
	FullName       string    `json:"full_name"`
	ContactNo      string    `json:"contact_no"`
	Email          string    `json:"email"`
	ResumeURL      string    `json:"resume_url"`
	RawDescription string    `json:"raw_description"`
	Skills         []string  `json:"ai_skills"`
	Location       string    `json:"location"`
	Availability   string    `json:"availability"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Scheme is a social programme an NGO attaches to its posts.
type Scheme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	PDFURL      string `json:"pdf_url,omitempty"`
}

// Need is an NGO post. Posts are never edited; resubmitting creates a new one.
type Need struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	OrgName        string    `json:"org_name"`
	ContactInfo    string    `json:"contact_info"`
	Email          string    `json:"email"`
	RawRequirement string    `json:"raw_requirement"`
	Needs          []string  `json:"ai_needs"`
	Location       string    `json:"location"`
	Duration       string    `json:"duration"`
	Schemes        []Scheme  `json:"schemes"`
	CreatedAt      time.Time `json:"created_at"`
}

type InterviewStatus string

const (
	InterviewPending   InterviewStatus = "pending"
	InterviewScheduled InterviewStatus = "scheduled"
)

// Interview is the scheduling sub-state of an application.
type Interview struct {
	Status   InterviewStatus `json:"interview_status"`
	Date     string          `json:"interview_date,omitempty"`
	Time     string          `json:"interview_time,omitempty"`
	MeetLink string          `json:"meet_link,omitempty"`
}

// Application links a volunteer to a need.
type Application struct {
	ID          string `json:"id"`
	NeedID      string `json:"ngo_post_id"`
	VolunteerID string `json:"volunteer_id"`
	Interview
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Match is a persisted score of one volunteer against one need.
type Match struct {
	ID          string    `json:"id"`
	VolunteerID string    `json:"volunteer_id"`
	NeedID      string    `json:"ngo_id"`
	Score       int       `json:"match_score"`
	Explanation string    `json:"explanation"`
	CreatedAt   time.Time `json:"created_at"`
}
