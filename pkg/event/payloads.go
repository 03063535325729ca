package event

// Role distinguishes the two sides of the marketplace.
type Role string

const (
	RoleSeeker   Role = "seeker"
	RoleEmployer Role = "employer"
)

// ProfileUpdatedPayload accompanies KindProfileUpdate events.
type ProfileUpdatedPayload struct {
	UserID        string   `json:"userId"`
	Role          Role     `json:"role"`
	UpdatedFields []string `json:"updatedFields,omitempty"`
}

// JobPostedPayload accompanies KindJobPosted events.
type JobPostedPayload struct {
	JobID      string `json:"jobId"`
	EmployerID string `json:"employerId"`
	Title      string `json:"title,omitempty"`
}

// ApplicationSubmittedPayload accompanies KindApplicationSubmitted events.
type ApplicationSubmittedPayload struct {
	ApplicationID string `json:"applicationId"`
	JobID         string `json:"jobId"`
	JobTitle      string `json:"jobTitle,omitempty"`
	CandidateID   string `json:"candidateId"`
	EmployerID    string `json:"employerId"`
}

// MatchCreatedPayload accompanies KindMatchCreated events.
type MatchCreatedPayload struct {
	MatchID     string  `json:"matchId"`
	CandidateID string  `json:"candidateId"`
	EmployerID  string  `json:"employerId"`
	JobID       string  `json:"jobId,omitempty"`
	MatchScore  float64 `json:"matchScore"`
}

// FeedbackReceivedPayload accompanies KindFeedbackReceived events.
type FeedbackReceivedPayload struct {
	FeedbackID string  `json:"feedbackId"`
	UserID     string  `json:"userId"`
	MatchID    string  `json:"matchId,omitempty"`
	JobID      string  `json:"jobId,omitempty"`
	Rating     float64 `json:"rating"`
	Comment    string  `json:"comment,omitempty"`
}
