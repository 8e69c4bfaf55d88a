package model

// Session is the authenticated identity of the current caller as reported by
// the identity provider. The token lifecycle is opaque to this application;
// only the Credential Service Adapter creates Sessions.
type Session struct {
	Email     string `json:"email"`
	SubjectID string `json:"subject_id"`
}
