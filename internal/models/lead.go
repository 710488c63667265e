package models

import "time"

// Lead origins
const (
	LeadKindOwner = "owner"
	LeadKindVisit = "visit"
)

// Notification is a lead packaged for the outbound notifiers. Payload holds
// the webhook keys (_subject, _origin and the form fields).
type Notification struct {
	LeadID  string         `json:"lead_id"`
	Kind    string         `json:"kind"`
	Subject string         `json:"subject"`
	Summary string         `json:"summary"`
	Payload map[string]any `json:"payload"`
	At      time.Time      `json:"at"`
}

// LeadRecord is the journal row written for every accepted lead.
type LeadRecord struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Kind        string    `gorm:"size:16;index" json:"kind"`
	Subject     string    `gorm:"size:255" json:"subject"`
	Name        string    `gorm:"size:255" json:"name"`
	Phone       string    `gorm:"size:32" json:"phone"`
	ContactTime string    `gorm:"size:64" json:"contact_time"`
	PropertyID  string    `gorm:"size:64" json:"property_id,omitempty"`
	Payload     string    `gorm:"type:text" json:"payload"`
	Delivered   bool      `json:"delivered"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (LeadRecord) TableName() string {
	return "leads"
}
