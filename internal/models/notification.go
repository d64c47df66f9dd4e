package models

import "time"

// NotificationChannel separates the status ledger (report) from push messages.
type NotificationChannel string

const (
	ChannelReport NotificationChannel = "report"
	ChannelPush   NotificationChannel = "push"
)

// NotificationColor mirrors the submission lifecycle stage:
// red = must (re)submit, blue = awaiting review, yellow/green = reviewed.
type NotificationColor string

const (
	ColorBlue   NotificationColor = "blue"
	ColorRed    NotificationColor = "red"
	ColorYellow NotificationColor = "yellow"
	ColorGreen  NotificationColor = "green"
)

// Valid reports whether the color is one of the known ledger colors.
func (c NotificationColor) Valid() bool {
	switch c {
	case ColorBlue, ColorRed, ColorYellow, ColorGreen:
		return true
	}
	return false
}

// Notification is one color-coded ledger row for a user.
type Notification struct {
	ID           string              `db:"id" json:"id"`
	UserID       string              `db:"user_id" json:"user_id"`
	Channel      NotificationChannel `db:"channel" json:"channel"`
	Color        NotificationColor   `db:"color" json:"color"`
	CampaignID   *string             `db:"campaign_id" json:"campaign_id,omitempty"`
	SubmissionID *string             `db:"submission_id" json:"submission_id,omitempty"`
	IsRead       bool                `db:"is_read" json:"is_read"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
}

// NotificationFilter selects ledger rows for purge operations.
// Zero-valued fields are ignored.
type NotificationFilter struct {
	ID           string
	UserID       string
	Channel      NotificationChannel
	Colors       []NotificationColor
	CampaignID   string
	SubmissionID string
}

// NotificationFeed is the list payload with its counters.
type NotificationFeed struct {
	Items  []Notification `json:"items"`
	Total  int            `json:"total"`
	Unread int            `json:"unread"`
}
