package models

import "time"

// CampaignStatus tracks the lifecycle of a verification campaign.
type CampaignStatus string

const (
	CampaignStatusProcess  CampaignStatus = "process"
	CampaignStatusFinished CampaignStatus = "finished"
)

// Campaign represents a verification cycle owned by one tutor.
// Opening a new campaign finishes all of the tutor's previous ones.
type Campaign struct {
	ID        string         `db:"id" json:"id"`
	OwnerID   string         `db:"owner_id" json:"owner_id"`
	Status    CampaignStatus `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// CampaignSummary carries per-campaign progress counters.
type CampaignSummary struct {
	Campaign
	NotSubmitted   int `db:"not_submitted" json:"not_submitted"`
	BeingChecked   int `db:"being_checked" json:"being_checked"`
	ReviewedRed    int `db:"reviewed_red" json:"reviewed_red"`
	ReviewedYellow int `db:"reviewed_yellow" json:"reviewed_yellow"`
	ReviewedGreen  int `db:"reviewed_green" json:"reviewed_green"`
}

// CampaignGroupDetail aggregates submission progress for one student group.
type CampaignGroupDetail struct {
	GroupID        string `db:"group_id" json:"group_id"`
	GroupName      string `db:"group_name" json:"group_name"`
	TotalStudents  int    `db:"total_students" json:"total_students"`
	NotSubmitted   int    `db:"not_submitted" json:"not_submitted"`
	BeingChecked   int    `db:"being_checked" json:"being_checked"`
	ReviewedRed    int    `db:"reviewed_red" json:"reviewed_red"`
	ReviewedYellow int    `db:"reviewed_yellow" json:"reviewed_yellow"`
	ReviewedGreen  int    `db:"reviewed_green" json:"reviewed_green"`
}

// CampaignDetail combines a campaign with its per-group breakdown.
type CampaignDetail struct {
	Campaign Campaign              `json:"campaign"`
	Groups   []CampaignGroupDetail `json:"groups"`
}

// OverrideEntry names one student to force back to "must resubmit".
type OverrideEntry struct {
	StudentID  string `json:"studentId" validate:"required"`
	CampaignID string `json:"permissionId" validate:"required"`
}
