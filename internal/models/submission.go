package models

import "time"

// SubmissionKind distinguishes the housing situations a student can disclose.
type SubmissionKind string

const (
	KindTenant      SubmissionKind = "tenant"
	KindRelative    SubmissionKind = "relative"
	KindLittleHouse SubmissionKind = "littleHouse"
	KindBedroom     SubmissionKind = "bedroom"
)

// Verdict is the reviewer's per-item safety rating.
type Verdict string

const (
	VerdictRed    Verdict = "red"
	VerdictYellow Verdict = "yellow"
	VerdictGreen  Verdict = "green"
)

// Valid reports whether the verdict is one of the known colors.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictRed, VerdictYellow, VerdictGreen:
		return true
	}
	return false
}

// rank orders verdicts by severity, highest first.
func (v Verdict) rank() int {
	switch v {
	case VerdictRed:
		return 3
	case VerdictYellow:
		return 2
	case VerdictGreen:
		return 1
	}
	return 0
}

// Worse returns the more severe of two verdicts.
func (v Verdict) Worse(other Verdict) Verdict {
	if other.rank() > v.rank() {
		return other
	}
	return v
}

// AggregateStatus is the overall state of a submission.
type AggregateStatus string

const (
	AggregatePending AggregateStatus = "pending"
	AggregateRed     AggregateStatus = "red"
	AggregateYellow  AggregateStatus = "yellow"
	AggregateGreen   AggregateStatus = "green"
)

// Submission is a student's housing disclosure record. Evidence columns are
// only populated for tenant submissions; the other kinds carry owner or room
// details instead.
type Submission struct {
	ID         string         `db:"id" json:"id"`
	StudentID  string         `db:"student_id" json:"student_id"`
	CampaignID *string        `db:"campaign_id" json:"campaign_id,omitempty"`
	Kind       SubmissionKind `db:"kind" json:"kind"`

	OwnerName  *string `db:"owner_name" json:"owner_name,omitempty"`
	OwnerPhone *string `db:"owner_phone" json:"owner_phone,omitempty"`
	RoomNumber *string `db:"room_number" json:"room_number,omitempty"`
	Building   *string `db:"building" json:"building,omitempty"`

	BoilerURL       *string  `db:"boiler_url" json:"boiler_url,omitempty"`
	BoilerVerdict   *Verdict `db:"boiler_verdict" json:"boiler_verdict,omitempty"`
	GasStoveURL     *string  `db:"gas_stove_url" json:"gas_stove_url,omitempty"`
	GasStoveVerdict *Verdict `db:"gas_stove_verdict" json:"gas_stove_verdict,omitempty"`
	ChimneyURL      *string  `db:"chimney_url" json:"chimney_url,omitempty"`
	ChimneyVerdict  *Verdict `db:"chimney_verdict" json:"chimney_verdict,omitempty"`
	AdditionURL     *string  `db:"addition_url" json:"addition_url,omitempty"`
	AdditionVerdict *Verdict `db:"addition_verdict" json:"addition_verdict,omitempty"`

	AggregateStatus AggregateStatus `db:"aggregate_status" json:"aggregate_status"`
	IsCurrent       bool            `db:"is_current" json:"is_current"`
	NeedsResubmit   bool            `db:"needs_resubmit" json:"needs_resubmit"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// SubmissionFilter captures listing criteria for tutors reviewing submissions.
type SubmissionFilter struct {
	Status   AggregateStatus
	Page     int
	PageSize int
}
