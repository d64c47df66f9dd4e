package models

import "time"

// Group is a tutor-supervised student group. Membership is synchronized from
// the external student directory; this service only reads it.
type Group struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TutorID   string    `db:"tutor_id" json:"tutor_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
