package domain

import "time"

// LifecycleEvent records a single status change on a donation for the
// donation_events audit trail. From is empty for the creation event.
type LifecycleEvent struct {
	DonationID string         `json:"donationId" bson:"donationId"`
	From       DonationStatus `json:"from,omitempty" bson:"from,omitempty"`
	To         DonationStatus `json:"to" bson:"to"`
	Actor      string         `json:"actor" bson:"actor"`
	Timestamp  time.Time      `json:"timestamp" bson:"timestamp"`
}
