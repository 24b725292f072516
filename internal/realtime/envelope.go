package realtime

import "time"

// Message types delivered on the broadcast topic. Every envelope carries
// an explicit type so clients never have to infer the kind of message
// from the presence or absence of fields.
const (
	TypeVisitorCount = "visitor_count"
	TypeDonation     = "donation"
)

// Envelope is the JSON message delivered to realtime subscribers
type Envelope struct {
	Type string `json:"type"`

	// visitor_count payload. Zero is a real count and must serialize,
	// so no omitempty here.
	Count int64 `json:"count"`

	// donation payload
	Amount    int64     `json:"amount,omitempty"`
	DonorName string    `json:"donor_name,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// VisitorCount builds a presence-count envelope
func VisitorCount(count int64) Envelope {
	return Envelope{
		Type:  TypeVisitorCount,
		Count: count,
	}
}

// DonationAnnouncement builds a donation broadcast envelope
func DonationAnnouncement(amount int64, donorName, message string, timestamp time.Time) Envelope {
	return Envelope{
		Type:      TypeDonation,
		Amount:    amount,
		DonorName: donorName,
		Message:   message,
		Timestamp: timestamp,
	}
}
