package model

import "time"

// ResponseToken binds exactly one (request, donor) pair to a single-use
// response channel. It transitions unused to used exactly once and is never
// recreated for the same pair.
type ResponseToken struct {
	Token     string    `json:"token"`
	RequestID string    `json:"request_id"`
	DonorID   string    `json:"donor_id"`
	IsUsed    bool      `json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}
