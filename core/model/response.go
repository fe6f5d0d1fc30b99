package model

import "time"

// LocationResponse is a structured donor submission made through a valid
// token, with explicit foreign keys to the donor and the request.
type LocationResponse struct {
	ID           string    `json:"id"`
	DonorID      string    `json:"donor_id"`
	RequestID    string    `json:"request_id"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	IsAvailable  bool      `json:"is_available"`
	Address      string    `json:"address"`
	ResponseTime time.Time `json:"response_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// LegacyLocation is an older location submission with no foreign key to any
// donor or request. Identity is resolved heuristically at read time.
type LegacyLocation struct {
	Address      string    `json:"address"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	UserName     string    `json:"user_name"`
	RollNumber   string    `json:"roll_number"`
	MobileNumber string    `json:"mobile_number"`
	Timestamp    time.Time `json:"timestamp"`
}
