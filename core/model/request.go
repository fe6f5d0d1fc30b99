package model

import "time"

// RequestStatus is the lifecycle state of a blood request. Only "pending" is
// set by this service; the remaining transitions are driven externally by
// donation completion.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusProcessing RequestStatus = "processing"
	StatusFulfilled  RequestStatus = "fulfilled"
	StatusCancelled  RequestStatus = "cancelled"
)

// BloodRequest is an emergency request raised by a hospital actor.
type BloodRequest struct {
	ID         string        `json:"id"`
	HospitalID string        `json:"hospital_id"`
	BloodGroup BloodGroup    `json:"blood_group"`
	Quantity   int           `json:"quantity"`
	Urgency    string        `json:"urgency"`
	Status     RequestStatus `json:"status"`
	RequiredBy time.Time     `json:"required_by"`
	CreatedAt  time.Time     `json:"created_at"`
}
