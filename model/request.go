// model/request.go
package model

import "time"

type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestAccepted  RequestStatus = "ACCEPTED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestConfirmed RequestStatus = "CONFIRMED"
)

// RentalRequest is a borrower's interest in renting one item. Rows are never
// deleted; rejected and confirmed are terminal states kept as an audit trail.
type RentalRequest struct {
	ID          int64         `json:"id"`
	ItemID      int64         `json:"item_id"`
	RequesterID int64         `json:"requester_id"`
	OwnerID     int64         `json:"owner_id"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	DecidedAt   *time.Time    `json:"decided_at,omitempty"`
	ConfirmedAt *time.Time    `json:"confirmed_at,omitempty"`
}
