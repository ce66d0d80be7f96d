package models

import "time"

type OperatorStatus string

const (
	OperatorPending   OperatorStatus = "pending"
	OperatorApproved  OperatorStatus = "approved"
	OperatorSuspended OperatorStatus = "suspended"
)

// Operator is the company profile attached 1:1 to a user with the operator
// role. Buses hang off the operator, routes off the buses; that chain is what
// access checks walk.
type Operator struct {
	ID            int64          `json:"id"`
	UserID        int64          `json:"user_id"`
	CompanyName   string         `json:"company_name"`
	ContactPhone  string         `json:"contact_phone"`
	LicenseNumber string         `json:"license_number"`
	Status        OperatorStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (o Operator) Approved() bool {
	return o.Status == OperatorApproved
}
