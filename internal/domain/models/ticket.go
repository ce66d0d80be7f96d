package models

import (
	"math/rand"
	"time"

	"github.com/KennyKvn001/BusB/internal/domain"
	"github.com/KennyKvn001/BusB/internal/utils"
)

type TicketStatus string

const (
	TicketBooked    TicketStatus = "booked"
	TicketCancelled TicketStatus = "cancelled"
	TicketCompleted TicketStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

// GuestInfo carries contact details for bookings made without an account.
type GuestInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type PaymentInfo struct {
	Status        PaymentStatus `json:"status"`
	Method        string        `json:"method,omitempty"` // mobile_money, card, cash
	TransactionID string        `json:"transaction_id,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

type BoardingPass struct {
	QRCode    string     `json:"qr_code,omitempty"`
	Scanned   bool       `json:"scanned"`
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
}

type Ticket struct {
	ID               int64        `json:"id"`
	RouteID          int64        `json:"route_id"`
	TravelDate       string       `json:"travel_date"` // YYYY-MM-DD, no time component
	SeatNumber       int          `json:"seat_number"`
	Price            float64      `json:"price"`
	BookingReference string       `json:"booking_reference"`
	UserID           *int64       `json:"user_id,omitempty"`
	Guest            *GuestInfo   `json:"guest_info,omitempty"`
	Status           TicketStatus `json:"status"`
	Payment          PaymentInfo  `json:"payment"`
	BoardingPass     BoardingPass `json:"boarding_pass"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Terminal reports whether the ticket can no longer change status.
func (t Ticket) Terminal() bool {
	return t.Status == TicketCancelled || t.Status == TicketCompleted
}

// TravelsOn parses the travel date; tickets always store a valid date, so a
// failed parse is reported as an internal inconsistency.
func (t Ticket) TravelsOn() (time.Time, error) {
	d, err := utils.ParseDate(t.TravelDate)
	if err != nil {
		return time.Time{}, domain.InternalError{Msg: "ticket has malformed travel date", Err: err}
	}
	return d, nil
}

const referenceChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewBookingReference produces a candidate reference in the RB-XXXXX form.
// Uniqueness is not guaranteed here; the caller retries against the store's
// unique index.
func NewBookingReference() string {
	b := make([]byte, 5)
	for i := range b {
		b[i] = referenceChars[rand.Intn(len(referenceChars))]
	}
	return "RB-" + string(b)
}

// BoardingQRPayload is the deterministic QR payload for a booking reference.
func BoardingQRPayload(reference string) string {
	return "qr/ticket/" + reference
}

func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketBooked, TicketCancelled, TicketCompleted:
		return true
	}
	return false
}

func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentCancelled:
		return true
	}
	return false
}
