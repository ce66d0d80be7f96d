package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KennyKvn001/BusB/internal/domain"
	"github.com/KennyKvn001/BusB/internal/domain/models"
	"github.com/KennyKvn001/BusB/internal/repositories"
	"github.com/KennyKvn001/BusB/internal/utils"
)

// referenceAttempts caps the booking-reference generation loop. The unique
// index on booking_reference stays authoritative; the loop is a bounded
// convenience on top of it.
const referenceAttempts = 10

// TicketService is the booking engine: it owns reservation, the ticket
// status lifecycle, payment merging, and passenger check-in.
type TicketService struct {
	TicketRepo repositories.TicketRepo
	RouteRepo  repositories.RouteRepo
	BusRepo    repositories.BusRepo
	UserRepo   repositories.UserRepo
	Access     AccessService

	// Now overrides the clock in tests.
	Now func() time.Time
}

func (s TicketService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s TicketService) today() time.Time {
	return utils.DateOnly(s.now())
}

type ReserveInput struct {
	RouteID    int64             `json:"route_id"`
	TravelDate string            `json:"travel_date"`
	SeatNumber int               `json:"seat_number"`
	Price      float64           `json:"price"`
	Guest      *models.GuestInfo `json:"guest_info"`
}

// Reserve books a seat on a route for a travel date. The first failing check
// wins and short-circuits the rest. The storage unique key decides races the
// pre-check cannot see.
func (s TicketService) Reserve(in ReserveInput, p *Principal) (models.Ticket, error) {
	var zero models.Ticket

	if in.Price <= 0 {
		return zero, domain.ValidationError{Field: "price", Msg: "must be greater than 0"}
	}
	if in.SeatNumber < 1 {
		return zero, domain.ValidationError{Field: "seat_number", Msg: "must be greater than 0"}
	}

	route, err := s.RouteRepo.GetByID(in.RouteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, domain.NotFoundError{Resource: "route"}
		}
		return zero, domain.InternalError{Err: err}
	}
	if !route.Active() {
		return zero, domain.NotFoundError{Resource: "route"}
	}

	travelDate, err := utils.ParseDate(in.TravelDate)
	if err != nil {
		return zero, domain.ValidationError{Field: "travel_date", Msg: "must be a date in YYYY-MM-DD form"}
	}
	if !route.OperatesOn(travelDate) {
		return zero, domain.BusinessError{Msg: fmt.Sprintf("route does not operate on %s", utils.WeekdayName(travelDate))}
	}
	if travelDate.Before(s.today()) {
		return zero, domain.BusinessError{Msg: "cannot book tickets for past dates"}
	}

	bus, err := s.BusRepo.GetByID(route.BusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, domain.NotFoundError{Resource: "bus"}
		}
		return zero, domain.InternalError{Err: err}
	}
	if in.SeatNumber > bus.Capacity {
		return zero, domain.BusinessError{Msg: fmt.Sprintf("seat number must be between 1 and %d", bus.Capacity)}
	}

	// Fail fast before the insert; the uniq_active_seat key is the real guard.
	taken, err := s.TicketRepo.SeatBooked(in.RouteID, utils.FormatDate(travelDate), in.SeatNumber)
	if err != nil {
		return zero, domain.InternalError{Err: err}
	}
	if taken {
		return zero, domain.BusinessError{Msg: fmt.Sprintf("seat %d is already booked", in.SeatNumber)}
	}

	ticket := models.Ticket{
		RouteID:    in.RouteID,
		TravelDate: utils.FormatDate(travelDate),
		SeatNumber: in.SeatNumber,
		Price:      in.Price,
		Status:     models.TicketBooked,
		Payment:    models.PaymentInfo{Status: models.PaymentPending},
	}
	if p != nil && p.UserID > 0 {
		uid := p.UserID
		ticket.UserID = &uid
	} else {
		if in.Guest == nil || strings.TrimSpace(in.Guest.Email) == "" || strings.TrimSpace(in.Guest.Name) == "" {
			return zero, domain.BusinessError{Msg: "guest information is required for guest bookings"}
		}
		guest := *in.Guest
		guest.Email = utils.NormalizeEmail(guest.Email)
		ticket.Guest = &guest
	}

	for attempt := 0; attempt < referenceAttempts; attempt++ {
		ticket.BookingReference = models.NewBookingReference()
		err = s.TicketRepo.Create(&ticket)
		if err == nil {
			return s.reload(ticket.ID)
		}
		if errors.Is(err, repositories.ErrSeatTaken) {
			return zero, domain.BusinessError{Msg: fmt.Sprintf("seat %d is already booked", in.SeatNumber)}
		}
		if errors.Is(err, repositories.ErrReferenceTaken) {
			continue
		}
		return zero, domain.InternalError{Err: err}
	}
	return zero, domain.ConflictError{Resource: "booking reference", Msg: "could not generate a unique reference"}
}

// PaymentPatch carries only the payment fields present in the request;
// absent fields leave the stored value untouched.
type PaymentPatch struct {
	Status        *models.PaymentStatus `json:"status"`
	Method        *string               `json:"method"`
	TransactionID *string               `json:"transaction_id"`
	PaidAt        *time.Time            `json:"paid_at"`
}

type TicketPatch struct {
	Status  *models.TicketStatus `json:"status"`
	Payment *PaymentPatch        `json:"payment"`
}

// Update applies a status change and/or a field-by-field payment merge.
func (s TicketService) Update(ticketID int64, patch TicketPatch, p *Principal) (models.Ticket, error) {
	ticket, err := s.get(ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if _, err := s.Access.CanAccessTicket(p, ticket); err != nil {
		return models.Ticket{}, err
	}

	changed := false

	if patch.Status != nil {
		next := *patch.Status
		if !models.ValidTicketStatus(next) {
			return models.Ticket{}, domain.ValidationError{Field: "status", Msg: "must be one of: booked, cancelled, completed"}
		}
		if p != nil && p.Role == models.RoleUser && next != models.TicketCancelled {
			return models.Ticket{}, domain.AuthorizationError{Msg: "you can only cancel your tickets"}
		}
		if next != ticket.Status {
			if ticket.Status == models.TicketCompleted && next == models.TicketCancelled {
				return models.Ticket{}, domain.BusinessError{Msg: "cannot cancel a completed ticket"}
			}
			if ticket.Terminal() {
				return models.Ticket{}, domain.BusinessError{Msg: fmt.Sprintf("ticket is already %s", ticket.Status)}
			}
			if next == models.TicketCancelled {
				travel, err := ticket.TravelsOn()
				if err != nil {
					return models.Ticket{}, err
				}
				if travel.Before(s.today()) {
					return models.Ticket{}, domain.BusinessError{Msg: "cannot cancel tickets for past dates"}
				}
			}
			ticket.Status = next
			changed = true
		}
	}

	if patch.Payment != nil {
		wasPaid := ticket.Payment.Status == models.PaymentPaid
		if patch.Payment.Status != nil {
			if !models.ValidPaymentStatus(*patch.Payment.Status) {
				return models.Ticket{}, domain.ValidationError{Field: "payment.status", Msg: "must be one of: pending, paid, refunded, cancelled"}
			}
			ticket.Payment.Status = *patch.Payment.Status
			changed = true
		}
		if patch.Payment.Method != nil {
			ticket.Payment.Method = *patch.Payment.Method
			changed = true
		}
		if patch.Payment.TransactionID != nil {
			ticket.Payment.TransactionID = *patch.Payment.TransactionID
			changed = true
		}
		if ticket.Payment.Status == models.PaymentPaid && !wasPaid {
			now := s.now()
			ticket.Payment.PaidAt = &now
		}
		// An explicit paid_at in the request wins over the server stamp.
		if patch.Payment.PaidAt != nil {
			at := *patch.Payment.PaidAt
			ticket.Payment.PaidAt = &at
			changed = true
		}
	}

	if changed {
		if err := s.TicketRepo.Update(ticket); err != nil {
			return models.Ticket{}, domain.InternalError{Err: err}
		}
	}
	return s.reload(ticket.ID)
}

// Cancel flips a ticket to cancelled. Cancelling an already-cancelled ticket
// is a no-op success; completed and past-dated tickets cannot be cancelled.
func (s TicketService) Cancel(ticketID int64, p *Principal) (models.Ticket, error) {
	ticket, err := s.get(ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if _, err := s.Access.CanAccessTicket(p, ticket); err != nil {
		return models.Ticket{}, err
	}

	if ticket.Status == models.TicketCancelled {
		return ticket, nil
	}
	if ticket.Status == models.TicketCompleted {
		return models.Ticket{}, domain.BusinessError{Msg: "cannot cancel a completed ticket"}
	}
	travel, err := ticket.TravelsOn()
	if err != nil {
		return models.Ticket{}, err
	}
	if travel.Before(s.today()) {
		return models.Ticket{}, domain.BusinessError{Msg: "cannot cancel tickets for past dates"}
	}

	ticket.Status = models.TicketCancelled
	if ticket.Payment.Status == models.PaymentPaid {
		ticket.Payment.Status = models.PaymentRefunded
	} else {
		ticket.Payment.Status = models.PaymentCancelled
	}
	if err := s.TicketRepo.Update(ticket); err != nil {
		return models.Ticket{}, domain.InternalError{Err: err}
	}
	return s.reload(ticket.ID)
}

// CheckIn marks the passenger boarded. Strictly same-day: the travel date
// must equal the current date. Completion is terminal.
func (s TicketService) CheckIn(ticketID int64, p *Principal) (models.Ticket, error) {
	ticket, err := s.get(ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if _, err := s.Access.RequireCheckInAccess(p, ticket); err != nil {
		return models.Ticket{}, err
	}

	if ticket.Status != models.TicketBooked {
		return models.Ticket{}, domain.BusinessError{Msg: fmt.Sprintf("cannot check in a ticket with status: %s", ticket.Status)}
	}
	travel, err := ticket.TravelsOn()
	if err != nil {
		return models.Ticket{}, err
	}
	if !travel.Equal(s.today()) {
		return models.Ticket{}, domain.BusinessError{Msg: "can only check in passengers on the day of travel"}
	}

	now := s.now()
	ticket.BoardingPass.Scanned = true
	ticket.BoardingPass.ScannedAt = &now
	if ticket.BoardingPass.QRCode == "" {
		ticket.BoardingPass.QRCode = models.BoardingQRPayload(ticket.BookingReference)
	}
	ticket.Status = models.TicketCompleted

	if err := s.TicketRepo.Update(ticket); err != nil {
		return models.Ticket{}, domain.InternalError{Err: err}
	}
	return s.reload(ticket.ID)
}

// Get returns a ticket after an ownership check.
func (s TicketService) Get(ticketID int64, p *Principal) (models.Ticket, error) {
	ticket, err := s.get(ticketID)
	if err != nil {
		return models.Ticket{}, err
	}
	if _, err := s.Access.CanAccessTicket(p, ticket); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

// GetByReference is the guest lookup: booking reference plus matching contact
// email stand in for identity-based ownership.
func (s TicketService) GetByReference(reference, email string) (models.Ticket, error) {
	ticket, err := s.TicketRepo.GetByReference(strings.TrimSpace(reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
		}
		return models.Ticket{}, domain.InternalError{Err: err}
	}
	if err := s.Access.VerifyReferenceEmail(ticket, email); err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

// List returns tickets scoped to what the principal may see: riders their
// own, operators their routes', admins everything.
func (s TicketService) List(f repositories.TicketFilter, p *Principal) ([]models.Ticket, int, error) {
	if p == nil {
		return nil, 0, domain.AuthorizationError{Msg: "authentication required"}
	}
	switch p.Role {
	case models.RoleAdmin:
		// unrestricted
	case models.RoleUser:
		f.UserID = p.UserID
		f.RouteID = 0
	case models.RoleOperator:
		ids, err := s.Access.OwnRouteIDs(p)
		if err != nil {
			return nil, 0, err
		}
		if f.RouteID > 0 {
			if !containsID(ids, f.RouteID) {
				return nil, 0, domain.AuthorizationError{Msg: "you can only access tickets for your own routes"}
			}
		} else {
			f.RouteIDs = ids
		}
	default:
		return nil, 0, domain.AuthorizationError{Msg: "authentication required"}
	}

	tickets, total, err := s.TicketRepo.List(f)
	if err != nil {
		return nil, 0, domain.InternalError{Err: err}
	}
	return tickets, total, nil
}

// ListMine returns the principal's own tickets ordered by travel date.
func (s TicketService) ListMine(f repositories.TicketFilter, p *Principal) ([]models.Ticket, int, error) {
	if p == nil || p.UserID <= 0 {
		return nil, 0, domain.AuthorizationError{Msg: "authentication required"}
	}
	f.UserID = p.UserID
	f.RouteID = 0
	f.RouteIDs = nil
	f.OrderBy = "travel_date"
	tickets, total, err := s.TicketRepo.List(f)
	if err != nil {
		return nil, 0, domain.InternalError{Err: err}
	}
	return tickets, total, nil
}

func (s TicketService) get(ticketID int64) (models.Ticket, error) {
	ticket, err := s.TicketRepo.GetByID(ticketID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, domain.NotFoundError{Resource: "ticket"}
		}
		return models.Ticket{}, domain.InternalError{Err: err}
	}
	return ticket, nil
}

func (s TicketService) reload(ticketID int64) (models.Ticket, error) {
	ticket, err := s.TicketRepo.GetByID(ticketID)
	if err != nil {
		return models.Ticket{}, domain.InternalError{Err: err}
	}
	return ticket, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
