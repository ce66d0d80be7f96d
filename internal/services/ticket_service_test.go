package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/KennyKvn001/BusB/internal/domain"
	"github.com/KennyKvn001/BusB/internal/domain/models"
	"github.com/KennyKvn001/BusB/internal/repositories"
)

// 2025-03-10 is a Monday.
var testClock = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }

func newTicketService(t *testing.T) (TicketService, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := TicketService{
		TicketRepo: repositories.TicketRepo{DB: db},
		RouteRepo:  repositories.RouteRepo{DB: db},
		BusRepo:    repositories.BusRepo{DB: db},
		UserRepo:   repositories.UserRepo{DB: db},
		Access: AccessService{
			OperatorRepo: repositories.OperatorRepo{DB: db},
			BusRepo:      repositories.BusRepo{DB: db},
			RouteRepo:    repositories.RouteRepo{DB: db},
			UserRepo:     repositories.UserRepo{DB: db},
		},
		Now: fixedNow,
	}
	return svc, mock, db
}

var routeCols = []string{
	"id", "bus_id", "start_name", "start_lng", "start_lat", "end_name", "end_lng", "end_lat",
	"stops", "distance", "duration", "price", "schedule_days", "departure_time", "arrival_time",
	"is_popular", "status", "created_at", "updated_at",
}

func routeRow(id, busID int64, days, status string) *sqlmock.Rows {
	return sqlmock.NewRows(routeCols).AddRow(
		id, busID, "Kigali", 30.0619, -1.9441, "Musanze", 29.6344, -1.4998,
		nil, 95.0, 120, 3500.0, days, "08:00", "10:00",
		false, status, testClock, testClock,
	)
}

var busCols = []string{
	"id", "operator_id", "plate_number", "model", "year", "capacity", "features", "status", "created_at", "updated_at",
}

func busRow(id, operatorID int64, capacity int) *sqlmock.Rows {
	return sqlmock.NewRows(busCols).AddRow(
		id, operatorID, "RAD 123B", "Coaster", 2020, capacity, `["wifi"]`, "active", testClock, testClock,
	)
}

var ticketCols = []string{
	"id", "route_id", "travel_date", "seat_number", "price", "booking_reference",
	"user_id", "guest_name", "guest_email", "guest_phone", "status",
	"payment_status", "payment_method", "payment_transaction_id", "payment_paid_at",
	"bp_qr_code", "bp_scanned", "bp_scanned_at", "created_at", "updated_at",
}

type ticketRowOpts struct {
	id         int64
	routeID    int64
	travelDate string
	userID     any
	guestEmail any
	status     string
	payStatus  string
	paidAt     any
}

func ticketRow(o ticketRowOpts) *sqlmock.Rows {
	var guestName any
	if o.guestEmail != nil {
		guestName = "Guest Rider"
	}
	return sqlmock.NewRows(ticketCols).AddRow(
		o.id, o.routeID, o.travelDate, 12, 3500.0, "RB-7K2MH",
		o.userID, guestName, o.guestEmail, nil, o.status,
		o.payStatus, nil, nil, o.paidAt,
		nil, false, nil, testClock, testClock,
	)
}

func adminPrincipal() *Principal {
	return &Principal{UserID: 99, Role: models.RoleAdmin}
}

func TestReserveGuestSuccess(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM routes WHERE id=\\?").WithArgs(int64(1)).
		WillReturnRows(routeRow(1, 2, "Monday,Wednesday", "active"))
	mock.ExpectQuery("FROM buses WHERE id=\\?").WithArgs(int64(2)).
		WillReturnRows(busRow(2, 3, 30))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tickets").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO tickets").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(7)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 7, routeID: 1, travelDate: "2025-03-12",
			guestEmail: "guest@example.com", status: "booked", payStatus: "pending",
		}))

	ticket, err := svc.Reserve(ReserveInput{
		RouteID:    1,
		TravelDate: "2025-03-12",
		SeatNumber: 12,
		Price:      3500,
		Guest:      &models.GuestInfo{Name: "Guest Rider", Email: "Guest@Example.com"},
	}, nil)
	if err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if ticket.ID != 7 || ticket.Status != models.TicketBooked {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
	if ticket.Guest == nil || ticket.Guest.Email != "guest@example.com" {
		t.Fatalf("guest info not preserved: %+v", ticket.Guest)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveValidationShortCircuits(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	_, err := svc.Reserve(ReserveInput{RouteID: 1, TravelDate: "2025-03-12", SeatNumber: 12, Price: 0}, nil)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for zero price, got %v", err)
	}
	_, err = svc.Reserve(ReserveInput{RouteID: 1, TravelDate: "2025-03-12", SeatNumber: 0, Price: 3500}, nil)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for zero seat, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no queries should run before validation: %v", err)
	}
}

func TestReserveUnscheduledDay(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM routes WHERE id=\\?").WithArgs(int64(1)).
		WillReturnRows(routeRow(1, 2, "Monday", "active"))

	// 2025-03-11 is a Tuesday.
	_, err := svc.Reserve(ReserveInput{RouteID: 1, TravelDate: "2025-03-11", SeatNumber: 12, Price: 3500}, adminPrincipal())
	if !domain.IsBusiness(err) {
		t.Fatalf("expected business error, got %v", err)
	}
	if got, want := err.Error(), "route does not operate on Tuesday"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestReservePastDate(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM routes WHERE id=\\?").WithArgs(int64(1)).
		WillReturnRows(routeRow(1, 2, "Friday", "active"))

	// 2025-03-07 is a Friday before the clock date.
	_, err := svc.Reserve(ReserveInput{RouteID: 1, TravelDate: "2025-03-07", SeatNumber: 12, Price: 3500}, adminPrincipal())
	if !domain.IsBusiness(err) {
		t.Fatalf("expected business error, got %v", err)
	}
	if got, want := err.Error(), "cannot book tickets for past dates"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestReserveSeatOutOfRange(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM routes WHERE id=\\?").WithArgs(int64(1)).
		WillReturnRows(routeRow(1, 2, "Wednesday", "active"))
	mock.ExpectQuery("FROM buses WHERE id=\\?").WithArgs(int64(2)).
		WillReturnRows(busRow(2, 3, 30))

	_, err := svc.Reserve(ReserveInput{RouteID: 1, TravelDate: "2025-03-12", SeatNumber: 31, Price: 3500}, adminPrincipal())
	if !domain.IsBusiness(err) {
		t.Fatalf("expected business error, got %v", err)
	}
	if got, want := err.Error(), "seat number must be between 1 and 30"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestReserveSeatAlreadyBooked(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM routes WHERE id=\\?").WithArgs(int64(1)).
		WillReturnRows(routeRow(1, 2, "Wednesday", "active"))
	mock.ExpectQuery("FROM buses WHERE id=\\?").WithArgs(int64(2)).
		WillReturnRows(busRow(2, 3, 30))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tickets").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	_, err := svc.Reserve(ReserveInput{RouteID: 1, TravelDate: "2025-03-12", SeatNumber: 12, Price: 3500}, adminPrincipal())
	if !domain.IsBusiness(err) {
		t.Fatalf("expected business error, got %v", err)
	}
	if got, want := err.Error(), "seat 12 is already booked"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestReserveGuestInfoRequired(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM routes WHERE id=\\?").WithArgs(int64(1)).
		WillReturnRows(routeRow(1, 2, "Wednesday", "active"))
	mock.ExpectQuery("FROM buses WHERE id=\\?").WithArgs(int64(2)).
		WillReturnRows(busRow(2, 3, 30))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tickets").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

	_, err := svc.Reserve(ReserveInput{RouteID: 1, TravelDate: "2025-03-12", SeatNumber: 12, Price: 3500}, nil)
	if !domain.IsBusiness(err) {
		t.Fatalf("expected business error, got %v", err)
	}
	if got, want := err.Error(), "guest information is required for guest bookings"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestReserveSeatRaceOnInsert(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM routes WHERE id=\\?").WithArgs(int64(1)).
		WillReturnRows(routeRow(1, 2, "Wednesday", "active"))
	mock.ExpectQuery("FROM buses WHERE id=\\?").WithArgs(int64(2)).
		WillReturnRows(busRow(2, 3, 30))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tickets").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO tickets").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2025-03-12-12-1' for key 'tickets.uniq_active_seat'"})

	_, err := svc.Reserve(ReserveInput{RouteID: 1, TravelDate: "2025-03-12", SeatNumber: 12, Price: 3500}, adminPrincipal())
	if !domain.IsBusiness(err) {
		t.Fatalf("expected business error, got %v", err)
	}
	if got, want := err.Error(), "seat 12 is already booked"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestReserveRetriesReferenceCollision(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM routes WHERE id=\\?").WithArgs(int64(1)).
		WillReturnRows(routeRow(1, 2, "Wednesday", "active"))
	mock.ExpectQuery("FROM buses WHERE id=\\?").WithArgs(int64(2)).
		WillReturnRows(busRow(2, 3, 30))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tickets").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec("INSERT INTO tickets").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'RB-AAAAA' for key 'tickets.uniq_booking_reference'"})
	mock.ExpectExec("INSERT INTO tickets").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(8)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 8, routeID: 1, travelDate: "2025-03-12",
			userID: int64(99), status: "booked", payStatus: "pending",
		}))

	ticket, err := svc.Reserve(ReserveInput{RouteID: 1, TravelDate: "2025-03-12", SeatNumber: 12, Price: 3500}, adminPrincipal())
	if err != nil {
		t.Fatalf("Reserve should retry reference collisions: %v", err)
	}
	if ticket.ID != 8 {
		t.Fatalf("ticket id = %d, want 8", ticket.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReserveReferenceExhaustionConflicts(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM routes WHERE id=\\?").WithArgs(int64(1)).
		WillReturnRows(routeRow(1, 2, "Wednesday", "active"))
	mock.ExpectQuery("FROM buses WHERE id=\\?").WithArgs(int64(2)).
		WillReturnRows(busRow(2, 3, 30))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tickets").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	for i := 0; i < referenceAttempts; i++ {
		mock.ExpectExec("INSERT INTO tickets").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'RB-AAAAA' for key 'tickets.uniq_booking_reference'"})
	}

	_, err := svc.Reserve(ReserveInput{RouteID: 1, TravelDate: "2025-03-12", SeatNumber: 12, Price: 3500}, adminPrincipal())
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict after exhausting reference attempts, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("allocation must stop at %d attempts: %v", referenceAttempts, err)
	}
}

func TestCancelIdempotent(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-12",
			userID: int64(99), status: "cancelled", payStatus: "cancelled",
		}))

	ticket, err := svc.Cancel(5, adminPrincipal())
	if err != nil {
		t.Fatalf("cancelling a cancelled ticket must succeed: %v", err)
	}
	if ticket.Status != models.TicketCancelled {
		t.Fatalf("status = %s, want cancelled", ticket.Status)
	}
	// No UPDATE expected.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelRefundsPaidTicket(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	paidAt := testClock.Add(-time.Hour)
	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-12",
			userID: int64(99), status: "booked", payStatus: "paid", paidAt: paidAt,
		}))
	mock.ExpectExec("UPDATE tickets").
		WithArgs("cancelled", "refunded", nil, nil, sqlmock.AnyArg(), nil, false, nil, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-12",
			userID: int64(99), status: "cancelled", payStatus: "refunded", paidAt: paidAt,
		}))

	ticket, err := svc.Cancel(5, adminPrincipal())
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if ticket.Payment.Status != models.PaymentRefunded {
		t.Fatalf("payment status = %s, want refunded", ticket.Payment.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelCompletedRejected(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-10",
			userID: int64(99), status: "completed", payStatus: "paid",
		}))

	_, err := svc.Cancel(5, adminPrincipal())
	if !domain.IsBusiness(err) {
		t.Fatalf("expected business error, got %v", err)
	}
	if got, want := err.Error(), "cannot cancel a completed ticket"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestCancelPastDateRejected(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-08",
			userID: int64(99), status: "booked", payStatus: "pending",
		}))

	_, err := svc.Cancel(5, adminPrincipal())
	if !domain.IsBusiness(err) {
		t.Fatalf("expected business error, got %v", err)
	}
}

func TestCheckInSameDayOnly(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-12",
			userID: int64(99), status: "booked", payStatus: "paid",
		}))

	_, err := svc.CheckIn(5, adminPrincipal())
	if !domain.IsBusiness(err) {
		t.Fatalf("expected business error, got %v", err)
	}
	if got, want := err.Error(), "can only check in passengers on the day of travel"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestCheckInCompletesTicket(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-10",
			userID: int64(99), status: "booked", payStatus: "paid",
		}))
	mock.ExpectExec("UPDATE tickets").
		WithArgs("completed", "paid", nil, nil, nil, "qr/ticket/RB-7K2MH", true, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-10",
			userID: int64(99), status: "completed", payStatus: "paid",
		}))

	ticket, err := svc.CheckIn(5, adminPrincipal())
	if err != nil {
		t.Fatalf("CheckIn returned error: %v", err)
	}
	if ticket.Status != models.TicketCompleted {
		t.Fatalf("status = %s, want completed", ticket.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCheckInRiderDenied(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-10",
			userID: int64(42), status: "booked", payStatus: "paid",
		}))

	rider := &Principal{UserID: 42, Role: models.RoleUser}
	_, err := svc.CheckIn(5, rider)
	if !domain.IsAuthorization(err) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestUpdateRiderMayOnlyCancel(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-12",
			userID: int64(42), status: "booked", payStatus: "pending",
		}))

	rider := &Principal{UserID: 42, Role: models.RoleUser}
	completed := models.TicketCompleted
	_, err := svc.Update(5, TicketPatch{Status: &completed}, rider)
	if !domain.IsAuthorization(err) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if got, want := err.Error(), "you can only cancel your tickets"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestUpdatePaymentStampsPaidAt(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-12",
			userID: int64(99), status: "booked", payStatus: "pending",
		}))
	mock.ExpectExec("UPDATE tickets").
		WithArgs("booked", "paid", "mobile_money", nil, testClock, nil, false, nil, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM tickets WHERE id=\\?").WithArgs(int64(5)).
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 5, routeID: 1, travelDate: "2025-03-12",
			userID: int64(99), status: "booked", payStatus: "paid", paidAt: testClock,
		}))

	paid := models.PaymentPaid
	method := "mobile_money"
	ticket, err := svc.Update(5, TicketPatch{Payment: &PaymentPatch{Status: &paid, Method: &method}}, adminPrincipal())
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if ticket.Payment.PaidAt == nil || !ticket.Payment.PaidAt.Equal(testClock) {
		t.Fatalf("paid_at not stamped: %+v", ticket.Payment)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListScopesOperatorToOwnRoutes(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	op := &models.Operator{ID: 3, UserID: 10, Status: models.OperatorApproved}
	p := &Principal{UserID: 10, Role: models.RoleOperator, Operator: op}

	mock.ExpectQuery("SELECT r.id FROM routes r").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(4))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tickets").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("FROM tickets WHERE").
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 9, routeID: 4, travelDate: "2025-03-12",
			guestEmail: "guest@example.com", status: "booked", payStatus: "pending",
		}))

	tickets, total, err := svc.List(repositories.TicketFilter{}, p)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 1 || len(tickets) != 1 {
		t.Fatalf("got %d tickets (total %d), want 1", len(tickets), total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListOperatorForeignRouteDenied(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	op := &models.Operator{ID: 3, UserID: 10, Status: models.OperatorApproved}
	p := &Principal{UserID: 10, Role: models.RoleOperator, Operator: op}

	mock.ExpectQuery("SELECT r.id FROM routes r").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(4))

	_, _, err := svc.List(repositories.TicketFilter{RouteID: 7}, p)
	if !domain.IsAuthorization(err) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestGetByReferenceGuestEmail(t *testing.T) {
	svc, mock, _ := newTicketService(t)

	mock.ExpectQuery("FROM tickets WHERE booking_reference=\\?").WithArgs("RB-7K2MH").
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 7, routeID: 1, travelDate: "2025-03-12",
			guestEmail: "guest@example.com", status: "booked", payStatus: "pending",
		}))

	ticket, err := svc.GetByReference("RB-7K2MH", "GUEST@example.com")
	if err != nil {
		t.Fatalf("GetByReference returned error: %v", err)
	}
	if ticket.ID != 7 {
		t.Fatalf("ticket id = %d, want 7", ticket.ID)
	}

	mock.ExpectQuery("FROM tickets WHERE booking_reference=\\?").WithArgs("RB-7K2MH").
		WillReturnRows(ticketRow(ticketRowOpts{
			id: 7, routeID: 1, travelDate: "2025-03-12",
			guestEmail: "guest@example.com", status: "booked", payStatus: "pending",
		}))

	_, err = svc.GetByReference("RB-7K2MH", "other@example.com")
	if !domain.IsAuthorization(err) {
		t.Fatalf("expected authorization error for mismatched email, got %v", err)
	}
}
