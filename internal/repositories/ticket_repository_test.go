package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/KennyKvn001/BusB/internal/domain/models"
)

func newTicketRepo(t *testing.T) (TicketRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return TicketRepo{DB: db}, mock
}

func TestMapDuplicateKey(t *testing.T) {
	seatErr := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2025-03-12-12-1' for key 'tickets.uniq_active_seat'"}
	if got := mapDuplicateKey(seatErr); !errors.Is(got, ErrSeatTaken) {
		t.Fatalf("seat index collision mapped to %v", got)
	}

	refErr := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'RB-AAAAA' for key 'tickets.uniq_booking_reference'"}
	if got := mapDuplicateKey(refErr); !errors.Is(got, ErrReferenceTaken) {
		t.Fatalf("reference index collision mapped to %v", got)
	}

	otherDup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'tickets.some_other_key'"}
	if got := mapDuplicateKey(otherDup); got != otherDup {
		t.Fatalf("unknown duplicate key should pass through, got %v", got)
	}

	plain := errors.New("connection lost")
	if got := mapDuplicateKey(plain); got != plain {
		t.Fatalf("non-mysql error should pass through, got %v", got)
	}
}

func TestCreateMapsSeatCollision(t *testing.T) {
	repo, mock := newTicketRepo(t)

	mock.ExpectExec("INSERT INTO tickets").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 'tickets.uniq_active_seat'"})

	ticket := models.Ticket{
		RouteID:          1,
		TravelDate:       "2025-03-12",
		SeatNumber:       12,
		Price:            3500,
		BookingReference: "RB-7K2MH",
		Guest:            &models.GuestInfo{Name: "G", Email: "g@example.com"},
		Status:           models.TicketBooked,
		Payment:          models.PaymentInfo{Status: models.PaymentPending},
	}
	if err := repo.Create(&ticket); !errors.Is(err, ErrSeatTaken) {
		t.Fatalf("Create returned %v, want ErrSeatTaken", err)
	}
}

func TestOccupiedByDateGroupsCounts(t *testing.T) {
	repo, mock := newTicketRepo(t)

	mock.ExpectQuery("GROUP BY travel_date").
		WithArgs(int64(1), "2025-03-10", "2025-03-16", "booked", "completed").
		WillReturnRows(sqlmock.NewRows([]string{"travel_date", "n"}).
			AddRow("2025-03-10", 3).
			AddRow("2025-03-12", 1))

	out, err := repo.OccupiedByDate(1, "2025-03-10", "2025-03-16")
	if err != nil {
		t.Fatalf("OccupiedByDate returned error: %v", err)
	}
	if out["2025-03-10"] != 3 || out["2025-03-12"] != 1 {
		t.Fatalf("unexpected counts: %v", out)
	}
	if _, ok := out["2025-03-11"]; ok {
		t.Fatalf("unqueried date present: %v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListEmptyRouteSubsetShortCircuits(t *testing.T) {
	repo, mock := newTicketRepo(t)

	tickets, total, err := repo.List(TicketFilter{RouteIDs: []int64{}})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 0 || len(tickets) != 0 {
		t.Fatalf("empty subset must yield nothing, got %d/%d", len(tickets), total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no queries expected: %v", err)
	}
}

func TestListBuildsFilters(t *testing.T) {
	repo, mock := newTicketRepo(t)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	cols := []string{
		"id", "route_id", "travel_date", "seat_number", "price", "booking_reference",
		"user_id", "guest_name", "guest_email", "guest_phone", "status",
		"payment_status", "payment_method", "payment_transaction_id", "payment_paid_at",
		"bp_qr_code", "bp_scanned", "bp_scanned_at", "created_at", "updated_at",
	}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM tickets").
		WithArgs("booked", int64(4), int64(42), "2025-03-01", "2025-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectQuery("FROM tickets WHERE").
		WithArgs("booked", int64(4), int64(42), "2025-03-01", "2025-03-31", 10, 0).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			9, 4, "2025-03-12", 12, 3500.0, "RB-7K2MH",
			42, nil, nil, nil, "booked",
			"pending", nil, nil, nil,
			nil, false, nil, now, now,
		))

	tickets, total, err := repo.List(TicketFilter{
		Status:   models.TicketBooked,
		RouteID:  4,
		UserID:   42,
		DateFrom: "2025-03-01",
		DateTo:   "2025-03-31",
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if total != 1 || len(tickets) != 1 {
		t.Fatalf("got %d tickets (total %d), want 1", len(tickets), total)
	}
	if tickets[0].UserID == nil || *tickets[0].UserID != 42 {
		t.Fatalf("user id not scanned: %+v", tickets[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
