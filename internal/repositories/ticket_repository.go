package repositories

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	intconfig "github.com/KennyKvn001/BusB/internal/config"
	"github.com/KennyKvn001/BusB/internal/domain/models"
)

// Sentinels for unique-key collisions on ticket inserts. The unique indexes
// in the tickets DDL are the authoritative guard; callers translate these
// into domain errors (seat conflict) or retry (reference collision).
var (
	ErrSeatTaken      = errors.New("seat already held for this route and date")
	ErrReferenceTaken = errors.New("booking reference already in use")
)

const mysqlDuplicateEntry = 1062

type TicketRepo struct {
	DB *sql.DB
}

func (r TicketRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const ticketColumns = `id, route_id, travel_date, seat_number, price, booking_reference,
	user_id, guest_name, guest_email, guest_phone, status,
	payment_status, payment_method, payment_transaction_id, payment_paid_at,
	bp_qr_code, bp_scanned, bp_scanned_at, created_at, updated_at`

type ticketScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row ticketScanner) (models.Ticket, error) {
	var (
		t          models.Ticket
		userID     sql.NullInt64
		gName      sql.NullString
		gEmail     sql.NullString
		gPhone     sql.NullString
		payMethod  sql.NullString
		payTxnID   sql.NullString
		paidAt     sql.NullTime
		qrCode     sql.NullString
		scannedAt  sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.RouteID, &t.TravelDate, &t.SeatNumber, &t.Price, &t.BookingReference,
		&userID, &gName, &gEmail, &gPhone, &t.Status,
		&t.Payment.Status, &payMethod, &payTxnID, &paidAt,
		&qrCode, &t.BoardingPass.Scanned, &scannedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return t, err
	}
	if userID.Valid {
		t.UserID = &userID.Int64
	} else if gName.Valid || gEmail.Valid {
		t.Guest = &models.GuestInfo{
			Name:  gName.String,
			Email: gEmail.String,
			Phone: gPhone.String,
		}
	}
	t.Payment.Method = payMethod.String
	t.Payment.TransactionID = payTxnID.String
	if paidAt.Valid {
		at := paidAt.Time
		t.Payment.PaidAt = &at
	}
	t.BoardingPass.QRCode = qrCode.String
	if scannedAt.Valid {
		at := scannedAt.Time
		t.BoardingPass.ScannedAt = &at
	}
	return t, nil
}

// Create inserts a new ticket. The unique keys decide races: a duplicate on
// uniq_active_seat means the seat was booked concurrently, a duplicate on
// uniq_booking_reference means the generated reference collided.
func (r TicketRepo) Create(t *models.Ticket) error {
	var userID any
	var gName, gEmail, gPhone any
	if t.UserID != nil {
		userID = *t.UserID
	}
	if t.Guest != nil {
		gName, gEmail, gPhone = t.Guest.Name, t.Guest.Email, t.Guest.Phone
	}

	res, err := r.db().Exec(`
		INSERT INTO tickets
			(route_id, travel_date, seat_number, price, booking_reference,
			 user_id, guest_name, guest_email, guest_phone,
			 status, payment_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, t.RouteID, t.TravelDate, t.SeatNumber, t.Price, t.BookingReference,
		userID, gName, gEmail, gPhone, t.Status, t.Payment.Status)
	if err != nil {
		return mapDuplicateKey(err)
	}
	t.ID, _ = res.LastInsertId()
	return nil
}

func mapDuplicateKey(err error) error {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return err
	}
	switch {
	case strings.Contains(me.Message, "uniq_active_seat"):
		return ErrSeatTaken
	case strings.Contains(me.Message, "uniq_booking_reference"):
		return ErrReferenceTaken
	}
	return err
}

func (r TicketRepo) GetByID(id int64) (models.Ticket, error) {
	return scanTicket(r.db().QueryRow(`SELECT `+ticketColumns+` FROM tickets WHERE id=? LIMIT 1`, id))
}

func (r TicketRepo) GetByReference(reference string) (models.Ticket, error) {
	return scanTicket(r.db().QueryRow(`SELECT `+ticketColumns+` FROM tickets WHERE booking_reference=? LIMIT 1`, reference))
}

// SeatBooked is the fail-fast pre-check before a reserve attempt. It is not a
// substitute for the unique key; two concurrent callers can both see false.
func (r TicketRepo) SeatBooked(routeID int64, travelDate string, seatNumber int) (bool, error) {
	var n int
	err := r.db().QueryRow(`
		SELECT COUNT(*) FROM tickets
		WHERE route_id=? AND travel_date=? AND seat_number=? AND status=?
	`, routeID, travelDate, seatNumber, models.TicketBooked).Scan(&n)
	return n > 0, err
}

// OccupiedByDate counts seats per travel date over a range. Completed tickets
// still occupy their seat for the day they travelled, so both statuses count.
func (r TicketRepo) OccupiedByDate(routeID int64, dateFrom, dateTo string) (map[string]int, error) {
	rows, err := r.db().Query(`
		SELECT travel_date, COUNT(*) FROM tickets
		WHERE route_id=? AND travel_date BETWEEN ? AND ? AND status IN (?, ?)
		GROUP BY travel_date
	`, routeID, dateFrom, dateTo, models.TicketBooked, models.TicketCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var date string
		var n int
		if err := rows.Scan(&date, &n); err != nil {
			return out, err
		}
		out[date] = n
	}
	return out, rows.Err()
}

// OccupiedOn counts seats taken for a single date.
func (r TicketRepo) OccupiedOn(routeID int64, travelDate string) (int, error) {
	var n int
	err := r.db().QueryRow(`
		SELECT COUNT(*) FROM tickets
		WHERE route_id=? AND travel_date=? AND status IN (?, ?)
	`, routeID, travelDate, models.TicketBooked, models.TicketCompleted).Scan(&n)
	return n, err
}

// Update persists the mutable slice of a ticket: status, payment sub-record,
// and boarding pass. Reservation fields never change after creation.
func (r TicketRepo) Update(t models.Ticket) error {
	var paidAt, scannedAt any
	if t.Payment.PaidAt != nil {
		paidAt = *t.Payment.PaidAt
	}
	if t.BoardingPass.ScannedAt != nil {
		scannedAt = *t.BoardingPass.ScannedAt
	}
	_, err := r.db().Exec(`
		UPDATE tickets SET
			status=?, payment_status=?, payment_method=?, payment_transaction_id=?, payment_paid_at=?,
			bp_qr_code=?, bp_scanned=?, bp_scanned_at=?, updated_at=NOW()
		WHERE id=?
	`, t.Status, t.Payment.Status, nullIfEmpty(t.Payment.Method), nullIfEmpty(t.Payment.TransactionID), paidAt,
		nullIfEmpty(t.BoardingPass.QRCode), t.BoardingPass.Scanned, scannedAt, t.ID)
	return err
}

type TicketFilter struct {
	Status   models.TicketStatus
	RouteID  int64
	RouteIDs []int64 // restricts to an operator's own routes; empty slice means "none"
	UserID   int64
	DateFrom string
	DateTo   string
	Page     int
	PageSize int
	OrderBy  string // "created_at" (default) or "travel_date"
}

// List returns tickets matching the filter plus the unpaged total.
func (r TicketRepo) List(f TicketFilter) ([]models.Ticket, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, f.Status)
	}
	if f.RouteID > 0 {
		where = append(where, "route_id=?")
		args = append(args, f.RouteID)
	}
	if f.RouteIDs != nil {
		if len(f.RouteIDs) == 0 {
			return []models.Ticket{}, 0, nil
		}
		ph := strings.TrimSuffix(strings.Repeat("?,", len(f.RouteIDs)), ",")
		where = append(where, "route_id IN ("+ph+")")
		for _, id := range f.RouteIDs {
			args = append(args, id)
		}
	}
	if f.UserID > 0 {
		where = append(where, "user_id=?")
		args = append(args, f.UserID)
	}
	if f.DateFrom != "" {
		where = append(where, "travel_date>=?")
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		where = append(where, "travel_date<=?")
		args = append(args, f.DateTo)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.db().QueryRow(`SELECT COUNT(*) FROM tickets WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "created_at DESC, id DESC"
	if f.OrderBy == "travel_date" {
		order = "travel_date DESC, id DESC"
	}
	page, size := normalizePage(f.Page, f.PageSize)
	args = append(args, size, (page-1)*size)
	rows, err := r.db().Query(`SELECT `+ticketColumns+` FROM tickets WHERE `+cond+` ORDER BY `+order+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return out, total, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
