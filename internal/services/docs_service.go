package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/KennyKvn001/BusB/internal/repositories"
	"github.com/KennyKvn001/BusB/internal/utils"
)

// DocsService renders printable e-tickets with an embedded boarding QR.
type DocsService struct {
	TicketRepo repositories.TicketRepo
	RouteRepo  repositories.RouteRepo
	BusRepo    repositories.BusRepo
	UserRepo   repositories.UserRepo
	RequestID  string
	Loader     func(int64) (ticketDocData, error)
}

type ticketDocData struct {
	TicketID       int64
	Reference      string
	PassengerName  string
	PassengerEmail string
	PassengerPhone string
	SeatNumber     int
	RouteFrom      string
	RouteTo        string
	TravelDate     string
	DepartureTime  string
	ArrivalTime    string
	BusPlate       string
	BusModel       string
	Price          float64
	Status         string
	PaymentStatus  string
	QRPayload      string
}

// GenerateETicket builds the PDF for a ticket. Ownership checks are the
// caller's concern; this only loads and renders.
func (s DocsService) GenerateETicket(ticketID int64) ([]byte, string, error) {
	data, err := s.loadTicketDocData(ticketID)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", fmt.Sprintf("ticket_id=%d", ticketID))
	return buildETicketPDF(data)
}

func (s DocsService) loadTicketDocData(ticketID int64) (ticketDocData, error) {
	if s.Loader != nil {
		return s.Loader(ticketID)
	}
	var out ticketDocData

	t, err := s.TicketRepo.GetByID(ticketID)
	if err != nil {
		return out, err
	}
	out.TicketID = t.ID
	out.Reference = t.BookingReference
	out.SeatNumber = t.SeatNumber
	out.TravelDate = t.TravelDate
	out.Price = t.Price
	out.Status = string(t.Status)
	out.PaymentStatus = string(t.Payment.Status)
	out.QRPayload = t.BoardingPass.QRCode

	switch {
	case t.Guest != nil:
		out.PassengerName = t.Guest.Name
		out.PassengerEmail = t.Guest.Email
		out.PassengerPhone = t.Guest.Phone
	case t.UserID != nil:
		if u, err := s.UserRepo.GetByID(*t.UserID); err == nil {
			out.PassengerName = u.Name
			out.PassengerEmail = u.Email
			out.PassengerPhone = u.Phone
		}
	}

	if route, err := s.RouteRepo.GetByID(t.RouteID); err == nil {
		out.RouteFrom = route.StartLocation.Name
		out.RouteTo = route.EndLocation.Name
		out.DepartureTime = route.DepartureTime
		out.ArrivalTime = route.ArrivalTime
		if bus, err := s.BusRepo.GetByID(route.BusID); err == nil {
			out.BusPlate = bus.PlateNumber
			out.BusModel = bus.Model
		}
	}

	return out, nil
}

func buildETicketPDF(d ticketDocData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Reference : %s", safe(d.Reference, "-")),
		fmt.Sprintf("Passenger         : %s", safe(d.PassengerName, "-")),
		fmt.Sprintf("Email             : %s", safe(d.PassengerEmail, "-")),
		fmt.Sprintf("Phone             : %s", safe(d.PassengerPhone, "-")),
		fmt.Sprintf("Seat              : %d", d.SeatNumber),
		fmt.Sprintf("Route             : %s -> %s", safe(d.RouteFrom, "-"), safe(d.RouteTo, "-")),
		fmt.Sprintf("Travel Date       : %s", safe(d.TravelDate, "-")),
		fmt.Sprintf("Departure/Arrival : %s - %s", safe(d.DepartureTime, "-"), safe(d.ArrivalTime, "-")),
		fmt.Sprintf("Bus               : %s (%s)", safe(d.BusPlate, "-"), safe(d.BusModel, "-")),
		fmt.Sprintf("Price             : %s", utils.FormatRWF(d.Price)),
		fmt.Sprintf("Status            : %s / payment %s", safe(d.Status, "-"), safe(d.PaymentStatus, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	if err := embedBoardingQR(pdf, d); err != nil {
		return nil, "", err
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This e-ticket is valid for one passenger and one seat. Present it with the QR code when boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s.pdf", safeFilenamePart(d.Reference))
	return buf.Bytes(), filename, nil
}

func embedBoardingQR(pdf *gofpdf.Fpdf, d ticketDocData) error {
	payload := d.QRPayload
	if strings.TrimSpace(payload) == "" {
		payload = "qr/ticket/" + d.Reference
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("boarding-qr", opts, bytes.NewReader(png))
	pdf.Ln(4)
	pdf.ImageOptions("boarding-qr", 15, pdf.GetY(), 40, 40, false, opts, 0, "")
	pdf.SetY(pdf.GetY() + 44)
	return nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
