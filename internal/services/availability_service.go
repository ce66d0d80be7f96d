package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/KennyKvn001/BusB/internal/domain"
	"github.com/KennyKvn001/BusB/internal/domain/models"
	"github.com/KennyKvn001/BusB/internal/repositories"
	"github.com/KennyKvn001/BusB/internal/utils"
)

// maxAvailabilityRangeDays bounds the cost of an availability query.
const maxAvailabilityRangeDays = 30

type DayAvailability struct {
	Date           string `json:"date"`
	TotalSeats     int    `json:"total_seats"`
	BookedSeats    int    `json:"booked_seats"`
	AvailableSeats int    `json:"available_seats"`
}

type RouteAvailability struct {
	RouteID     int64             `json:"route_id"`
	BusID       int64             `json:"bus_id"`
	BusCapacity int               `json:"bus_capacity"`
	Days        []DayAvailability `json:"availability"`
}

// AvailabilityService computes live per-date seat availability for a route.
// Pure read side: one route fetch, one bus fetch, one grouped count.
type AvailabilityService struct {
	RouteRepo  repositories.RouteRepo
	BusRepo    repositories.BusRepo
	TicketRepo repositories.TicketRepo
}

// ForRoute returns availability for every scheduled date in [dateFrom,
// dateTo]. Dates on which the route does not operate are omitted entirely.
// Completed tickets count as occupied seats; the journey happened and the
// seat slot for that date stays consumed.
func (s AvailabilityService) ForRoute(routeID int64, dateFrom, dateTo string) (RouteAvailability, error) {
	var out RouteAvailability

	from, err := utils.ParseDate(dateFrom)
	if err != nil {
		return out, domain.ValidationError{Field: "date_from", Msg: "must be a date in YYYY-MM-DD form"}
	}
	to, err := utils.ParseDate(dateTo)
	if err != nil {
		return out, domain.ValidationError{Field: "date_to", Msg: "must be a date in YYYY-MM-DD form"}
	}
	if to.Before(from) {
		return out, domain.BusinessError{Msg: "date_from must be on or before date_to"}
	}
	if int(to.Sub(from).Hours()/24) > maxAvailabilityRangeDays {
		return out, domain.BusinessError{Msg: "date range cannot exceed 30 days"}
	}

	route, err := s.RouteRepo.GetByID(routeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, domain.NotFoundError{Resource: "route"}
		}
		return out, domain.InternalError{Err: err}
	}
	if !route.Active() {
		return out, domain.NotFoundError{Resource: "route"}
	}

	bus, err := s.BusRepo.GetByID(route.BusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return out, domain.NotFoundError{Resource: "bus"}
		}
		return out, domain.InternalError{Err: err}
	}

	occupied, err := s.TicketRepo.OccupiedByDate(routeID, utils.FormatDate(from), utils.FormatDate(to))
	if err != nil {
		return out, domain.InternalError{Err: err}
	}

	days := []DayAvailability{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !route.OperatesOn(d) {
			continue
		}
		date := utils.FormatDate(d)
		booked := occupied[date]
		days = append(days, DayAvailability{
			Date:           date,
			TotalSeats:     bus.Capacity,
			BookedSeats:    booked,
			AvailableSeats: bus.Capacity - booked,
		})
	}

	return RouteAvailability{
		RouteID:     route.ID,
		BusID:       bus.ID,
		BusCapacity: bus.Capacity,
		Days:        days,
	}, nil
}

// SeatsLeft reports remaining seats for a single travel date, used by route
// search to filter out full departures.
func (s AvailabilityService) SeatsLeft(route models.Route, travelDate time.Time) (int, error) {
	bus, err := s.BusRepo.GetByID(route.BusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.NotFoundError{Resource: "bus"}
		}
		return 0, domain.InternalError{Err: err}
	}
	taken, err := s.TicketRepo.OccupiedOn(route.ID, utils.FormatDate(travelDate))
	if err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return bus.Capacity - taken, nil
}
