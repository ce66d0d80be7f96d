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

const popularRoutesLimit = 6

// RouteService serves route reads. Listing and detail access depend on who
// asks: the public and riders see active routes only, operators additionally
// see their own, admins see everything.
type RouteService struct {
	RouteRepo    repositories.RouteRepo
	BusRepo      repositories.BusRepo
	Access       AccessService
	Availability AvailabilityService

	Now func() time.Time
}

func (s RouteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s RouteService) List(f repositories.RouteFilter, p *Principal) ([]models.Route, int, error) {
	switch {
	case p.IsAdmin():
		// filters pass through untouched
	case p.IsOperator():
		op, err := s.Access.approvedOperator(p)
		if err != nil {
			return nil, 0, err
		}
		f.OperatorID = op.ID
	default:
		f.Status = models.RouteActive
		f.OperatorID = 0
	}
	routes, total, err := s.RouteRepo.List(f)
	if err != nil {
		return nil, 0, domain.InternalError{Err: err}
	}
	return routes, total, nil
}

func (s RouteService) Get(routeID int64, p *Principal) (models.Route, error) {
	route, err := s.RouteRepo.GetByID(routeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Route{}, domain.NotFoundError{Resource: "route"}
		}
		return models.Route{}, domain.InternalError{Err: err}
	}
	if route.Active() || p.IsAdmin() {
		return route, nil
	}
	// Non-active routes are visible only to their owning operator.
	if _, err := s.Access.CanAccessRoute(p, route); err != nil {
		return models.Route{}, domain.NotFoundError{Resource: "route"}
	}
	return route, nil
}

// RouteMatch is a search hit with remaining seats for the requested date.
type RouteMatch struct {
	Route          models.Route `json:"route"`
	TravelDate     string       `json:"travel_date,omitempty"`
	AvailableSeats *int         `json:"available_seats,omitempty"`
}

// Search finds active routes between two locations. With a travel date it
// keeps only routes scheduled for that weekday and attaches remaining seats,
// dropping fully booked departures.
func (s RouteService) Search(startLocation, endLocation, travelDate string) ([]RouteMatch, error) {
	startLocation = utils.NormalizeSpace(startLocation)
	endLocation = utils.NormalizeSpace(endLocation)
	if startLocation == "" || endLocation == "" {
		return nil, domain.ValidationError{Field: "start_location", Msg: "start and end locations are required"}
	}

	routes, err := s.RouteRepo.SearchActive(startLocation, endLocation)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}

	if travelDate == "" {
		matches := make([]RouteMatch, 0, len(routes))
		for _, route := range routes {
			matches = append(matches, RouteMatch{Route: route})
		}
		return matches, nil
	}

	date, err := utils.ParseDate(travelDate)
	if err != nil {
		return nil, domain.ValidationError{Field: "travel_date", Msg: "must be a date in YYYY-MM-DD form"}
	}
	if date.Before(utils.DateOnly(s.now())) {
		return nil, domain.BusinessError{Msg: "cannot search for past dates"}
	}

	matches := make([]RouteMatch, 0, len(routes))
	for _, route := range routes {
		if !route.OperatesOn(date) {
			continue
		}
		left, err := s.Availability.SeatsLeft(route, date)
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if left <= 0 {
			continue
		}
		seats := left
		matches = append(matches, RouteMatch{
			Route:          route,
			TravelDate:     utils.FormatDate(date),
			AvailableSeats: &seats,
		})
	}
	return matches, nil
}

func (s RouteService) Popular() ([]models.Route, error) {
	routes, err := s.RouteRepo.ListPopular(popularRoutesLimit)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return routes, nil
}
