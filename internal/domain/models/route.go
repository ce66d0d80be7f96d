package models

import (
	"time"

	"github.com/KennyKvn001/BusB/internal/domain"
	"github.com/KennyKvn001/BusB/internal/utils"
)

type RouteStatus string

const (
	RouteActive   RouteStatus = "active"
	RouteInactive RouteStatus = "inactive"
	RouteSeasonal RouteStatus = "seasonal"
)

var weekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

func (g GeoPoint) Validate() error {
	if g.Longitude < -180 || g.Longitude > 180 {
		return domain.ValidationError{Field: "longitude", Msg: "must be between -180 and 180"}
	}
	if g.Latitude < -90 || g.Latitude > 90 {
		return domain.ValidationError{Field: "latitude", Msg: "must be between -90 and 90"}
	}
	return nil
}

type LocationPoint struct {
	Name        string   `json:"name"`
	Coordinates GeoPoint `json:"coordinates"`
}

// RouteStop is an intermediate stop with optional HH:MM arrival/departure.
type RouteStop struct {
	LocationPoint
	ArrivalTime   string `json:"arrival_time,omitempty"`
	DepartureTime string `json:"departure_time,omitempty"`
}

type Route struct {
	ID            int64         `json:"id"`
	BusID         int64         `json:"bus_id"`
	StartLocation LocationPoint `json:"start_location"`
	EndLocation   LocationPoint `json:"end_location"`
	Stops         []RouteStop   `json:"stops"`
	Distance      float64       `json:"distance"` // kilometers
	Duration      int           `json:"duration"` // minutes
	Price         float64       `json:"price"`    // Rwandan Francs
	ScheduleDays  []string      `json:"schedule_days"`
	DepartureTime string        `json:"departure_time"` // HH:MM
	ArrivalTime   string        `json:"arrival_time"`   // HH:MM
	IsPopular     bool          `json:"is_popular"`
	Status        RouteStatus   `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// OperatesOn reports whether the route runs on the given calendar date.
func (r Route) OperatesOn(date time.Time) bool {
	day := utils.WeekdayName(date)
	for _, d := range r.ScheduleDays {
		if d == day {
			return true
		}
	}
	return false
}

func (r Route) Active() bool {
	return r.Status == RouteActive
}

// ValidScheduleDays checks every entry is an English weekday name.
func ValidScheduleDays(days []string) error {
	if len(days) == 0 {
		return domain.ValidationError{Field: "schedule_days", Msg: "at least one day required"}
	}
	for _, d := range days {
		ok := false
		for _, w := range weekdayNames {
			if d == w {
				ok = true
				break
			}
		}
		if !ok {
			return domain.ValidationError{Field: "schedule_days", Msg: "invalid day: " + d}
		}
	}
	return nil
}

func (r Route) Validate() error {
	if r.Distance <= 0 {
		return domain.ValidationError{Field: "distance", Msg: "must be greater than 0"}
	}
	if r.Duration <= 0 {
		return domain.ValidationError{Field: "duration", Msg: "must be greater than 0"}
	}
	if r.Price <= 0 {
		return domain.ValidationError{Field: "price", Msg: "must be greater than 0"}
	}
	if err := ValidScheduleDays(r.ScheduleDays); err != nil {
		return err
	}
	if !utils.ValidClockTime(r.DepartureTime) || !utils.ValidClockTime(r.ArrivalTime) {
		return domain.ValidationError{Field: "departure_time", Msg: "times must be in HH:MM format"}
	}
	if err := r.StartLocation.Coordinates.Validate(); err != nil {
		return err
	}
	if err := r.EndLocation.Coordinates.Validate(); err != nil {
		return err
	}
	for _, s := range r.Stops {
		if err := s.Coordinates.Validate(); err != nil {
			return err
		}
		if s.ArrivalTime != "" && !utils.ValidClockTime(s.ArrivalTime) {
			return domain.ValidationError{Field: "stops", Msg: "stop times must be in HH:MM format"}
		}
		if s.DepartureTime != "" && !utils.ValidClockTime(s.DepartureTime) {
			return domain.ValidationError{Field: "stops", Msg: "stop times must be in HH:MM format"}
		}
	}
	switch r.Status {
	case RouteActive, RouteInactive, RouteSeasonal:
		return nil
	default:
		return domain.ValidationError{Field: "status", Msg: "must be one of: active, inactive, seasonal"}
	}
}
