package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/KennyKvn001/BusB/internal/domain"
)

type BusStatus string

const (
	BusActive      BusStatus = "active"
	BusMaintenance BusStatus = "maintenance"
	BusInactive    BusStatus = "inactive"
)

// Rwanda license plate, e.g. RAA123A (an optional space is tolerated on input).
var platePattern = regexp.MustCompile(`^R[A-Z]{2}\s?[0-9]{3}[A-Z]$`)

type Bus struct {
	ID          int64     `json:"id"`
	OperatorID  int64     `json:"operator_id"`
	PlateNumber string    `json:"plate_number"`
	Model       string    `json:"model"`
	Year        int       `json:"year,omitempty"`
	Capacity    int       `json:"capacity"`
	Features    []string  `json:"features"`
	Status      BusStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizePlate validates and canonicalizes a plate number.
func NormalizePlate(plate string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(plate))
	if !platePattern.MatchString(p) {
		return "", domain.ValidationError{Field: "plate_number", Msg: "invalid Rwanda license plate (e.g. RAA123A)"}
	}
	return strings.ReplaceAll(p, " ", ""), nil
}

func (b Bus) Validate() error {
	if b.Capacity < 1 {
		return domain.ValidationError{Field: "capacity", Msg: "must be at least 1"}
	}
	if _, err := NormalizePlate(b.PlateNumber); err != nil {
		return err
	}
	switch b.Status {
	case BusActive, BusMaintenance, BusInactive:
		return nil
	default:
		return domain.ValidationError{Field: "status", Msg: "must be one of: active, maintenance, inactive"}
	}
}
