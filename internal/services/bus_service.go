package services

import (
	"database/sql"
	"errors"

	"github.com/KennyKvn001/BusB/internal/domain"
	"github.com/KennyKvn001/BusB/internal/domain/models"
	"github.com/KennyKvn001/BusB/internal/repositories"
)

// BusService serves fleet reads, scoped like routes: public sees active
// buses, operators their own, admins all.
type BusService struct {
	BusRepo repositories.BusRepo
	Access  AccessService
}

func (s BusService) List(f repositories.BusFilter, p *Principal) ([]models.Bus, int, error) {
	switch {
	case p.IsAdmin():
	case p.IsOperator():
		op, err := s.Access.approvedOperator(p)
		if err != nil {
			return nil, 0, err
		}
		f.OperatorID = op.ID
	default:
		f.Status = models.BusActive
		f.OperatorID = 0
	}
	buses, total, err := s.BusRepo.List(f)
	if err != nil {
		return nil, 0, domain.InternalError{Err: err}
	}
	return buses, total, nil
}

func (s BusService) Get(busID int64, p *Principal) (models.Bus, error) {
	bus, err := s.BusRepo.GetByID(busID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bus{}, domain.NotFoundError{Resource: "bus"}
		}
		return models.Bus{}, domain.InternalError{Err: err}
	}
	if bus.Status == models.BusActive || p.IsAdmin() {
		return bus, nil
	}
	if _, err := s.Access.CanAccessBus(p, bus); err != nil {
		return models.Bus{}, domain.NotFoundError{Resource: "bus"}
	}
	return bus, nil
}
