package services

import (
	"database/sql"
	"errors"

	"github.com/KennyKvn001/BusB/internal/domain"
	"github.com/KennyKvn001/BusB/internal/domain/models"
	"github.com/KennyKvn001/BusB/internal/repositories"
	"github.com/KennyKvn001/BusB/internal/utils"
)

// Principal is the acting identity resolved by the auth middleware. A nil
// *Principal means an anonymous guest. Operator is populated only for users
// with the operator role that have a profile.
type Principal struct {
	UserID   int64
	Role     models.UserRole
	Operator *models.Operator
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

func (p *Principal) IsOperator() bool {
	return p != nil && p.Role == models.RoleOperator
}

// Decision says on what grounds access was granted.
type Decision string

const (
	AllowAsAdmin Decision = "admin"
	AllowAsOwner Decision = "owner"
	AllowAsSelf  Decision = "self"
)

// AccessService walks the ownership chain ticket → route → bus → operator →
// user and answers whether a principal may act on a target entity. Every
// mutating or ownership-sensitive read goes through here.
type AccessService struct {
	OperatorRepo repositories.OperatorRepo
	BusRepo      repositories.BusRepo
	RouteRepo    repositories.RouteRepo
	UserRepo     repositories.UserRepo
}

// approvedOperator returns the principal's operator profile, rejecting
// principals that are not approved operators.
func (s AccessService) approvedOperator(p *Principal) (models.Operator, error) {
	if p == nil || p.Role != models.RoleOperator {
		return models.Operator{}, domain.AuthorizationError{Msg: "operator privileges required"}
	}
	if p.Operator == nil {
		return models.Operator{}, domain.NotFoundError{Resource: "operator profile"}
	}
	if !p.Operator.Approved() {
		return models.Operator{}, domain.AuthorizationError{Msg: "operator account not approved"}
	}
	return *p.Operator, nil
}

// CanAccessBus resolves bus → operator.
func (s AccessService) CanAccessBus(p *Principal, bus models.Bus) (Decision, error) {
	if p.IsAdmin() {
		return AllowAsAdmin, nil
	}
	op, err := s.approvedOperator(p)
	if err != nil {
		return "", err
	}
	if bus.OperatorID != op.ID {
		return "", domain.AuthorizationError{Msg: "you can only access your own buses"}
	}
	return AllowAsOwner, nil
}

// CanAccessRoute resolves route → bus → operator.
func (s AccessService) CanAccessRoute(p *Principal, route models.Route) (Decision, error) {
	if p.IsAdmin() {
		return AllowAsAdmin, nil
	}
	op, err := s.approvedOperator(p)
	if err != nil {
		return "", err
	}
	bus, err := s.BusRepo.GetByID(route.BusID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NotFoundError{Resource: "bus"}
		}
		return "", domain.InternalError{Err: err}
	}
	if bus.OperatorID != op.ID {
		return "", domain.AuthorizationError{Msg: "you can only access your own routes"}
	}
	return AllowAsOwner, nil
}

// CanAccessTicket resolves rider self-access directly, and operator access
// through ticket → route → bus → operator.
func (s AccessService) CanAccessTicket(p *Principal, ticket models.Ticket) (Decision, error) {
	if p.IsAdmin() {
		return AllowAsAdmin, nil
	}
	if p == nil {
		return "", domain.AuthorizationError{Msg: "authentication required"}
	}
	if p.Role == models.RoleUser {
		if ticket.UserID == nil || *ticket.UserID != p.UserID {
			return "", domain.AuthorizationError{Msg: "you can only access your own tickets"}
		}
		return AllowAsSelf, nil
	}

	route, err := s.RouteRepo.GetByID(ticket.RouteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NotFoundError{Resource: "route"}
		}
		return "", domain.InternalError{Err: err}
	}
	return s.CanAccessRoute(p, route)
}

// RequireCheckInAccess limits check-in to admins and the operator owning the
// ticket's route. Riders cannot check in their own tickets.
func (s AccessService) RequireCheckInAccess(p *Principal, ticket models.Ticket) (Decision, error) {
	if p.IsAdmin() {
		return AllowAsAdmin, nil
	}
	if !p.IsOperator() {
		return "", domain.AuthorizationError{Msg: "operator or admin privileges required"}
	}
	route, err := s.RouteRepo.GetByID(ticket.RouteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.NotFoundError{Resource: "route"}
		}
		return "", domain.InternalError{Err: err}
	}
	dec, err := s.CanAccessRoute(p, route)
	if err != nil {
		var authz domain.AuthorizationError
		if errors.As(err, &authz) && p.Operator != nil && p.Operator.Approved() {
			return "", domain.AuthorizationError{Msg: "you can only check in passengers for your own routes"}
		}
		return "", err
	}
	return dec, nil
}

// OwnRouteIDs answers the "own subset" question for ticket listings: nil for
// admins (no restriction), the operator's route ids otherwise.
func (s AccessService) OwnRouteIDs(p *Principal) ([]int64, error) {
	if p.IsAdmin() {
		return nil, nil
	}
	op, err := s.approvedOperator(p)
	if err != nil {
		return nil, err
	}
	ids, err := s.RouteRepo.ListIDsByOperator(op.ID)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return ids, nil
}

// VerifyReferenceEmail implements the guest access rule: email equality
// substitutes for identity-based ownership on reference lookups.
func (s AccessService) VerifyReferenceEmail(ticket models.Ticket, email string) error {
	email = utils.NormalizeEmail(email)
	if ticket.UserID != nil {
		user, err := s.UserRepo.GetByID(*ticket.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.AuthorizationError{Msg: "email does not match booking reference"}
			}
			return domain.InternalError{Err: err}
		}
		if utils.NormalizeEmail(user.Email) != email {
			return domain.AuthorizationError{Msg: "email does not match booking reference"}
		}
		return nil
	}
	if ticket.Guest == nil || utils.NormalizeEmail(ticket.Guest.Email) != email {
		return domain.AuthorizationError{Msg: "email does not match booking reference"}
	}
	return nil
}
