package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KennyKvn001/BusB/internal/domain/models"
	"github.com/KennyKvn001/BusB/internal/http/middleware"
	"github.com/KennyKvn001/BusB/internal/repositories"
	"github.com/KennyKvn001/BusB/internal/services"
)

func ticketService() services.TicketService {
	return services.TicketService{}
}

// POST /api/tickets
// Works for both signed-in riders and guests; guests must supply guest_info.
func CreateTicket(c *gin.Context) {
	var req services.ReserveInput
	if !BindJSONOrError(c, &req) {
		return
	}

	ticket, err := ticketService().Reserve(req, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
}

// GET /api/tickets
func GetTickets(c *gin.Context) {
	page, size := pageParams(c)
	routeID, _ := strconv.ParseInt(strings.TrimSpace(c.Query("route_id")), 10, 64)
	f := repositories.TicketFilter{
		Status:   models.TicketStatus(strings.TrimSpace(c.Query("status"))),
		RouteID:  routeID,
		DateFrom: strings.TrimSpace(c.Query("date_from")),
		DateTo:   strings.TrimSpace(c.Query("date_to")),
		Page:     page,
		PageSize: size,
	}

	tickets, total, err := ticketService().List(f, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "meta": listMeta(page, size, total)})
}

// GET /api/tickets/my-tickets
func GetMyTickets(c *gin.Context) {
	page, size := pageParams(c)
	f := repositories.TicketFilter{
		Status:   models.TicketStatus(strings.TrimSpace(c.Query("status"))),
		Page:     page,
		PageSize: size,
	}

	tickets, total, err := ticketService().ListMine(f, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets, "meta": listMeta(page, size, total)})
}

// GET /api/tickets/:id
func GetTicketByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := ticketService().Get(id, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// GET /api/tickets/reference/:reference?email=
func GetTicketByReference(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "email query parameter is required", nil)
		return
	}

	ticket, err := ticketService().GetByReference(reference, email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// PUT /api/tickets/:id
func UpdateTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.TicketPatch
	if !BindJSONOrError(c, &req) {
		return
	}

	ticket, err := ticketService().Update(id, req, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// DELETE /api/tickets/:id
func CancelTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := ticketService().Cancel(id, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket, "message": "ticket cancelled"})
}

// POST /api/tickets/:id/check-in
func CheckInTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := ticketService().CheckIn(id, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket, "message": "passenger checked in"})
}

// GET /api/tickets/:id/e-ticket returns the printable PDF (inline).
func GetTicketETicketPDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Ownership first; the docs service only renders.
	if _, err := ticketService().Get(id, middleware.GetPrincipal(c)); err != nil {
		RespondDomainError(c, err)
		return
	}

	svc := services.DocsService{RequestID: middleware.GetRequestID(c)}
	pdfBytes, filename, err := svc.GenerateETicket(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
