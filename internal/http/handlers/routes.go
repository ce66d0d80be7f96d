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
	"github.com/KennyKvn001/BusB/internal/utils"
)

func routeService() services.RouteService {
	return services.RouteService{}
}

// GET /api/routes
func GetRoutes(c *gin.Context) {
	page, size := pageParams(c)
	busID, _ := strconv.ParseInt(strings.TrimSpace(c.Query("bus_id")), 10, 64)
	f := repositories.RouteFilter{
		Status:        models.RouteStatus(strings.TrimSpace(c.Query("status"))),
		BusID:         busID,
		StartLocation: strings.TrimSpace(c.Query("start_location")),
		EndLocation:   strings.TrimSpace(c.Query("end_location")),
		Page:          page,
		PageSize:      size,
	}

	routes, total, err := routeService().List(f, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes, "meta": listMeta(page, size, total)})
}

// GET /api/routes/search?start_location=&end_location=&travel_date=
func SearchRoutes(c *gin.Context) {
	matches, err := routeService().Search(
		c.Query("start_location"),
		c.Query("end_location"),
		strings.TrimSpace(c.Query("travel_date")),
	)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": matches, "count": len(matches)})
}

// GET /api/routes/popular
func GetPopularRoutes(c *gin.Context) {
	routes, err := routeService().Popular()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// GET /api/routes/:id
func GetRouteByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	route, err := routeService().Get(id, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// GET /api/routes/:id/availability?date_from=&date_to=
// Defaults to the coming week when no range is given.
func GetRouteAvailability(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	dateFrom := strings.TrimSpace(c.Query("date_from"))
	dateTo := strings.TrimSpace(c.Query("date_to"))
	if dateFrom == "" {
		dateFrom = utils.FormatDate(utils.DateOnly(utils.NowUTC()))
	}
	if dateTo == "" {
		from, err := utils.ParseDate(dateFrom)
		if err == nil {
			dateTo = utils.FormatDate(from.AddDate(0, 0, 6))
		}
	}
	svc := services.AvailabilityService{}
	availability, err := svc.ForRoute(id, dateFrom, dateTo)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}
