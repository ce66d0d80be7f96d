package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KennyKvn001/BusB/internal/domain/models"
	"github.com/KennyKvn001/BusB/internal/http/middleware"
	"github.com/KennyKvn001/BusB/internal/repositories"
	"github.com/KennyKvn001/BusB/internal/services"
)

func busService() services.BusService {
	return services.BusService{}
}

// GET /api/buses
func GetBuses(c *gin.Context) {
	page, size := pageParams(c)
	f := repositories.BusFilter{
		Status:   models.BusStatus(strings.TrimSpace(c.Query("status"))),
		Page:     page,
		PageSize: size,
	}

	buses, total, err := busService().List(f, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buses": buses, "meta": listMeta(page, size, total)})
}

// GET /api/buses/:id
func GetBusByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	bus, err := busService().Get(id, middleware.GetPrincipal(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}
