package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// BindJSONOrError ensures the body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		respondError(c, http.StatusBadRequest, "validation_error", "request body is required", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid request payload", err.Error())
		return false
	}
	return true
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// pageParams reads ?page= and ?page_size= with zero meaning repo defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	size, _ := strconv.Atoi(strings.TrimSpace(c.Query("page_size")))
	return page, size
}

// listMeta is the pagination envelope attached to list responses.
func listMeta(page, size, total int) gin.H {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	pages := (total + size - 1) / size
	return gin.H{
		"page":        page,
		"page_size":   size,
		"total":       total,
		"total_pages": pages,
	}
}
