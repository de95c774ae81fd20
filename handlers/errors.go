package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/Ammara9/GymBooking/apperrors"
	"github.com/Ammara9/GymBooking/middleware"

	"github.com/gin-gonic/gin"
)

// respondError writes err in the {"error": ...} shape. Errors outside the
// taxonomy are logged and answered with internalMsg only.
func respondError(c *gin.Context, err error, internalMsg string) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] %s: %v", middleware.RequestIDFrom(c), internalMsg, err)
		c.JSON(status, gin.H{"error": internalMsg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
