package handlers

import (
	"net/http"

	"github.com/Ammara9/GymBooking/booking"
	"github.com/Ammara9/GymBooking/middleware"
	"github.com/Ammara9/GymBooking/models"

	"github.com/gin-gonic/gin"
)

type GymClassHandler struct {
	service *booking.Service
}

func NewGymClassHandler(service *booking.Service) *GymClassHandler {
	return &GymClassHandler{service: service}
}

// ListClasses returns the schedule. Authentication is optional; anonymous
// viewers get is_booked=false on every class.
func (h *GymClassHandler) ListClasses(c *gin.Context) {
	viewerID, _ := middleware.CurrentUserID(c)

	classes, err := h.service.ListClasses(c.Request.Context(), viewerID)
	if err != nil {
		respondError(c, err, "Failed to fetch gym classes")
		return
	}

	c.JSON(http.StatusOK, classes)
}

func (h *GymClassHandler) GetClassDetails(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	details, err := h.service.GetClassDetails(c.Request.Context(), classID, userID)
	if err != nil {
		respondError(c, err, "Failed to fetch gym class")
		return
	}

	c.JSON(http.StatusOK, details)
}

func (h *GymClassHandler) CreateClass(c *gin.Context) {
	var req models.CreateGymClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create gym class")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "You have successfully created a gym class",
		"gym_class": class,
	})
}

func (h *GymClassHandler) UpdateClass(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateGymClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	class, err := h.service.UpdateClass(c.Request.Context(), classID, req)
	if err != nil {
		respondError(c, err, "Failed to update gym class")
		return
	}

	c.JSON(http.StatusOK, class)
}

func (h *GymClassHandler) DeleteClass(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteClass(c.Request.Context(), classID); err != nil {
		respondError(c, err, "Failed to delete gym class")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gym class deleted successfully"})
}
