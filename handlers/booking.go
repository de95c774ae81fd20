package handlers

import (
	"log"
	"net/http"

	"github.com/Ammara9/GymBooking/booking"
	"github.com/Ammara9/GymBooking/metrics"
	"github.com/Ammara9/GymBooking/middleware"
	"github.com/Ammara9/GymBooking/models"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service *booking.Service
	metrics *metrics.Metrics
}

func NewBookingHandler(service *booking.Service, m *metrics.Metrics) *BookingHandler {
	return &BookingHandler{service: service, metrics: m}
}

func (h *BookingHandler) ToggleBooking(c *gin.Context) {
	classID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	status, err := h.service.ToggleBooking(c.Request.Context(), userID, classID)
	if err != nil {
		h.metrics.RecordToggle("error")
		respondError(c, err, "Failed to update booking")
		return
	}
	h.metrics.RecordToggle(string(status))

	log.Printf("[%s] User %d %s gym class %d", middleware.RequestIDFrom(c), userID, status, classID)
	c.JSON(http.StatusOK, models.ToggleBookingResponse{
		GymClassID: classID,
		Status:     status,
		IsBooked:   status == models.Booked,
		Message:    status.Message(),
	})
}

func (h *BookingHandler) GetUpcoming(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	classes, err := h.service.UpcomingBooked(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch booked classes")
		return
	}

	c.JSON(http.StatusOK, classes)
}

func (h *BookingHandler) GetHistory(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	classes, err := h.service.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to fetch booking history")
		return
	}

	c.JSON(http.StatusOK, classes)
}
