package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hostel/internal/domain"
	"hostel/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type Handler struct {
	service      *Service
	availability *Availability
}

func NewHandler(service *Service, availability *Availability) *Handler {
	return &Handler{service: service, availability: availability}
}

// RegisterRoutes mounts the guest-facing endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/reference/:reference", h.GetByReference)
	rg.GET("/bookings/code/:code", h.GetByAccessCode)
	rg.GET("/availability/rooms/:id", h.CheckRoomAvailability)
	rg.GET("/availability/beds", h.CheckBedsAvailability)
}

// RegisterAdminRoutes mounts the back-office endpoints; the caller wraps
// them in the auth middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.GET("/bookings/check-ins", h.CheckIns)
	rg.GET("/bookings/check-outs", h.CheckOuts)
	rg.PATCH("/bookings/:id/status", h.UpdateStatus)
	rg.PATCH("/bookings/:id/payment", h.UpdatePaymentStatus)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)
	rg.DELETE("/bookings/:id", h.DeleteBooking)
}

type createBookingRequest struct {
	GuestName    string  `json:"guest_name" binding:"required"`
	GuestEmail   string  `json:"guest_email" binding:"required,email"`
	GuestPhone   string  `json:"guest_phone" binding:"required"`
	CheckInDate  string  `json:"check_in_date" binding:"required"`
	CheckOutDate string  `json:"check_out_date" binding:"required"`
	BedIDs       []int64 `json:"bed_ids" binding:"required"`
	ServiceIDs   []int64 `json:"service_ids"`
	PackID       *int64  `json:"pack_id"`
	Notes        string  `json:"notes"`
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	checkIn, err1 := time.Parse(dateLayout, req.CheckInDate)
	checkOut, err2 := time.Parse(dateLayout, req.CheckOutDate)
	if err1 != nil || err2 != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Dates must use the YYYY-MM-DD format")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), CreateBookingInput{
		GuestName:    req.GuestName,
		GuestEmail:   req.GuestEmail,
		GuestPhone:   req.GuestPhone,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		BedIDs:       req.BedIDs,
		ServiceIDs:   req.ServiceIDs,
		PackID:       req.PackID,
		Notes:        req.Notes,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) CheckRoomAvailability(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid room id")
		return
	}
	checkIn, checkOut, ok := h.parseWindow(c)
	if !ok {
		return
	}

	report, err := h.availability.CheckRoomAvailability(c.Request.Context(), roomID, checkIn, checkOut)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"availability": report})
}

func (h *Handler) CheckBedsAvailability(c *gin.Context) {
	raw := strings.Split(c.Query("bed_ids"), ",")
	bedIDs := make([]int64, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid bed_ids")
			return
		}
		bedIDs = append(bedIDs, id)
	}
	checkIn, checkOut, ok := h.parseWindow(c)
	if !ok {
		return
	}

	available, err := h.availability.AreBedsAvailable(c.Request.Context(), bedIDs, checkIn, checkOut)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"available": available})
}

func (h *Handler) GetByReference(c *gin.Context) {
	b, err := h.service.GetBookingByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) GetByAccessCode(c *gin.Context) {
	b, err := h.service.GetBookingByAccessCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListBookings(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CheckIns(c *gin.Context) {
	h.listForDate(c, h.service.CheckInsForDate)
}

func (h *Handler) CheckOuts(c *gin.Context) {
	h.listForDate(c, h.service.CheckOutsForDate)
}

func (h *Handler) listForDate(c *gin.Context, fetch func(ctx context.Context, date time.Time) ([]domain.Booking, error)) {
	dateStr := c.DefaultQuery("date", time.Now().UTC().Format(dateLayout))
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date must use the YYYY-MM-DD format")
		return
	}
	bookings, err := fetch(c.Request.Context(), date)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	b, err := h.service.UpdateStatus(c.Request.Context(), id, domain.BookingStatus(req.Status))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	b, err := h.service.UpdatePaymentStatus(c.Request.Context(), id, domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.service.CancelBooking(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBooking(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return 0, false
	}
	return id, true
}

func (h *Handler) parseWindow(c *gin.Context) (time.Time, time.Time, bool) {
	checkIn, err1 := time.Parse(dateLayout, c.Query("check_in"))
	checkOut, err2 := time.Parse(dateLayout, c.Query("check_out"))
	if err1 != nil || err2 != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "check_in and check_out must use the YYYY-MM-DD format")
		return time.Time{}, time.Time{}, false
	}
	return checkIn, checkOut, true
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case IsConflict(err):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", err.Error())
	case errors.Is(err, ErrConcurrentUpdate):
		response.Error(c, http.StatusConflict, "CONCURRENT_UPDATE", err.Error())
	case errors.Is(err, ErrIllegalTransition):
		response.Error(c, http.StatusUnprocessableEntity, "ILLEGAL_TRANSITION", err.Error())
	case errors.Is(err, ErrIllegalState):
		response.Error(c, http.StatusUnprocessableEntity, "ILLEGAL_STATE", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}
