package handlers

import (
	"net/http"

	"jobnest/middleware"
	"jobnest/models"
	"jobnest/services/booking"
	"jobnest/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

func actorOrAbort(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Missing authentication", "")
	}
	return actor, ok
}

// respondDomainError maps the domain error taxonomy to HTTP statuses and
// user-facing messages.
func respondDomainError(c *gin.Context, err error) {
	switch booking.ErrorCode(err) {
	case booking.CodeUnauthorized:
		utils.JSONError(c, http.StatusForbidden, "You are not allowed to perform this action", err.Error())
	case booking.CodeInvalidState:
		utils.JSONError(c, http.StatusConflict, "This booking no longer allows that action", err.Error())
	case booking.CodeConflict:
		utils.JSONError(c, http.StatusConflict, "The booking changed while processing, please retry", err.Error())
	case booking.CodeInvariantViolation:
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
	case booking.CodeNotFound:
		utils.JSONError(c, http.StatusNotFound, "Not found", err.Error())
	case booking.CodeChallengeExpired:
		utils.JSONError(c, http.StatusUnprocessableEntity, "The completion code has expired, start completion again for a new code", err.Error())
	case booking.CodeChallengeMismatch:
		utils.JSONError(c, http.StatusUnprocessableEntity, "That completion code is incorrect", err.Error())
	case booking.CodeNoChallenge:
		utils.JSONError(c, http.StatusUnprocessableEntity, "No completion code is outstanding for this booking", err.Error())
	default:
		zap.L().Error("unexpected booking error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Something went wrong", "")
	}
}

// CreateBooking creates a PENDING booking for the calling customer.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}
	created, err := h.Service.CreateBooking(c.Request.Context(), actor, input)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetBooking returns the booking snapshot visible to the caller.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	b, err := h.Service.GetBooking(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GetPermittedActions returns the caller's legal intents, for UI gating.
func (h *BookingHandler) GetPermittedActions(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	actions, err := h.Service.PermittedActions(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"actions": actions})
}

// GetInvoice projects the billing breakdown of a completed booking.
func (h *BookingHandler) GetInvoice(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	invoice, err := h.Service.ProjectInvoice(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *BookingHandler) act(c *gin.Context, action booking.Action) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	var payload booking.Payload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
			return
		}
	}
	b, err := h.Service.Act(c.Request.Context(), actor, c.Param("id"), action, payload)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Accept confirms a pending booking (provider only).
func (h *BookingHandler) Accept(c *gin.Context) { h.act(c, booking.ActionAccept) }

// Reject refuses a pending booking with a reason (provider only).
func (h *BookingHandler) Reject(c *gin.Context) { h.act(c, booking.ActionReject) }

// Cancel cancels a booking (owning customer, or provider while in progress).
func (h *BookingHandler) Cancel(c *gin.Context) { h.act(c, booking.ActionCancel) }

// Start moves a confirmed booking to in progress (provider only).
func (h *BookingHandler) Start(c *gin.Context) { h.act(c, booking.ActionStart) }

// InitiateCompletion issues a completion code to the customer. The code is
// delivered out of band; it is never echoed in this response.
func (h *BookingHandler) InitiateCompletion(c *gin.Context) {
	h.act(c, booking.ActionInitiateCompletion)
}

// VerifyCompletion checks the code the customer handed to the provider and,
// on a match, completes the booking.
func (h *BookingHandler) VerifyCompletion(c *gin.Context) {
	h.act(c, booking.ActionVerifyCompletion)
}
