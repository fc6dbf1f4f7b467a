package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openedu-labs/lms-service/internal/models"
	"github.com/openedu-labs/lms-service/internal/services"
	"github.com/openedu-labs/lms-service/internal/utils"
	"github.com/openedu-labs/lms-service/internal/validator"
)

type MessageHandler struct {
	BaseHandler
	messageService services.MessageService
	authorizer     services.Authorizer
	validator      *validator.Validator
}

func NewMessageHandler(
	messageService services.MessageService,
	authorizer services.Authorizer,
	validator *validator.Validator,
	logger utils.Logger,
) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    NewBaseHandler(logger),
		messageService: messageService,
		authorizer:     authorizer,
		validator:      validator,
	}
}

// SendMessage sends a direct message to a single recipient
// @Summary Send message
// @Tags messages
// @Accept json
// @Produce json
// @Param message body services.SendMessageRequest true "Message payload"
// @Success 201 {object} models.Message
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c, req.SenderID), models.ActionMessageSend)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// BroadcastMessage fans a message out to every user holding a role
// @Summary Broadcast message
// @Tags messages
// @Accept json
// @Produce json
// @Param message body services.BroadcastRequest true "Broadcast payload"
// @Success 201 {object} services.BroadcastResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /messages/broadcast [post]
func (h *MessageHandler) BroadcastMessage(c *gin.Context) {
	var req services.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	decision := h.authorizer.Authorize(c.Request.Context(), h.authContext(c, req.SenderID), models.ActionMessageBroadcast)
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	h.LogRequest(c, "Broadcasting message", "audience", req.Audience, "sender_id", decision.User.ID)

	result, err := h.messageService.Broadcast(c.Request.Context(), &req, decision.User)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Inbox lists the actor's received messages
// @Summary List inbox
// @Tags messages
// @Produce json
// @Param unread query bool false "Only unread messages"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.InboxResponse
// @Failure 401 {object} ErrorResponse
// @Router /messages [get]
func (h *MessageHandler) Inbox(c *gin.Context) {
	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	inbox, err := h.messageService.Inbox(c.Request.Context(), decision.User, unreadOnly, page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, inbox)
}

// MarkRead marks one of the actor's messages as read
// @Summary Mark message read
// @Tags messages
// @Produce json
// @Param id path uint true "Message ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	decision := h.authorizer.Authenticate(c.Request.Context(), h.authContext(c))
	if !decision.Ok {
		h.denyDecision(c, decision)
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), id, decision.User); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
