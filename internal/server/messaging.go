package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	messagingdomain "github.com/cobrato/cobrato/internal/messaging/domain"
)

func (s *Server) UpsertMessagingSetting(c *gin.Context) {
	var req messagingdomain.UpsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.messagingSvc.UpsertSetting(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListMessagingSettings(c *gin.Context) {
	resp, err := s.messagingSvc.ListSettings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteMessagingSetting(c *gin.Context) {
	ch, err := messagingdomain.ParseChannel(strings.TrimSpace(c.Param("channel")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.messagingSvc.DeleteSetting(c.Request.Context(), ch); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) SendTestMessage(c *gin.Context) {
	var req messagingdomain.TestMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.messagingSvc.SendTest(c.Request.Context(), req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"sent": true}})
}

func (s *Server) ListMessageHistory(c *gin.Context) {
	var query struct {
		InvoiceID  string `form:"invoice_id"`
		CustomerID string `form:"customer_id"`
		Type       string `form:"type"`
		Since      string `form:"since"`
		Limit      int    `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := messagingdomain.HistoryFilter{Limit: query.Limit}

	if raw := strings.TrimSpace(query.InvoiceID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("invoice_id", "invalid_invoice_id", "invalid invoice_id"))
			return
		}
		filter.InvoiceID = &id
	}

	if raw := strings.TrimSpace(query.CustomerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer_id"))
			return
		}
		filter.CustomerID = &id
	}

	if raw := strings.TrimSpace(query.Type); raw != "" {
		mt := messagingdomain.MessageType(raw)
		switch mt {
		case messagingdomain.MessageTypeReminder,
			messagingdomain.MessageTypeDueDate,
			messagingdomain.MessageTypeOverdue,
			messagingdomain.MessageTypeConfirmation:
			filter.Type = &mt
		default:
			AbortWithError(c, newValidationError("type", "invalid_type", "invalid type"))
			return
		}
	}

	since, err := parseOptionalTime(query.Since, false)
	if err != nil {
		AbortWithError(c, newValidationError("since", "invalid_since", "invalid since"))
		return
	}
	filter.Since = since

	resp, err := s.messagingSvc.ListHistory(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isMessagingValidationError(err error) bool {
	switch err {
	case messagingdomain.ErrInvalidOrganization,
		messagingdomain.ErrUnknownChannel:
		return true
	default:
		return false
	}
}
