package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ruledomain "github.com/cobrato/cobrato/internal/collectionrule/domain"
)

type createRuleRequest struct {
	Name                 string `json:"name"`
	ReminderDaysBefore   int    `json:"reminder_days_before"`
	SendOnDueDate        bool   `json:"send_on_due_date"`
	OverdueDaysAfter     []int  `json:"overdue_days_after"`
	ReminderTemplate     string `json:"reminder_template"`
	DueDateTemplate      string `json:"due_date_template"`
	OverdueTemplate      string `json:"overdue_template"`
	ConfirmationTemplate string `json:"confirmation_template"`
}

type updateRuleRequest struct {
	Name                 *string `json:"name"`
	IsActive             *bool   `json:"is_active"`
	ReminderDaysBefore   *int    `json:"reminder_days_before"`
	SendOnDueDate        *bool   `json:"send_on_due_date"`
	OverdueDaysAfter     []int   `json:"overdue_days_after"`
	ReminderTemplate     *string `json:"reminder_template"`
	DueDateTemplate      *string `json:"due_date_template"`
	OverdueTemplate      *string `json:"overdue_template"`
	ConfirmationTemplate *string `json:"confirmation_template"`
}

func (s *Server) CreateCollectionRule(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ruleSvc.Create(c.Request.Context(), ruledomain.CreateRuleRequest{
		Name:                 strings.TrimSpace(req.Name),
		ReminderDaysBefore:   req.ReminderDaysBefore,
		SendOnDueDate:        req.SendOnDueDate,
		OverdueDaysAfter:     req.OverdueDaysAfter,
		ReminderTemplate:     req.ReminderTemplate,
		DueDateTemplate:      req.DueDateTemplate,
		OverdueTemplate:      req.OverdueTemplate,
		ConfirmationTemplate: req.ConfirmationTemplate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCollectionRules(c *gin.Context) {
	resp, err := s.ruleSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCollectionRuleByID(c *gin.Context) {
	resp, err := s.ruleSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateCollectionRule(c *gin.Context) {
	var req updateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ruleSvc.Update(c.Request.Context(), ruledomain.UpdateRuleRequest{
		ID:                   strings.TrimSpace(c.Param("id")),
		Name:                 req.Name,
		IsActive:             req.IsActive,
		ReminderDaysBefore:   req.ReminderDaysBefore,
		SendOnDueDate:        req.SendOnDueDate,
		OverdueDaysAfter:     req.OverdueDaysAfter,
		ReminderTemplate:     req.ReminderTemplate,
		DueDateTemplate:      req.DueDateTemplate,
		OverdueTemplate:      req.OverdueTemplate,
		ConfirmationTemplate: req.ConfirmationTemplate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCollectionRule(c *gin.Context) {
	if err := s.ruleSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) RestoreCollectionRule(c *gin.Context) {
	if err := s.ruleSvc.Restore(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"restored": true}})
}

func (s *Server) ListTrashedCollectionRules(c *gin.Context) {
	resp, err := s.ruleSvc.ListTrashed(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isCollectionRuleValidationError(err error) bool {
	switch err {
	case ruledomain.ErrInvalidOrganization,
		ruledomain.ErrInvalidName,
		ruledomain.ErrInvalidReminderDays,
		ruledomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
