package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	organizationdomain "github.com/cobrato/cobrato/internal/organization/domain"
)

type createOrganizationRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Gateway string `json:"gateway"`
}

type updateSubscriptionRequest struct {
	Status  string     `json:"status"`
	DueDate *time.Time `json:"due_date"`
	Amount  *int64     `json:"amount"`
	Blocked *bool      `json:"blocked"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	var req createOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.Create(c.Request.Context(), organizationdomain.CreateOrganizationRequest{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Gateway: strings.TrimSpace(req.Gateway),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrganizations(c *gin.Context) {
	var query struct {
		Status  string `form:"status"`
		Blocked string `form:"blocked"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	blocked, err := parseOptionalBool(query.Blocked)
	if err != nil {
		AbortWithError(c, newValidationError("blocked", "invalid_blocked", "invalid blocked"))
		return
	}

	resp, err := s.organizationSvc.List(c.Request.Context(), organizationdomain.ListFilter{
		Status:  strings.TrimSpace(query.Status),
		Blocked: blocked,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrganizationByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.organizationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateOrganizationSubscription(c *gin.Context) {
	var req updateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.organizationSvc.UpdateSubscription(c.Request.Context(), organizationdomain.UpdateSubscriptionRequest{
		ID:      strings.TrimSpace(c.Param("id")),
		Status:  strings.TrimSpace(req.Status),
		DueDate: req.DueDate,
		Amount:  req.Amount,
		Blocked: req.Blocked,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateOrganizationPaymentLink(c *gin.Context) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	link, err := s.paymentSvc.LinkForOrganization(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"payment_link": link}})
}

func isOrganizationValidationError(err error) bool {
	switch err {
	case organizationdomain.ErrInvalidName,
		organizationdomain.ErrInvalidEmail,
		organizationdomain.ErrInvalidID,
		organizationdomain.ErrInvalidStatus,
		organizationdomain.ErrInvalidGateway:
		return true
	default:
		return false
	}
}
