package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cobrato/cobrato/internal/organization/domain"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("organization.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrganizationRequest) (domain.Organization, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Organization{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Organization{}, domain.ErrInvalidEmail
	}

	gateway, err := parseGateway(req.Gateway)
	if err != nil {
		return domain.Organization{}, err
	}

	now := time.Now().UTC()
	org := domain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Status:    domain.SubscriptionTrial,
		Gateway:   gateway,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &org); err != nil {
		return domain.Organization{}, err
	}

	return org, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Organization, error) {
	orgID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Organization{}, domain.ErrInvalidID
	}

	org, err := s.repo.FindByID(ctx, s.db, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Organization{}, domain.ErrNotFound
		}
		return domain.Organization{}, err
	}
	return *org, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Organization, error) {
	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	orgs := make([]domain.Organization, 0, len(items))
	for _, item := range items {
		orgs = append(orgs, *item)
	}
	return orgs, nil
}

func (s *Service) UpdateSubscription(ctx context.Context, req domain.UpdateSubscriptionRequest) (domain.Organization, error) {
	orgID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Organization{}, domain.ErrInvalidID
	}

	org, err := s.repo.FindByID(ctx, s.db, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Organization{}, domain.ErrNotFound
		}
		return domain.Organization{}, err
	}

	if req.Status != "" {
		status, err := parseStatus(req.Status)
		if err != nil {
			return domain.Organization{}, err
		}
		org.Status = status
	}
	if req.DueDate != nil {
		due := req.DueDate.UTC()
		org.DueDate = &due
	}
	if req.Amount != nil {
		org.Amount = *req.Amount
	}
	if req.Blocked != nil {
		org.Blocked = *req.Blocked
	}
	org.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, org); err != nil {
		return domain.Organization{}, err
	}
	return *org, nil
}

func parseStatus(raw string) (domain.SubscriptionStatus, error) {
	switch domain.SubscriptionStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.SubscriptionActive:
		return domain.SubscriptionActive, nil
	case domain.SubscriptionTrial:
		return domain.SubscriptionTrial, nil
	case domain.SubscriptionOverdue:
		return domain.SubscriptionOverdue, nil
	case domain.SubscriptionCanceled:
		return domain.SubscriptionCanceled, nil
	case domain.SubscriptionPermanent:
		return domain.SubscriptionPermanent, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}

func parseGateway(raw string) (domain.Gateway, error) {
	switch domain.Gateway(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.GatewayMercadoPago:
		return domain.GatewayMercadoPago, nil
	case domain.GatewayAsaas:
		return domain.GatewayAsaas, nil
	case "":
		return domain.GatewayMercadoPago, nil
	default:
		return "", domain.ErrInvalidGateway
	}
}
