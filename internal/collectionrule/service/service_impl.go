package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cobrato/cobrato/internal/collectionrule/domain"
	"github.com/cobrato/cobrato/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
		log:   p.Log.Named("collectionrule.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRuleRequest) (domain.CollectionRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.CollectionRule{}, domain.ErrInvalidOrganization
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.CollectionRule{}, domain.ErrInvalidName
	}
	if req.ReminderDaysBefore < 0 {
		return domain.CollectionRule{}, domain.ErrInvalidReminderDays
	}

	now := time.Now().UTC()
	rule := domain.CollectionRule{
		ID:                   s.genID.Generate(),
		OrgID:                orgID,
		Name:                 name,
		IsActive:             true,
		ReminderDaysBefore:   req.ReminderDaysBefore,
		SendOnDueDate:        req.SendOnDueDate,
		OverdueDaysAfter:     domain.NormalizeOffsets(req.OverdueDaysAfter),
		ReminderTemplate:     req.ReminderTemplate,
		DueDateTemplate:      req.DueDateTemplate,
		OverdueTemplate:      req.OverdueTemplate,
		ConfirmationTemplate: req.ConfirmationTemplate,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if err := s.repo.Insert(ctx, s.db, &rule); err != nil {
		return domain.CollectionRule{}, err
	}

	return rule, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.CollectionRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.CollectionRule{}, domain.ErrInvalidOrganization
	}

	ruleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.CollectionRule{}, domain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, s.db, orgID, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CollectionRule{}, domain.ErrNotFound
		}
		return domain.CollectionRule{}, err
	}
	return *rule, nil
}

func (s *Service) List(ctx context.Context) ([]domain.CollectionRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	items, err := s.repo.List(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.CollectionRule, 0, len(items))
	for _, item := range items {
		rules = append(rules, *item)
	}
	return rules, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRuleRequest) (domain.CollectionRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.CollectionRule{}, domain.ErrInvalidOrganization
	}

	ruleID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.CollectionRule{}, domain.ErrInvalidID
	}

	rule, err := s.repo.FindByID(ctx, s.db, orgID, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CollectionRule{}, domain.ErrNotFound
		}
		return domain.CollectionRule{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.CollectionRule{}, domain.ErrInvalidName
		}
		rule.Name = name
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.ReminderDaysBefore != nil {
		if *req.ReminderDaysBefore < 0 {
			return domain.CollectionRule{}, domain.ErrInvalidReminderDays
		}
		rule.ReminderDaysBefore = *req.ReminderDaysBefore
	}
	if req.SendOnDueDate != nil {
		rule.SendOnDueDate = *req.SendOnDueDate
	}
	if req.OverdueDaysAfter != nil {
		rule.OverdueDaysAfter = domain.NormalizeOffsets(req.OverdueDaysAfter)
	}
	if req.ReminderTemplate != nil {
		rule.ReminderTemplate = *req.ReminderTemplate
	}
	if req.DueDateTemplate != nil {
		rule.DueDateTemplate = *req.DueDateTemplate
	}
	if req.OverdueTemplate != nil {
		rule.OverdueTemplate = *req.OverdueTemplate
	}
	if req.ConfirmationTemplate != nil {
		rule.ConfirmationTemplate = *req.ConfirmationTemplate
	}
	rule.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, rule); err != nil {
		return domain.CollectionRule{}, err
	}
	return *rule, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	ruleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	if err := s.repo.SoftDelete(ctx, s.db, orgID, ruleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) Restore(ctx context.Context, id string) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	ruleID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	if err := s.repo.Restore(ctx, s.db, orgID, ruleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) ListTrashed(ctx context.Context) ([]domain.CollectionRule, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	items, err := s.repo.ListTrashed(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.CollectionRule, 0, len(items))
	for _, item := range items {
		rules = append(rules, *item)
	}
	return rules, nil
}
