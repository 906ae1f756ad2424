package service

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	customerdomain "github.com/cobrato/cobrato/internal/customer/domain"
	"github.com/cobrato/cobrato/internal/messaging/channel"
	"github.com/cobrato/cobrato/internal/messaging/domain"
	"github.com/cobrato/cobrato/internal/observability/logger"
	"github.com/cobrato/cobrato/internal/orgcontext"
)

// Params declares the service dependencies.
type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Customers customerdomain.Repository
	Senders   *channel.Registry
}

type service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	customers customerdomain.Repository
	senders   *channel.Registry
}

// New constructs the messaging service.
func New(p Params) domain.Service {
	return &service{
		db:        p.DB,
		log:       p.Log.Named("messaging.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		customers: p.Customers,
		senders:   p.Senders,
	}
}

func (s *service) UpsertSetting(ctx context.Context, req domain.UpsertSettingRequest) (*domain.MessagingSetting, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	if _, err := domain.ParseChannel(string(req.Channel)); err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	setting := &domain.MessagingSetting{
		ID:       s.genID.Generate(),
		OrgID:    orgID,
		Channel:  req.Channel,
		Priority: req.Priority,
		IsActive: active,
		APIKey:   req.APIKey,
		BotToken: req.BotToken,
		Sender:   req.Sender,
	}
	if err := s.repo.UpsertSetting(ctx, s.db, setting); err != nil {
		return nil, err
	}

	logger.WithContext(ctx, s.log).Info("messaging setting saved",
		zap.String("channel", string(setting.Channel)),
		zap.Bool("is_active", setting.IsActive),
	)
	return setting, nil
}

func (s *service) ListSettings(ctx context.Context) ([]domain.MessagingSetting, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	return s.repo.ListSettingsOrdered(ctx, s.db, orgID)
}

func (s *service) DeleteSetting(ctx context.Context, ch domain.Channel) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}
	err := s.repo.DeleteSetting(ctx, s.db, orgID, ch)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrSettingNotFound
	}
	return err
}

func (s *service) ListHistory(ctx context.Context, f domain.HistoryFilter) ([]domain.MessageHistory, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}
	f.OrgID = orgID
	return s.repo.ListHistory(ctx, s.db, f)
}

func (s *service) SendTest(ctx context.Context, req domain.TestMessageRequest) error {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ErrInvalidOrganization
	}

	setting, err := s.repo.FindSetting(ctx, s.db, orgID, req.Channel)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrSettingNotFound
	}
	if err != nil {
		return err
	}

	sender, ok := s.senders.Lookup(req.Channel)
	if !ok {
		return domain.ErrUnknownChannel
	}

	cust, err := s.customers.FindByID(ctx, s.db, orgID, req.CustomerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return customerdomain.ErrNotFound
	}
	if err != nil {
		return err
	}

	text := req.Text
	if text == "" {
		text = "Mensagem de teste do Cobrato."
	}
	return sender.Send(ctx, *setting, channel.Recipient{
		Name:           cust.Name,
		Phone:          cust.Phone,
		TelegramChatID: cust.TelegramChatID,
		Email:          cust.Email,
	}, text)
}
