package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cobrato/cobrato/internal/messaging/channel"
	"github.com/cobrato/cobrato/internal/messaging/domain"
)

type fakeSender struct {
	ch       domain.Channel
	err      error
	needs    func(channel.Recipient) bool
	sent     []string
	lastText string
}

func (f *fakeSender) Channel() domain.Channel { return f.ch }

func (f *fakeSender) Send(_ context.Context, _ domain.MessagingSetting, to channel.Recipient, text string) error {
	if f.needs != nil && !f.needs(to) {
		return channel.ErrNoRecipient
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	f.lastText = text
	return nil
}

func newDispatcher(senders ...channel.Sender) *Dispatcher {
	return New(Params{
		Log:     zap.NewNop(),
		Senders: channel.NewRegistryWith(senders...),
	})
}

func settings(chs ...domain.Channel) []domain.MessagingSetting {
	out := make([]domain.MessagingSetting, 0, len(chs))
	for i, ch := range chs {
		out = append(out, domain.MessagingSetting{Channel: ch, Priority: i, IsActive: true})
	}
	return out
}

func TestSend_FirstChannelWins(t *testing.T) {
	wa := &fakeSender{ch: domain.ChannelWhatsApp}
	tg := &fakeSender{ch: domain.ChannelTelegram}

	res := newDispatcher(wa, tg).Send(context.Background(),
		settings(domain.ChannelWhatsApp, domain.ChannelTelegram),
		channel.Recipient{Phone: "+5511999990000"}, "oi")

	require.True(t, res.Delivered)
	assert.Equal(t, domain.ChannelWhatsApp, res.Channel)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, []string{"oi"}, wa.sent)
	assert.Empty(t, tg.sent)
}

func TestSend_FallsBackOnFailure(t *testing.T) {
	wa := &fakeSender{ch: domain.ChannelWhatsApp, err: errors.New("gateway down")}
	tg := &fakeSender{ch: domain.ChannelTelegram}

	res := newDispatcher(wa, tg).Send(context.Background(),
		settings(domain.ChannelWhatsApp, domain.ChannelTelegram),
		channel.Recipient{Phone: "+5511999990000", TelegramChatID: "42"}, "oi")

	require.True(t, res.Delivered)
	assert.Equal(t, domain.ChannelTelegram, res.Channel)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, []string{"oi"}, tg.sent)
}

func TestSend_AllChannelsFail(t *testing.T) {
	waErr := errors.New("whatsapp down")
	tgErr := errors.New("telegram down")
	wa := &fakeSender{ch: domain.ChannelWhatsApp, err: waErr}
	tg := &fakeSender{ch: domain.ChannelTelegram, err: tgErr}

	res := newDispatcher(wa, tg).Send(context.Background(),
		settings(domain.ChannelWhatsApp, domain.ChannelTelegram),
		channel.Recipient{Phone: "+5511999990000", TelegramChatID: "42"}, "oi")

	require.False(t, res.Delivered)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, tgErr, res.Err)
	assert.Equal(t, domain.ChannelTelegram, res.Channel)
}

func TestSend_SkipsInactiveSettings(t *testing.T) {
	wa := &fakeSender{ch: domain.ChannelWhatsApp}
	tg := &fakeSender{ch: domain.ChannelTelegram}

	s := settings(domain.ChannelWhatsApp, domain.ChannelTelegram)
	s[0].IsActive = false

	res := newDispatcher(wa, tg).Send(context.Background(), s,
		channel.Recipient{Phone: "+5511999990000", TelegramChatID: "42"}, "oi")

	require.True(t, res.Delivered)
	assert.Equal(t, domain.ChannelTelegram, res.Channel)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, wa.sent)
}

func TestSend_SkipsChannelsWithoutRecipientAddress(t *testing.T) {
	wa := &fakeSender{ch: domain.ChannelWhatsApp, needs: func(r channel.Recipient) bool { return r.Phone != "" }}
	tg := &fakeSender{ch: domain.ChannelTelegram, needs: func(r channel.Recipient) bool { return r.TelegramChatID != "" }}

	res := newDispatcher(wa, tg).Send(context.Background(),
		settings(domain.ChannelWhatsApp, domain.ChannelTelegram),
		channel.Recipient{TelegramChatID: "42"}, "oi")

	require.True(t, res.Delivered)
	assert.Equal(t, domain.ChannelTelegram, res.Channel)
	assert.Equal(t, 1, res.Attempts)
}

func TestSend_NoEligibleChannels(t *testing.T) {
	res := newDispatcher().Send(context.Background(),
		settings(domain.ChannelWhatsApp),
		channel.Recipient{Phone: "+5511999990000"}, "oi")

	require.False(t, res.Delivered)
	assert.Equal(t, 0, res.Attempts)
	assert.ErrorIs(t, res.Err, ErrAllChannelsFailed)
}

func TestSend_RespectsPriorityOrder(t *testing.T) {
	wa := &fakeSender{ch: domain.ChannelWhatsApp}
	tg := &fakeSender{ch: domain.ChannelTelegram}

	res := newDispatcher(wa, tg).Send(context.Background(),
		settings(domain.ChannelTelegram, domain.ChannelWhatsApp),
		channel.Recipient{Phone: "+5511999990000", TelegramChatID: "42"}, "oi")

	require.True(t, res.Delivered)
	assert.Equal(t, domain.ChannelTelegram, res.Channel)
	assert.Empty(t, wa.sent)
}
