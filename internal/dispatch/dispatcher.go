// Package dispatch routes one message through an organization's channels in
// priority order, falling back to the next channel on failure.
package dispatch

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/cobrato/cobrato/internal/messaging/channel"
	"github.com/cobrato/cobrato/internal/messaging/domain"
	"github.com/cobrato/cobrato/internal/observability/logger"
	"github.com/cobrato/cobrato/internal/observability/metrics"
)

// ErrAllChannelsFailed is returned when every eligible channel was tried and
// none delivered.
var ErrAllChannelsFailed = errors.New("all channels failed")

const attemptTimeout = 15 * time.Second

// Result reports how a dispatch ended.
type Result struct {
	// Delivered is true when some channel accepted the message.
	Delivered bool
	// Channel is the channel that delivered, or the last one tried.
	Channel domain.Channel
	// Attempts counts channels actually tried, skipped channels excluded.
	Attempts int
	// Err is the last attempt's error when nothing delivered.
	Err error
}

// Dispatcher tries each eligible channel once, in order. The first success
// wins and later channels are never touched.
type Dispatcher struct {
	log     *zap.Logger
	senders *channel.Registry
}

// Params declares the dispatcher dependencies.
type Params struct {
	fx.In

	Log     *zap.Logger
	Senders *channel.Registry
}

// New constructs the dispatcher.
func New(p Params) *Dispatcher {
	return &Dispatcher{
		log:     p.Log.Named("dispatch"),
		senders: p.Senders,
	}
}

// Send walks settings in the given order and attempts delivery. Inactive
// settings, channels without a registered sender and channels the recipient
// has no address for are skipped without counting as attempts.
func (d *Dispatcher) Send(ctx context.Context, settings []domain.MessagingSetting, to channel.Recipient, text string) Result {
	m := metrics.Default()
	log := logger.WithContext(ctx, d.log)

	res := Result{}
	for _, setting := range settings {
		if !setting.IsActive {
			continue
		}
		sender, ok := d.senders.Lookup(setting.Channel)
		if !ok {
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		err := sender.Send(attemptCtx, setting, to, text)
		cancel()

		if errors.Is(err, channel.ErrNoRecipient) {
			log.Debug("channel skipped, no recipient address",
				zap.String("channel", string(setting.Channel)),
			)
			continue
		}

		if res.Attempts > 0 {
			m.IncDispatchFallback(string(setting.Channel))
		}
		res.Attempts++
		res.Channel = setting.Channel
		if err == nil {
			m.IncDispatchAttempt(string(setting.Channel), "success")
			res.Delivered = true
			res.Err = nil
			return res
		}

		m.IncDispatchAttempt(string(setting.Channel), "failure")
		log.Warn("channel delivery failed",
			zap.String("channel", string(setting.Channel)),
			zap.Error(err),
		)
		res.Err = err
	}

	if res.Err == nil {
		res.Err = ErrAllChannelsFailed
	}
	return res
}
