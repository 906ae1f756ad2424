package channel

import (
	"github.com/cobrato/cobrato/internal/config"
	"github.com/cobrato/cobrato/internal/messaging/domain"
)

// Registry resolves senders by channel.
type Registry struct {
	senders map[domain.Channel]Sender
}

// NewRegistry builds the registry from the configured gateway endpoints.
func NewRegistry(cfg config.Config) *Registry {
	senders := map[domain.Channel]Sender{}
	for _, s := range []Sender{
		NewWhatsApp(cfg.WhatsAppEndpoint),
		NewTelegram(cfg.TelegramEndpoint),
	} {
		senders[s.Channel()] = s
	}
	return &Registry{senders: senders}
}

// NewRegistryWith builds a registry from explicit senders, used in tests.
func NewRegistryWith(senders ...Sender) *Registry {
	m := make(map[domain.Channel]Sender, len(senders))
	for _, s := range senders {
		m[s.Channel()] = s
	}
	return &Registry{senders: m}
}

// Lookup returns the sender for a channel, if one is registered.
func (r *Registry) Lookup(ch domain.Channel) (Sender, bool) {
	s, ok := r.senders[ch]
	return s, ok
}
