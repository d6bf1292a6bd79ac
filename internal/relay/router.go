package relay

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sula8/telegram-support-bot/internal/telegram"
)

// Router implements telegram.Handler. It splits the update stream into the
// two relay directions: staff-chat replies to bot messages go outbound,
// everything outside the staff chat goes inbound, and staff chatter among
// themselves is ignored.
type Router struct {
	inbound  *Inbound
	outbound *Outbound
	cfg      Config
	botID    int64
	logger   *slog.Logger
}

func NewRouter(api BotAPI, cfg Config, botID int64, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Router{
		inbound:  NewInbound(api, cfg, logger),
		outbound: NewOutbound(api, cfg, logger),
		cfg:      cfg,
		botID:    botID,
		logger:   logger,
	}
}

func (r *Router) HandleUpdate(ctx context.Context, update telegram.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return nil
	}
	if msg.From.IsBot {
		return nil
	}

	logger := r.logger.With(
		"correlation_id", uuid.NewString(),
		"chat_id", msg.Chat.ID,
		"message_id", msg.MessageID,
	)

	// The restart button works from anywhere, the staff chat included.
	if isStartMessage(msg.Text) {
		logger.Info("welcome_sent")
		return r.inbound.SendWelcome(ctx, msg.Chat.ID)
	}

	if msg.Chat.ID == r.cfg.StaffChatID {
		if msg.ReplyTo == nil {
			logger.Debug("staff_message_ignored", "reason", "not_a_reply")
			return nil
		}
		if msg.ReplyTo.From == nil || msg.ReplyTo.From.ID != r.botID {
			logger.Debug("staff_message_ignored", "reason", "reply_to_non_bot_message")
			return nil
		}
		return r.outbound.Handle(ctx, msg)
	}
	return r.inbound.Handle(ctx, msg)
}
