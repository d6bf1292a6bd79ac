package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sula8/telegram-support-bot/internal/logutil"
	"github.com/sula8/telegram-support-bot/internal/relay"
	"github.com/sula8/telegram-support-bot/internal/telegram"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the support relay until terminated",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logutil.LoggerFromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			token := strings.TrimSpace(viper.GetString("telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing telegram.bot_token (set via --telegram-bot-token or %s_TELEGRAM_BOT_TOKEN)", envPrefix)
			}
			staffChatID := viper.GetInt64("telegram.staff_chat_id")
			if staffChatID == 0 {
				return fmt.Errorf("missing telegram.staff_chat_id (set via --staff-chat-id or %s_TELEGRAM_STAFF_CHAT_ID)", envPrefix)
			}

			cfg := relay.Config{StaffChatID: staffChatID}
			if path := strings.TrimSpace(viper.GetString("relay.messages_file")); path != "" {
				msgs, err := relay.LoadMessagesFile(path)
				if err != nil {
					return err
				}
				cfg = msgs.Apply(cfg)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			api := telegram.NewClient(nil, viper.GetString("telegram.base_url"), token)
			me, err := api.GetMe(ctx)
			if err != nil {
				return fmt.Errorf("telegram getMe: %w", err)
			}

			router := relay.NewRouter(api, cfg, me.ID, logger)
			poller, err := telegram.NewPoller(telegram.PollerOptions{
				API:            api,
				Handler:        router,
				Logger:         logger,
				PollTimeout:    viper.GetDuration("relay.poll_timeout"),
				MaxConcurrency: viper.GetInt("relay.max_concurrency"),
			})
			if err != nil {
				return err
			}

			logger.Info("relay_start",
				"bot_username", me.Username,
				"bot_id", me.ID,
				"staff_chat_id", staffChatID,
				"poll_timeout", viper.GetDuration("relay.poll_timeout").String(),
				"max_concurrency", viper.GetInt("relay.max_concurrency"),
			)
			return poller.Run(ctx)
		},
	}

	cmd.Flags().String("telegram-bot-token", "", "Telegram bot token.")
	cmd.Flags().Int64("staff-chat-id", 0, "Numeric ID of the staff group chat.")
	cmd.Flags().String("telegram-base-url", "https://api.telegram.org", "Telegram API base URL.")
	cmd.Flags().String("messages-file", "", "YAML file overriding welcome/confirmation texts (optional).")
	cmd.Flags().Duration("poll-timeout", 30*time.Second, "Long-poll timeout for getUpdates.")
	cmd.Flags().Int("max-concurrency", 8, "Maximum updates handled concurrently.")

	_ = viper.BindPFlag("telegram.bot_token", cmd.Flags().Lookup("telegram-bot-token"))
	_ = viper.BindPFlag("telegram.staff_chat_id", cmd.Flags().Lookup("staff-chat-id"))
	_ = viper.BindPFlag("telegram.base_url", cmd.Flags().Lookup("telegram-base-url"))
	_ = viper.BindPFlag("relay.messages_file", cmd.Flags().Lookup("messages-file"))
	_ = viper.BindPFlag("relay.poll_timeout", cmd.Flags().Lookup("poll-timeout"))
	_ = viper.BindPFlag("relay.max_concurrency", cmd.Flags().Lookup("max-concurrency"))

	viper.SetDefault("telegram.base_url", "https://api.telegram.org")
	viper.SetDefault("relay.poll_timeout", 30*time.Second)
	viper.SetDefault("relay.max_concurrency", 8)

	return cmd
}
