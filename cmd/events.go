/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"github.com/usermgmt/apiserver/internal/mq"
	"github.com/usermgmt/apiserver/types"
)

var eventsChannel string

// eventsCmd tails user lifecycle events from the configured broker.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Log user lifecycle events published by the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig("events")
		if err != nil {
			return err
		}

		broker, err := mq.NewFromConfig(cmd.Context(), cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is not configured")
		}
		defer broker.Close()

		channel := cfg.MQ.Channel
		if eventsChannel != "" {
			channel = eventsChannel
		}
		log.Info().Str("channel", channel).Msg("listening for user events")

		err = broker.Subscribe(cmd.Context(), channel, func(_ context.Context, msg mq.Message) error {
			var event types.UserEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				log.Warn().Err(err).Str("message_id", msg.ID).Msg("skipping undecodable message")
				return nil
			}
			log.Info().
				Str("message_id", msg.ID).
				Str("event", string(event.Type)).
				Int64("user_id", event.User.ID).
				Str("username", event.User.Username).
				Bool("is_deleted", event.User.IsDeleted).
				Time("occurred_at", event.OccurredAt).
				Send()
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().StringVar(&eventsChannel, "channel", "", "channel to consume (defaults to MQ_CHANNEL)")
}
