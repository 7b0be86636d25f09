package line

import (
	"context"
	"fmt"

	"meepleden/internal/config"

	"github.com/line/line-bot-sdk-go/v7/linebot"
	"github.com/rs/zerolog"
)

// Notifier pushes messages to LINE users through the Messaging API.
// All pushes are best-effort; callers must not fail their request on a
// push error.
type Notifier struct {
	client *linebot.Client
	logger *zerolog.Logger
}

func NewNotifier(cfg config.LineConfig, logger *zerolog.Logger) (*Notifier, error) {
	client, err := linebot.New(cfg.ChannelSecret, cfg.ChannelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create line client: %w", err)
	}

	return &Notifier{
		client: client,
		logger: logger,
	}, nil
}

func (n *Notifier) PushText(ctx context.Context, lineUserID, text string) error {
	if lineUserID == "" {
		return fmt.Errorf("line user id is required")
	}

	_, err := n.client.PushMessage(lineUserID, linebot.NewTextMessage(text)).WithContext(ctx).Do()
	if err != nil {
		return fmt.Errorf("push message failed: %w", err)
	}

	n.logger.Debug().Str("line_user_id", lineUserID).Msg("push message sent")
	return nil
}
