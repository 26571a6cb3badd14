package telegram

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Maniackaa/Bot-seller-link-2/internal/domain/model"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type UpdateHandler func(context.Context, tgbotapi.Update)

// Client wraps the bot API behind the few operations the workflow needs.
// With an empty token it runs in dry mode: sends succeed without network
// calls, which keeps the app constructible in tests and local runs.
type Client struct {
	api         *tgbotapi.BotAPI
	logger      *slog.Logger
	handler     UpdateHandler
	pollTimeout int
	dryRun      bool
}

func NewClient(token string, pollTimeout int, logger *slog.Logger, handler UpdateHandler) (*Client, error) {
	if handler == nil {
		return nil, errors.New("telegram update handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if strings.TrimSpace(token) == "" {
		return &Client{
			logger:      logger,
			handler:     handler,
			pollTimeout: pollTimeout,
			dryRun:      true,
		}, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:         api,
		logger:      logger,
		handler:     handler,
		pollTimeout: pollTimeout,
	}, nil
}

func (c *Client) Start(ctx context.Context) error {
	if c.dryRun {
		c.logger.Warn("BOT_TOKEN is empty, running in dry mode")
		<-ctx.Done()
		return nil
	}

	timeout := c.pollTimeout
	if timeout <= 0 {
		timeout = 30
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = timeout
	updates := c.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.handler(ctx, update)
		}
	}
}

func (c *Client) Send(msg tgbotapi.Chattable) error {
	if c.dryRun {
		return nil
	}
	_, err := c.api.Send(msg)
	return err
}

// SendReturningRef sends a message and returns its handle so it can be
// persisted with the entity and edited after a decision.
func (c *Client) SendReturningRef(msg tgbotapi.MessageConfig) (model.MessageRef, error) {
	if c.dryRun {
		return model.MessageRef{ChatID: msg.ChatID, MessageID: 1}, nil
	}
	sent, err := c.api.Send(msg)
	if err != nil {
		return model.MessageRef{}, err
	}
	return model.MessageRef{ChatID: msg.ChatID, MessageID: sent.MessageID}, nil
}

// EditText replaces the text of a previously sent message and drops its
// inline keyboard.
func (c *Client) EditText(ref model.MessageRef, text string) error {
	if c.dryRun || ref.IsZero() {
		return nil
	}
	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	_, err := c.api.Send(edit)
	return err
}
