package bot

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"docsum/internal/domain"
	"docsum/internal/ratelimiter"
	"docsum/internal/summarizer"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	updateProcessingTimeout = 5 * time.Minute
	downloadTimeout         = 2 * time.Minute
)

// telegramAPI is the part of the Bot API client the handlers use.
type telegramAPI interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
	GetFile(ctx context.Context, params *tgbot.GetFileParams) (*models.File, error)
	FileDownloadLink(file *models.File) string
}

type Extractor interface {
	Extract(ctx context.Context, doc domain.UploadedDocument) (domain.Extraction, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, req summarizer.Request) (domain.Summary, error)
}

type Bot struct {
	client       *tgbot.Bot
	api          telegramAPI
	rateLimiter  *ratelimiter.RateLimiter
	extractor    Extractor
	summarizer   Summarizer
	httpClient   *http.Client
	allowedUsers []int64
	maxBytes     int64
	log          *slog.Logger
}

func New(
	token string,
	extractor Extractor,
	summarizer Summarizer,
	allowedUsers []int64,
	maxBytes int64,
	log *slog.Logger,
) (*Bot, error) {
	b := newBot(nil, extractor, summarizer, allowedUsers, maxBytes, log)

	client, err := tgbot.New(
		strings.TrimSpace(token),
		tgbot.WithDefaultHandler(b.handleUpdate),
	)
	if err != nil {
		b.rateLimiter.Stop()
		return nil, err
	}

	b.client = client
	b.api = client

	return b, nil
}

func newBot(
	api telegramAPI,
	extractor Extractor,
	summarizer Summarizer,
	allowedUsers []int64,
	maxBytes int64,
	log *slog.Logger,
) *Bot {
	return &Bot{
		api:          api,
		rateLimiter:  ratelimiter.New(log),
		extractor:    extractor,
		summarizer:   summarizer,
		httpClient:   &http.Client{Timeout: downloadTimeout},
		allowedUsers: allowedUsers,
		maxBytes:     maxBytes,
		log:          log,
	}
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.log.InfoContext(ctx, "Bot is started")

	b.client.Start(ctx)

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	message := update.Message
	chatID := message.Chat.ID

	var userID int64
	var username string
	if message.From != nil {
		userID = message.From.ID
		username = message.From.Username
	}

	if !b.userAllowed(userID) {
		b.log.DebugContext(updateCtx, "User is not allowed",
			"userID", userID,
			"chatID", chatID,
			"username", username,
			"chatType", message.Chat.Type)

		return
	}

	if err := b.handleMessage(updateCtx, message); err != nil {
		b.log.ErrorContext(updateCtx, "Failed to handle message",
			"error", err,
			"chatID", chatID,
			"userID", userID,
			"chatType", message.Chat.Type,
			"messageID", message.ID)
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	if len(b.allowedUsers) == 0 {
		return true
	}

	return slices.Contains(b.allowedUsers, userID)
}
