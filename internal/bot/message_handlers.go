package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"docsum/internal/domain"
	"docsum/internal/extractor"
	"docsum/internal/summarizer"

	"github.com/dustin/go-humanize"
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	summaryHeader       = "📌 *Summary:*\n\n"
	failedText          = "❌ Failed to summarize\\."
	malformedText       = "❌ The document could not be read\\."
	tooLargeTextPattern = "❌ The document is larger than %s\\."
	telegramLimitText   = "❌ Telegram only lets bots download files up to 20 MB\\. " +
		"Upload larger documents through the web page\\."

	// telegramFileLimit is the getFile download cap of the Bot API.
	telegramFileLimit = 20 << 20
)

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID

	return b.withSpinner(ctx, chatID, func() error {
		if message.Document != nil {
			return b.handleDocument(ctx, chatID, message.Document)
		}

		text := message.Text
		trimmed := strings.TrimSpace(text)

		switch {
		case strings.HasPrefix(trimmed, "/start"), strings.HasPrefix(trimmed, "/help"):
			return b.handleStartCommand(ctx, chatID)
		default:
			return b.summarizeAndReply(ctx, chatID, text, domain.FormatPasted)
		}
	})
}

func (b *Bot) handleDocument(ctx context.Context, chatID int64, document *models.Document) error {
	if document.FileSize > telegramFileLimit {
		return b.sendMessage(ctx, chatID, telegramLimitText)
	}

	if b.maxBytes > 0 && document.FileSize > b.maxBytes {
		return b.sendMessage(ctx, chatID, b.tooLargeText())
	}

	content, err := b.downloadDocument(ctx, document.FileID)
	if err != nil {
		return b.replyFailure(ctx, chatID, failedText, fmt.Errorf("download document: %w", err))
	}

	extraction, err := b.extractor.Extract(ctx, domain.UploadedDocument{
		Name:    document.FileName,
		Content: content,
	})
	if err != nil {
		reply := failedText
		if errors.Is(err, extractor.ErrMalformedDocument) || errors.Is(err, extractor.ErrInvalidUTF8) {
			reply = malformedText
		}
		if errors.Is(err, extractor.ErrTooLarge) {
			reply = b.tooLargeText()
		}

		return b.replyFailure(ctx, chatID, reply, fmt.Errorf("extract document: %w", err))
	}

	if !extraction.Supported() {
		return b.sendMessage(ctx, chatID, tgbot.EscapeMarkdown(extraction.Text))
	}

	return b.summarizeAndReply(ctx, chatID, extraction.Text, extraction.Format)
}

func (b *Bot) summarizeAndReply(
	ctx context.Context,
	chatID int64,
	text string,
	format domain.Format,
) error {
	summary, err := b.summarizer.Summarize(ctx, summarizer.Request{
		Text:   text,
		Source: domain.SourceBot,
		Format: format,
	})
	if errors.Is(err, summarizer.ErrEmptyInput) {
		return b.sendMessage(ctx, chatID, "⚠️ "+tgbot.EscapeMarkdown(summarizer.EmptyInputWarning))
	}
	if err != nil {
		return b.replyFailure(ctx, chatID, failedText, fmt.Errorf("summarize: %w", err))
	}

	return b.sendMessage(ctx, chatID, summaryHeader+tgbot.EscapeMarkdown(summary.Text))
}

func (b *Bot) tooLargeText() string {
	return fmt.Sprintf(tooLargeTextPattern, tgbot.EscapeMarkdown(humanize.IBytes(uint64(b.maxBytes))))
}

func (b *Bot) replyFailure(ctx context.Context, chatID int64, reply string, cause error) error {
	errs := []error{cause}

	if err := b.sendMessage(ctx, chatID, reply); err != nil {
		errs = append(errs, fmt.Errorf("send message: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) downloadDocument(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(ctx, &tgbot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.api.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			b.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"fileID", fileID)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if b.maxBytes > 0 {
		body = io.LimitReader(resp.Body, b.maxBytes+1)
	}

	content, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return content, nil
}
