package bot

import (
	"context"
)

const welcomeText = `🤖 *Welcome to the Text Summarizer\!*

Send me:

– a \.txt, \.pdf or \.docx document to get its summary
– any text message to summarize it

Long documents are split into parts and summarized piece by piece\.`

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendMessage(ctx, chatID, welcomeText)
}
