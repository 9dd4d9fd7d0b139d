package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"osintbot/internal/model"
	"osintbot/internal/service"
)

// runLookup drives one gated lookup through the pipeline: upstream call,
// delivery, audit row, channel mirror. Delivery is the primary contract;
// the bookkeeping steps are best-effort and never surface to the user.
func (b *Bot) runLookup(ctx context.Context, msg *tgbotapi.Message, command, query string) error {
	res, ok := b.pipeline.Execute(ctx, command, query)
	if !ok {
		return b.sendPlain(msg.Chat.ID, "❌ Command not found.")
	}

	b.logger.Info("lookup",
		zap.Int64("UserID", msg.From.ID),
		zap.String("Command", command),
		zap.String("Query", query),
		zap.Bool("UpstreamError", res.IsError),
		zap.Bool("Oversized", res.Oversized))

	if err := b.deliver(msg.Chat.ID, res); err != nil {
		return fmt.Errorf("deliver lookup: %w", err)
	}

	if err := b.lookups.Record(ctx, &model.Lookup{
		UserID:   msg.From.ID,
		Command:  command,
		Query:    query,
		Response: string(res.Envelope),
	}); err != nil {
		b.logger.Error("record lookup", zap.Int64("UserID", msg.From.ID), zap.Error(err))
	}

	b.mirrorLookup(msg.From, res)
	return nil
}

// deliver routes the result inline or as a file attachment, depending on the
// rendered size. Both paths carry the sanitized form.
func (b *Bot) deliver(chatID int64, res service.Result) error {
	if res.Oversized {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
			Name:  res.FileName,
			Bytes: []byte(res.Sanitized + b.config.LookupFooter),
		})
		doc.Caption = fmt.Sprintf("📁 Output too long, sent as file.\n👨‍💻 Developer: %s", b.config.Branding.Developer)
		_, err := b.api.Send(doc)
		return err
	}

	output := fmt.Sprintf("<pre>%s</pre>%s", escape(res.Sanitized), escape(b.config.LookupFooter))
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Copy", cbCopyPrefix+b.cache.Store(res.Sanitized)),
			tgbotapi.NewInlineKeyboardButtonData("🔍 Search", cbSearchPrefix+res.Command),
		),
	)
	return b.sendHTML(chatID, output, keyboard)
}

// mirrorLookup posts the raw envelope to the command's audit channel,
// truncated to the platform limit. Best-effort: a missing or unreachable
// channel only logs.
func (b *Bot) mirrorLookup(from *tgbotapi.User, res service.Result) {
	info, ok := b.config.Commands[res.Command]
	if !ok || info.LogChannelID == 0 {
		return
	}

	display := from.FirstName
	if from.UserName != "" {
		display = "@" + from.UserName
	}
	text := fmt.Sprintf("👤 **User:** %d (%s)\n🔍 **Command:** /%s\n📝 **Query:** `%s`\n\n```json\n%s\n```",
		from.ID, display, res.Command, res.Query, res.Pretty)
	text = truncateRunes(text, 4000)

	mirror := tgbotapi.NewMessage(info.LogChannelID, text)
	mirror.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(mirror); err != nil {
		b.logger.Error("mirror lookup",
			zap.Int64("Channel", info.LogChannelID),
			zap.String("Command", res.Command),
			zap.Error(err))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Error("callback ack", zap.Error(err))
	}

	data := cb.Data
	switch {
	case data == cbVerifyJoin:
		return b.handleVerifyJoin(cb)
	case strings.HasPrefix(data, cbCopyPrefix):
		return b.handleCopy(cb.Message.Chat.ID, strings.TrimPrefix(data, cbCopyPrefix))
	case strings.HasPrefix(data, cbSearchPrefix):
		command := strings.TrimPrefix(data, cbSearchPrefix)
		return b.sendMarkdown(cb.Message.Chat.ID, fmt.Sprintf("Send `/%s` with your query.", command))
	default:
		return nil
	}
}

// handleVerifyJoin re-runs only the membership step and edits the prompt in
// place: success text when every channel is joined, a refreshed join
// keyboard otherwise.
func (b *Bot) handleVerifyJoin(cb *tgbotapi.CallbackQuery) error {
	missing := b.missingChannels(cb.From.ID)
	if len(missing) == 0 {
		edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID,
			"✅ **Verification successful! Ab aap bot use kar sakte hain.**")
		edit.ParseMode = tgbotapi.ModeMarkdown
		_, err := b.api.Send(edit)
		return err
	}

	keyboard := forceJoinKeyboard(missing)
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID,
		"⚠️ **Aapne abhi bhi kuch channels join nahi kiye:**", keyboard)
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(edit)
	return err
}

// handleCopy replays the cached payload for the token. Tokens are single-use
// and expire; either way the user is told to re-run the command.
func (b *Bot) handleCopy(chatID int64, token string) error {
	payload, ok := b.cache.Consume(token)
	if !ok {
		return b.sendMarkdown(chatID, "❌ **Copy data expired. Please run the command again.**")
	}
	return b.sendMarkdown(chatID, fmt.Sprintf("```json\n%s\n```", payload))
}

// truncateRunes caps s at max runes, ellipsis included.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
