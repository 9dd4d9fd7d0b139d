package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"osintbot/internal/config"
)

// denial is the outcome of the access decision, in check order.
type denial int

const (
	denyNone denial = iota
	denyBanned
	denyMissingChannels
)

// isPrivileged reports whether the actor is the owner or a registered admin.
// A store failure counts as not privileged.
func (b *Bot) isPrivileged(ctx context.Context, userID int64) bool {
	if userID == b.config.OwnerID {
		return true
	}
	ok, err := b.admins.IsAdmin(ctx, userID)
	if err != nil {
		b.logger.Error("admin check", zap.Int64("UserID", userID), zap.Error(err))
		return false
	}
	return ok
}

// gateScope keeps lookup commands out of private chats: there only the owner
// and admins may run them, everyone else is pointed at the public bot.
// Group chats always pass.
func (b *Bot) gateScope(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	if msg.Chat == nil || !msg.Chat.IsPrivate() {
		return true, nil
	}
	if b.isPrivileged(ctx, msg.From.ID) {
		return true, nil
	}
	text := fmt.Sprintf("⚠️ **Ye bot sirf group me kaam karta hai.**\nPersonal use ke liye use kare: %s", b.config.RedirectBot)
	return false, b.sendMarkdown(msg.Chat.ID, text)
}

// gateAccess runs the ban check and then the required-channel membership
// check. The owner and admins skip both. On deny it sends the remediation
// message and reports false.
func (b *Bot) gateAccess(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	verdict, missing := b.accessDecision(ctx, msg.From.ID)
	switch verdict {
	case denyBanned:
		return false, b.sendMarkdown(msg.Chat.ID, "❌ **Aap banned hain. Contact admin.**")
	case denyMissingChannels:
		reply := tgbotapi.NewMessage(msg.Chat.ID, "⚠️ **Bot use karne ke liye ye channels join karo:**")
		reply.ParseMode = tgbotapi.ModeMarkdown
		reply.ReplyMarkup = forceJoinKeyboard(missing)
		_, err := b.api.Send(reply)
		return false, err
	default:
		return true, nil
	}
}

// accessDecision computes the gate verdict without sending anything. The
// checks run in fixed order: privilege exemption, ban, membership.
func (b *Bot) accessDecision(ctx context.Context, userID int64) (denial, []config.Channel) {
	if b.isPrivileged(ctx, userID) {
		return denyNone, nil
	}

	banned, err := b.bans.IsBanned(ctx, userID)
	if err != nil {
		b.logger.Error("ban check", zap.Int64("UserID", userID), zap.Error(err))
	}
	if banned {
		return denyBanned, nil
	}

	if missing := b.missingChannels(userID); len(missing) > 0 {
		return denyMissingChannels, missing
	}
	return denyNone, nil
}

// missingChannels returns every required channel the user is not currently a
// member of. A failed status query counts as missing: a user the channel has
// never seen produces an API error, not a "left" status.
func (b *Bot) missingChannels(userID int64) []config.Channel {
	var missing []config.Channel
	for _, ch := range b.config.ForceChannels {
		status, err := b.membership(ch.ID, userID)
		if err != nil || status == "left" || status == "kicked" {
			missing = append(missing, ch)
		}
	}
	return missing
}

// forceJoinKeyboard renders one join button per missing channel plus a
// single re-verification button.
func forceJoinKeyboard(missing []config.Channel) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, ch := range missing {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Join "+ch.Name, ch.Link),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ I've joined", cbVerifyJoin),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
