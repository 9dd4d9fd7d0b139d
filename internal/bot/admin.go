package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chhongzh/shlex"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// guardAdmin runs next only for the owner or a registered admin.
func (b *Bot) guardAdmin(ctx context.Context, msg *tgbotapi.Message, next func(context.Context, *tgbotapi.Message) error) error {
	if !b.isPrivileged(ctx, msg.From.ID) {
		return b.sendPlain(msg.Chat.ID, "❌ This command is for admins only.")
	}
	return next(ctx, msg)
}

// guardOwner runs next only for the configured owner.
func (b *Bot) guardOwner(ctx context.Context, msg *tgbotapi.Message, next func(context.Context, *tgbotapi.Message) error) error {
	if msg.From.ID != b.config.OwnerID {
		return b.sendPlain(msg.Chat.ID, "❌ This command is for owner only.")
	}
	return next(ctx, msg)
}

// splitArgs tokenizes command arguments, honoring quoting so ban reasons and
// search terms can contain spaces.
func splitArgs(raw string) []string {
	parts, err := shlex.Split(strings.TrimSpace(raw))
	if err != nil {
		return strings.Fields(raw)
	}
	return parts
}

func (b *Bot) adminCommandsList() string {
	lines := []string{
		"👑 **ADMIN COMMANDS**",
		"────────────────────────────",
		"`/broadcast` - Send message to all users (reply to media/text)",
		"`/dm <user_id>` - DM a user (reply to media/text)",
		"`/bulkdm <id1> <id2> ...` - DM multiple users (reply to media/text)",
		"`/groups` - List groups where bot is admin",
		"`/ban <user_id> [reason]` - Ban a user",
		"`/unban <user_id>` - Unban a user",
		"`/deleteuser <user_id>` - Delete user from DB",
		"`/searchuser <query>` - Search users",
		"`/users [page]` - List users",
		"`/recentusers [days]` - Recently active users",
		"`/inactiveusers [days]` - Inactive users",
		"`/userlookups <user_id>` - User's last lookups",
		"`/leaderboard` - Top users",
		"`/stats` - Bot statistics",
		"`/dailystats [days]` - Daily stats",
		"`/lookupstats` - Command usage stats",
		"`/addadmin <user_id>` - Add admin (owner only)",
		"`/removeadmin <user_id>` - Remove admin (owner only)",
		"`/listadmins` - List all admins (owner only)",
		"`/settings` - Bot settings (owner only)",
		"`/fulldbbackup` - Download database backup (owner only)",
	}
	return strings.Join(lines, "\n") + b.config.Footer
}

func (b *Bot) handleBroadcast(ctx context.Context, msg *tgbotapi.Message) error {
	source := msg.ReplyToMessage
	if source == nil {
		return b.sendPlain(msg.Chat.ID, "Please reply to a message (text/photo/video/doc) with /broadcast")
	}

	ids, err := b.users.ListIDs(ctx)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed to load recipients: %v", err))
	}

	success, fail := fanOut(ids, b.sendCopy(source))
	b.logger.Info("broadcast done", zap.Int("Success", success), zap.Int("Fail", fail))
	return b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Broadcast completed.\nSuccess: %d\nFailed: %d", success, fail))
}

func (b *Bot) handleDM(ctx context.Context, msg *tgbotapi.Message) error {
	args := splitArgs(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendPlain(msg.Chat.ID, "Usage: /dm <user_id> (reply to a message with media/text)")
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, "Invalid user ID.")
	}

	source := msg.ReplyToMessage
	if source == nil {
		// Without a reply, the remaining arguments become the text.
		if len(args) > 1 {
			if err := b.sendPlain(target, strings.Join(args[1:], " ")); err != nil {
				return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
			}
			return b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Message sent to %d", target))
		}
		return b.sendPlain(msg.Chat.ID, "Please reply to a message or provide text after user ID.")
	}

	if err := b.copyMessageTo(target, source); err != nil {
		b.logger.Warn("dm failed", zap.Int64("UserID", target), zap.Error(err))
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed to send to %d", target))
	}
	return b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Message sent to %d", target))
}

func (b *Bot) handleBulkDM(ctx context.Context, msg *tgbotapi.Message) error {
	args := splitArgs(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendPlain(msg.Chat.ID, "Usage: /bulkdm <id1> <id2> ... (reply to a message)")
	}
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return b.sendPlain(msg.Chat.ID, fmt.Sprintf("Invalid ID: %s", arg))
		}
		ids = append(ids, id)
	}

	source := msg.ReplyToMessage
	if source == nil {
		return b.sendPlain(msg.Chat.ID, "Please reply to a message (text/photo/video/doc) with /bulkdm")
	}

	success, fail := fanOut(ids, b.sendCopy(source))
	return b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Bulk DM completed.\nSuccess: %d\nFailed: %d", success, fail))
}

func (b *Bot) handleGroups(ctx context.Context, msg *tgbotapi.Message) error {
	groups, err := b.groups.ListAll(ctx)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed to load groups: %v", err))
	}
	if len(groups) == 0 {
		return b.sendPlain(msg.Chat.ID, "No groups found. Bot may not have been added to any group yet.")
	}

	var sb strings.Builder
	sb.WriteString("**📢 Groups where I'm active:**\n")
	for _, g := range groups {
		link := g.InviteLink
		if link == "" {
			link = "private group"
		}
		sb.WriteString(fmt.Sprintf("\n• **%s**\n  ID: `%d`\n  Link: %s\n", g.Title, g.ChatID, link))
	}
	return b.sendMarkdown(msg.Chat.ID, sb.String())
}

func (b *Bot) handleBan(ctx context.Context, msg *tgbotapi.Message) error {
	args := splitArgs(msg.CommandArguments())
	if len(args) < 1 {
		return b.sendPlain(msg.Chat.ID, "Usage: /ban <user_id> [reason]")
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, "Usage: /ban <user_id> [reason]")
	}
	reason := "No reason"
	if len(args) > 1 {
		reason = strings.Join(args[1:], " ")
	}

	if err := b.bans.Upsert(ctx, target, reason, msg.From.ID); err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	b.logger.Info("user banned",
		zap.Int64("UserID", target),
		zap.Int64("By", msg.From.ID),
		zap.String("Reason", reason))
	return b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Banned %d", target))
}

func (b *Bot) handleUnban(ctx context.Context, msg *tgbotapi.Message) error {
	target, ok := b.singleIDArg(msg, "Usage: /unban <user_id>")
	if !ok {
		return nil
	}
	if err := b.bans.Remove(ctx, target); err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	return b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Unbanned %d", target))
}

func (b *Bot) handleDeleteUser(ctx context.Context, msg *tgbotapi.Message) error {
	target, ok := b.singleIDArg(msg, "Usage: /deleteuser <user_id>")
	if !ok {
		return nil
	}
	if err := b.users.Delete(ctx, target); err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	return b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ User %d deleted from database.", target))
}

func (b *Bot) handleSearchUser(ctx context.Context, msg *tgbotapi.Message) error {
	term := strings.TrimSpace(msg.CommandArguments())
	if term == "" {
		return b.sendPlain(msg.Chat.ID, "Usage: /searchuser <query>")
	}

	// A numeric term is treated as an exact ID lookup.
	if id, err := strconv.ParseInt(term, 10, 64); err == nil {
		user, err := b.users.FindByTelegramID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return b.sendPlain(msg.Chat.ID, "User not found.")
			}
			return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
		}
		text := fmt.Sprintf("User found:\nID: %d\nUsername: @%s\nName: %s %s\nLookups: %d\nLast seen: %s",
			user.TelegramID, orNA(user.Username), user.FirstName, user.LastName,
			user.Lookups, user.LastSeen.Format("2006-01-02 15:04"))
		return b.sendPlain(msg.Chat.ID, text)
	}

	users, err := b.users.Search(ctx, term, 10)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	if len(users) == 0 {
		return b.sendPlain(msg.Chat.ID, "No users found.")
	}
	var sb strings.Builder
	sb.WriteString("Search results:\n")
	for _, u := range users {
		sb.WriteString(fmt.Sprintf("• %d (@%s) - %s %s\n", u.TelegramID, orNA(u.Username), u.FirstName, u.LastName))
	}
	return b.sendPlain(msg.Chat.ID, sb.String())
}

func (b *Bot) handleUsers(ctx context.Context, msg *tgbotapi.Message) error {
	page := intArgOr(msg.CommandArguments(), 1)
	if page < 1 {
		page = 1
	}
	const perPage = 10

	users, err := b.users.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	if len(users) == 0 {
		return b.sendPlain(msg.Chat.ID, "No users found.")
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👥 Users (Page %d):\n", page))
	for _, u := range users {
		sb.WriteString(fmt.Sprintf("• %d (@%s) - %d lookups\n", u.TelegramID, orNA(u.Username), u.Lookups))
	}
	return b.sendPlain(msg.Chat.ID, sb.String())
}

func (b *Bot) handleRecentUsers(ctx context.Context, msg *tgbotapi.Message) error {
	days := intArgOr(msg.CommandArguments(), 7)
	users, err := b.users.ListRecent(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Users active in last %d days:\n", days))
	for _, u := range users {
		sb.WriteString(fmt.Sprintf("• %d (@%s) - last seen %s\n", u.TelegramID, orNA(u.Username), u.LastSeen.Format("2006-01-02 15:04")))
	}
	return b.sendPlain(msg.Chat.ID, sb.String())
}

func (b *Bot) handleInactiveUsers(ctx context.Context, msg *tgbotapi.Message) error {
	days := intArgOr(msg.CommandArguments(), 30)
	users, err := b.users.ListInactive(ctx, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("💤 Users inactive for >%d days:\n", days))
	for _, u := range users {
		sb.WriteString(fmt.Sprintf("• %d (@%s) - last seen %s\n", u.TelegramID, orNA(u.Username), u.LastSeen.Format("2006-01-02 15:04")))
	}
	return b.sendPlain(msg.Chat.ID, sb.String())
}

func (b *Bot) handleUserLookups(ctx context.Context, msg *tgbotapi.Message) error {
	target, ok := b.singleIDArg(msg, "Usage: /userlookups <user_id>")
	if !ok {
		return nil
	}
	lookups, err := b.lookups.ListByUser(ctx, target, 10)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 Last 10 lookups of %d:\n", target))
	for _, l := range lookups {
		sb.WriteString(fmt.Sprintf("%s - /%s %s\n", l.CreatedAt.Format("2006-01-02 15:04"), l.Command, l.Query))
	}
	return b.sendPlain(msg.Chat.ID, sb.String())
}

func (b *Bot) handleLeaderboard(ctx context.Context, msg *tgbotapi.Message) error {
	users, err := b.users.Leaderboard(ctx, 10)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	var sb strings.Builder
	sb.WriteString("🏆 Leaderboard (Top 10):\n")
	for i, u := range users {
		sb.WriteString(fmt.Sprintf("%d. %d - %d lookups\n", i+1, u.TelegramID, u.Lookups))
	}
	return b.sendPlain(msg.Chat.ID, sb.String())
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	totalUsers, err := b.users.Count(ctx)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	totalLookups, err := b.lookups.CountAll(ctx)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	totalAdmins, err := b.admins.Count(ctx)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	totalBanned, err := b.bans.Count(ctx)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}

	text := fmt.Sprintf("📈 Bot Statistics:\nTotal Users: %d\nTotal Lookups: %d\nTotal Admins: %d\nTotal Banned: %d",
		totalUsers, totalLookups, totalAdmins, totalBanned)
	return b.sendPlain(msg.Chat.ID, text)
}

func (b *Bot) handleDailyStats(ctx context.Context, msg *tgbotapi.Message) error {
	days := intArgOr(msg.CommandArguments(), 7)
	rows, err := b.lookups.DailyBreakdown(ctx, days)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	if len(rows) == 0 {
		return b.sendPlain(msg.Chat.ID, "No daily stats available.")
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Daily Stats (last %d days):\n", days))
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s - /%s: %d\n", row.Day, row.Command, row.Count))
	}
	return b.sendPlain(msg.Chat.ID, sb.String())
}

func (b *Bot) handleLookupStats(ctx context.Context, msg *tgbotapi.Message) error {
	rows, err := b.lookups.TopCommands(ctx, 10)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	var sb strings.Builder
	sb.WriteString("🔍 Lookup Stats (Top 10 commands):\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("/%s: %d\n", row.Command, row.Count))
	}
	return b.sendPlain(msg.Chat.ID, sb.String())
}

func (b *Bot) handleAddAdmin(ctx context.Context, msg *tgbotapi.Message) error {
	target, ok := b.singleIDArg(msg, "Usage: /addadmin <user_id>")
	if !ok {
		return nil
	}
	if err := b.admins.Add(ctx, target, msg.From.ID); err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	return b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Admin added: %d", target))
}

func (b *Bot) handleRemoveAdmin(ctx context.Context, msg *tgbotapi.Message) error {
	target, ok := b.singleIDArg(msg, "Usage: /removeadmin <user_id>")
	if !ok {
		return nil
	}
	if err := b.admins.Remove(ctx, target); err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	return b.sendPlain(msg.Chat.ID, fmt.Sprintf("✅ Admin removed: %d", target))
}

func (b *Bot) handleListAdmins(ctx context.Context, msg *tgbotapi.Message) error {
	admins, err := b.admins.ListAll(ctx)
	if err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	var sb strings.Builder
	sb.WriteString("👑 Admins:\n")
	for _, a := range admins {
		sb.WriteString(fmt.Sprintf("• %d (added by %d on %s)\n", a.TelegramID, a.AddedBy, a.CreatedAt.Format("2006-01-02")))
	}
	return b.sendPlain(msg.Chat.ID, sb.String())
}

func (b *Bot) handleSettings(ctx context.Context, msg *tgbotapi.Message) error {
	return b.sendPlain(msg.Chat.ID, "Settings command - under development.")
}

func (b *Bot) handleFullDBBackup(ctx context.Context, msg *tgbotapi.Message) error {
	doc := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FilePath(b.config.DatabaseURL))
	doc.Caption = "🗄 Full database backup"
	if _, err := b.api.Send(doc); err != nil {
		return b.sendPlain(msg.Chat.ID, fmt.Sprintf("❌ Failed: %v", err))
	}
	return nil
}

// singleIDArg parses the one numeric argument these commands share; on
// malformed input it sends the usage hint and reports false.
func (b *Bot) singleIDArg(msg *tgbotapi.Message, usage string) (int64, bool) {
	args := splitArgs(msg.CommandArguments())
	if len(args) < 1 {
		_ = b.sendPlain(msg.Chat.ID, usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		_ = b.sendPlain(msg.Chat.ID, usage)
		return 0, false
	}
	return id, true
}

func intArgOr(raw string, fallback int) int {
	args := strings.Fields(raw)
	if len(args) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func orNA(username string) string {
	if username == "" {
		return "N/A"
	}
	return username
}
