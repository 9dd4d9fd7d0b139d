package bot

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"osintbot/internal/cache"
	"osintbot/internal/config"
	"osintbot/internal/repository"
	"osintbot/internal/service"
)

const (
	cbCopyPrefix   = "copy:"
	cbSearchPrefix = "search:"
	cbVerifyJoin   = "verify_join"
)

// membershipFunc reports the actor's status in a channel ("member", "left",
// "kicked", ...). It exists as a field so the gate can be tested without a
// live Telegram connection.
type membershipFunc func(channelID, userID int64) (string, error)

// Bot aggregates the Telegram API with the repositories and services behind
// the lookup pipeline.
type Bot struct {
	api        *tgbotapi.BotAPI
	users      *repository.UserRepository
	admins     *repository.AdminRepository
	bans       *repository.BanRepository
	lookups    *repository.LookupRepository
	groups     *repository.GroupRepository
	settings   *repository.SettingRepository
	pipeline   *service.Pipeline
	cache      *cache.CopyCache
	config     config.Config
	logger     *zap.Logger
	membership membershipFunc
}

// Deps bundles everything the bot needs besides the Telegram API itself.
type Deps struct {
	Users    *repository.UserRepository
	Admins   *repository.AdminRepository
	Bans     *repository.BanRepository
	Lookups  *repository.LookupRepository
	Groups   *repository.GroupRepository
	Settings *repository.SettingRepository
	Pipeline *service.Pipeline
	Cache    *cache.CopyCache
}

func New(cfg config.Config, deps Deps, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	api.Debug = cfg.Debug

	logger.Info("bot authorized", zap.String("Username", api.Self.UserName))

	b := &Bot{
		api:      api,
		users:    deps.Users,
		admins:   deps.Admins,
		bans:     deps.Bans,
		lookups:  deps.Lookups,
		groups:   deps.Groups,
		settings: deps.Settings,
		pipeline: deps.Pipeline,
		cache:    deps.Cache,
		config:   cfg,
		logger:   logger,
	}
	b.membership = func(channelID, userID int64) (string, error) {
		member, err := api.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: channelID, UserID: userID},
		})
		if err != nil {
			return "", err
		}
		return member.Status, nil
	}
	return b, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	// One goroutine per update: a slow upstream call or a long broadcast
	// must not stall the other users. Shared state is mutex-guarded (copy
	// cache) or pooled (database), so handlers are safe to interleave.
	for update := range updates {
		go b.dispatch(ctx, update)
	}

	return nil
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.logger.Error("handle callback", zap.Error(err))
		}
	case update.Message != nil:
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.logger.Error("handle message", zap.Error(err))
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	// Every interaction refreshes the user row before any gating. A store
	// failure must not block the command.
	b.ensureUser(ctx, msg.From)
	if msg.Chat != nil && (msg.Chat.IsGroup() || msg.Chat.IsSuperGroup()) {
		b.trackGroup(ctx, msg.Chat)
	}

	if !msg.IsCommand() {
		return nil
	}

	command := strings.ToLower(msg.Command())
	b.logger.Info("command",
		zap.Int64("UserID", msg.From.ID),
		zap.String("Command", command))

	switch command {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(ctx, msg)
	case "admin":
		return b.handleAdminHelp(ctx, msg)
	case "broadcast":
		return b.guardAdmin(ctx, msg, b.handleBroadcast)
	case "dm":
		return b.guardAdmin(ctx, msg, b.handleDM)
	case "bulkdm":
		return b.guardAdmin(ctx, msg, b.handleBulkDM)
	case "groups":
		return b.guardAdmin(ctx, msg, b.handleGroups)
	case "ban":
		return b.guardAdmin(ctx, msg, b.handleBan)
	case "unban":
		return b.guardAdmin(ctx, msg, b.handleUnban)
	case "deleteuser":
		return b.guardAdmin(ctx, msg, b.handleDeleteUser)
	case "searchuser":
		return b.guardAdmin(ctx, msg, b.handleSearchUser)
	case "users":
		return b.guardAdmin(ctx, msg, b.handleUsers)
	case "recentusers":
		return b.guardAdmin(ctx, msg, b.handleRecentUsers)
	case "inactiveusers":
		return b.guardAdmin(ctx, msg, b.handleInactiveUsers)
	case "userlookups":
		return b.guardAdmin(ctx, msg, b.handleUserLookups)
	case "leaderboard":
		return b.guardAdmin(ctx, msg, b.handleLeaderboard)
	case "stats":
		return b.guardAdmin(ctx, msg, b.handleStats)
	case "dailystats":
		return b.guardAdmin(ctx, msg, b.handleDailyStats)
	case "lookupstats":
		return b.guardAdmin(ctx, msg, b.handleLookupStats)
	case "addadmin":
		return b.guardOwner(ctx, msg, b.handleAddAdmin)
	case "removeadmin":
		return b.guardOwner(ctx, msg, b.handleRemoveAdmin)
	case "listadmins":
		return b.guardOwner(ctx, msg, b.handleListAdmins)
	case "settings":
		return b.guardOwner(ctx, msg, b.handleSettings)
	case "fulldbbackup":
		return b.guardOwner(ctx, msg, b.handleFullDBBackup)
	default:
		return b.handleLookupMessage(ctx, msg, command)
	}
}

// handleLookupMessage gates and runs one catalog lookup.
func (b *Bot) handleLookupMessage(ctx context.Context, msg *tgbotapi.Message, command string) error {
	if ok, err := b.gateScope(ctx, msg); !ok || err != nil {
		return err
	}
	if ok, err := b.gateAccess(ctx, msg); !ok || err != nil {
		return err
	}

	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		return b.sendMarkdown(msg.Chat.ID, fmt.Sprintf("Usage: `/%s <%s>`", command, b.usageHint(command)))
	}

	return b.runLookup(ctx, msg, command, query)
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if ok, err := b.gateAccess(ctx, msg); !ok || err != nil {
		return err
	}
	welcome := fmt.Sprintf("👋 **Welcome %s!**\n\n%s", msg.From.FirstName, b.commandsList())
	return b.sendMarkdown(msg.Chat.ID, welcome)
}

func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) error {
	if ok, err := b.gateAccess(ctx, msg); !ok || err != nil {
		return err
	}
	return b.sendMarkdown(msg.Chat.ID, b.commandsList())
}

func (b *Bot) handleAdminHelp(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.isPrivileged(ctx, msg.From.ID) {
		return b.sendMarkdown(msg.Chat.ID, "❌ **This command is for admins only.**")
	}
	return b.sendMarkdown(msg.Chat.ID, b.adminCommandsList())
}

// ensureUser upserts the actor's row, logging and swallowing failures.
func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) {
	if _, err := b.users.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName); err != nil {
		b.logger.Error("upsert user", zap.Int64("UserID", from.ID), zap.Error(err))
	}
}

// trackGroup upserts the group row, logging and swallowing failures.
func (b *Bot) trackGroup(ctx context.Context, chat *tgbotapi.Chat) {
	inviteLink := ""
	if chat.UserName != "" {
		inviteLink = "https://t.me/" + chat.UserName
	}
	if err := b.groups.Upsert(ctx, chat.ID, chat.Title, chat.UserName, inviteLink); err != nil {
		b.logger.Error("upsert group", zap.Int64("Chat ID", chat.ID), zap.Error(err))
	}
}

func (b *Bot) commandsList() string {
	names := make([]string, 0, len(b.config.Commands))
	for name := range b.config.Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := []string{"📋 **AVAILABLE COMMANDS**", "────────────────────────────"}
	for _, name := range names {
		info := b.config.Commands[name]
		lines = append(lines, fmt.Sprintf("• `/%s [%s]` → %s", name, info.Param, info.Description))
	}
	lines = append(lines, b.config.Footer)
	return strings.Join(lines, "\n")
}

func (b *Bot) usageHint(command string) string {
	if info, ok := b.config.Commands[command]; ok && info.Param != "" {
		return info.Param
	}
	return "query"
}

func (b *Bot) sendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendHTML(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendPlain(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func escape(s string) string {
	return html.EscapeString(s)
}
