package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Command describes one upstream lookup service in the catalog.
// URL holds exactly one "{}" placeholder for the query.
type Command struct {
	URL           string   `json:"url"`
	Param         string   `json:"param"`
	LogChannelID  int64    `json:"log_channel_id"`
	Description   string   `json:"description"`
	ExtraDenylist []string `json:"extra_denylist"`
}

// Channel is a chat the user must be a member of before running lookups.
type Channel struct {
	Name string `json:"name"`
	Link string `json:"link"`
	ID   int64  `json:"id"`
}

// Branding is stamped into every lookup envelope.
type Branding struct {
	Developer string `json:"developer"`
	PoweredBy string `json:"powered_by"`
}

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken   string
	DatabaseURL     string
	OwnerID         int64
	InitialAdmins   []int64
	Commands        map[string]Command
	ForceChannels   []Channel
	GlobalDenylist  []string
	Branding        Branding
	RedirectBot     string
	Footer          string
	LookupFooter    string
	UpstreamTimeout time.Duration
	CopyTTL         time.Duration
	CopyCapacity    int
	SweepInterval   time.Duration
	InlineLimit     int
	HealthAddr      string
	Debug           bool
}

// Load reads configuration from environment variables with sane defaults.
// COMMANDS_PATH and CHANNELS_PATH point to optional JSON files replacing the
// built-in command catalog and force-join channel list.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:   strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		OwnerID:         parseID(os.Getenv("OWNER_ID")),
		InitialAdmins:   parseIDList(os.Getenv("INITIAL_ADMINS")),
		Commands:        defaultCommands(),
		ForceChannels:   defaultChannels(),
		GlobalDenylist:  defaultDenylist(),
		Branding:        Branding{Developer: "@Nullprotocol_X", PoweredBy: "NULL PROTOCOL"},
		RedirectBot:     "@osintfatherNullBot",
		Footer:          defaultFooter,
		UpstreamTimeout: parseSeconds(os.Getenv("UPSTREAM_TIMEOUT_SECONDS"), 10*time.Second),
		CopyTTL:         parseSeconds(os.Getenv("COPY_TTL_SECONDS"), 5*time.Minute),
		CopyCapacity:    parseCount(os.Getenv("COPY_CACHE_SIZE"), 512),
		SweepInterval:   parseSeconds(os.Getenv("SWEEP_INTERVAL_SECONDS"), time.Minute),
		InlineLimit:     parseCount(os.Getenv("INLINE_LIMIT"), 4000),
		HealthAddr:      healthAddr(),
		Debug:           strings.EqualFold(strings.TrimSpace(os.Getenv("DEBUG")), "true"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "bot_database.db"
	}

	if dev := strings.TrimSpace(os.Getenv("BRAND_DEVELOPER")); dev != "" {
		cfg.Branding.Developer = dev
	}
	if by := strings.TrimSpace(os.Getenv("BRAND_POWERED_BY")); by != "" {
		cfg.Branding.PoweredBy = by
	}
	if redirect := strings.TrimSpace(os.Getenv("REDIRECT_BOT")); redirect != "" {
		cfg.RedirectBot = redirect
	}
	cfg.LookupFooter = fmt.Sprintf(
		"\n\n━━━━━━━━━━━━━━━━━━━━\n👨‍💻 Developer: %s\n⚡ Powered by: %s",
		cfg.Branding.Developer, cfg.Branding.PoweredBy,
	)

	if path := strings.TrimSpace(os.Getenv("COMMANDS_PATH")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load command catalog: %w", err)
		}
		var commands map[string]Command
		if err := json.Unmarshal(raw, &commands); err != nil {
			return cfg, fmt.Errorf("parse command catalog %s: %w", path, err)
		}
		cfg.Commands = commands
	}
	if path := strings.TrimSpace(os.Getenv("CHANNELS_PATH")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load force-join channels: %w", err)
		}
		var channels []Channel
		if err := json.Unmarshal(raw, &channels); err != nil {
			return cfg, fmt.Errorf("parse force-join channels %s: %w", path, err)
		}
		cfg.ForceChannels = channels
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("BOT_TOKEN is required")
	}

	return cfg, nil
}

func parseID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func parseIDList(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		if id := parseID(part); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseSeconds(raw string, fallback time.Duration) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func parseCount(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// healthAddr prefers HEALTH_ADDR, then the hosting platform's PORT variable.
func healthAddr() string {
	if addr := strings.TrimSpace(os.Getenv("HEALTH_ADDR")); addr != "" {
		return addr
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		return ":" + port
	}
	return ":8080"
}

const defaultFooter = "\n\n────────────────────────────\n⚡ Fast • Accurate • Secure\n👨‍💻 DEVELOPED BY NULL PROTOCOL"

// defaultChannels lists the channels users must join before running lookups.
func defaultChannels() []Channel {
	return []Channel{
		{Name: "All Data Here", Link: "https://t.me/all_data_here", ID: -1003090922367},
		{Name: "OSINT Lookup", Link: "https://t.me/osint_lookup", ID: -1003698567122},
	}
}

// defaultDenylist lists reseller branding stripped from every response.
func defaultDenylist() []string {
	return []string{
		"@patelkrish_99", "patelkrish_99", "t.me/anshapi", "anshapi",
		"@Kon_Hu_Mai", "Kon_Hu_Mai", "Dm to buy access",
	}
}

// defaultCommands is the built-in lookup catalog. Log channel IDs default to
// zero (mirroring off) because the bot must be made a member of a channel
// before it can post there; deployments enable them via COMMANDS_PATH.
func defaultCommands() map[string]Command {
	return map[string]Command{
		"num": {
			URL:         "https://num-free-rootx-jai-shree-ram-14-day.vercel.app/?key=lundkinger&number={}",
			Param:       "10-digit number",
			Description: "Phone number basic lookup",
			ExtraDenylist: []string{
				"dm to buy", "owner", "@kon_hu_mai",
				"Ruk ja bhencho itne m kya unlimited request lega?? Paid lena h to bolo 100-400₹ @Simpleguy444",
			},
		},
		"tg2num": {
			URL:         "https://tg2num-owner-api.vercel.app/?userid={}",
			Param:       "user id",
			Description: "Telegram user ID to number (if available)",
			ExtraDenylist: []string{
				"code", "validity", "hours_remaining", "days_remaining", "expires_on",
				"https://t.me/AbdulBotzOfficial", "AbdulDevStoreBot", "@AbdulDevStoreBot", "credit",
			},
		},
		"vehicle": {
			URL:         "https://vehicle-info-aco-api.vercel.app/info?vehicle={}",
			Param:       "RC number",
			Description: "Vehicle registration details",
		},
		"vchalan": {
			URL:         "https://api.b77bf911.workers.dev/vehicle?registration={}",
			Param:       "RC number",
			Description: "Pending & paid chalan info",
		},
		"ip": {
			URL:         "https://abbas-apis.vercel.app/api/ip?ip={}",
			Param:       "IP address",
			Description: "IP geolocation & ISP details",
		},
		"email": {
			URL:         "https://abbas-apis.vercel.app/api/email?mail={}",
			Param:       "email",
			Description: "Email validation & domain info",
		},
		"ffinfo": {
			URL:         "https://official-free-fire-info.onrender.com/player-info?key=DV_M7-INFO_API&uid={}",
			Param:       "uid",
			Description: "Free Fire basic player info",
		},
		"ffban": {
			URL:         "https://abbas-apis.vercel.app/api/ff-ban?uid={}",
			Param:       "uid",
			Description: "Free Fire ban status check",
		},
		"pincode": {
			URL:         "https://api.postalpincode.in/pincode/{}",
			Param:       "6-digit pincode",
			Description: "Area & post office details",
		},
		"ifsc": {
			URL:         "https://abbas-apis.vercel.app/api/ifsc?ifsc={}",
			Param:       "IFSC code",
			Description: "Bank branch details",
		},
		"gst": {
			URL:         "https://api.b77bf911.workers.dev/gst?number={}",
			Param:       "GST number",
			Description: "GST registration info",
		},
		"insta": {
			URL:         "https://mkhossain.alwaysdata.net/instanum.php?username={}",
			Param:       "username",
			Description: "Instagram public profile info",
		},
		"tginfo": {
			URL:         "https://openosintx.vippanel.in/tgusrinfo.php?key=OpenOSINTX-FREE&user={}",
			Param:       "username/userid",
			Description: "Telegram basic info",
		},
		"tginfopro": {
			URL:         "https://api.b77bf911.workers.dev/telegram?user={}",
			Param:       "username/userid",
			Description: "Telegram advanced profile data",
		},
		"git": {
			URL:         "https://abbas-apis.vercel.app/api/github?username={}",
			Param:       "username",
			Description: "GitHub account details",
		},
		"pak": {
			URL:         "https://abbas-apis.vercel.app/api/pakistan?number={}",
			Param:       "number",
			Description: "Pakistan phone lookup",
		},
	}
}
