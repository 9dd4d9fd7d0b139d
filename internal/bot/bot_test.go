package bot

import (
	"strings"
	"testing"

	"osintbot/internal/config"
)

func TestUsageHintPrefersCatalogParam(t *testing.T) {
	b := newTestBot(t, config.Config{
		Commands: map[string]config.Command{
			"num": {Param: "10-digit number"},
		},
	})

	if got := b.usageHint("num"); got != "10-digit number" {
		t.Fatalf("hint = %q", got)
	}
	if got := b.usageHint("unknowncmd"); got != "query" {
		t.Fatalf("fallback hint = %q", got)
	}
}

func TestCommandsListCoversCatalog(t *testing.T) {
	b := newTestBot(t, config.Config{
		Commands: map[string]config.Command{
			"ip":  {Param: "IP address", Description: "IP geolocation"},
			"num": {Param: "10-digit number", Description: "Phone lookup"},
		},
		Footer: "footer text",
	})

	list := b.commandsList()
	for _, want := range []string{"`/ip [IP address]`", "`/num [10-digit number]`", "IP geolocation", "footer text"} {
		if !strings.Contains(list, want) {
			t.Fatalf("commands list missing %q:\n%s", want, list)
		}
	}
	// Sorted output keeps the listing stable across runs.
	if strings.Index(list, "/ip") > strings.Index(list, "/num") {
		t.Fatalf("commands not sorted:\n%s", list)
	}
}

func TestSplitArgsHonorsQuotes(t *testing.T) {
	args := splitArgs(`123456 "spamming lookup results"`)
	if len(args) != 2 {
		t.Fatalf("args = %v", args)
	}
	if args[1] != "spamming lookup results" {
		t.Fatalf("quoted arg = %q", args[1])
	}

	if got := splitArgs("   "); len(got) != 0 {
		t.Fatalf("blank input produced args: %v", got)
	}
}

func TestIntArgOr(t *testing.T) {
	if got := intArgOr("", 7); got != 7 {
		t.Fatalf("default = %d", got)
	}
	if got := intArgOr("14", 7); got != 14 {
		t.Fatalf("parsed = %d", got)
	}
	if got := intArgOr("abc", 7); got != 7 {
		t.Fatalf("malformed = %d", got)
	}
	if got := intArgOr("-3", 7); got != 7 {
		t.Fatalf("negative = %d", got)
	}
}

func TestTruncateRunesAppendsEllipsis(t *testing.T) {
	if got := truncateRunes("short", 10); got != "short" {
		t.Fatalf("short input changed: %q", got)
	}
	got := truncateRunes(strings.Repeat("я", 12), 10)
	if got != strings.Repeat("я", 7)+"..." {
		t.Fatalf("truncated = %q", got)
	}
	// The ellipsis counts against the cap: truncated output never exceeds max.
	for _, max := range []int{2, 3, 4, 10, 4000} {
		if got := truncateRunes(strings.Repeat("я", 5000), max); len([]rune(got)) > max {
			t.Fatalf("truncateRunes(_, %d) produced %d runes", max, len([]rune(got)))
		}
	}
}

func TestAdminCommandsListCarriesFooter(t *testing.T) {
	b := newTestBot(t, config.Config{Footer: "\n\nfooter text"})

	list := b.adminCommandsList()
	if !strings.HasSuffix(list, "footer text") {
		t.Fatalf("admin commands list missing footer:\n%s", list)
	}
	if !strings.Contains(list, "`/broadcast`") {
		t.Fatalf("admin commands list missing broadcast:\n%s", list)
	}
}
