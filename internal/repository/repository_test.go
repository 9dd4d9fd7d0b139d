package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"osintbot/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	return db
}

func TestUserUpsertPreservesCounter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	lookups := NewLookupRepository(db)

	if _, err := users.UpsertFromTelegram(ctx, 100, "First", "", "old_handle"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := lookups.Record(ctx, &model.Lookup{UserID: 100, Command: "ip", Query: "1.1.1.1", Response: `{"ok":true}`}); err != nil {
		t.Fatalf("record: %v", err)
	}

	user, err := users.UpsertFromTelegram(ctx, 100, "First", "Last", "new_handle")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if user.Lookups != 1 {
		t.Fatalf("lookup counter = %d, want 1", user.Lookups)
	}

	found, err := users.FindByTelegramID(ctx, 100)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.Username != "new_handle" || found.LastName != "Last" {
		t.Fatalf("profile not refreshed: %+v", found)
	}
}

func TestRecordLookupKeepsCounterAndLogInStep(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	lookups := NewLookupRepository(db)

	if _, err := users.UpsertFromTelegram(ctx, 200, "A", "", "a"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	for i := 0; i < 3; i++ {
		lookup := &model.Lookup{UserID: 200, Command: "num", Query: "9999999999", Response: `{}`}
		if err := lookups.Record(ctx, lookup); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	user, err := users.FindByTelegramID(ctx, 200)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if user.Lookups != 3 {
		t.Fatalf("counter = %d, want 3", user.Lookups)
	}
	total, err := lookups.CountAll(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 3 {
		t.Fatalf("audit rows = %d, want 3", total)
	}

	rows, err := lookups.ListByUser(ctx, 200, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("listed %d rows, want 2", len(rows))
	}
}

func TestBanUpsertReplacesReason(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bans := NewBanRepository(db)

	if err := bans.Upsert(ctx, 300, "spam", 1); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if err := bans.Upsert(ctx, 300, "abuse", 2); err != nil {
		t.Fatalf("re-ban: %v", err)
	}

	banned, err := bans.IsBanned(ctx, 300)
	if err != nil {
		t.Fatalf("is banned: %v", err)
	}
	if !banned {
		t.Fatalf("user should be banned")
	}

	var ban model.Ban
	if err := db.Where("telegram_id = ?", 300).First(&ban).Error; err != nil {
		t.Fatalf("load ban: %v", err)
	}
	if ban.Reason != "abuse" || ban.BannedBy != 2 {
		t.Fatalf("ban not replaced: %+v", ban)
	}

	var count int64
	if err := db.Model(&model.Ban{}).Count(&count).Error; err != nil {
		t.Fatalf("count bans: %v", err)
	}
	if count != 1 {
		t.Fatalf("ban rows = %d, want 1", count)
	}

	if err := bans.Remove(ctx, 300); err != nil {
		t.Fatalf("unban: %v", err)
	}
	banned, err = bans.IsBanned(ctx, 300)
	if err != nil {
		t.Fatalf("is banned after remove: %v", err)
	}
	if banned {
		t.Fatalf("user should be unbanned")
	}
}

func TestAdminAddIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	admins := NewAdminRepository(db)

	if err := admins.Add(ctx, 400, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := admins.Add(ctx, 400, 2); err != nil {
		t.Fatalf("second add: %v", err)
	}
	count, err := admins.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("admin rows = %d, want 1", count)
	}

	if err := admins.Bootstrap(ctx, []int64{400, 401, 402}, 1); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	count, err = admins.Count(ctx)
	if err != nil {
		t.Fatalf("count after bootstrap: %v", err)
	}
	if count != 3 {
		t.Fatalf("admin rows = %d, want 3", count)
	}
}

func TestLeaderboardAndTopCommands(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	lookups := NewLookupRepository(db)

	for _, id := range []int64{501, 502, 503} {
		if _, err := users.UpsertFromTelegram(ctx, id, "u", "", ""); err != nil {
			t.Fatalf("upsert %d: %v", id, err)
		}
	}
	record := func(userID int64, command string, times int) {
		for i := 0; i < times; i++ {
			if err := lookups.Record(ctx, &model.Lookup{UserID: userID, Command: command, Query: "q", Response: `{}`}); err != nil {
				t.Fatalf("record: %v", err)
			}
		}
	}
	record(501, "ip", 1)
	record(502, "num", 4)
	record(503, "ip", 2)

	top, err := users.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) != 2 || top[0].TelegramID != 502 || top[1].TelegramID != 503 {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}

	commands, err := lookups.TopCommands(ctx, 10)
	if err != nil {
		t.Fatalf("top commands: %v", err)
	}
	if len(commands) != 2 || commands[0].Command != "num" || commands[0].Count != 4 {
		t.Fatalf("unexpected command ranking: %+v", commands)
	}

	daily, err := lookups.DailyBreakdown(ctx, 7)
	if err != nil {
		t.Fatalf("daily breakdown: %v", err)
	}
	var total int64
	for _, row := range daily {
		total += row.Count
	}
	if total != 7 {
		t.Fatalf("daily rows sum to %d, want 7", total)
	}
}

func TestGroupUpsertRefreshes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	groups := NewGroupRepository(db)

	if err := groups.Upsert(ctx, -100500, "Old Title", "", ""); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := groups.Upsert(ctx, -100500, "New Title", "handle", "https://t.me/+x"); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	all, err := groups.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("group rows = %d, want 1", len(all))
	}
	if all[0].Title != "New Title" || all[0].Username != "handle" {
		t.Fatalf("group not refreshed: %+v", all[0])
	}
}

func TestSettingRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	settings := NewSettingRepository(db)

	if _, err := settings.Get(ctx, "maintenance"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found for unset key, got %v", err)
	}
	if err := settings.Set(ctx, "maintenance", "off"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := settings.Set(ctx, "maintenance", "on"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	value, err := settings.Get(ctx, "maintenance")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "on" {
		t.Fatalf("value = %q, want on", value)
	}
}

func TestUserDeleteAndSearch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	if _, err := users.UpsertFromTelegram(ctx, 600, "Aarav", "Sharma", "aarav_s"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := users.UpsertFromTelegram(ctx, 601, "Zoya", "Khan", "zk"); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	matches, err := users.Search(ctx, "aarav", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].TelegramID != 600 {
		t.Fatalf("unexpected search result: %+v", matches)
	}

	if err := users.Delete(ctx, 600); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := users.FindByTelegramID(ctx, 600); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found after delete, got %v", err)
	}

	ids, err := users.ListIDs(ctx)
	if err != nil {
		t.Fatalf("list ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != 601 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
