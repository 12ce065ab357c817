package settings

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/JillVernus/screentimed/internal/clock"
	"github.com/JillVernus/screentimed/internal/database"
)

// Store is the durable key-value settings store. All values are stored as
// strings; counters are decimal-string integers. Day-scoped counters embed
// the current date in their key so a new day naturally starts fresh.
type Store struct {
	db    database.DB
	clock clock.Clock
}

// PauseConfig is a read-only snapshot of the pause rules. It is re-read from
// the store on every eligibility check, so settings edits take effect
// without a restart.
type PauseConfig struct {
	DailyBudgetMinutes   int
	MaxDurationMinutes   int
	CooldownMinutes      int
	MinActiveTimeMinutes int
	Enabled              bool
}

// TelegramConfig holds the remote-control bot settings.
type TelegramConfig struct {
	Enabled     bool
	BotToken    string
	AdminChatID int64
}

// NewStore opens the settings table, creating it and seeding defaults on
// first run.
func NewStore(db database.DB, clk clock.Clock) (*Store, error) {
	s := &Store{db: db, clock: clk}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	if err := s.seedDefaults(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

func (s *Store) seedDefaults() error {
	seeded := 0
	for _, d := range defaults {
		res, err := s.db.Exec(
			"INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)",
			d.Key, d.Value,
		)
		if err != nil {
			return fmt.Errorf("failed to seed default %q: %w", d.Key, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			seeded += int(n)
		}
	}
	if seeded > 0 {
		log.Printf("📦 Seeded %d default settings", seeded)
	}
	return nil
}

// Get returns the raw value for key and whether it was present.
func (s *Store) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("⚠️ Settings read failed for %q: %v", key, err)
		}
		return "", false
	}
	return value, true
}

// Set writes key=value through to the store.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

// All returns every stored key/value pair, date-scoped counters
// included.
func (s *Store) All() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// getInt parses key as an integer, falling back to def when absent or
// malformed.
func (s *Store) getInt(key string, def int) int {
	raw, ok := s.Get(key)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

// setInt writes an integer counter; failures are logged and swallowed so a
// store outage degrades durability, not correctness.
func (s *Store) setInt(key string, v int) {
	if err := s.Set(key, strconv.Itoa(v)); err != nil {
		log.Printf("⚠️ %v", err)
	}
}

// dateKey scopes name to the current date, e.g. remaining_time_2026-08-30.
func (s *Store) dateKey(name string) string {
	return name + "_" + s.clock.Today()
}

// Passcode returns the stored 4-digit passcode.
func (s *Store) Passcode() string {
	if code, ok := s.Get("passcode"); ok {
		return code
	}
	return "0000"
}

// DailyLimitMinutes returns the configured limit for a weekday
// (0 = Monday ... 6 = Sunday).
func (s *Store) DailyLimitMinutes(weekday int) int {
	if weekday < 0 || weekday > 6 {
		return 120
	}
	return s.getInt(WeekdayKeys[weekday], 120)
}

// WarningConfig returns the threshold minutes and message for warning n
// (1 or 2).
func (s *Store) WarningConfig(n int) (int, string) {
	minutes := s.getInt(fmt.Sprintf("warning%d_minutes", n), 5)
	message, ok := s.Get(fmt.Sprintf("warning%d_message", n))
	if !ok || message == "" {
		message = fmt.Sprintf("%d minutes remaining!", minutes)
	}
	return minutes, message
}

// BlockingMessage returns the text shown on the blocking screen.
func (s *Store) BlockingMessage() string {
	if msg, ok := s.Get("blocking_message"); ok && msg != "" {
		return msg
	}
	return "Your screen time limit has been reached."
}

// PauseEnabled reports whether the pause feature is switched on.
func (s *Store) PauseEnabled() bool {
	raw, ok := s.Get("pause_enabled")
	if !ok {
		return true
	}
	return raw == "1"
}

// PauseConfig loads a fresh snapshot of the pause rules.
func (s *Store) PauseConfig() PauseConfig {
	return PauseConfig{
		DailyBudgetMinutes:   s.getInt("pause_daily_budget", 45),
		MaxDurationMinutes:   s.getInt("pause_max_duration", 20),
		CooldownMinutes:      s.getInt("pause_cooldown", 15),
		MinActiveTimeMinutes: s.getInt("pause_min_active_time", 10),
		Enabled:              s.PauseEnabled(),
	}
}

// TelegramConfig loads the remote-control bot settings.
func (s *Store) TelegramConfig() TelegramConfig {
	cfg := TelegramConfig{}
	if raw, ok := s.Get("telegram_enabled"); ok {
		cfg.Enabled = raw == "1"
	}
	cfg.BotToken, _ = s.Get("telegram_bot_token")
	if raw, ok := s.Get("telegram_admin_chat_id"); ok && raw != "" {
		if id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			cfg.AdminChatID = id
		}
	}
	return cfg
}

// RemainingToday returns today's persisted countdown value, if any.
func (s *Store) RemainingToday() (int, bool) {
	raw, ok := s.Get(s.dateKey("remaining_time"))
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}

// SaveRemainingToday persists today's countdown value.
func (s *Store) SaveRemainingToday(seconds int) {
	s.setInt(s.dateKey("remaining_time"), seconds)
}

// SessionActiveToday returns the seconds the countdown has actively run today.
func (s *Store) SessionActiveToday() int {
	return s.getInt(s.dateKey("session_active"), 0)
}

// SaveSessionActiveToday persists the active-seconds counter.
func (s *Store) SaveSessionActiveToday(seconds int) {
	s.setInt(s.dateKey("session_active"), seconds)
}

// PauseUsedToday returns the pause seconds consumed today.
func (s *Store) PauseUsedToday() int {
	return s.getInt(s.dateKey("pause_used"), 0)
}

// SavePauseUsedToday persists the consumed pause seconds.
func (s *Store) SavePauseUsedToday(seconds int) {
	s.setInt(s.dateKey("pause_used"), seconds)
}

// LastPauseEnd returns the Unix timestamp of the most recent pause end.
// This key is a single rolling value, not scoped to a date.
func (s *Store) LastPauseEnd() int64 {
	raw, ok := s.Get("pause_last_end_timestamp")
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// SaveLastPauseEnd persists the pause-end timestamp.
func (s *Store) SaveLastPauseEnd(ts int64) {
	if err := s.Set("pause_last_end_timestamp", strconv.FormatInt(ts, 10)); err != nil {
		log.Printf("⚠️ %v", err)
	}
}

// AppendPauseLog records a completed pause as HH:MM:SS:<seconds>s in today's
// comma-separated pause log.
func (s *Store) AppendPauseLog(durationSeconds int) {
	entry := fmt.Sprintf("%s:%ds", s.clock.Now().Format("15:04:05"), durationSeconds)
	key := s.dateKey("pause_log")

	existing, _ := s.Get(key)
	updated := entry
	if existing != "" {
		updated = existing + "," + entry
	}
	if err := s.Set(key, updated); err != nil {
		log.Printf("⚠️ %v", err)
	}
}

// PauseLogToday returns today's pause log entries in order.
func (s *Store) PauseLogToday() []string {
	raw, ok := s.Get(s.dateKey("pause_log"))
	if !ok || raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
