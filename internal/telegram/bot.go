package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/JillVernus/screentimed/internal/engine"
	"github.com/JillVernus/screentimed/internal/notify"
	"github.com/JillVernus/screentimed/internal/settings"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	defaultAPIBase = "https://api.telegram.org/bot"
	pollTimeout    = 30 // seconds, long-poll window
)

// Bot is a long-polling Telegram front end for remote control. It
// re-reads its configuration from the settings store on every poll
// cycle, so enabling the bot or rotating the token needs no restart.
type Bot struct {
	store      *settings.Store
	engine     *engine.Engine
	dispatcher *notify.Dispatcher
	client     *http.Client
	api        string // Bot API base, swapped for a local server in tests
	offset     int64
}

// NewBot creates the bot. It does nothing until Run is called.
func NewBot(store *settings.Store, e *engine.Engine, d *notify.Dispatcher) *Bot {
	return &Bot{
		store:      store,
		engine:     e,
		dispatcher: d,
		api:        defaultAPIBase,
		client: &http.Client{
			// long poll plus headroom
			Timeout: (pollTimeout + 10) * time.Second,
		},
	}
}

// Run polls for updates until ctx is cancelled. When the bot is
// disabled in settings it idles and keeps checking.
func (b *Bot) Run(ctx context.Context) {
	log.Printf("📡 Telegram bot loop started")
	for {
		select {
		case <-ctx.Done():
			log.Printf("⏹ Telegram bot loop stopped")
			return
		default:
		}

		cfg := b.store.TelegramConfig()
		if !cfg.Enabled || cfg.BotToken == "" {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Second):
			}
			continue
		}

		if err := b.poll(ctx, cfg); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("⚠️ Telegram poll failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
		}
	}
}

// poll performs one getUpdates round and handles whatever arrived.
func (b *Bot) poll(ctx context.Context, cfg settings.TelegramConfig) error {
	url := fmt.Sprintf("%s%s/getUpdates?offset=%d&timeout=%d",
		b.api, cfg.BotToken, b.offset, pollTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if !gjson.GetBytes(body, "ok").Bool() {
		return fmt.Errorf("getUpdates rejected: %s", gjson.GetBytes(body, "description").String())
	}

	for _, update := range gjson.GetBytes(body, "result").Array() {
		b.offset = update.Get("update_id").Int() + 1

		chatID := update.Get("message.chat.id").Int()
		text := strings.TrimSpace(update.Get("message.text").String())
		if chatID == 0 || text == "" {
			continue
		}
		b.handleMessage(cfg, chatID, text)
	}
	return nil
}

// handleMessage authorizes the sender and routes the command. /start
// and /chatid work for anyone so the admin can discover their chat id;
// everything else requires the configured admin chat.
func (b *Bot) handleMessage(cfg settings.TelegramConfig, chatID int64, text string) {
	command, arg := splitCommand(text)

	switch command {
	case "/start":
		b.send(cfg, chatID, "Screen time control bot.\nUse /chatid to find your chat id, then set it as telegram_admin_chat_id to enable commands.")
		return
	case "/chatid":
		b.send(cfg, chatID, fmt.Sprintf("Your chat id: %d", chatID))
		return
	}

	if cfg.AdminChatID == 0 || chatID != cfg.AdminChatID {
		log.Printf("⚠️ Telegram command from unauthorized chat %d", chatID)
		b.send(cfg, chatID, "Not authorized.")
		return
	}

	reply := b.dispatchCommand(command, arg)
	if reply == "" {
		reply = "Unknown command. Try /help."
	}
	b.send(cfg, chatID, reply)
}

func splitCommand(text string) (string, string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	// strip a bot-name suffix like /status@my_bot
	cmd := fields[0]
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	return strings.ToLower(cmd), arg
}

// send pushes a plain-text message and logs delivery failures.
func (b *Bot) send(cfg settings.TelegramConfig, chatID int64, text string) {
	payload, _ := sjson.SetBytes([]byte(`{}`), "chat_id", chatID)
	payload, _ = sjson.SetBytes(payload, "text", text)

	url := b.api + cfg.BotToken + "/sendMessage"
	resp, err := b.client.Post(url, "application/json", strings.NewReader(string(payload)))
	if err != nil {
		log.Printf("⚠️ Telegram send failed: %v", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !gjson.GetBytes(body, "ok").Bool() {
		log.Printf("⚠️ Telegram send rejected: %s", gjson.GetBytes(body, "description").String())
	}
}

// NotifyAdmin sends a one-off message to the admin chat if the bot is
// configured. Used for startup and shutdown notices.
func (b *Bot) NotifyAdmin(text string) {
	cfg := b.store.TelegramConfig()
	if !cfg.Enabled || cfg.BotToken == "" || cfg.AdminChatID == 0 {
		return
	}
	b.send(cfg, cfg.AdminChatID, text)
}
