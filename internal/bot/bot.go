// Package bot implements the Telegram bot that serves stored articles
// and records like/dislike feedback.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"briefly/internal/domain/entity"
	"briefly/internal/observability/metrics"
	"briefly/internal/usecase/browse"
)

// Categories the bot exposes. These match the topic configuration of
// the collection pipeline.
const (
	CategoryGeopolitics = "geopolitics"
	CategoryLocal       = "singapore"
)

// Telegram rejects messages over 4096 characters; leave room for the
// header lines around the body.
const maxBodyChars = 3500

// Config holds bot configuration.
type Config struct {
	Token string

	// WebhookURL switches the bot from long polling to webhook mode
	// when non-empty. The bot registers <WebhookURL>/<token> with
	// Telegram and serves it on ListenAddr.
	WebhookURL string

	// ListenAddr is the webhook listen address. Defaults to ":8443".
	ListenAddr string

	// SessionTTL is the idle lifetime of a review session.
	SessionTTL time.Duration
}

// sender is the slice of the Telegram client the handlers use.
// *tgbotapi.BotAPI satisfies it; tests substitute a stub.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot handles Telegram updates: commands from users and callback
// queries from inline buttons. One update is processed at a time.
type Bot struct {
	api      sender
	client   *tgbotapi.BotAPI
	service  *browse.Service
	sessions *SessionStore
	config   Config
	logger   *slog.Logger
}

// New creates a Bot connected to the Telegram API.
func New(config Config, service *browse.Service, logger *slog.Logger) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	b := newWithSender(config, service, logger, client)
	b.client = client
	logger.Info("authorized on telegram", "username", client.Self.UserName)
	return b, nil
}

// newWithSender wires a Bot without touching the network. Run requires
// the concrete client and is unavailable on bots built this way.
func newWithSender(config Config, service *browse.Service, logger *slog.Logger, api sender) *Bot {
	if config.ListenAddr == "" {
		config.ListenAddr = ":8443"
	}
	return &Bot{
		api:      api,
		service:  service,
		sessions: NewSessionStore(config.SessionTTL),
		config:   config,
		logger:   logger,
	}
}

// Run receives updates until the context is canceled. Long polling by
// default; webhook mode when WebhookURL is configured.
func (b *Bot) Run(ctx context.Context) error {
	if b.client == nil {
		return errors.New("bot has no telegram client")
	}
	if b.config.WebhookURL != "" {
		return b.runWebhook(ctx)
	}
	return b.runPolling(ctx)
}

func (b *Bot) runPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.client.GetUpdatesChan(u)
	b.logger.Info("bot started", "mode", "polling")

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

func (b *Bot) runWebhook(ctx context.Context) error {
	path := "/" + b.client.Token

	wh, err := tgbotapi.NewWebhook(strings.TrimSuffix(b.config.WebhookURL, "/") + path)
	if err != nil {
		return fmt.Errorf("build webhook config: %w", err)
	}
	if _, err := b.client.Request(wh); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}

	updates := b.client.ListenForWebhook(path)
	srv := &http.Server{Addr: b.config.ListenAddr}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	b.logger.Info("bot started", "mode", "webhook", "addr", b.config.ListenAddr)

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return fmt.Errorf("webhook server: %w", err)
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes a single Telegram update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	kind := "other"

	switch {
	case update.CallbackQuery != nil:
		kind = b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		kind = update.Message.Command()
		b.handleCommand(ctx, update.Message)
	default:
		return
	}

	metrics.RecordBotUpdate(kind, time.Since(start))
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, chatID, userID)
	case "news":
		b.handleListing(ctx, chatID, userID, CategoryGeopolitics)
	case "local":
		b.handleListing(ctx, chatID, userID, CategoryLocal)
	case "label":
		b.handleLabel(ctx, chatID, userID)
	case "status":
		b.handleStatus(ctx, chatID, userID)
	default:
		b.reply(chatID, "Unknown command. Use /start to see available commands.")
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID, userID int64) {
	stats, _, err := b.service.Stats(ctx, userID)
	if err != nil {
		b.logger.Error("load user stats", "user_id", userID, "error", err)
		b.reply(chatID, "Something went wrong. Please try again later.")
		return
	}

	b.sessions.Put(b.sessions.Get(userID).Idle())

	text := fmt.Sprintf(
		"Welcome! I serve collected news articles and learn from your feedback.\n\n"+
			"Commands:\n"+
			"/news - browse geopolitics articles\n"+
			"/local - browse local articles\n"+
			"/label - review the next unseen article\n"+
			"/status - your progress\n\n"+
			"So far you responded to %d articles (%d 👍 / %d 👎).",
		stats.Total, stats.Likes, stats.Dislikes,
	)
	b.reply(chatID, text)
}

func (b *Bot) handleListing(ctx context.Context, chatID, userID int64, category string) {
	articles, err := b.service.Headlines(ctx, browse.ListOptions{Category: category})
	if err != nil {
		b.logger.Error("list headlines", "user_id", userID, "category", category, "error", err)
		b.reply(chatID, "Something went wrong. Please try again later.")
		return
	}
	if len(articles) == 0 {
		b.reply(chatID, "No articles in this category yet. Check back after the next collection run.")
		return
	}

	b.sessions.Put(b.sessions.Get(userID).Browse(category))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, article := range articles {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(truncate(article.Title, 60), callbackData("read", article.ID)),
		))
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%d recent articles. Tap one to read:", len(articles)))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(msg)
}

func (b *Bot) handleLabel(ctx context.Context, chatID, userID int64) {
	session := b.sessions.Get(userID)

	opts := browse.ListOptions{Limit: 1}
	if session.State == StateBrowsing && session.Category != "" {
		opts.Category = session.Category
	}

	articles, err := b.service.Unseen(ctx, userID, opts)
	if err != nil {
		b.logger.Error("list unseen articles", "user_id", userID, "error", err)
		b.reply(chatID, "Something went wrong. Please try again later.")
		return
	}
	if len(articles) == 0 {
		b.sessions.Put(session.Idle())
		b.reply(chatID, "All caught up! You've reviewed every available article. 🎉")
		return
	}

	b.showArticle(chatID, userID, articles[0])
}

func (b *Bot) handleStatus(ctx context.Context, chatID, userID int64) {
	stats, active, err := b.service.Stats(ctx, userID)
	if err != nil {
		b.logger.Error("load user stats", "user_id", userID, "error", err)
		b.reply(chatID, "Something went wrong. Please try again later.")
		return
	}

	remaining := active - stats.Total
	if remaining < 0 {
		remaining = 0
	}
	b.reply(chatID, fmt.Sprintf(
		"📊 Your progress:\n"+
			"Articles available: %d\n"+
			"Responded: %d (%d 👍 / %d 👎)\n"+
			"Remaining: %d",
		active, stats.Total, stats.Likes, stats.Dislikes, remaining,
	))
}

// handleCallback routes an inline button press and returns the action
// name for metrics.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) string {
	action, articleID, err := parseCallbackData(query.Data)
	if err != nil {
		b.answerCallback(query.ID, "")
		return "invalid"
	}

	userID := query.From.ID
	// Telegram omits the originating message on callbacks older than 48
	// hours; a private chat id equals the user id.
	chatID := userID
	if query.Message != nil {
		chatID = query.Message.Chat.ID
	}

	switch action {
	case "read":
		b.handleRead(ctx, query, chatID, userID, articleID)
	case "like":
		b.handleRespond(ctx, query, chatID, userID, articleID, entity.ResponseLike)
	case "dislike":
		b.handleRespond(ctx, query, chatID, userID, articleID, entity.ResponseDislike)
	default:
		b.answerCallback(query.ID, "")
		return "invalid"
	}
	return action
}

func (b *Bot) handleRead(ctx context.Context, query *tgbotapi.CallbackQuery, chatID, userID, articleID int64) {
	article, err := b.service.Read(ctx, articleID)
	if err != nil {
		if errors.Is(err, browse.ErrArticleNotFound) {
			b.answerCallback(query.ID, "Article is no longer available.")
			return
		}
		b.logger.Error("read article", "article_id", articleID, "error", err)
		b.answerCallback(query.ID, "Something went wrong.")
		return
	}

	b.answerCallback(query.ID, "")
	b.showArticle(chatID, userID, article)
}

func (b *Bot) handleRespond(ctx context.Context, query *tgbotapi.CallbackQuery, chatID, userID, articleID int64, response entity.Response) {
	err := b.service.Respond(ctx, userID, articleID, response)
	if err != nil {
		if errors.Is(err, browse.ErrArticleNotFound) {
			b.answerCallback(query.ID, "Article is no longer available.")
			return
		}
		b.logger.Error("record response", "user_id", userID, "article_id", articleID, "error", err)
		b.answerCallback(query.ID, "Something went wrong.")
		return
	}

	if response == entity.ResponseLike {
		b.answerCallback(query.ID, "Recorded 👍")
	} else {
		b.answerCallback(query.ID, "Recorded 👎")
	}

	// Advance to the next unseen article in the same flow.
	b.handleLabel(ctx, chatID, userID)
}

// showArticle sends one article with read/like/dislike buttons and
// moves the session into the viewing state.
func (b *Bot) showArticle(chatID, userID int64, article *entity.Article) {
	b.sessions.Put(b.sessions.Get(userID).View(article.ID))

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n", escapeMarkdown(article.Title))
	if article.Category != "" {
		fmt.Fprintf(&sb, "_%s_", article.Category)
		if article.SubCategory != "" {
			fmt.Fprintf(&sb, " / _%s_", article.SubCategory)
		}
		sb.WriteString("\n")
	}
	if !article.PublishedAt.IsZero() {
		fmt.Fprintf(&sb, "%s\n", article.PublishedAt.Format("2 Jan 2006 15:04"))
	}
	if article.Body != "" {
		fmt.Fprintf(&sb, "\n%s\n", escapeMarkdown(truncate(article.Body, maxBodyChars)))
	}
	if article.URL != "" {
		fmt.Fprintf(&sb, "\n%s", article.URL)
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👍 Like", callbackData("like", article.ID)),
			tgbotapi.NewInlineKeyboardButtonData("👎 Dislike", callbackData("dislike", article.ID)),
		),
	)
	b.send(msg)
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message", "chat_id", msg.ChatID, "error", err)
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		b.logger.Error("answer callback", "error", err)
	}
}

// callbackData encodes an inline button payload as "action|id".
func callbackData(action string, articleID int64) string {
	return action + "|" + strconv.FormatInt(articleID, 10)
}

func parseCallbackData(data string) (action string, articleID int64, err error) {
	action, idStr, ok := strings.Cut(data, "|")
	if !ok {
		return "", 0, fmt.Errorf("malformed callback data %q", data)
	}
	articleID, err = strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed callback data %q: %w", data, err)
	}
	return action, articleID, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// escapeMarkdown neutralizes the characters legacy Markdown treats as
// formatting, so arbitrary titles and bodies render as written.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
