package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/extract"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/p24"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/store"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/watch"
)

// Router wires Telegram updates to handlers. All collaborators come in
// through the constructor; there is no package-level state.
type Router struct {
	bot       *tgbotapi.BotAPI
	log       *zap.Logger
	repo      store.Repo
	extractor *extract.Extractor
	checker   *watch.Checker
	client    *p24.Client

	adminChatID   int64
	selfCheckHold bool
}

// NewRouter creates a new Telegram router.
func NewRouter(
	bot *tgbotapi.BotAPI,
	log *zap.Logger,
	repo store.Repo,
	extractor *extract.Extractor,
	checker *watch.Checker,
	client *p24.Client,
	adminChatID int64,
	selfCheckHold bool,
) *Router {
	return &Router{
		bot:           bot,
		log:           log,
		repo:          repo,
		extractor:     extractor,
		checker:       checker,
		client:        client,
		adminChatID:   adminChatID,
		selfCheckHold: selfCheckHold,
	}
}

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		r.handleStart(ctx, chatID, msg.From)
	case strings.HasPrefix(text, "/doctors"):
		r.handleDoctors(ctx, chatID)
	case strings.HasPrefix(text, "/mysubs"):
		r.handleMySubs(ctx, chatID)
	case strings.HasPrefix(text, "/subscribe_"):
		r.withDoctorID(chatID, text, "/subscribe_", func(id int64) {
			r.handleSubscribe(ctx, chatID, msg.From, id)
		})
	case strings.HasPrefix(text, "/unsubscribe_"):
		r.withDoctorID(chatID, text, "/unsubscribe_", func(id int64) {
			r.handleUnsubscribe(ctx, chatID, id)
		})
	case strings.HasPrefix(text, "/check_"):
		r.withDoctorID(chatID, text, "/check_", func(id int64) {
			r.handleCheck(ctx, chatID, id)
		})
	case strings.HasPrefix(text, "/stats_"):
		r.withDoctorID(chatID, text, "/stats_", func(id int64) {
			r.handleStats(ctx, chatID, id)
		})
	case strings.HasPrefix(text, "/disable_"):
		r.withDoctorID(chatID, text, "/disable_", func(id int64) {
			r.handleSetActive(ctx, chatID, id, false)
		})
	case strings.HasPrefix(text, "/enable_"):
		r.withDoctorID(chatID, text, "/enable_", func(id int64) {
			r.handleSetActive(ctx, chatID, id, true)
		})
	default:
		// Anything else is treated as a pasted profile link or slug.
		r.handleOnboard(ctx, chatID, msg.From, text)
	}
}

// withDoctorID parses the numeric suffix of commands like /subscribe_12.
func (r *Router) withDoctorID(chatID int64, text, prefix string, fn func(int64)) {
	raw := strings.TrimPrefix(text, prefix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		r.sendText(chatID, "Malformed command, expected something like "+prefix+"1")
		return
	}
	fn(id)
}

func (r *Router) isAdmin(chatID int64) bool {
	return r.adminChatID != 0 && chatID == r.adminChatID
}

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}
