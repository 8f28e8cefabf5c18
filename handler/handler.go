// Package handler routes Telegram updates into the interview engine and
// owns every user-facing reply string.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"casebot/internal/usecase"
)

const submitTimeout = 30 * time.Second

// Reply texts. The bot speaks the operators' language; only /whoami is
// technical output.
const (
	msgDenied          = "عذراً، غير مصرح لك باستخدام هذا الأمر."
	msgCanceled        = "تم إلغاء الجلسة الحالية."
	msgNothingToCancel = "لا توجد جلسة جارية لإلغائها."
	msgSaved           = "تم حفظ الحالة بنجاح، شكراً لك."
	msgSaveFailed      = "حدث خطأ أثناء حفظ البيانات. أعد المحاولة بإرسال /new."
	msgRetryYesNo      = "الرجاء الإجابة بنعم أو لا."
)

// Interviewer is the engine surface the handler drives.
type Interviewer interface {
	Begin(identity int64, displayName string) string
	Cancel(identity int64) bool
	Submit(ctx context.Context, identity int64, raw string) (usecase.SubmitResult, error)
}

// botAPI is the minimal Telegram interface required by Handler.
// *tgbotapi.BotAPI satisfies it.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler dispatches inbound updates: commands to their operations, free
// text to Submit. An empty allow-list permits everyone; otherwise only
// listed identities may start a flow or request the export link. /whoami
// is always permitted.
type Handler struct {
	bot           botAPI
	svc           Interviewer
	allowed       map[int64]struct{}
	spreadsheetID string
	log           *slog.Logger
}

// NewHandler creates a Handler. allowedIDs may be empty (unrestricted).
func NewHandler(bot botAPI, svc Interviewer, allowedIDs []int64, spreadsheetID string, log *slog.Logger) (*Handler, error) {
	if bot == nil {
		return nil, errors.New("handler: bot must not be nil")
	}
	if svc == nil {
		return nil, errors.New("handler: interviewer must not be nil")
	}
	if spreadsheetID == "" {
		return nil, errors.New("handler: spreadsheet id must not be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	var allowed map[int64]struct{}
	if len(allowedIDs) > 0 {
		allowed = make(map[int64]struct{}, len(allowedIDs))
		for _, id := range allowedIDs {
			allowed[id] = struct{}{}
		}
	}
	return &Handler{bot: bot, svc: svc, allowed: allowed, spreadsheetID: spreadsheetID, log: log}, nil
}

var newUUID = func() string {
	return uuid.NewString()
}

// HandleUpdate processes one inbound update. Never returns an error: every
// failure is either replied to the operator or logged.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil {
		return
	}
	identity := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		h.handleCommand(chatID, identity, displayName(msg.From), msg.Command())
		return
	}
	h.handleText(ctx, chatID, identity, msg.Text)
}

func (h *Handler) handleCommand(chatID, identity int64, name, command string) {
	switch command {
	case "start", "new":
		if !h.authorized(identity) {
			h.reply(chatID, msgDenied)
			return
		}
		h.reply(chatID, h.svc.Begin(identity, name))
	case "cancel":
		if h.svc.Cancel(identity) {
			h.reply(chatID, msgCanceled)
		} else {
			h.reply(chatID, msgNothingToCancel)
		}
	case "whoami":
		h.reply(chatID, whoamiText(identity, name))
	case "export":
		if !h.authorized(identity) {
			h.reply(chatID, msgDenied)
			return
		}
		h.reply(chatID, exportURL(h.spreadsheetID))
	default:
		// Unknown commands are dropped like out-of-flow text.
	}
}

func (h *Handler) handleText(ctx context.Context, chatID, identity int64, text string) {
	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	res, err := h.svc.Submit(ctx, identity, text)
	if err != nil && res.Kind != usecase.SubmitCompleted {
		h.log.Error("submit failed", "identity", identity, "err", err)
		return
	}
	switch res.Kind {
	case usecase.SubmitIgnored:
		// Out-of-flow chatter gets no reply at all.
	case usecase.SubmitPrompt:
		h.reply(chatID, res.Prompt)
	case usecase.SubmitRejected:
		h.reply(chatID, msgRetryYesNo+"\n"+res.Prompt)
	case usecase.SubmitCompleted:
		submissionID := newUUID()
		if err != nil {
			// Technical detail stays in the log, never in the reply.
			h.log.Error("submission persist failed", "submission_id", submissionID, "identity", identity, "err", err)
			h.reply(chatID, msgSaveFailed)
			return
		}
		h.log.Info("submission persisted", "submission_id", submissionID, "identity", identity)
		h.reply(chatID, msgSaved)
	}
}

func (h *Handler) authorized(identity int64) bool {
	if h.allowed == nil {
		return true
	}
	_, ok := h.allowed[identity]
	return ok
}

func (h *Handler) reply(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.log.Error("send reply failed", "chat_id", chatID, "err", err)
	}
}

func whoamiText(identity int64, name string) string {
	var b strings.Builder
	b.WriteString("ID: ")
	b.WriteString(strconv.FormatInt(identity, 10))
	if name != "" {
		b.WriteString("\nName: ")
		b.WriteString(name)
	}
	return b.String()
}

func exportURL(spreadsheetID string) string {
	return "https://docs.google.com/spreadsheets/d/" + spreadsheetID
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

