package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/domain"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/extract"
	"github.com/B3hnamR/P24-SlotHunter-sub000/internal/p24"
)

// ensureUser makes sure a user row exists for this chat.
func (r *Router) ensureUser(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	name := ""
	if from != nil {
		name = strings.TrimSpace(from.FirstName + " " + from.LastName)
	}
	return r.repo.EnsureUser(ctx, &domain.User{ID: chatID, Name: name, Active: true})
}

func (r *Router) handleStart(ctx context.Context, chatID int64, from *tgbotapi.User) {
	if err := r.ensureUser(ctx, chatID, from); err != nil {
		r.log.Error("ensureUser failed", zap.Error(err))
		r.sendText(chatID, "Profile initialization error. Please try again later.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, startText)
	msg.ReplyMarkup = mainMenuKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleDoctors(ctx context.Context, chatID int64) {
	doctors, err := r.repo.ListDoctors(ctx)
	if err != nil {
		r.log.Error("ListDoctors failed", zap.Error(err))
		r.sendText(chatID, "Error reading the doctor list.")
		return
	}
	if len(doctors) == 0 {
		r.sendText(chatID, noDoctorsText)
		return
	}

	var b strings.Builder
	b.WriteString(doctorsTitle + "\n\n")
	for _, d := range doctors {
		status := "active"
		if !d.Active {
			status = "inactive"
		}
		fmt.Fprintf(&b, "• %s", d.Name)
		if d.Specialty != "" {
			fmt.Fprintf(&b, " — %s", d.Specialty)
		}
		fmt.Fprintf(&b, " (%s)\n  /subscribe_%d  /unsubscribe_%d\n", status, d.ID, d.ID)
	}
	r.sendText(chatID, b.String())
}

func (r *Router) handleMySubs(ctx context.Context, chatID int64) {
	doctors, err := r.repo.ListUserSubscriptions(ctx, chatID)
	if err != nil {
		r.log.Error("ListUserSubscriptions failed", zap.Error(err))
		r.sendText(chatID, "Error reading your subscriptions.")
		return
	}
	if len(doctors) == 0 {
		r.sendText(chatID, noSubsText)
		return
	}

	var b strings.Builder
	b.WriteString(mySubsTitle + "\n\n")
	for _, d := range doctors {
		fmt.Fprintf(&b, "• %s  /unsubscribe_%d\n", d.Name, d.ID)
	}
	r.sendText(chatID, b.String())
}

func (r *Router) handleSubscribe(ctx context.Context, chatID int64, from *tgbotapi.User, doctorID int64) {
	if err := r.ensureUser(ctx, chatID, from); err != nil {
		r.log.Error("ensureUser failed", zap.Error(err))
		r.sendText(chatID, "Error saving your profile.")
		return
	}

	doctor, err := r.repo.GetDoctor(ctx, doctorID)
	if err != nil {
		r.sendText(chatID, "No such doctor. Use /doctors to see the list.")
		return
	}
	if !doctor.Active {
		r.sendText(chatID, doctor.Name+" is currently not polled (inactive); subscribing will not alert you until an operator re-enables them.")
	}

	// Idempotent: resubscribing while active is a no-op at the store level.
	if err := r.repo.Subscribe(ctx, chatID, doctorID); err != nil {
		r.log.Error("Subscribe failed", zap.Error(err))
		r.sendText(chatID, "Could not save the subscription.")
		return
	}
	r.sendText(chatID, "🔔 Subscribed to "+doctor.Name+".")
}

func (r *Router) handleUnsubscribe(ctx context.Context, chatID int64, doctorID int64) {
	if err := r.repo.Unsubscribe(ctx, chatID, doctorID); err != nil {
		r.log.Error("Unsubscribe failed", zap.Error(err))
		r.sendText(chatID, "Could not remove the subscription.")
		return
	}
	r.sendText(chatID, "🔕 Unsubscribed.")
}

// handleOnboard runs the extraction pipeline on a pasted profile link and
// stores the result. Functional bundles auto-subscribe the requester.
func (r *Router) handleOnboard(ctx context.Context, chatID int64, from *tgbotapi.User, text string) {
	if err := r.ensureUser(ctx, chatID, from); err != nil {
		r.log.Error("ensureUser failed", zap.Error(err))
	}

	bundle, err := r.extractor.Extract(ctx, text)
	if err != nil {
		r.replyExtractFailure(chatID, err)
		return
	}

	doctor, err := r.repo.SaveBundle(ctx, bundle)
	if err != nil {
		r.log.Error("SaveBundle failed", zap.Error(err))
		r.sendText(chatID, "Extraction worked but saving failed. Please try again.")
		return
	}

	if bundle.NonFunctional {
		r.sendText(chatID, fmt.Sprintf(onboardNFFmt, doctor.Name))
		return
	}
	if err := r.repo.Subscribe(ctx, chatID, doctor.ID); err != nil {
		r.log.Error("auto-subscribe failed", zap.Error(err))
	}
	r.sendText(chatID, fmt.Sprintf(onboardOKFmt, doctor.Name))
}

// replyExtractFailure maps the structured failure reason to an actionable
// user message.
func (r *Router) replyExtractFailure(chatID int64, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		r.sendText(chatID, fmt.Sprintf(extractBadURLFmt, ve.Reason))
		return
	}

	var ee *extract.Error
	if errors.As(err, &ee) {
		switch ee.Reason {
		case extract.ReasonNotFound:
			r.sendText(chatID, extractNotFoundText)
		case extract.ReasonUnrecognized:
			r.sendText(chatID, extractBadPageText)
		default:
			r.sendText(chatID, extractNetworkText)
		}
		return
	}
	r.sendText(chatID, extractNetworkText)
}

// handleCheck runs one on-demand discovery pass for a doctor and reports the
// outcome to the requesting chat only. With self-check holds enabled it also
// exercises the hold/release pair on the first discovered slot.
func (r *Router) handleCheck(ctx context.Context, chatID int64, doctorID int64) {
	if !r.isAdmin(chatID) {
		r.sendText(chatID, "Admin-only command.")
		return
	}

	doctor, err := r.repo.GetDoctor(ctx, doctorID)
	if err != nil {
		r.sendText(chatID, "No such doctor.")
		return
	}

	result := r.checker.CheckDoctor(ctx, *doctor)

	var b strings.Builder
	fmt.Fprintf(&b, "🔎 %s: %d slot(s)\n", doctor.Name, result.SlotCount())
	for _, u := range result.Units {
		if u.Err != nil {
			fmt.Fprintf(&b, "• %s/%s: FAILED (%v)\n", u.CenterID, u.ServiceID, u.Err)
		} else {
			fmt.Fprintf(&b, "• %s/%s: %d\n", u.CenterID, u.ServiceID, u.Slots)
		}
	}

	if r.selfCheckHold && result.SlotCount() > 0 {
		b.WriteString(r.selfCheck(ctx, *doctor, result.Slots[0]))
	}
	r.sendText(chatID, b.String())
}

// selfCheck holds and immediately releases one slot to prove the protocol
// path end to end. Best-effort: every failure is reported, none is retried.
func (r *Router) selfCheck(ctx context.Context, doctor domain.Doctor, slot domain.AppointmentSlot) string {
	units := doctor.PollableUnits()
	if len(units) == 0 {
		return ""
	}
	center, svc := units[0].Center, units[0].Service

	terminalID := p24.NewTerminalID()
	code, err := r.client.HoldSlot(ctx, center, svc, terminalID, slot)
	if err != nil {
		return fmt.Sprintf("\nhold self-check: FAILED (%v)", err)
	}
	if err := r.client.ReleaseHold(ctx, center, code); err != nil {
		return fmt.Sprintf("\nhold self-check: held %s but release FAILED (%v)", code, err)
	}
	return "\nhold self-check: OK"
}

func (r *Router) handleStats(ctx context.Context, chatID int64, doctorID int64) {
	records, err := r.repo.RecentCycleRecords(ctx, doctorID, 10)
	if err != nil {
		r.log.Error("RecentCycleRecords failed", zap.Error(err))
		r.sendText(chatID, "Error reading the audit log.")
		return
	}
	if len(records) == 0 {
		r.sendText(chatID, "No discoveries logged for this doctor yet.")
		return
	}

	var b strings.Builder
	b.WriteString("📒 Recent discoveries:\n")
	for _, rec := range records {
		fmt.Fprintf(&b, "• %s: %d slot(s), %d notified\n",
			rec.CreatedAt.Format(time.RFC3339), rec.SlotCount, rec.Notified)
	}
	r.sendText(chatID, b.String())
}

// handleSetActive is the operator path for pausing or resuming a doctor.
// Doctors are never deleted.
func (r *Router) handleSetActive(ctx context.Context, chatID int64, doctorID int64, active bool) {
	if !r.isAdmin(chatID) {
		r.sendText(chatID, "Admin-only command.")
		return
	}
	if err := r.repo.SetDoctorActive(ctx, doctorID, active); err != nil {
		r.log.Error("SetDoctorActive failed", zap.Error(err))
		r.sendText(chatID, "Could not update the doctor.")
		return
	}
	if active {
		r.sendText(chatID, "▶️ Doctor re-enabled.")
	} else {
		r.sendText(chatID, "⏸ Doctor disabled; polling will skip them.")
	}
}
