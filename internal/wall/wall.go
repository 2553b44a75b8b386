// Package wall implements the mailing-list engine: it receives inbound
// messages, dispatches command verbs, manages list state, and fans posts out
// to list members through a Sender.
package wall

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"smswall/internal/config"
	"smswall/internal/crash"
	"smswall/internal/logger"
	"smswall/internal/models"
	"smswall/internal/sender"
	"smswall/internal/storage"

	"gorm.io/gorm"
)

// Wall is the top-level controller. One Wall serves any number of inbound
// messages; per-message state is passed through call arguments so concurrent
// messages only meet inside store transactions.
type Wall struct {
	cfg      *config.Config
	lists    *storage.ListRepository
	confirms *storage.ConfirmRepository
	names    *storage.NameRepository
	sender   sender.Sender
}

// New creates a Wall on top of an open database connection and a delivery
// capability.
func New(cfg *config.Config, db *gorm.DB, snd sender.Sender) *Wall {
	return &Wall{
		cfg:      cfg,
		lists:    storage.NewListRepository(db),
		confirms: storage.NewConfirmRepository(db),
		names:    storage.NewNameRepository(db),
		sender:   snd,
	}
}

// HandleIncoming processes one inbound message: commands go through the
// dispatcher, anything else is posted to the list addressed by the
// recipient number. User-facing failures become a single SMS reply to the
// sender; internal failures are returned to the caller.
func (w *Wall) HandleIncoming(msg models.Message, confirmed bool) error {
	logger.Infof("Incoming: %s", msg)

	if !msg.IsValid() {
		logger.Infof("Ignoring invalid message.")
		return nil
	}

	var err error
	if w.looksLikeCommand(msg) {
		err = w.parseCommand(msg, confirmed)
	} else {
		err = w.postToList(msg)
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		w.reply(msg, cmdErr.Reply)
		return nil
	}
	return err
}

// parseCommand splits the body into a verb and arguments, stripping the
// command prefix if present, and hands the result to the dispatcher.
func (w *Wall) parseCommand(msg models.Message, confirmed bool) error {
	body := msg.Body
	if strings.HasPrefix(body, w.cfg.Wall.CommandPrefix) {
		body = body[len(w.cfg.Wall.CommandPrefix):]
	}

	fields := strings.Fields(body)
	var cmd string
	var args []string
	if len(fields) > 0 {
		cmd = fields[0]
		args = fields[1:]
	}

	return w.dispatch(msg, cmd, args, confirmed)
}

// postToList posts a non-command message to the list it is addressed to.
func (w *Wall) postToList(msg models.Message) error {
	l := w.List(msg.Recipient)

	exists, err := l.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return commandErrorf("The list %s doesn't exist.", msg.Recipient)
	}

	ownerOnly, err := l.OnlyOwnersCanPost()
	if err != nil {
		return err
	}
	if ownerOnly {
		isOwner, err := l.IsOwner(msg.Sender)
		if err != nil {
			return err
		}
		if !isOwner {
			return commandErrorf("Sorry, only list owners may post to this list.")
		}
	}

	return l.Post(msg)
}

// confirmAction replays the sender's pending command with the confirmed
// flag set, re-running it through the full dispatch path so authorization
// is checked again.
func (w *Wall) confirmAction(sender string) error {
	pc, err := w.confirms.Get(sender)
	if err != nil {
		return err
	}
	if pc == nil {
		return commandErrorf("There is nothing awaiting confirmation for you.")
	}

	if err := w.confirms.Delete(sender); err != nil {
		return err
	}

	replay := models.Message{Sender: pc.Sender, Recipient: pc.Recipient, Body: pc.Command}
	return w.HandleIncoming(replay, true)
}

// addPendingAction stores a sensitive command for later confirmation and
// asks the sender to confirm it. A sender can have at most one pending
// action; a second one is rejected rather than overwritten.
func (w *Wall) addPendingAction(msg models.Message) error {
	pc := &models.PendingConfirmation{
		Sender:    msg.Sender,
		Recipient: msg.Recipient,
		Command:   msg.Body,
		CreatedAt: time.Now(),
	}
	if err := w.confirms.Put(pc); err != nil {
		if errors.Is(err, storage.ErrConfirmationPending) {
			return commandErrorf("You already have an action awaiting confirmation. " +
				"Reply with \"confirm\" to execute it, or wait for it to expire.")
		}
		return err
	}

	w.reply(msg, "Reply to this message with the word \"confirm\" to confirm your previous command.")
	return nil
}

// CleanConfirmActions removes pending confirmations older than age in
// minutes. An age of zero removes all of them. Run it before handling a new
// message so a purge can never discard a confirmation that message creates.
func (w *Wall) CleanConfirmActions(ageMinutes int) (int64, error) {
	if ageMinutes == 0 {
		logger.Debugf("Clearing all confirm actions.")
	} else {
		logger.Debugf("Clearing confirm actions older than %d min.", ageMinutes)
	}
	return w.confirms.Purge(time.Duration(ageMinutes) * time.Minute)
}

// StartConfirmJanitor periodically purges pending confirmations older than
// wall.confirm_max_age_minutes. A zero max age disables the janitor.
func (w *Wall) StartConfirmJanitor(ctx context.Context, interval time.Duration) {
	maxAgeMinutes := w.cfg.Wall.ConfirmMaxAgeMinutes
	if maxAgeMinutes <= 0 {
		logger.Infof("Confirmation janitor disabled (confirm_max_age_minutes=%d)", maxAgeMinutes)
		return
	}

	crash.SafeGoroutine("confirm-janitor", func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := w.CleanConfirmActions(maxAgeMinutes)
				if err != nil {
					logger.Warningf("Error purging pending confirmations: %v", err)
				} else if n > 0 {
					logger.Infof("Purged %d expired pending confirmations", n)
				}
			}
		}
	})
}

// reply sends body back to the sender of msg, from the application number.
func (w *Wall) reply(msg models.Message, body string) {
	m := models.Message{Sender: w.cfg.Wall.AppNumber, Recipient: msg.Sender, Body: body}
	logger.Debugf("Replying with: %s", m)
	w.send(m)
}

// send hands a message to the delivery capability. Delivery failures are
// logged, not propagated: the mutation that triggered the message has
// already committed.
func (w *Wall) send(m models.Message) {
	if err := w.sender.SendSMS(m.Sender, m.Recipient, m.Subject, m.Body); err != nil {
		logger.Warningf("Error sending SMS to %s: %v", m.Recipient, err)
	}
}

// isValidShortcode reports whether number is numeric, inside the configured
// shortcode range, and not the reserved application number.
func (w *Wall) isValidShortcode(number string) bool {
	if number == w.cfg.Wall.AppNumber {
		return false
	}
	sc, err := strconv.Atoi(number)
	if err != nil {
		return false
	}
	return sc >= w.cfg.Wall.MinShortcode && sc <= w.cfg.Wall.MaxShortcode
}
