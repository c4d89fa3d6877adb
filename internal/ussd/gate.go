package ussd

import (
	"context"
	"errors"
	"fmt"

	"github.com/afritokeni/ussd-engine/internal/model"
)

const (
	maxPINAttempts = 3
	demoPIN        = "1234"
)

// gatedStep is the step of a view that needs a verified PIN.
type gatedStep int

const (
	gatedEntry gatedStep = iota
	gatedReady
)

// requirePIN lets the session into next once its PIN has been verified.
// Otherwise next is remembered and the session goes through the PIN check
// first.
func (e *Engine) requirePIN(sess *model.Session, label string, next model.Menu) Result {
	if sess.Data.PinVerified {
		sess.Enter(next)
		sess.Step = int(gatedReady)
		return redirect(next, "")
	}

	sess.Data.Pending = &model.PendingOperation{Label: label, Next: next}
	sess.Enter(model.MenuPINCheck)
	return redirect(model.MenuPINCheck, "")
}

// confirmPIN checks the PIN typed at a PIN-entry step. When it is not
// accepted the returned Result re-prompts with prompt or locks the session.
func (e *Engine) confirmPIN(ctx context.Context, sess *model.Session, in input, prompt string, allowDemo bool) (bool, Result, error) {
	if sess.Data.PinAttempts >= maxPINAttempts {
		return false, endSession(msgPINLocked), nil
	}

	pin := in.pin()
	if !isPIN(pin) {
		return false, e.pinFailure(sess, msgPINFormat, prompt), nil
	}

	ok, err := e.verifyPIN(ctx, sess.PhoneNumber, pin, allowDemo)
	if err != nil {
		return false, Result{}, err
	}
	if !ok {
		return false, e.pinFailure(sess, msgPINIncorrect, prompt), nil
	}

	sess.Data.PinAttempts = 0
	sess.Data.PinVerified = true

	return true, Result{}, nil
}

// verifyPIN asks the user directory. A failing directory denies the PIN,
// except for the demo PIN when demo mode allows it.
func (e *Engine) verifyPIN(ctx context.Context, phone, pin string, allowDemo bool) (bool, error) {
	ok, err := e.deps.Users.VerifyPIN(ctx, phone, pin)
	if err == nil {
		return ok, nil
	}
	if errors.Is(err, model.ErrRateLimited) {
		return false, err
	}

	if allowDemo && e.cfg.DemoMode && pin == demoPIN {
		e.logger.Warn("USSD engine: PIN verification failed, accepting demo PIN", "phone", phone, "error", err)
		return true, nil
	}

	e.logger.Error("USSD engine: PIN verification failed, denying", "phone", phone, "error", err)
	return false, nil
}

func (e *Engine) pinFailure(sess *model.Session, reason, prompt string) Result {
	sess.Data.PinAttempts++

	remaining := maxPINAttempts - sess.Data.PinAttempts
	if remaining <= 0 {
		return endSession(msgPINLocked)
	}

	return continueSession(fmt.Sprintf("%s %d attempt(s) remaining.\n%s", reason, remaining, prompt))
}
