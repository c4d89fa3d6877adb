package ussd

import (
	"context"

	"github.com/afritokeni/ussd-engine/internal/model"
)

type checkStep int

const (
	checkPrompt checkStep = iota
	checkAwaitPIN
)

var pinCheckMachine = newMachine("pin_check", map[checkStep][]checkStep{
	checkPrompt: {checkAwaitPIN},
})

func pinCheckPrompt(sess *model.Session) string {
	if p := sess.Data.Pending; p != nil && p.Label != "" {
		return p.Label + "\n" + promptPIN
	}
	return promptPIN
}

// handlePINCheck verifies the PIN and resumes the pending operation, or the
// main menu when there is none.
func (e *Engine) handlePINCheck(ctx context.Context, in input, sess *model.Session) (Result, error) {
	switch pinCheckMachine.at(sess) {
	case checkPrompt:
		if err := pinCheckMachine.move(sess, checkAwaitPIN); err != nil {
			return Result{}, err
		}
		return continueSession(pinCheckPrompt(sess)), nil

	case checkAwaitPIN:
		if in.last() == "" {
			return continueSession(pinCheckPrompt(sess)), nil
		}

		ok, res, err := e.confirmPIN(ctx, sess, in, pinCheckPrompt(sess), false)
		if err != nil || !ok {
			return res, err
		}

		pending := sess.Data.Pending
		sess.Data.Pending = nil
		if pending == nil {
			sess.Enter(model.MenuMain)
			return redirect(model.MenuMain, ""), nil
		}

		sess.Enter(pending.Next)
		sess.Step = int(gatedReady)
		return redirect(pending.Next, ""), nil
	}

	return Result{}, pinCheckMachine.unknown(sess)
}

type setupStep int

const (
	setupPrompt setupStep = iota
	setupAwaitPIN
	setupAwaitConfirm
)

var pinSetupMachine = newMachine("pin_setup", map[setupStep][]setupStep{
	setupPrompt:       {setupAwaitPIN},
	setupAwaitPIN:     {setupAwaitConfirm},
	setupAwaitConfirm: {setupAwaitPIN},
})

const (
	promptNewPIN     = "Create a 4-digit PIN:"
	promptConfirmNew = "Confirm your new PIN:"
)

func (e *Engine) handlePINSetup(ctx context.Context, in input, sess *model.Session) (Result, error) {
	switch pinSetupMachine.at(sess) {
	case setupPrompt:
		if err := pinSetupMachine.move(sess, setupAwaitPIN); err != nil {
			return Result{}, err
		}
		return continueSession(promptNewPIN), nil

	case setupAwaitPIN:
		if in.last() == "" {
			return continueSession(promptNewPIN), nil
		}
		pin := in.pin()
		if !isPIN(pin) {
			return invalid(msgPINFormat, promptNewPIN), nil
		}

		sess.Data.PinSetup = &model.PinSetupData{NewPIN: pin}
		if err := pinSetupMachine.move(sess, setupAwaitConfirm); err != nil {
			return Result{}, err
		}
		return continueSession(promptConfirmNew), nil

	case setupAwaitConfirm:
		if in.last() == "" {
			return continueSession(promptConfirmNew), nil
		}

		setup := sess.Data.PinSetup
		if setup == nil || in.pin() != setup.NewPIN {
			sess.Data.PinSetup = nil
			if err := pinSetupMachine.move(sess, setupAwaitPIN); err != nil {
				return Result{}, err
			}
			return invalid("PINs do not match.", promptNewPIN), nil
		}

		if err := e.deps.Users.SetPIN(ctx, sess.PhoneNumber, setup.NewPIN); err != nil {
			e.logger.Error("USSD engine: failed to set PIN", "phone", sess.PhoneNumber, "error", err)
			sess.Data.PinSetup = nil
			if err := pinSetupMachine.move(sess, setupAwaitPIN); err != nil {
				return Result{}, err
			}
			return invalid("Failed to set PIN. Please try again.", promptNewPIN), nil
		}

		sess.Data = model.SessionData{Currency: sess.Data.Currency}
		sess.Enter(model.MenuMain)
		return redirect(model.MenuMain, "PIN set successfully."), nil
	}

	return Result{}, pinSetupMachine.unknown(sess)
}
