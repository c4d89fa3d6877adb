package ussd

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/afritokeni/ussd-engine/internal/model"
)

const (
	maxCodeAttempts = 3
	msgCodeLocked   = "Too many incorrect codes. Please dial again to restart registration."
)

var validName = regexp.MustCompile(`^[\p{L}][\p{L} .'-]{1,59}$`)

const promptName = "Welcome to " + brand + "!\nYou are not registered yet.\nEnter your full name:"

type registrationStep int

const registrationAwaitName registrationStep = 0

type verificationStep int

const verificationAwaitCode verificationStep = 0

// handleRegistration collects the subscriber's name and sends a
// verification code by SMS.
func (e *Engine) handleRegistration(ctx context.Context, in input, sess *model.Session) (Result, error) {
	if registrationStep(sess.Step) != registrationAwaitName {
		return Result{}, fmt.Errorf("registration: unknown step %d", sess.Step)
	}

	name := strings.Join(strings.Fields(in.last()), " ")
	if name == "" {
		return continueSession(promptName), nil
	}
	if !validName.MatchString(name) {
		return invalid("Please enter a valid name (letters only).", "Enter your full name:"), nil
	}

	code, err := e.newVerificationCode()
	if err != nil {
		return Result{}, err
	}

	e.notify(ctx, sess.PhoneNumber, fmt.Sprintf("Your %s verification code is %s", brand, code))

	// The registration data is carried into verification, so Enter is not used.
	sess.Menu = model.MenuVerification
	sess.Step = int(verificationAwaitCode)
	sess.Data.Registration = &model.RegistrationData{FullName: name, Code: code}

	return redirect(model.MenuVerification, ""), nil
}

func (e *Engine) handleVerification(ctx context.Context, in input, sess *model.Session) (Result, error) {
	reg := sess.Data.Registration
	if reg == nil {
		return Result{}, fmt.Errorf("verification: missing registration data")
	}

	if reg.Attempts >= maxCodeAttempts {
		return endSession(msgCodeLocked), nil
	}

	prompt := fmt.Sprintf("Enter the %d-digit code sent to %s:", verificationSize, sess.PhoneNumber)

	code := in.last()
	if code == "" {
		return continueSession(prompt), nil
	}

	if code != reg.Code {
		reg.Attempts++
		remaining := maxCodeAttempts - reg.Attempts
		if remaining <= 0 {
			return endSession(msgCodeLocked), nil
		}
		return continueSession(fmt.Sprintf("Incorrect code. %d attempt(s) remaining.\n%s", remaining, prompt)), nil
	}

	user, err := e.deps.Users.Register(ctx, model.User{
		Phone:    sess.PhoneNumber,
		FullName: reg.FullName,
		Currency: sess.Data.Currency,
		Language: sess.PreferredLanguage(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to register user: %w", err)
	}

	e.logger.Info("USSD engine: user registered", "phone", user.Phone, "user_id", user.ID)

	sess.Enter(model.MenuPINSetup)
	return redirect(model.MenuPINSetup, "Registration successful, "+firstName(reg.FullName)+"."), nil
}

func firstName(full string) string {
	if f := strings.Fields(full); len(f) > 0 {
		return f[0]
	}
	return full
}
