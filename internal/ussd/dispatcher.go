package ussd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/afritokeni/ussd-engine/internal/model"
)

// maxRedirects bounds redirect chains within one request.
const maxRedirects = 8

// Process handles one gateway request. It never fails: faults are logged
// and turned into a terminating reply.
func (e *Engine) Process(ctx context.Context, sessionID, phoneNumber, text string) Response {
	phone := normalizePhone(phoneNumber)

	resp, err := e.dispatch(ctx, sessionID, phone, strings.TrimSpace(text))
	if err != nil {
		return e.failure(sessionID, err)
	}

	return resp
}

func (e *Engine) dispatch(ctx context.Context, sessionID, phone, text string) (Response, error) {
	if text == e.cfg.DialCode {
		return e.restart(ctx, sessionID, phone)
	}

	sess, fresh, err := e.load(ctx, sessionID, phone)
	if err != nil {
		return Response{}, err
	}

	now := e.now()
	if !fresh && sess.Expired(now, e.cfg.Timeout) {
		e.logger.Info("USSD engine: session expired", "session_id", sessionID, "idle", now.Sub(sess.LastActivity))
		return Response{Text: msgSessionExpired(e.cfg.DialCode)}, nil
	}
	sess.LastActivity = now

	if fresh {
		if err := e.begin(ctx, &sess); err != nil {
			return Response{}, err
		}
	}

	if segments := input(text).segments(); sess.Menu == model.MenuMain && len(segments) > 1 {
		if err := e.store.Save(ctx, &sess); err != nil {
			return Response{}, fmt.Errorf("failed to save session: %w", err)
		}
		return e.replay(ctx, sessionID, phone, segments)
	}

	return e.advance(ctx, &sess, input(text))
}

// restart discards whatever is stored under sessionID and begins again.
func (e *Engine) restart(ctx context.Context, sessionID, phone string) (Response, error) {
	sess := model.NewSession(sessionID, phone, e.now())
	if err := e.begin(ctx, &sess); err != nil {
		return Response{}, err
	}

	e.logger.Debug("USSD engine: session started", "session_id", sessionID, "menu", sess.Menu)

	return e.advance(ctx, &sess, "")
}

func (e *Engine) load(ctx context.Context, sessionID, phone string) (model.Session, bool, error) {
	sess, err := e.store.Get(ctx, sessionID)
	if errors.Is(err, model.ErrNotFound) {
		return model.NewSession(sessionID, phone, e.now()), true, nil
	}
	if err != nil {
		return model.Session{}, false, fmt.Errorf("failed to load session: %w", err)
	}

	return sess, false, nil
}

// begin positions a fresh session according to who is dialing.
func (e *Engine) begin(ctx context.Context, sess *model.Session) error {
	sess.Data = model.SessionData{Currency: e.cfg.Currency}

	user, err := e.deps.Users.FindByPhone(ctx, sess.PhoneNumber)
	if errors.Is(err, model.ErrNotFound) {
		sess.Enter(model.MenuRegistration)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if user.Currency != "" {
		sess.Data.Currency = user.Currency
	}
	if user.Language != "" {
		sess.Language = user.Language
	}

	if !user.HasPIN {
		sess.Enter(model.MenuPINSetup)
		return nil
	}

	sess.Enter(model.MenuMain)
	return nil
}

// advance routes in through the current menu, persists and replies.
func (e *Engine) advance(ctx context.Context, sess *model.Session, in input) (Response, error) {
	res, err := e.route(ctx, sess, in)
	if err != nil {
		return Response{}, err
	}

	if err := e.store.Save(ctx, sess); err != nil {
		return Response{}, fmt.Errorf("failed to save session: %w", err)
	}

	return Response{Text: res.Text, Continue: res.Continue}, nil
}

func (e *Engine) route(ctx context.Context, sess *model.Session, in input) (Result, error) {
	res, err := e.handle(ctx, sess, in)
	if err != nil {
		return Result{}, err
	}

	for hops := 0; res.RedirectTo != ""; hops++ {
		if hops == maxRedirects {
			return Result{}, fmt.Errorf("too many redirects, last to %s", res.RedirectTo)
		}

		if sess.Menu != res.RedirectTo {
			sess.Enter(res.RedirectTo)
		}

		next, err := e.handle(ctx, sess, "")
		if err != nil {
			return Result{}, err
		}
		next.Text = joinText(res.Text, next.Text)
		res = next
	}

	return res, nil
}

func (e *Engine) handle(ctx context.Context, sess *model.Session, in input) (Result, error) {
	h, ok := e.handlers[sess.Menu]
	if !ok {
		return Result{}, fmt.Errorf("no handler for menu %q", sess.Menu)
	}

	return h(ctx, in, sess)
}

func (e *Engine) failure(sessionID string, err error) Response {
	if errors.Is(err, model.ErrRateLimited) {
		e.logger.Warn("USSD engine: rate limited", "session_id", sessionID, "error", err)
		return Response{Text: msgRateLimited}
	}

	e.logger.Error("USSD engine: failed to process request", "session_id", sessionID, "error", err)
	return Response{Text: msgGenericError}
}
