package ussd

import (
	"context"
	"fmt"

	"github.com/afritokeni/ussd-engine/internal/model"
)

type cashStep int

const (
	cashAwaitAmount cashStep = iota
	cashAwaitAgent
	cashAwaitPIN
)

var cashMachine = newMachine("cash", map[cashStep][]cashStep{
	cashAwaitAmount: {cashAwaitAgent},
	cashAwaitAgent:  {cashAwaitPIN},
})

// cashOperation describes the agent-mediated local currency flows.
type cashOperation struct {
	kind   model.RequestKind
	title  string
	verb   string
	prefix string
	// debit operations charge a fee and need the money on the wallet.
	debit bool
}

var (
	depositOperation  = cashOperation{kind: model.RequestDeposit, title: "Deposit", verb: "deposit", prefix: prefixDeposit}
	withdrawOperation = cashOperation{kind: model.RequestWithdraw, title: "Withdrawal", verb: "withdraw", prefix: prefixWithdraw, debit: true}
)

func (e *Engine) handleDeposit(ctx context.Context, in input, sess *model.Session) (Result, error) {
	return e.handleCash(ctx, in, sess, depositOperation)
}

func (e *Engine) handleWithdraw(ctx context.Context, in input, sess *model.Session) (Result, error) {
	return e.handleCash(ctx, in, sess, withdrawOperation)
}

func (e *Engine) cashLimits(op cashOperation) model.Limits {
	if op.debit {
		return e.cfg.Tariffs.Withdraw
	}
	return e.cfg.Tariffs.Deposit
}

func (e *Engine) handleCash(ctx context.Context, in input, sess *model.Session, op cashOperation) (Result, error) {
	token := in.last()
	if token == cancelKey {
		return redirect(model.MenuLocalCurrency, ""), nil
	}

	currency := sess.Data.Currency
	limits := e.cashLimits(op)
	prompt := fmt.Sprintf("Enter amount to %s (%s - %s):\n%s",
		op.verb, formatMoney(currency, limits.Min), formatMoney(currency, limits.Max), optionCancel)

	switch cashMachine.at(sess) {
	case cashAwaitAmount:
		if token == "" {
			return continueSession(prompt), nil
		}
		amount, ok := parseAmount(token)
		if !ok {
			return invalid(msgInvalidAmount, prompt), nil
		}
		if !limits.Contains(amount) {
			return invalid("Amount is outside the allowed range.", prompt), nil
		}

		var fee int64
		if op.debit {
			fee = percentFee(amount, e.cfg.Tariffs.WithdrawFeePercent)
			available, err := e.balance(ctx, sess.PhoneNumber, currency)
			if err != nil {
				return Result{}, err
			}
			if available < amount+fee {
				return endSession(msgInsufficient(formatMoney(currency, available))), nil
			}
		}

		agents, err := e.listAgents(ctx)
		if err != nil {
			return Result{}, err
		}
		if len(agents) == 0 {
			return endSession(msgNoAgents), nil
		}

		sess.Data.Cash = &model.CashData{Amount: amount, Fee: fee, Agents: agents}
		if err := cashMachine.move(sess, cashAwaitAgent); err != nil {
			return Result{}, err
		}
		return continueSession(agentMenu(agents)), nil

	case cashAwaitAgent:
		c := sess.Data.Cash
		if c == nil {
			return Result{}, fmt.Errorf("%s: missing cash data", op.verb)
		}
		if token == "" {
			return continueSession(agentMenu(c.Agents)), nil
		}
		idx, ok := choice(token, len(c.Agents))
		if !ok {
			return invalid(msgInvalidOption, agentMenu(c.Agents)), nil
		}

		agent := c.Agents[idx]
		c.Agent = &agent
		if err := cashMachine.move(sess, cashAwaitPIN); err != nil {
			return Result{}, err
		}
		return continueSession(cashSummary(op, currency, c) + "\n" + promptConfirmPIN), nil

	case cashAwaitPIN:
		c := sess.Data.Cash
		if c == nil || c.Agent == nil {
			return Result{}, fmt.Errorf("%s: missing cash data", op.verb)
		}
		if token == "" {
			return continueSession(cashSummary(op, currency, c) + "\n" + promptConfirmPIN), nil
		}

		ok, res, err := e.confirmPIN(ctx, sess, in, promptConfirmPIN, false)
		if err != nil || !ok {
			return res, err
		}

		code, err := e.newCode(op.prefix)
		if err != nil {
			return Result{}, err
		}

		validity := e.cfg.Tariffs.CodeValidity
		if _, err := e.deps.Requests.CreatePending(ctx, model.CashRequest{
			Kind:      op.kind,
			Code:      code,
			Phone:     sess.PhoneNumber,
			AgentID:   c.Agent.ID,
			Currency:  currency,
			Amount:    c.Amount,
			Fee:       c.Fee,
			ExpiresAt: e.now().Add(validity),
		}); err != nil {
			return Result{}, fmt.Errorf("failed to create %s request: %w", op.verb, err)
		}

		amount := formatMoney(currency, c.Amount)
		e.notify(ctx, sess.PhoneNumber, fmt.Sprintf("%s code %s for %s at %s. Valid for %s.",
			op.title, code, amount, c.Agent.Name, formatValidity(validity)))
		e.notify(ctx, c.Agent.Phone, fmt.Sprintf("New %s request %s: %s from %s.", op.verb, code, amount, sess.PhoneNumber))
		e.archive(ctx, model.Receipt{
			Reference:    code,
			Kind:         string(op.kind),
			Phone:        sess.PhoneNumber,
			Counterparty: c.Agent.ID,
			Asset:        currency,
			Amount:       c.Amount,
			Fee:          c.Fee,
			CreatedAt:    e.now(),
		})

		text := fmt.Sprintf("%s request created.\nCode: %s\nAmount: %s\n", op.title, code, amount)
		if op.debit {
			text += "Fee: " + formatMoney(currency, c.Fee) + "\n"
		}
		text += fmt.Sprintf("Agent: %s, %s\nShow this code to the agent. Valid for %s.",
			c.Agent.Name, c.Agent.Location, formatValidity(validity))

		return endSession(text), nil
	}

	return Result{}, cashMachine.unknown(sess)
}

func cashSummary(op cashOperation, currency string, c *model.CashData) string {
	text := fmt.Sprintf("%s of %s", op.title, formatMoney(currency, c.Amount))
	if op.debit {
		text += "\nFee: " + formatMoney(currency, c.Fee)
	}
	if c.Agent != nil {
		text += "\nAgent: " + c.Agent.Name
	}
	return text
}
