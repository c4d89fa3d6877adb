package ussd

import (
	"context"
	"fmt"
	"strings"

	"github.com/afritokeni/ussd-engine/internal/model"
)

const historyLimit = 5

func (e *Engine) handleCheckBalance(ctx context.Context, _ input, sess *model.Session) (Result, error) {
	if gatedStep(sess.Step) != gatedReady {
		return e.requirePIN(sess, labelCheckBalance, model.MenuCheckBalance), nil
	}

	amount, err := e.balance(ctx, sess.PhoneNumber, sess.Data.Currency)
	if err != nil {
		return Result{}, err
	}

	return endSession("Your Balance\n" + formatMoney(sess.Data.Currency, amount) + "\n" + msgThankYou), nil
}

func (e *Engine) handleTransactionHistory(ctx context.Context, _ input, sess *model.Session) (Result, error) {
	if gatedStep(sess.Step) != gatedReady {
		return e.requirePIN(sess, labelHistory, model.MenuTransactionHistory), nil
	}

	txs, err := e.deps.Wallet.RecentTransactions(ctx, sess.PhoneNumber, historyLimit)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	if len(txs) == 0 {
		return endSession("No transactions yet."), nil
	}

	var b strings.Builder
	b.WriteString("Recent Transactions")
	for i, tx := range txs {
		fmt.Fprintf(&b, "\n%d. %s", i+1, describeTransaction(tx, sess.PhoneNumber))
	}

	return endSession(b.String()), nil
}

func describeTransaction(tx model.Transaction, owner string) string {
	amount := tx.Asset + " " + groupThousands(tx.Amount)
	if a, ok := assetByCode(tx.Asset); ok {
		amount = formatUnits(tx.Amount, a.decimals) + " " + a.label
	}
	date := tx.CreatedAt.Format("02/01")

	switch {
	case tx.Kind == model.TransactionDeposit:
		return fmt.Sprintf("%s Deposit %s", date, amount)
	case tx.Kind == model.TransactionWithdraw:
		return fmt.Sprintf("%s Withdraw %s", date, amount)
	case tx.Sender == owner:
		return fmt.Sprintf("%s Sent %s to %s", date, amount, tx.Recipient)
	default:
		return fmt.Sprintf("%s Received %s from %s", date, amount, tx.Sender)
	}
}

func (e *Engine) handleFindAgent(ctx context.Context, _ input, _ *model.Session) (Result, error) {
	agents, err := e.listAgents(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(agents) == 0 {
		return endSession(msgNoAgents), nil
	}

	var b strings.Builder
	b.WriteString("Nearby Agents")
	for i, a := range agents {
		fmt.Fprintf(&b, "\n%d. %s, %s", i+1, a.Name, a.Location)
		if a.Phone != "" {
			fmt.Fprintf(&b, " (%s)", a.Phone)
		}
	}

	return endSession(b.String()), nil
}

func (e *Engine) listAgents(ctx context.Context) ([]model.Agent, error) {
	agents, err := e.deps.Agents.ListAvailable(ctx, e.cfg.Tariffs.AgentListSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

func agentMenu(agents []model.Agent) string {
	var b strings.Builder
	b.WriteString(promptAgent)
	for i, a := range agents {
		fmt.Fprintf(&b, "\n%d. %s - %s", i+1, a.Name, a.Location)
	}
	b.WriteString("\n" + optionCancel)
	return b.String()
}
