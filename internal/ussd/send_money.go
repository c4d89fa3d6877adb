package ussd

import (
	"context"
	"fmt"

	"github.com/afritokeni/ussd-engine/internal/model"
)

const cancelKey = "0"

type sendStep int

const (
	sendAwaitRecipient sendStep = iota
	sendAwaitAmount
	sendAwaitPIN
)

var sendMachine = newMachine("send_money", map[sendStep][]sendStep{
	sendAwaitRecipient: {sendAwaitAmount},
	sendAwaitAmount:    {sendAwaitPIN},
})

const promptRecipient = "Enter recipient phone number:\n" + optionCancel

func promptSendAmount(currency string) string {
	return fmt.Sprintf("Enter amount (%s):\n%s", currency, optionCancel)
}

func (e *Engine) handleSendMoney(ctx context.Context, in input, sess *model.Session) (Result, error) {
	token := in.last()
	if token == cancelKey {
		return redirect(model.MenuLocalCurrency, ""), nil
	}
	currency := sess.Data.Currency

	switch sendMachine.at(sess) {
	case sendAwaitRecipient:
		if token == "" {
			return continueSession(promptRecipient), nil
		}
		recipient, ok := e.normalizeRecipient(token)
		if !ok {
			return invalid(msgInvalidPhone, promptRecipient), nil
		}
		if recipient == sess.PhoneNumber {
			return invalid(msgSelfTransfer, promptRecipient), nil
		}

		sess.Data.Transfer = &model.TransferData{Recipient: recipient}
		if err := sendMachine.move(sess, sendAwaitAmount); err != nil {
			return Result{}, err
		}
		return continueSession(promptSendAmount(currency)), nil

	case sendAwaitAmount:
		t := sess.Data.Transfer
		if t == nil {
			return Result{}, fmt.Errorf("send money: missing transfer data")
		}
		if token == "" {
			return continueSession(promptSendAmount(currency)), nil
		}
		amount, ok := parseAmount(token)
		if !ok {
			return invalid(msgInvalidAmount, promptSendAmount(currency)), nil
		}

		fee := percentFee(amount, e.cfg.Tariffs.SendFeePercent)
		available, err := e.balance(ctx, sess.PhoneNumber, currency)
		if err != nil {
			return Result{}, err
		}
		if available < amount+fee {
			return endSession(msgInsufficient(formatMoney(currency, available))), nil
		}

		t.Amount, t.Fee = amount, fee
		if err := sendMachine.move(sess, sendAwaitPIN); err != nil {
			return Result{}, err
		}
		return continueSession(sendSummary(currency, t) + "\n" + promptConfirmPIN), nil

	case sendAwaitPIN:
		t := sess.Data.Transfer
		if t == nil {
			return Result{}, fmt.Errorf("send money: missing transfer data")
		}
		if token == "" {
			return continueSession(sendSummary(currency, t) + "\n" + promptConfirmPIN), nil
		}

		ok, res, err := e.confirmPIN(ctx, sess, in, promptConfirmPIN, false)
		if err != nil || !ok {
			return res, err
		}

		result, err := e.deps.Wallet.Transfer(ctx, model.TransferRequest{
			Sender:    sess.PhoneNumber,
			Recipient: t.Recipient,
			Asset:     currency,
			Amount:    t.Amount,
			Fee:       t.Fee,
			Kind:      model.TransactionSend,
		})
		if err != nil {
			return Result{}, fmt.Errorf("failed to transfer: %w", err)
		}
		if !result.Success {
			return endSession("Transaction failed: " + result.Error), nil
		}

		sent := formatMoney(currency, t.Amount)
		e.notify(ctx, sess.PhoneNumber, fmt.Sprintf("You sent %s to %s. Fee: %s. Ref: %s",
			sent, t.Recipient, formatMoney(currency, t.Fee), result.TransactionID))
		e.notify(ctx, t.Recipient, fmt.Sprintf("You received %s from %s. Ref: %s",
			sent, sess.PhoneNumber, result.TransactionID))
		e.archive(ctx, model.Receipt{
			Reference:    result.TransactionID,
			Kind:         string(model.TransactionSend),
			Phone:        sess.PhoneNumber,
			Counterparty: t.Recipient,
			Asset:        currency,
			Amount:       t.Amount,
			Fee:          t.Fee,
			CreatedAt:    e.now(),
		})

		return endSession(fmt.Sprintf("Sent %s to %s.\nFee: %s\nRef: %s",
			sent, t.Recipient, formatMoney(currency, t.Fee), result.TransactionID)), nil
	}

	return Result{}, sendMachine.unknown(sess)
}

func sendSummary(currency string, t *model.TransferData) string {
	return fmt.Sprintf("Send %s to %s\nFee: %s\nTotal: %s",
		formatMoney(currency, t.Amount), t.Recipient,
		formatMoney(currency, t.Fee), formatMoney(currency, t.Amount+t.Fee))
}
