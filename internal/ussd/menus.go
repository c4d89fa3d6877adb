package ussd

import (
	"context"
	"fmt"

	"github.com/afritokeni/ussd-engine/internal/model"
)

// Gate labels shown while a PIN check is pending.
const (
	labelCheckBalance = "Check Balance"
	labelHistory      = "Transaction History"
)

func (e *Engine) handleMain(_ context.Context, in input, _ *model.Session) (Result, error) {
	switch in.first() {
	case "":
		return continueSession(mainMenuText), nil
	case "1":
		return redirect(model.MenuLocalCurrency, ""), nil
	case "2":
		return redirect(model.MenuBitcoin, ""), nil
	case "3":
		return redirect(model.MenuUSDC, ""), nil
	case "4":
		return redirect(model.MenuDAO, ""), nil
	case "5":
		return endSession(helpText(e.cfg.DialCode)), nil
	case "6":
		return redirect(model.MenuLanguage, ""), nil
	default:
		return invalid(msgInvalidOption, mainMenuText), nil
	}
}

func localCurrencyText(currency string) string {
	return fmt.Sprintf("Local Currency (%s)\n", currency) +
		"1. Send Money\n" +
		"2. Check Balance\n" +
		"3. Deposit\n" +
		"4. Withdraw\n" +
		"5. Transaction History\n" +
		"6. Find Agent\n" +
		optionBack
}

func (e *Engine) handleLocalCurrency(_ context.Context, in input, sess *model.Session) (Result, error) {
	switch in.last() {
	case "":
		return continueSession(localCurrencyText(sess.Data.Currency)), nil
	case "1":
		return redirect(model.MenuSendMoney, ""), nil
	case "2":
		return e.requirePIN(sess, labelCheckBalance, model.MenuCheckBalance), nil
	case "3":
		return redirect(model.MenuDeposit, ""), nil
	case "4":
		return redirect(model.MenuWithdraw, ""), nil
	case "5":
		return e.requirePIN(sess, labelHistory, model.MenuTransactionHistory), nil
	case "6":
		return redirect(model.MenuFindAgent, ""), nil
	case "0":
		return redirect(model.MenuMain, ""), nil
	default:
		return invalid(msgInvalidOption, localCurrencyText(sess.Data.Currency)), nil
	}
}

var languages = []struct {
	code model.Language
	name string
}{
	{model.LanguageEnglish, "English"},
	{model.LanguageLuganda, "Luganda"},
	{model.LanguageSwahili, "Kiswahili"},
}

const languageText = "Select language:\n" +
	"1. English\n" +
	"2. Luganda\n" +
	"3. Kiswahili\n" +
	optionBack

func (e *Engine) handleLanguage(ctx context.Context, in input, sess *model.Session) (Result, error) {
	token := in.last()
	switch token {
	case "":
		return continueSession(languageText), nil
	case "0":
		return redirect(model.MenuMain, ""), nil
	}

	idx, ok := choice(token, len(languages))
	if !ok {
		return invalid(msgInvalidOption, languageText), nil
	}

	lang := languages[idx]
	sess.Language = lang.code
	if err := e.deps.Users.SetLanguage(ctx, sess.PhoneNumber, lang.code); err != nil {
		e.logger.Warn("USSD engine: failed to persist language", "phone", sess.PhoneNumber, "error", err)
	}

	return redirect(model.MenuMain, "Language set to "+lang.name+"."), nil
}

// choice maps a 1-based menu selection to an index below n.
func choice(token string, n int) (int, bool) {
	if !isDigits(token) || len(token) > 3 {
		return 0, false
	}
	var i int
	for _, r := range token {
		i = i*10 + int(r-'0')
	}
	if i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}
