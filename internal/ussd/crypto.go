package ussd

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/afritokeni/ussd-engine/internal/model"
)

type cryptoMenus struct {
	root, balance, rate, buy, sell, send model.Menu
}

// cryptoAsset describes a crypto asset held in the wallet. Amounts are kept
// in minor units with the given number of decimals.
type cryptoAsset struct {
	code     string
	label    string
	title    string
	decimals int
	menus    cryptoMenus
}

var (
	bitcoin = cryptoAsset{
		code:     model.AssetBTC,
		label:    "ckBTC",
		title:    "Bitcoin (ckBTC)",
		decimals: 8,
		menus: cryptoMenus{
			root:    model.MenuBitcoin,
			balance: model.MenuBitcoinBalance,
			rate:    model.MenuBitcoinRate,
			buy:     model.MenuBitcoinBuy,
			sell:    model.MenuBitcoinSell,
			send:    model.MenuBitcoinSend,
		},
	}
	usdc = cryptoAsset{
		code:     model.AssetUSDC,
		label:    "ckUSDC",
		title:    "USDC (ckUSDC)",
		decimals: 2,
		menus: cryptoMenus{
			root:    model.MenuUSDC,
			balance: model.MenuUSDCBalance,
			rate:    model.MenuUSDCRate,
			buy:     model.MenuUSDCBuy,
			sell:    model.MenuUSDCSell,
			send:    model.MenuUSDCSend,
		},
	}
)

func assetByCode(code string) (cryptoAsset, bool) {
	for _, a := range []cryptoAsset{bitcoin, usdc} {
		if a.code == code {
			return a, true
		}
	}
	return cryptoAsset{}, false
}

func (a cryptoAsset) format(minor int64) string {
	return formatUnits(minor, a.decimals) + " " + a.label
}

// toLocal converts minor units of the asset to whole local currency, rounding down.
func (a cryptoAsset) toLocal(minor int64, rate float64) int64 {
	return int64(math.Floor(float64(minor) * rate / math.Pow10(a.decimals)))
}

// fromLocal converts whole local currency to minor units of the asset, rounding down.
func (a cryptoAsset) fromLocal(amount int64, rate float64) int64 {
	if rate <= 0 {
		return 0
	}
	return int64(math.Floor(float64(amount) * math.Pow10(a.decimals) / rate))
}

// cryptoFlow serves the menus of one crypto asset.
type cryptoFlow struct {
	engine *Engine
	asset  cryptoAsset
}

func (f *cryptoFlow) menuText() string {
	return f.asset.title + "\n" +
		"1. Check Balance\n" +
		"2. Exchange Rate\n" +
		"3. Buy " + f.asset.label + "\n" +
		"4. Sell " + f.asset.label + "\n" +
		"5. Send " + f.asset.label + "\n" +
		optionBack
}

func (f *cryptoFlow) handleMenu(_ context.Context, in input, sess *model.Session) (Result, error) {
	switch in.last() {
	case "":
		return continueSession(f.menuText()), nil
	case "1":
		return f.engine.requirePIN(sess, f.asset.label+" Balance", f.asset.menus.balance), nil
	case "2":
		return redirect(f.asset.menus.rate, ""), nil
	case "3":
		return redirect(f.asset.menus.buy, ""), nil
	case "4":
		return redirect(f.asset.menus.sell, ""), nil
	case "5":
		return redirect(f.asset.menus.send, ""), nil
	case "0":
		return redirect(model.MenuMain, ""), nil
	default:
		return invalid(msgInvalidOption, f.menuText()), nil
	}
}

func (f *cryptoFlow) rate(ctx context.Context, currency string) (model.ExchangeRate, error) {
	rate, err := f.engine.deps.Rates.Rate(ctx, f.asset.code, currency)
	if err != nil {
		return model.ExchangeRate{}, fmt.Errorf("failed to get %s rate: %w", f.asset.code, err)
	}
	if rate.Rate <= 0 {
		return model.ExchangeRate{}, fmt.Errorf("invalid %s rate %v", f.asset.code, rate.Rate)
	}
	return rate, nil
}

func (f *cryptoFlow) handleBalance(ctx context.Context, _ input, sess *model.Session) (Result, error) {
	if gatedStep(sess.Step) != gatedReady {
		return f.engine.requirePIN(sess, f.asset.label+" Balance", f.asset.menus.balance), nil
	}

	held, err := f.engine.balance(ctx, sess.PhoneNumber, f.asset.code)
	if err != nil {
		return Result{}, err
	}

	text := f.asset.label + " Balance\n" + f.asset.format(held)
	currency := sess.Data.Currency
	if rate, err := f.rate(ctx, currency); err != nil {
		f.engine.logger.Warn("USSD engine: failed to value balance", "asset", f.asset.code, "error", err)
	} else {
		text += "\n≈ " + formatMoney(currency, f.asset.toLocal(held, rate.Rate))
	}

	return endSession(text), nil
}

func (f *cryptoFlow) handleRate(ctx context.Context, _ input, sess *model.Session) (Result, error) {
	currency := sess.Data.Currency
	rate, err := f.rate(ctx, currency)
	if err != nil {
		return Result{}, err
	}

	text := fmt.Sprintf("%s Exchange Rate\n1 %s = %s\nUpdated: %s",
		f.asset.title, f.asset.label, formatMoney(currency, int64(math.Round(rate.Rate))),
		rate.LastUpdated.UTC().Format("02 Jan 2006 15:04 UTC"))
	if rate.Source != "" {
		text += "\nSource: " + rate.Source
	}

	return endSession(text), nil
}

type tradeStep int

const (
	tradeAwaitAmount tradeStep = iota
	tradeAwaitAgent
	tradeAwaitPIN
)

var tradeMachine = newMachine("crypto_trade", map[tradeStep][]tradeStep{
	tradeAwaitAmount: {tradeAwaitAgent},
	tradeAwaitAgent:  {tradeAwaitPIN},
})

// handleBuy exchanges local cash paid to an agent for the asset.
func (f *cryptoFlow) handleBuy(ctx context.Context, in input, sess *model.Session) (Result, error) {
	e := f.engine
	token := in.last()
	if token == cancelKey {
		return redirect(f.asset.menus.root, ""), nil
	}

	currency := sess.Data.Currency
	limits := e.cfg.Tariffs.Deposit
	prompt := fmt.Sprintf("Enter amount in %s to spend (%s - %s):\n%s",
		currency, formatMoney(currency, limits.Min), formatMoney(currency, limits.Max), optionCancel)

	switch tradeMachine.at(sess) {
	case tradeAwaitAmount:
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

		rate, err := f.rate(ctx, currency)
		if err != nil {
			return Result{}, err
		}
		fee := percentFee(amount, e.cfg.Tariffs.CryptoSpreadPercent)
		receive := f.asset.fromLocal(amount-fee, rate.Rate)
		if receive <= 0 {
			return invalid("Amount is too small.", prompt), nil
		}

		agents, err := e.listAgents(ctx)
		if err != nil {
			return Result{}, err
		}
		if len(agents) == 0 {
			return endSession(msgNoAgents), nil
		}

		sess.Data.Crypto = &model.CryptoData{
			LocalAmount: amount,
			AssetAmount: receive,
			Fee:         fee,
			Rate:        rate.Rate,
			Agents:      agents,
		}
		if err := tradeMachine.move(sess, tradeAwaitAgent); err != nil {
			return Result{}, err
		}
		return continueSession(f.buySummary(currency, sess.Data.Crypto) + "\n" + agentMenu(agents)), nil

	case tradeAwaitAgent:
		return f.selectAgent(sess, token, f.buySummary(currency, sess.Data.Crypto))

	case tradeAwaitPIN:
		c := sess.Data.Crypto
		if c == nil || c.Agent == nil {
			return Result{}, fmt.Errorf("%s buy: missing trade data", f.asset.code)
		}
		if token == "" {
			return continueSession(f.buySummary(currency, c) + "\n" + promptConfirmPIN), nil
		}

		ok, res, err := e.confirmPIN(ctx, sess, in, promptConfirmPIN, true)
		if err != nil || !ok {
			return res, err
		}

		code, err := f.createRequest(ctx, sess, model.RequestBuy, prefixBuy, c)
		if err != nil {
			return Result{}, err
		}

		return endSession(fmt.Sprintf("Buy request created.\nCode: %s\nPay %s to %s, %s\nYou receive: %s\nValid for %s.",
			code, formatMoney(currency, c.LocalAmount), c.Agent.Name, c.Agent.Location,
			f.asset.format(c.AssetAmount), formatValidity(e.cfg.Tariffs.CodeValidity))), nil
	}

	return Result{}, tradeMachine.unknown(sess)
}

func (f *cryptoFlow) buySummary(currency string, c *model.CryptoData) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("Buy %s\nYou pay: %s\nFee: %s",
		f.asset.format(c.AssetAmount), formatMoney(currency, c.LocalAmount), formatMoney(currency, c.Fee))
}

// handleSell exchanges the asset for local cash handed out by an agent.
func (f *cryptoFlow) handleSell(ctx context.Context, in input, sess *model.Session) (Result, error) {
	e := f.engine
	token := in.last()
	if token == cancelKey {
		return redirect(f.asset.menus.root, ""), nil
	}

	currency := sess.Data.Currency
	prompt := fmt.Sprintf("Enter amount of %s to sell:\n%s", f.asset.label, optionCancel)

	switch tradeMachine.at(sess) {
	case tradeAwaitAmount:
		if token == "" {
			return continueSession(prompt), nil
		}
		amount, ok := parseAssetAmount(token, f.asset.decimals)
		if !ok {
			return invalid(msgInvalidAmount, prompt), nil
		}

		held, err := e.balance(ctx, sess.PhoneNumber, f.asset.code)
		if err != nil {
			return Result{}, err
		}
		if held < amount {
			return endSession(msgInsufficient(f.asset.format(held))), nil
		}

		rate, err := f.rate(ctx, currency)
		if err != nil {
			return Result{}, err
		}
		gross := f.asset.toLocal(amount, rate.Rate)
		fee := percentFee(gross, e.cfg.Tariffs.CryptoSpreadPercent)
		if gross-fee <= 0 {
			return invalid("Amount is too small.", prompt), nil
		}

		agents, err := e.listAgents(ctx)
		if err != nil {
			return Result{}, err
		}
		if len(agents) == 0 {
			return endSession(msgNoAgents), nil
		}

		sess.Data.Crypto = &model.CryptoData{
			AssetAmount: amount,
			LocalAmount: gross - fee,
			Fee:         fee,
			Rate:        rate.Rate,
			Agents:      agents,
		}
		if err := tradeMachine.move(sess, tradeAwaitAgent); err != nil {
			return Result{}, err
		}
		return continueSession(f.sellSummary(currency, sess.Data.Crypto) + "\n" + agentMenu(agents)), nil

	case tradeAwaitAgent:
		return f.selectAgent(sess, token, f.sellSummary(currency, sess.Data.Crypto))

	case tradeAwaitPIN:
		c := sess.Data.Crypto
		if c == nil || c.Agent == nil {
			return Result{}, fmt.Errorf("%s sell: missing trade data", f.asset.code)
		}
		if token == "" {
			return continueSession(f.sellSummary(currency, c) + "\n" + promptConfirmPIN), nil
		}

		ok, res, err := e.confirmPIN(ctx, sess, in, promptConfirmPIN, true)
		if err != nil || !ok {
			return res, err
		}

		code, err := f.createRequest(ctx, sess, model.RequestSell, prefixSell, c)
		if err != nil {
			return Result{}, err
		}

		return endSession(fmt.Sprintf("Sell request created.\nCode: %s\nSell: %s\nCollect %s from %s, %s\nValid for %s.",
			code, f.asset.format(c.AssetAmount), formatMoney(currency, c.LocalAmount),
			c.Agent.Name, c.Agent.Location, formatValidity(e.cfg.Tariffs.CodeValidity))), nil
	}

	return Result{}, tradeMachine.unknown(sess)
}

func (f *cryptoFlow) sellSummary(currency string, c *model.CryptoData) string {
	if c == nil {
		return ""
	}
	return fmt.Sprintf("Sell %s\nYou receive: %s\nFee: %s",
		f.asset.format(c.AssetAmount), formatMoney(currency, c.LocalAmount), formatMoney(currency, c.Fee))
}

func (f *cryptoFlow) selectAgent(sess *model.Session, token, summary string) (Result, error) {
	c := sess.Data.Crypto
	if c == nil {
		return Result{}, fmt.Errorf("%s trade: missing trade data", f.asset.code)
	}
	if token == "" {
		return continueSession(summary + "\n" + agentMenu(c.Agents)), nil
	}
	idx, ok := choice(token, len(c.Agents))
	if !ok {
		return invalid(msgInvalidOption, agentMenu(c.Agents)), nil
	}

	agent := c.Agents[idx]
	c.Agent = &agent
	if err := tradeMachine.move(sess, tradeAwaitPIN); err != nil {
		return Result{}, err
	}
	return continueSession(summary + "\nAgent: " + agent.Name + "\n" + promptConfirmPIN), nil
}

func (f *cryptoFlow) createRequest(ctx context.Context, sess *model.Session, kind model.RequestKind, prefix string, c *model.CryptoData) (string, error) {
	e := f.engine
	code, err := e.newCode(prefix)
	if err != nil {
		return "", err
	}

	validity := e.cfg.Tariffs.CodeValidity
	if _, err := e.deps.Requests.CreatePending(ctx, model.CashRequest{
		Kind:        kind,
		Code:        code,
		Phone:       sess.PhoneNumber,
		AgentID:     c.Agent.ID,
		Currency:    sess.Data.Currency,
		Amount:      c.LocalAmount,
		Fee:         c.Fee,
		Asset:       f.asset.code,
		AssetAmount: c.AssetAmount,
		ExpiresAt:   e.now().Add(validity),
	}); err != nil {
		return "", fmt.Errorf("failed to create %s request: %w", kind, err)
	}

	e.notify(ctx, sess.PhoneNumber, fmt.Sprintf("%s %s request %s: %s for %s. Valid for %s.",
		f.asset.label, kind, code, f.asset.format(c.AssetAmount),
		formatMoney(sess.Data.Currency, c.LocalAmount), formatValidity(validity)))
	e.notify(ctx, c.Agent.Phone, fmt.Sprintf("New %s %s request %s from %s.", f.asset.label, kind, code, sess.PhoneNumber))
	e.archive(ctx, model.Receipt{
		Reference:    code,
		Kind:         string(kind),
		Phone:        sess.PhoneNumber,
		Counterparty: c.Agent.ID,
		Asset:        f.asset.code,
		Amount:       c.AssetAmount,
		Fee:          c.Fee,
		CreatedAt:    e.now(),
	})

	return code, nil
}

type cryptoSendStep int

const (
	cryptoAwaitRecipient cryptoSendStep = iota
	cryptoAwaitAmount
	cryptoAwaitPIN
)

var cryptoSendMachine = newMachine("crypto_send", map[cryptoSendStep][]cryptoSendStep{
	cryptoAwaitRecipient: {cryptoAwaitAmount},
	cryptoAwaitAmount:    {cryptoAwaitPIN},
})

// handleSend moves the asset to another registered subscriber.
func (f *cryptoFlow) handleSend(ctx context.Context, in input, sess *model.Session) (Result, error) {
	e := f.engine
	token := in.last()
	if token == cancelKey {
		return redirect(f.asset.menus.root, ""), nil
	}

	networkFee := e.cfg.Tariffs.NetworkFees[f.asset.code]
	amountPrompt := fmt.Sprintf("Enter amount of %s to send:\n%s", f.asset.label, optionCancel)

	switch cryptoSendMachine.at(sess) {
	case cryptoAwaitRecipient:
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

		if _, err := e.deps.Users.FindByPhone(ctx, recipient); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return endSession("Recipient " + recipient + " is not registered with " + brand + "."), nil
			}
			return Result{}, fmt.Errorf("failed to find recipient: %w", err)
		}

		sess.Data.Crypto = &model.CryptoData{Recipient: recipient}
		if err := cryptoSendMachine.move(sess, cryptoAwaitAmount); err != nil {
			return Result{}, err
		}
		return continueSession(amountPrompt), nil

	case cryptoAwaitAmount:
		c := sess.Data.Crypto
		if c == nil {
			return Result{}, fmt.Errorf("%s send: missing send data", f.asset.code)
		}
		if token == "" {
			return continueSession(amountPrompt), nil
		}
		amount, ok := parseAssetAmount(token, f.asset.decimals)
		if !ok {
			return invalid(msgInvalidAmount, amountPrompt), nil
		}

		held, err := e.balance(ctx, sess.PhoneNumber, f.asset.code)
		if err != nil {
			return Result{}, err
		}
		if held < amount+networkFee {
			return endSession(msgInsufficient(f.asset.format(held))), nil
		}

		c.AssetAmount, c.Fee = amount, networkFee
		if err := cryptoSendMachine.move(sess, cryptoAwaitPIN); err != nil {
			return Result{}, err
		}
		return continueSession(f.sendSummary(c) + "\n" + promptConfirmPIN), nil

	case cryptoAwaitPIN:
		c := sess.Data.Crypto
		if c == nil {
			return Result{}, fmt.Errorf("%s send: missing send data", f.asset.code)
		}
		if token == "" {
			return continueSession(f.sendSummary(c) + "\n" + promptConfirmPIN), nil
		}

		ok, res, err := e.confirmPIN(ctx, sess, in, promptConfirmPIN, true)
		if err != nil || !ok {
			return res, err
		}

		result, err := e.deps.Wallet.Transfer(ctx, model.TransferRequest{
			Sender:    sess.PhoneNumber,
			Recipient: c.Recipient,
			Asset:     f.asset.code,
			Amount:    c.AssetAmount,
			Fee:       c.Fee,
			Kind:      model.TransactionCryptoSend,
		})
		if err != nil {
			return Result{}, fmt.Errorf("failed to transfer %s: %w", f.asset.code, err)
		}
		if !result.Success {
			return endSession("Transaction failed: " + result.Error), nil
		}

		sent := f.asset.format(c.AssetAmount)
		e.notify(ctx, sess.PhoneNumber, fmt.Sprintf("You sent %s to %s. Ref: %s", sent, c.Recipient, result.TransactionID))
		e.notify(ctx, c.Recipient, fmt.Sprintf("You received %s from %s. Ref: %s", sent, sess.PhoneNumber, result.TransactionID))
		e.archive(ctx, model.Receipt{
			Reference:    result.TransactionID,
			Kind:         string(model.TransactionCryptoSend),
			Phone:        sess.PhoneNumber,
			Counterparty: c.Recipient,
			Asset:        f.asset.code,
			Amount:       c.AssetAmount,
			Fee:          c.Fee,
			CreatedAt:    e.now(),
		})

		return endSession(fmt.Sprintf("Sent %s to %s.\nNetwork fee: %s\nRef: %s",
			sent, c.Recipient, f.asset.format(c.Fee), result.TransactionID)), nil
	}

	return Result{}, cryptoSendMachine.unknown(sess)
}

func (f *cryptoFlow) sendSummary(c *model.CryptoData) string {
	return fmt.Sprintf("Send %s to %s\nNetwork fee: %s", f.asset.format(c.AssetAmount), c.Recipient, f.asset.format(c.Fee))
}
