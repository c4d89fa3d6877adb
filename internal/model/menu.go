package model

// Menu identifies the state a USSD session is in. The set is closed.
type Menu string

const (
	MenuRegistration       Menu = "registration"
	MenuVerification       Menu = "verification"
	MenuPINCheck           Menu = "pin_check"
	MenuPINSetup           Menu = "pin_setup"
	MenuMain               Menu = "main"
	MenuLocalCurrency      Menu = "local_currency"
	MenuSendMoney          Menu = "send_money"
	MenuWithdraw           Menu = "withdraw"
	MenuCheckBalance       Menu = "check_balance"
	MenuTransactionHistory Menu = "transaction_history"
	MenuDeposit            Menu = "deposit"
	MenuFindAgent          Menu = "find_agent"

	MenuBitcoin        Menu = "bitcoin"
	MenuBitcoinBalance Menu = "btc_balance"
	MenuBitcoinRate    Menu = "btc_rate"
	MenuBitcoinBuy     Menu = "btc_buy"
	MenuBitcoinSell    Menu = "btc_sell"
	MenuBitcoinSend    Menu = "btc_send"

	MenuUSDC        Menu = "usdc"
	MenuUSDCBalance Menu = "usdc_balance"
	MenuUSDCRate    Menu = "usdc_rate"
	MenuUSDCBuy     Menu = "usdc_buy"
	MenuUSDCSell    Menu = "usdc_sell"
	MenuUSDCSend    Menu = "usdc_send"

	MenuDAO            Menu = "dao"
	MenuDAOProposals   Menu = "dao_proposals"
	MenuDAOVotingPower Menu = "dao_voting_power"
	MenuDAOActiveVotes Menu = "dao_active_votes"

	MenuLanguage Menu = "language_selection"
)

// Language is the subscriber's display language preference.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageLuganda Language = "lg"
	LanguageSwahili Language = "sw"
)
