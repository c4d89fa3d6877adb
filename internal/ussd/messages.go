package ussd

import "fmt"

const brand = "AfriTokeni"

const (
	msgGenericError  = "An error occurred. Please try again later."
	msgRateLimited   = "Too many requests. Please wait a moment and try again."
	msgInvalidOption = "Invalid option."
	msgInvalidAmount = "Invalid amount."
	msgInvalidPhone  = "Invalid phone number."
	msgSelfTransfer  = "You cannot send to your own number."
	msgNoAgents      = "No agents are available right now. Please try again later."
	msgThankYou      = "Thank you for using " + brand + "."

	msgPINFormat    = "PIN must be exactly 4 digits."
	msgPINIncorrect = "Incorrect PIN."
	msgPINLocked    = "Too many incorrect PIN attempts. Please try again later."

	promptPIN        = "Enter your 4-digit PIN:"
	promptConfirmPIN = "Enter your PIN to confirm:"
	promptAgent      = "Select an agent:"
	optionCancel     = "0. Cancel"
	optionBack       = "0. Back"
)

const mainMenuText = "Welcome to " + brand + "\n" +
	"1. Local Currency\n" +
	"2. Bitcoin (ckBTC)\n" +
	"3. USDC (ckUSDC)\n" +
	"4. DAO Governance\n" +
	"5. Help\n" +
	"6. Language"

func msgSessionExpired(dialCode string) string {
	return fmt.Sprintf("Session expired. Please dial %s to start again.", dialCode)
}

func msgInsufficient(have string) string {
	return "Insufficient balance. Available: " + have
}

func helpText(dialCode string) string {
	return brand + " Help\n" +
		"Send, deposit and withdraw money with agents, trade Bitcoin and USDC and vote on proposals.\n" +
		"Dial " + dialCode + " any time to start over.\n" +
		"Support: support@afritokeni.com"
}

func invalid(reason, prompt string) Result {
	return continueSession(reason + "\n" + prompt)
}
