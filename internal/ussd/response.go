package ussd

import "github.com/afritokeni/ussd-engine/internal/model"

// Wire prefixes expected by USSD gateways.
const (
	continuePrefix = "CON "
	endPrefix      = "END "
)

// Result is what a menu handler hands back to the dispatcher. A non-empty
// RedirectTo asks the dispatcher to show that menu's prompt next, with Text
// printed above it.
type Result struct {
	Text       string
	Continue   bool
	RedirectTo model.Menu
}

func continueSession(text string) Result {
	return Result{Text: text, Continue: true}
}

func endSession(text string) Result {
	return Result{Text: text}
}

func redirect(menu model.Menu, notice string) Result {
	return Result{Text: notice, Continue: true, RedirectTo: menu}
}

// Response is the reply to one gateway request.
type Response struct {
	Text     string
	Continue bool
}

// Wire renders the response in the gateway's CON/END convention.
func (r Response) Wire() string {
	if r.Continue {
		return continuePrefix + r.Text
	}
	return endPrefix + r.Text
}

func joinText(notice, text string) string {
	switch {
	case notice == "":
		return text
	case text == "":
		return notice
	default:
		return notice + "\n" + text
	}
}
