package ussd

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonDigits = regexp.MustCompile(`\D`)

// normalizePhone keeps only the digits of a gateway phone number.
func normalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// normalizeRecipient accepts a local ("0772123456") or international
// ("+256772123456") mobile number and returns it in international digits.
func (e *Engine) normalizeRecipient(token string) (string, bool) {
	m := e.phone.FindStringSubmatch(strings.ReplaceAll(token, " ", ""))
	if m == nil {
		return "", false
	}
	return e.cfg.CountryCode + m[1], true
}

// parseAmount reads a positive whole amount of local currency.
func parseAmount(token string) (int64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 1 || v > math.MaxInt64/2 {
		return 0, false
	}
	return int64(math.Floor(v)), true
}

// parseAssetAmount reads a positive decimal amount and returns it in minor
// units of an asset with the given number of decimals.
func parseAssetAmount(token string, decimals int) (int64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	minor := math.Round(v * math.Pow10(decimals))
	if minor < 1 || minor > math.MaxInt64/2 {
		return 0, false
	}
	return int64(minor), true
}

// percentFee returns pct percent of amount, rounded up.
func percentFee(amount int64, pct float64) int64 {
	return int64(math.Ceil(float64(amount) * pct / 100))
}

// formatMoney renders a local currency amount, e.g. "UGX 100,000".
func formatMoney(currency string, amount int64) string {
	return currency + " " + groupThousands(amount)
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	return sign + b.String()
}

// formatUnits renders minor units with the given number of decimals,
// e.g. 150000 with 8 decimals is "0.00150000".
func formatUnits(minor int64, decimals int) string {
	if decimals == 0 {
		return groupThousands(minor)
	}
	pow := int64(math.Pow10(decimals))
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return sign + groupThousands(minor/pow) + "." + leftPad(strconv.FormatInt(minor%pow, 10), decimals)
}

func leftPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// formatValidity renders a code lifetime, e.g. "24 hours".
func formatValidity(d time.Duration) string {
	hours := int(d.Hours())
	switch {
	case hours == 1:
		return "1 hour"
	case hours > 1:
		return strconv.Itoa(hours) + " hours"
	default:
		return strconv.Itoa(int(d.Minutes())) + " minutes"
	}
}
