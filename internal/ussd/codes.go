package ussd

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	codeAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength       = 6
	verificationSize = 6
)

// Request code prefixes.
const (
	prefixDeposit  = "DEP"
	prefixWithdraw = "WD"
	prefixBuy      = "BUY"
	prefixSell     = "SELL"
)

// newCode returns prefix, a dash and codeLength characters from codeAlphabet.
func (e *Engine) newCode(prefix string) (string, error) {
	suffix, err := e.randomString(codeAlphabet, codeLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s code: %w", prefix, err)
	}
	return prefix + "-" + suffix, nil
}

// newVerificationCode returns a numeric code sent by SMS during registration.
func (e *Engine) newVerificationCode() (string, error) {
	code, err := e.randomString("0123456789", verificationSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return code, nil
}

func (e *Engine) randomString(alphabet string, n int) (string, error) {
	limit := big.NewInt(int64(len(alphabet)))

	var b strings.Builder
	b.Grow(n)
	for range n {
		i, err := rand.Int(e.random, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[i.Int64()])
	}

	return b.String(), nil
}
