package workflow

import (
	"crypto/rand"
	"math/big"
)

const (
	captchaAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	captchaLength   = 6
)

// NewCaptcha draws a challenge uniformly from A-Z0-9.
func NewCaptcha() (string, error) {
	out := make([]byte, captchaLength)
	max := big.NewInt(int64(len(captchaAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = captchaAlphabet[n.Int64()]
	}
	return string(out), nil
}
