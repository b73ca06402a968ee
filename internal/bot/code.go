package bot

import (
	"crypto/rand"
	"math/big"
)

const (
	registrationCodeLength = 32
	alphanumeric           = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// newRegistrationCode returns a random alphanumeric code the player types in game.
func newRegistrationCode() (string, error) {
	limit := big.NewInt(int64(len(alphanumeric)))
	code := make([]byte, registrationCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		code[i] = alphanumeric[n.Int64()]
	}
	return string(code), nil
}
