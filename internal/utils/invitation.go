package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	invitationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	invitationLength   = 8
)

// NewInvitationCode returns an 8 character code drawn uniformly from
// [A-Z0-9] using crypto/rand.
func NewInvitationCode() (string, error) {
	max := big.NewInt(int64(len(invitationAlphabet)))
	buf := make([]byte, invitationLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = invitationAlphabet[n.Int64()]
	}
	return string(buf), nil
}
