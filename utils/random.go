package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// GenerateCode returns an upper-case hex string of n random bytes, used for
// session tokens.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// GenerateReceiptReference returns a display-only receipt reference of the
// form TXN-<n> with n in [0, 1000000). Not unique, not verifiable.
func GenerateReceiptReference() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("TXN-%d", n.Int64()), nil
}
