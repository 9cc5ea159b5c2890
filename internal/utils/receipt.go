package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateReceipt returns a merchant-side receipt id such as
// rcpt_1718000000123_0042. It is for reconciliation only and carries
// no security weight.
func GenerateReceipt() string {
	now := time.Now().UTC()

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(now.UnixNano() % 10000)
	}

	return fmt.Sprintf("rcpt_%d_%04d", now.UnixMilli(), n.Int64())
}
