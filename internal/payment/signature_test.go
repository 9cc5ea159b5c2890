package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "rzp_test_secret"

func referenceSignature(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// flipChar replaces the character at i with a different one.
func flipChar(s string, i int) string {
	b := []byte(s)
	if b[i] == 'a' {
		b[i] = 'b'
	} else {
		b[i] = 'a'
	}
	return string(b)
}

func TestSign(t *testing.T) {
	sig := Sign("order_abc", "pay_xyz", testSecret)

	assert.Equal(t, referenceSignature(testSecret, "order_abc|pay_xyz"), sig)
	assert.Len(t, sig, 64)
	assert.Equal(t, strings.ToLower(sig), sig)
}

func TestVerifySignature(t *testing.T) {
	pairs := []struct{ orderID, paymentID string }{
		{"order_abc", "pay_xyz"},
		{"order_IluGWxBm9U8zJ8", "pay_IluGWxBm9U8zJ9"},
		{"", ""},
		{"order with spaces", "pay|pipe"},
		{"ऑर्डर", "भुगतान"},
	}

	for _, p := range pairs {
		sig := referenceSignature(testSecret, p.orderID+"|"+p.paymentID)
		assert.True(t, VerifySignature(p.orderID, p.paymentID, sig, testSecret), "pair %q/%q", p.orderID, p.paymentID)
	}

	t.Run("any changed character fails", func(t *testing.T) {
		orderID, paymentID := "order_abc", "pay_xyz"
		sig := Sign(orderID, paymentID, testSecret)

		for i := range sig {
			assert.False(t, VerifySignature(orderID, paymentID, flipChar(sig, i), testSecret), "signature index %d", i)
		}
		for i := range orderID {
			assert.False(t, VerifySignature(flipChar(orderID, i), paymentID, sig, testSecret), "order index %d", i)
		}
		for i := range paymentID {
			assert.False(t, VerifySignature(orderID, flipChar(paymentID, i), sig, testSecret), "payment index %d", i)
		}
	})

	t.Run("uppercase hex rejected", func(t *testing.T) {
		sig := Sign("order_abc", "pay_xyz", testSecret)
		assert.False(t, VerifySignature("order_abc", "pay_xyz", strings.ToUpper(sig), testSecret))
	})

	t.Run("prefix and padding rejected", func(t *testing.T) {
		sig := Sign("order_abc", "pay_xyz", testSecret)
		assert.False(t, VerifySignature("order_abc", "pay_xyz", sig[:32], testSecret))
		assert.False(t, VerifySignature("order_abc", "pay_xyz", sig+" ", testSecret))
		assert.False(t, VerifySignature("order_abc", "pay_xyz", "", testSecret))
	})

	t.Run("separator is part of the message", func(t *testing.T) {
		// "ab|c" and "a|bc" must not collide with each other.
		sig := Sign("ab", "c", testSecret)
		assert.False(t, VerifySignature("a", "bc", sig, testSecret))
	})

	t.Run("wrong or empty secret", func(t *testing.T) {
		sig := Sign("order_abc", "pay_xyz", testSecret)
		assert.False(t, VerifySignature("order_abc", "pay_xyz", sig, "other_secret"))
		assert.False(t, VerifySignature("order_abc", "pay_xyz", Sign("order_abc", "pay_xyz", ""), ""))
	})

	t.Run("deterministic", func(t *testing.T) {
		sig := Sign("order_abc", "pay_xyz", testSecret)
		first := VerifySignature("order_abc", "pay_xyz", sig, testSecret)
		second := VerifySignature("order_abc", "pay_xyz", sig, testSecret)
		assert.Equal(t, first, second)
		assert.Equal(t, sig, Sign("order_abc", "pay_xyz", testSecret))
	})
}
