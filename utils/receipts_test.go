package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReceiptNumberFormat(t *testing.T) {
	receipt := GenerateReceiptNumber("key")

	parts := strings.Split(receipt, "-")
	assert.Len(t, parts, 4)
	assert.Equal(t, "RC", parts[0])
	assert.Len(t, parts[1], 6)
	assert.Len(t, parts[2], 8)
	assert.Len(t, parts[3], 8)
}

func TestVerifyReceiptNumber(t *testing.T) {
	receipt := GenerateReceiptNumber("key")

	assert.True(t, VerifyReceiptNumber(receipt, "key"))
	assert.False(t, VerifyReceiptNumber(receipt, "other-key"))
}

func TestVerifyReceiptNumberMalformed(t *testing.T) {
	assert.False(t, VerifyReceiptNumber("", "key"))
	assert.False(t, VerifyReceiptNumber("RC", "key"))
	assert.False(t, VerifyReceiptNumber("RC-202501-12345678-", "key"))
}

func TestCalculateHMACDeterministic(t *testing.T) {
	first := CalculateHMAC("payload", "key")
	second := CalculateHMAC("payload", "key")
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, CalculateHMAC("payload", "other"))
}
