package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// GenerateReceiptNumber генерирует номер квитанции для платежа.
// Формат: RC-<год><месяц>-<8 случайных цифр>-<8 символов HMAC>.
// HMAC-суффикс позволяет проверить, что номер выдан этой системой.
func GenerateReceiptNumber(hmacKey string) string {
	// Генерируем случайную часть
	var body strings.Builder
	body.WriteString("RC-")
	body.WriteString(time.Now().Format("200601"))
	body.WriteString("-")
	for i := 0; i < 8; i++ {
		body.WriteString(fmt.Sprintf("%d", rand.Intn(10)))
	}

	// Подписываем номер
	signature := CalculateHMAC(body.String(), hmacKey)

	return body.String() + "-" + signature[:8]
}

// CalculateHMAC вычисляет HMAC-SHA256 подпись данных
func CalculateHMAC(data, key string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyReceiptNumber проверяет HMAC-подпись номера квитанции
func VerifyReceiptNumber(receipt, hmacKey string) bool {
	idx := strings.LastIndex(receipt, "-")
	if idx <= 0 || idx == len(receipt)-1 {
		return false
	}

	body := receipt[:idx]
	suffix := receipt[idx+1:]

	expected := CalculateHMAC(body, hmacKey)
	if len(suffix) > len(expected) {
		return false
	}

	return hmac.Equal([]byte(suffix), []byte(expected[:len(suffix)]))
}
