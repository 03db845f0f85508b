package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// hex(HMAC-SHA256(secret, order_id + "|" + payment_id))
func Sign(secret string, orderID string, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// 決済コールバックの署名検証
type HMACVerifier struct {
	secret string
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: secret}
}

// 定数時間で比較する。secret 未設定なら常に false
func (v *HMACVerifier) Verify(orderID string, paymentID string, signature string) bool {
	if v.secret == "" || signature == "" {
		return false
	}
	expected := Sign(v.secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
