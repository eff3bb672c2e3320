package orders

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign retourne la signature HMAC-SHA256 hexadécimale de message
func Sign(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compare en temps constant la signature candidate (hex)
// au HMAC-SHA256 de message. Toute entrée invalide donne false.
func VerifySignature(secret string, message []byte, candidate string) bool {
	candidate = strings.TrimSpace(candidate)
	if secret == "" || candidate == "" {
		return false
	}
	got, err := hex.DecodeString(candidate)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return hmac.Equal(mac.Sum(nil), got)
}

// ConfirmationMessage est le message signé par la passerelle au retour du paiement
func ConfirmationMessage(gatewayOrderID, paymentID string) []byte {
	return []byte(gatewayOrderID + "|" + paymentID)
}
