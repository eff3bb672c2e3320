package orders

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	receiptPrefix    = "rcpt_"
	maxReceiptLen    = 40
	maxReceiptBody   = 36
	receiptBaseLen   = 28
	receiptSuffixLen = 6
)

var receiptUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// BuildReceipt construit un reçu passerelle de 40 caractères au plus.
// Un numéro trop long est tronqué puis complété d'un suffixe aléatoire.
func BuildReceipt(orderNumber string) string {
	safe := receiptUnsafe.ReplaceAllString(orderNumber, "")
	if safe == "" {
		safe = randomToken(12)
	}
	if len(safe) > maxReceiptBody {
		safe = safe[:receiptBaseLen] + randomToken(receiptSuffixLen)
	}
	receipt := receiptPrefix + safe
	if len(receipt) > maxReceiptLen {
		receipt = receipt[:maxReceiptLen]
	}
	return receipt
}

// NewOrderNumber génère un numéro de commande quand le client n'en fournit pas
func NewOrderNumber() string {
	return strings.ToUpper(randomToken(12))
}

func randomToken(n int) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return token[:n]
}
