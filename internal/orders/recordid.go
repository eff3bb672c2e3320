package orders

import (
	"strconv"
	"strings"
	"time"
)

const recordPrefix = "order_"

// ToRecordID dérive la clé de stockage depuis l'ID de commande passerelle.
// Les préfixes déjà appliqués sont retirés avant d'en remettre un seul.
// Seule une entrée vide donne un ID basé sur l'horodatage.
func ToRecordID(gatewayOrderID string) string {
	id := strings.TrimSpace(gatewayOrderID)
	if id == "" {
		return recordPrefix + strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	for {
		trimmed := strings.TrimLeft(strings.TrimPrefix(id, recordPrefix), "_")
		if trimmed == id {
			break
		}
		id = trimmed
	}
	return recordPrefix + id
}
