package gateway

import (
	"encoding/json"
	"strconv"
	"strings"

	"storefront_back_end/internal/models"
)

// Clés du sac "notes" (Razorpay) / "metadata" (Stripe)
const (
	noteOrderNumber    = "orderNumber"
	noteCustomerName   = "customerName"
	noteCustomerEmail  = "customerEmail"
	noteExternalUserID = "externalUserId"
	noteReceipt        = "receipt"
	noteAddress        = "address"
	noteItems          = "items"
)

// Notes est la version typée des métadonnées attachées à la commande passerelle.
// Les passerelles n'acceptent que des chaînes : items et address y sont
// sérialisés en JSON une seule fois, à l'encodage, et relus une seule fois
// à la réception de l'événement.
type Notes struct {
	OrderNumber    string
	CustomerName   string
	CustomerEmail  string
	ExternalUserID string
	Receipt        string
	Address        *models.Address
	Items          []models.OrderItem
}

// Encode produit le sac clé/valeur envoyé à la passerelle
func (n Notes) Encode() map[string]string {
	out := map[string]string{
		noteOrderNumber:    n.OrderNumber,
		noteCustomerName:   n.CustomerName,
		noteCustomerEmail:  n.CustomerEmail,
		noteExternalUserID: n.ExternalUserID,
		noteReceipt:        n.Receipt,
		noteAddress:        "",
		noteItems:          "",
	}
	if !n.Address.IsZero() {
		if data, err := json.Marshal(n.Address); err == nil {
			out[noteAddress] = string(data)
		}
	}
	if len(n.Items) > 0 {
		if data, err := json.Marshal(n.Items); err == nil {
			out[noteItems] = string(data)
		}
	}
	return out
}

// DecodeNotes lit le sac "notes" d'une entité webhook. Razorpay envoie un
// tableau vide quand aucune note n'existe : tout ce qui n'est pas un objet
// donne des Notes vides. Une erreur sur items/address ne dégrade que ce champ.
func DecodeNotes(raw json.RawMessage) Notes {
	var bag map[string]any
	if len(raw) == 0 || json.Unmarshal(raw, &bag) != nil {
		return Notes{}
	}
	return notesFromBag(bag)
}

// NotesFromMetadata lit les métadonnées Stripe (déjà des chaînes)
func NotesFromMetadata(metadata map[string]string) Notes {
	bag := make(map[string]any, len(metadata))
	for k, v := range metadata {
		bag[k] = v
	}
	return notesFromBag(bag)
}

func notesFromBag(bag map[string]any) Notes {
	n := Notes{
		OrderNumber:    stringValue(bag[noteOrderNumber]),
		CustomerName:   stringValue(bag[noteCustomerName]),
		CustomerEmail:  stringValue(bag[noteCustomerEmail]),
		ExternalUserID: stringValue(bag[noteExternalUserID]),
		Receipt:        stringValue(bag[noteReceipt]),
	}
	if n.CustomerName == "" {
		n.CustomerName = stringValue(bag["name"])
	}
	if n.ExternalUserID == "" {
		n.ExternalUserID = stringValue(bag["clerkUserId"])
	}
	n.Address = decodeAddress(bag[noteAddress])
	n.Items = decodeItems(bag[noteItems])
	return n
}

func decodeAddress(v any) *models.Address {
	var addr models.Address
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" || json.Unmarshal([]byte(val), &addr) != nil {
			return nil
		}
	case map[string]any:
		data, err := json.Marshal(val)
		if err != nil || json.Unmarshal(data, &addr) != nil {
			return nil
		}
	default:
		return nil
	}
	if addr.IsZero() {
		return nil
	}
	return &addr
}

// decodeItems accepte les variantes rencontrées dans les paniers :
// productId | _id | id | product._ref, et qty | quantity (défaut 1)
func decodeItems(v any) []models.OrderItem {
	var raw []map[string]any
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" || json.Unmarshal([]byte(val), &raw) != nil {
			return nil
		}
	case []any:
		for _, it := range val {
			if m, ok := it.(map[string]any); ok {
				raw = append(raw, m)
			}
		}
	default:
		return nil
	}

	items := make([]models.OrderItem, 0, len(raw))
	for _, it := range raw {
		item := models.OrderItem{
			ProductID: firstString(it["productId"], it["_id"], it["id"]),
			Name:      stringValue(it["name"]),
			Image:     stringValue(it["image"]),
		}
		if item.ProductID == "" {
			if ref, ok := it["product"].(map[string]any); ok {
				item.ProductID = firstString(ref["_ref"], ref["_id"], ref["id"])
			}
		}
		if q, ok := numberValue(it["qty"]); ok {
			item.Quantity = int(q)
		} else if q, ok := numberValue(it["quantity"]); ok {
			item.Quantity = int(q)
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if p, ok := numberValue(it["price"]); ok {
			item.Price = p
		}
		items = append(items, item)
	}
	return items
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return ""
}

func firstString(values ...any) string {
	for _, v := range values {
		if s := stringValue(v); s != "" {
			return s
		}
	}
	return ""
}

func numberValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	}
	return 0, false
}
