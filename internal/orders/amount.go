package orders

import (
	"math"
	"strings"

	"storefront_back_end/internal/models"
)

// ToMinorUnits convertit un prix décimal en unités mineures (arrondi)
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CartAmount : round(sum(price × qty) × 100)
func CartAmount(items []models.OrderItem) int64 {
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return ToMinorUnits(total)
}

// normalizeLines valide le panier et le convertit en lignes de commande.
// Une quantité nulle vaut 1, comme dans le panier du storefront.
func normalizeLines(lines []models.CartLine) ([]models.OrderItem, error) {
	if len(lines) == 0 {
		return nil, invalid("items", "le panier est vide")
	}
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		id := strings.TrimSpace(line.Product.ID)
		if id == "" {
			return nil, invalid("items", "produit sans identifiant")
		}
		if line.Quantity < 0 {
			return nil, invalid("items", "quantité négative pour "+id)
		}
		if line.Product.Price < 0 {
			return nil, invalid("items", "prix négatif pour "+id)
		}
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		items = append(items, models.OrderItem{
			ProductID: id,
			Name:      line.Product.Name,
			Quantity:  qty,
			Price:     line.Product.Price,
			Image:     line.Product.Image,
		})
	}
	return items, nil
}
