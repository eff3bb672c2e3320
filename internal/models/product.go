package models

import "time"

type Product struct {
	ID                string    `json:"id" db:"product_id"`
	Name              string    `json:"name" db:"name"`
	Price             float64   `json:"price" db:"price"`
	Stock             int       `json:"stock" db:"stock"`
	LowStockThreshold int       `json:"low_stock_threshold" db:"low_stock_threshold"`
	ImageURLs         []string  `json:"image_urls" db:"image_urls"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// MainImage retourne la première image du produit, ou ""
func (p *Product) MainImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}
