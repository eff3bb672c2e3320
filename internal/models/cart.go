package models

// CartProduct est la référence produit envoyée par le panier du storefront
type CartProduct struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

type CartLine struct {
	Product  CartProduct `json:"product"`
	Quantity int         `json:"quantity"`
}

// CheckoutMetadata accompagne le panier lors de la création de commande
type CheckoutMetadata struct {
	OrderNumber    string   `json:"orderNumber"`
	CustomerName   string   `json:"customerName"`
	CustomerEmail  string   `json:"customerEmail"`
	ExternalUserID string   `json:"externalUserId"`
	Address        *Address `json:"address"`
}

// ConfirmMetadata est fournie par le client lors de la confirmation
type ConfirmMetadata struct {
	OrderNumber    string            `json:"orderNumber"`
	CustomerName   string            `json:"customerName"`
	CustomerEmail  string            `json:"customerEmail"`
	ExternalUserID string            `json:"externalUserId"`
	Address        *Address          `json:"address"`
	Extra          map[string]string `json:"extra"`
}
