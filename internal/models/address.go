package models

// Address est l'adresse de livraison attachée à la commande
type Address struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Country string `json:"country,omitempty"`
}

func (a *Address) IsZero() bool {
	return a == nil || *a == Address{}
}
