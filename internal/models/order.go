package models

import "time"

// OrderStatus représente l'état d'une commande
type OrderStatus string

const (
	StatusCreated        OrderStatus = "created"
	StatusPaid           OrderStatus = "paid"
	StatusProcessing     OrderStatus = "processing"
	StatusShipped        OrderStatus = "shipped"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

var statusRank = map[OrderStatus]int{
	StatusCreated:        0,
	StatusPaid:           1,
	StatusProcessing:     2,
	StatusShipped:        3,
	StatusOutForDelivery: 4,
	StatusDelivered:      5,
}

// Valid indique si le statut fait partie de l'énumération connue
func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusCancelled
}

// CanAdvanceTo : un statut ne recule jamais. "cancelled" est terminal et
// atteignable depuis tout état non livré.
func (s OrderStatus) CanAdvanceTo(next OrderStatus) bool {
	if !next.Valid() || s == StatusCancelled || s == next {
		return false
	}
	if next == StatusCancelled {
		return s != StatusDelivered
	}
	current, ok := statusRank[s]
	if !ok {
		// statut vide ou inconnu : n'importe quel statut valide l'emporte
		return true
	}
	return statusRank[next] > current
}

// StatusesBelow retourne les statuts depuis lesquels on peut passer à next
func StatusesBelow(next OrderStatus) []string {
	var out []string
	for _, s := range []OrderStatus{"", StatusCreated, StatusPaid, StatusProcessing, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled} {
		if s.CanAdvanceTo(next) {
			out = append(out, string(s))
		}
	}
	return out
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"qty"`
	Price     float64 `json:"price"`
	Image     string  `json:"image,omitempty"`
}

// PaymentDetails est attaché après vérification de la signature
type PaymentDetails struct {
	PaymentID  string    `json:"paymentId"`
	Signature  string    `json:"signature,omitempty"`
	Verified   bool      `json:"verified"`
	VerifiedAt time.Time `json:"verifiedAt"`
	Source     string    `json:"source"` // "confirmation" ou "webhook"
	Raw        string    `json:"raw,omitempty"`
}

const (
	PaymentSourceConfirmation = "confirmation"
	PaymentSourceWebhook      = "webhook"
)

// Order est le document de commande, clé = ID dérivé de l'ID passerelle
type Order struct {
	ID             string            `json:"id"`
	GatewayOrderID string            `json:"gatewayOrderId"`
	OrderNumber    string            `json:"orderNumber,omitempty"`
	Receipt        string            `json:"receipt,omitempty"`
	Status         OrderStatus       `json:"status"`
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	CustomerName   string            `json:"customerName,omitempty"`
	CustomerEmail  string            `json:"customerEmail,omitempty"`
	ExternalUserID string            `json:"externalUserId,omitempty"`
	Address        *Address          `json:"address,omitempty"`
	Items          []OrderItem       `json:"items"`
	Payment        *PaymentDetails   `json:"payment,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	OrderDate      time.Time         `json:"orderDate"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// OrderPatch : nil = champ inchangé. Items remplace la liste entière.
type OrderPatch struct {
	GatewayOrderID *string
	OrderNumber    *string
	Receipt        *string
	Status         *OrderStatus
	Amount         *int64
	Currency       *string
	CustomerName   *string
	CustomerEmail  *string
	ExternalUserID *string
	Address        *Address
	Items          []OrderItem
	Payment        *PaymentDetails
	Metadata       map[string]string
	OrderDate      *time.Time
}

// MergePayment applique next sur current. Un identifiant, une signature ou
// un corps brut vides dans next conservent les valeurs déjà enregistrées.
func MergePayment(current, next *PaymentDetails) *PaymentDetails {
	if next == nil {
		return current
	}
	merged := *next
	if current == nil {
		return &merged
	}
	if merged.PaymentID == "" {
		merged.PaymentID = current.PaymentID
	}
	if merged.Signature == "" {
		merged.Signature = current.Signature
	}
	if merged.Raw == "" {
		merged.Raw = current.Raw
	}
	return &merged
}

// Apply fusionne le patch dans la commande (fusion superficielle)
func (p OrderPatch) Apply(o *Order) {
	if p.GatewayOrderID != nil {
		o.GatewayOrderID = *p.GatewayOrderID
	}
	if p.OrderNumber != nil {
		o.OrderNumber = *p.OrderNumber
	}
	if p.Receipt != nil {
		o.Receipt = *p.Receipt
	}
	if p.Status != nil && o.Status.CanAdvanceTo(*p.Status) {
		o.Status = *p.Status
	}
	if p.Amount != nil {
		o.Amount = *p.Amount
	}
	if p.Currency != nil {
		o.Currency = *p.Currency
	}
	if p.CustomerName != nil {
		o.CustomerName = *p.CustomerName
	}
	if p.CustomerEmail != nil {
		o.CustomerEmail = *p.CustomerEmail
	}
	if p.ExternalUserID != nil {
		o.ExternalUserID = *p.ExternalUserID
	}
	if p.Address != nil {
		addr := *p.Address
		o.Address = &addr
	}
	if p.Items != nil {
		o.Items = append([]OrderItem(nil), p.Items...)
	}
	if p.Payment != nil {
		o.Payment = MergePayment(o.Payment, p.Payment)
	}
	if p.Metadata != nil {
		if o.Metadata == nil {
			o.Metadata = make(map[string]string, len(p.Metadata))
		}
		for k, v := range p.Metadata {
			o.Metadata[k] = v
		}
	}
	if p.OrderDate != nil {
		o.OrderDate = *p.OrderDate
	}
}

// Clone retourne une copie profonde de la commande
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.Address != nil {
		addr := *o.Address
		c.Address = &addr
	}
	if o.Items != nil {
		c.Items = append([]OrderItem(nil), o.Items...)
	}
	if o.Payment != nil {
		payment := *o.Payment
		c.Payment = &payment
	}
	if o.Metadata != nil {
		c.Metadata = make(map[string]string, len(o.Metadata))
		for k, v := range o.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
