package checkout

import (
	"github.com/google/uuid"

	"github.com/hamsterhub/hamsterhub-api/internal/domain/balance"
)

// CartItem is one line of a checkout request. Name, price and image are
// advisory display values from the client; the charged price always comes
// from the catalog.
type CartItem struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name,omitempty"`
	Price int64  `json:"price,omitempty"`
	Image string `json:"image,omitempty"`
}

// Request is the checkout payload.
type Request struct {
	Items       []CartItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount int64      `json:"total_amount" validate:"min=0"`
	Currency    string     `json:"currency" validate:"required,currency"`
}

// PurchasedItem describes one delivered line item. Files are never linked
// directly; buyers fetch them through the purchase download endpoint.
type PurchasedItem struct {
	PurchaseID  uuid.UUID `json:"purchase_id"`
	ItemID      uuid.UUID `json:"item_id"`
	ItemName    string    `json:"item_name"`
	Image       string    `json:"image,omitempty"`
	ContentType string    `json:"content_type"`
	TextContent string    `json:"text_content,omitempty"`
	LinkURL     string    `json:"link_url,omitempty"`
	HasFile     bool      `json:"has_file"`
	FileName    string    `json:"file_name,omitempty"`
	YouTubeURL  string    `json:"youtube_url,omitempty"`
}

// Result is a successful checkout.
type Result struct {
	NewBalance int64            `json:"new_balance"`
	Currency   balance.Currency `json:"currency"`
	OrderID    uuid.UUID        `json:"purchase_id"`
	Purchases  []PurchasedItem  `json:"purchases"`
}
