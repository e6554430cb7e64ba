package purchase

import (
	"time"

	"github.com/google/uuid"

	"github.com/hamsterhub/hamsterhub-api/internal/domain/balance"
	"github.com/hamsterhub/hamsterhub-api/internal/domain/catalog"
)

// Order is the durable header of one completed checkout.
type Order struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	UserID      string           `db:"user_id" json:"user_id"`
	Username    string           `db:"username" json:"username"`
	Currency    balance.Currency `db:"currency" json:"currency"`
	TotalAmount int64            `db:"total_amount" json:"total_amount"`
	ItemCount   int              `db:"item_count" json:"item_count"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// Entry is one purchased line item. The content fields are a snapshot of
// the catalog item's deliverables taken at purchase time: later catalog
// edits must not change what a past buyer is entitled to. Immutable except
// for download bookkeeping.
type Entry struct {
	ID             uuid.UUID           `db:"id" json:"id"`
	OrderID        uuid.UUID           `db:"order_id" json:"order_id"`
	UserID         string              `db:"user_id" json:"user_id"`
	Username       string              `db:"username" json:"username"`
	ItemID         uuid.UUID           `db:"item_id" json:"item_id"`
	ItemName       string              `db:"item_name" json:"item_name"`
	Price          int64               `db:"price" json:"price"`
	Currency       balance.Currency    `db:"currency" json:"currency"`
	ContentType    catalog.ContentType `db:"content_type" json:"content_type"`
	TextContent    string              `db:"text_content" json:"text_content,omitempty"`
	LinkURL        string              `db:"link_url" json:"link_url,omitempty"`
	FileURL        string              `db:"file_url" json:"-"`
	FileName       string              `db:"file_name" json:"file_name,omitempty"`
	YouTubeURL     string              `db:"youtube_url" json:"youtube_url,omitempty"`
	ImageURL       string              `db:"image_url" json:"image_url,omitempty"`
	DownloadCount  int64               `db:"download_count" json:"download_count"`
	LastDownloadAt *time.Time          `db:"last_download_at" json:"last_download_at,omitempty"`
	PurchaseDate   time.Time           `db:"purchase_date" json:"purchase_date"`
}

// HasFile reports whether the entry carries a downloadable file.
func (e *Entry) HasFile() bool {
	return e.ContentType == catalog.ContentFile && e.FileURL != ""
}
