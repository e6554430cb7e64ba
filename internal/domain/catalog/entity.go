package catalog

import (
	"time"

	"github.com/google/uuid"
)

// ContentType says what a buyer receives after purchase.
type ContentType string

const (
	ContentNone    ContentType = "none"
	ContentText    ContentType = "text"
	ContentLink    ContentType = "link"
	ContentFile    ContentType = "file"
	ContentYouTube ContentType = "youtube"
)

// ContentTypes lists all known content types.
func ContentTypes() []ContentType {
	return []ContentType{ContentNone, ContentText, ContentLink, ContentFile, ContentYouTube}
}

// Item is a purchasable shop entry. The payload fields (TextContent,
// LinkURL, FileURL, YouTubeURL) are deliverables: hidden from public
// listings and snapshotted onto purchase rows at checkout time.
type Item struct {
	ID                     uuid.UUID   `db:"id" json:"id"`
	Name                   string      `db:"name" json:"name"`
	Description            string      `db:"description" json:"description"`
	Price                  int64       `db:"price" json:"price"`
	Category               string      `db:"category" json:"category"`
	ContentType            ContentType `db:"content_type" json:"content_type"`
	TextContent            string      `db:"text_content" json:"text_content,omitempty"`
	LinkURL                string      `db:"link_url" json:"link_url,omitempty"`
	FileURL                string      `db:"file_url" json:"file_url,omitempty"`
	FileName               string      `db:"file_name" json:"file_name,omitempty"`
	YouTubeURL             string      `db:"youtube_url" json:"youtube_url,omitempty"`
	ImageURL               string      `db:"image_url" json:"image_url,omitempty"`
	ThumbnailURL           string      `db:"thumbnail_url" json:"thumbnail_url,omitempty"`
	InStock                bool        `db:"in_stock" json:"in_stock"`
	AllowMultiplePurchases bool        `db:"allow_multiple_purchases" json:"allow_multiple_purchases"`
	RequiresRole           bool        `db:"requires_role" json:"requires_role"`
	RequiredRoleID         string      `db:"required_role_id" json:"required_role_id,omitempty"`
	RequiredRoleName       string      `db:"required_role_name" json:"required_role_name,omitempty"`
	PurchaseCount          int64       `db:"purchase_count" json:"purchase_count"`
	CreatedAt              time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time   `db:"updated_at" json:"updated_at"`
}
