package catalog

import (
	"time"

	"github.com/google/uuid"
)

// CreateItemRequest for creating a shop item
type CreateItemRequest struct {
	Name                   string `json:"name" validate:"required,min=1,max=255"`
	Description            string `json:"description,omitempty" validate:"max=2000"`
	Price                  int64  `json:"price" validate:"min=0"`
	Category               string `json:"category,omitempty" validate:"max=100"`
	ContentType            string `json:"content_type,omitempty" validate:"content_type"`
	TextContent            string `json:"text_content,omitempty"`
	LinkURL                string `json:"link_url,omitempty" validate:"omitempty,url"`
	YouTubeURL             string `json:"youtube_url,omitempty" validate:"omitempty,url"`
	InStock                *bool  `json:"in_stock,omitempty"`
	AllowMultiplePurchases bool   `json:"allow_multiple_purchases,omitempty"`
	RequiresRole           bool   `json:"requires_role,omitempty"`
	RequiredRoleID         string `json:"required_role_id,omitempty"`
	RequiredRoleName       string `json:"required_role_name,omitempty"`
}

// UpdateItemRequest for editing a shop item. Pointer fields distinguish
// "leave unchanged" from "set to zero value".
type UpdateItemRequest struct {
	Name                   *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description            *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price                  *int64  `json:"price,omitempty" validate:"omitempty,min=0"`
	Category               *string `json:"category,omitempty" validate:"omitempty,max=100"`
	ContentType            *string `json:"content_type,omitempty" validate:"omitempty,content_type"`
	TextContent            *string `json:"text_content,omitempty"`
	LinkURL                *string `json:"link_url,omitempty" validate:"omitempty,url"`
	YouTubeURL             *string `json:"youtube_url,omitempty" validate:"omitempty,url"`
	InStock                *bool   `json:"in_stock,omitempty"`
	AllowMultiplePurchases *bool   `json:"allow_multiple_purchases,omitempty"`
	RequiresRole           *bool   `json:"requires_role,omitempty"`
	RequiredRoleID         *string `json:"required_role_id,omitempty"`
	RequiredRoleName       *string `json:"required_role_name,omitempty"`
}

// PublicItem is the listing view of an item. Deliverable payload fields are
// omitted: buyers only see them through their purchase history.
type PublicItem struct {
	ID                     uuid.UUID   `json:"id"`
	Name                   string      `json:"name"`
	Description            string      `json:"description"`
	Price                  int64       `json:"price"`
	Category               string      `json:"category"`
	ContentType            ContentType `json:"content_type"`
	ImageURL               string      `json:"image_url,omitempty"`
	ThumbnailURL           string      `json:"thumbnail_url,omitempty"`
	InStock                bool        `json:"in_stock"`
	AllowMultiplePurchases bool        `json:"allow_multiple_purchases"`
	RequiresRole           bool        `json:"requires_role"`
	RequiredRoleName       string      `json:"required_role_name,omitempty"`
	PurchaseCount          int64       `json:"purchase_count"`
	CreatedAt              time.Time   `json:"created_at"`
}

// Public converts an item to its listing view.
func (i *Item) Public() PublicItem {
	return PublicItem{
		ID:                     i.ID,
		Name:                   i.Name,
		Description:            i.Description,
		Price:                  i.Price,
		Category:               i.Category,
		ContentType:            i.ContentType,
		ImageURL:               i.ImageURL,
		ThumbnailURL:           i.ThumbnailURL,
		InStock:                i.InStock,
		AllowMultiplePurchases: i.AllowMultiplePurchases,
		RequiresRole:           i.RequiresRole,
		RequiredRoleName:       i.RequiredRoleName,
		PurchaseCount:          i.PurchaseCount,
		CreatedAt:              i.CreatedAt,
	}
}
