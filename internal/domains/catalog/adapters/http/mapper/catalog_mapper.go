package mapper

import (
	"time"

	catalogapp "github.com/jakubzimnol/internet-shop/internal/domains/catalog/application"
	catalogdomain "github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	catalogports "github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
)

// Item is the transport representation of a catalog item.
type Item struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         int64     `json:"price"`
	Amount        int32     `json:"amount"`
	SellerID      int64     `json:"sellerId,omitempty"`
	CategoryID    *int64    `json:"categoryId,omitempty"`
	SubcategoryID *int64    `json:"subcategoryId,omitempty"`
	ImageURLs     []string  `json:"imageUrls"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ItemCreate is the POST /api/item payload.
type ItemCreate struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         int64    `json:"price"`
	Amount        int32    `json:"amount"`
	CategoryID    *int64   `json:"categoryId,omitempty"`
	SubcategoryID *int64   `json:"subcategoryId,omitempty"`
	ImageURLs     []string `json:"imageUrls,omitempty"`
}

// ItemUpdate is the PUT /api/item/:id payload; absent fields are kept.
type ItemUpdate struct {
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Price         *int64    `json:"price,omitempty"`
	Amount        *int32    `json:"amount,omitempty"`
	CategoryID    *int64    `json:"categoryId,omitempty"`
	SubcategoryID *int64    `json:"subcategoryId,omitempty"`
	ImageURLs     *[]string `json:"imageUrls,omitempty"`
}

// Category is both the request and response shape for categories.
type Category struct {
	ID       int64  `json:"id,omitempty"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId,omitempty"`
}

func ToCreateItemInput(sellerID int64, model ItemCreate) catalogapp.CreateItemInput {
	return catalogapp.CreateItemInput{
		Name:          model.Name,
		Description:   model.Description,
		Price:         model.Price,
		Amount:        model.Amount,
		SellerID:      sellerID,
		CategoryID:    model.CategoryID,
		SubcategoryID: model.SubcategoryID,
		ImageURLs:     model.ImageURLs,
	}
}

func ToUpdateItemInput(id int64, model ItemUpdate) catalogapp.UpdateItemInput {
	return catalogapp.UpdateItemInput{
		ID:            id,
		Name:          model.Name,
		Description:   model.Description,
		Price:         model.Price,
		Amount:        model.Amount,
		CategoryID:    model.CategoryID,
		SubcategoryID: model.SubcategoryID,
		ImageURLs:     model.ImageURLs,
	}
}

// FromProjection converts a stored item into the transport representation.
func FromProjection(p *catalogports.ItemProjection) Item {
	if p == nil || p.Entity == nil {
		return Item{}
	}
	item := p.Entity
	urls := item.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return Item{
		ID:            item.ID,
		Name:          item.Name,
		Description:   item.Description,
		Price:         item.Price,
		Amount:        item.Amount,
		SellerID:      item.SellerID,
		CategoryID:    item.CategoryID,
		SubcategoryID: item.SubcategoryID,
		ImageURLs:     urls,
		CreatedAt:     p.Metadata.CreatedAt,
		UpdatedAt:     p.Metadata.UpdatedAt,
	}
}

func FromProjections(list []*catalogports.ItemProjection) []Item {
	result := make([]Item, 0, len(list))
	for _, p := range list {
		result = append(result, FromProjection(p))
	}
	return result
}

func ToCategoryInput(id int64, model Category) catalogapp.CategoryInput {
	return catalogapp.CategoryInput{ID: id, Name: model.Name, ParentID: model.ParentID}
}

func FromDomainCategory(category *catalogdomain.Category) Category {
	if category == nil {
		return Category{}
	}
	return Category{ID: category.ID, Name: category.Name, ParentID: category.ParentID}
}

func FromDomainCategories(list []*catalogdomain.Category) []Category {
	result := make([]Category, 0, len(list))
	for _, c := range list {
		result = append(result, FromDomainCategory(c))
	}
	return result
}
