package shopserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	cataloghttpmapper "github.com/jakubzimnol/internet-shop/internal/domains/catalog/adapters/http/mapper"
	catalogapp "github.com/jakubzimnol/internet-shop/internal/domains/catalog/application"
	catalogdomain "github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	catalogports "github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
)

// CatalogService is the part of the catalog application the HTTP layer uses.
type CatalogService interface {
	CreateItem(ctx context.Context, input catalogapp.CreateItemInput) (*catalogports.ItemProjection, error)
	UpdateItem(ctx context.Context, input catalogapp.UpdateItemInput) (*catalogports.ItemProjection, error)
	GetItem(ctx context.Context, id int64) (*catalogports.ItemProjection, error)
	ListItems(ctx context.Context) ([]*catalogports.ItemProjection, error)
	DeleteItem(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, input catalogapp.CategoryInput) (*catalogdomain.Category, error)
	UpdateCategory(ctx context.Context, input catalogapp.CategoryInput) (*catalogdomain.Category, error)
	GetCategory(ctx context.Context, id int64) (*catalogdomain.Category, error)
	ListCategories(ctx context.Context, subcategories bool) ([]*catalogdomain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

var _ CatalogService = (*catalogapp.Service)(nil)

// CatalogAPI serves items and categories.
type CatalogAPI struct {
	service CatalogService
}

func NewCatalogAPI(service CatalogService) CatalogAPI {
	return CatalogAPI{service: service}
}

// Post /api/item
// List a new item for sale
func (api *CatalogAPI) CreateItem(c *gin.Context) {
	seller, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	var payload cataloghttpmapper.ItemCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := api.service.CreateItem(c.Request.Context(), cataloghttpmapper.ToCreateItemInput(seller.ID, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cataloghttpmapper.FromProjection(created))
}

// Put /api/item/:itemId
func (api *CatalogAPI) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	var payload cataloghttpmapper.ItemUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.UpdateItem(c.Request.Context(), cataloghttpmapper.ToUpdateItemInput(id, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromProjection(updated))
}

// Get /api/item/:itemId
func (api *CatalogAPI) GetItem(c *gin.Context) {
	id, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	item, err := api.service.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromProjection(item))
}

// Get /api/item
func (api *CatalogAPI) ListItems(c *gin.Context) {
	items, err := api.service.ListItems(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromProjections(items))
}

// Delete /api/item/:itemId
func (api *CatalogAPI) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	if err := api.service.DeleteItem(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /api/category
// Create a category, or a subcategory when parentId is set
func (api *CatalogAPI) CreateCategory(c *gin.Context) {
	var payload cataloghttpmapper.Category
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := api.service.CreateCategory(c.Request.Context(), cataloghttpmapper.ToCategoryInput(0, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cataloghttpmapper.FromDomainCategory(created))
}

// Put /api/category/:categoryId
func (api *CatalogAPI) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	var payload cataloghttpmapper.Category
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.UpdateCategory(c.Request.Context(), cataloghttpmapper.ToCategoryInput(id, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainCategory(updated))
}

// Get /api/category/:categoryId
func (api *CatalogAPI) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	category, err := api.service.GetCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainCategory(category))
}

// Get /api/category?subcategories=true
func (api *CatalogAPI) ListCategories(c *gin.Context) {
	subcategories, ok := parseBoolQuery(c, "subcategories")
	if !ok {
		return
	}
	list, err := api.service.ListCategories(c.Request.Context(), subcategories)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromDomainCategories(list))
}

// Delete /api/category/:categoryId
func (api *CatalogAPI) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	if err := api.service.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
