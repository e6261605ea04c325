package application

// CreateItemInput carries the fields accepted when listing a new item.
type CreateItemInput struct {
	Name          string
	Description   string
	Price         int64
	Amount        int32
	SellerID      int64
	CategoryID    *int64
	SubcategoryID *int64
	ImageURLs     []string
}

// UpdateItemInput applies only the non-nil fields.
type UpdateItemInput struct {
	ID            int64
	Name          *string
	Description   *string
	Price         *int64
	Amount        *int32
	CategoryID    *int64
	SubcategoryID *int64
	ImageURLs     *[]string
}

type CategoryInput struct {
	ID       int64
	Name     string
	ParentID *int64
}
