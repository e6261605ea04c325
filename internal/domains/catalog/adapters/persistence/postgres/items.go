package postgres

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
	pgplatform "github.com/jakubzimnol/internet-shop/internal/platform/postgres"
	"github.com/jakubzimnol/internet-shop/internal/shared/projection"
)

var _ ports.ItemRepository = (*ItemRepository)(nil)

// ItemRepository persists catalog items in PostgreSQL using GORM.
type ItemRepository struct {
	db *gorm.DB
}

// NewItemRepository wires a PostgreSQL-backed item repository. Caller manages
// DB lifecycle and schema (see AutoMigrate).
func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// AutoMigrate creates the categories and items tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&categoryRecord{}, &itemRecord{})
}

// itemRecord maps an item. The amount check is the last line of defence
// against overselling.
type itemRecord struct {
	ID            int64           `gorm:"primaryKey;column:id"`
	Name          string          `gorm:"column:name;size:80;not null;uniqueIndex"`
	Description   string          `gorm:"column:description;type:text"`
	Price         int64           `gorm:"column:price;not null;check:chk_items_price,price BETWEEN 0 AND 1000000000000"`
	Amount        int32           `gorm:"column:amount;not null;check:chk_items_amount,amount >= 0"`
	SellerID      int64           `gorm:"column:seller_id;index"`
	CategoryID    *int64          `gorm:"column:category_id;index"`
	SubcategoryID *int64          `gorm:"column:subcategory_id;index"`
	ImageURLs     pq.StringArray  `gorm:"column:image_urls;type:text[]"`
	Category      *categoryRecord `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	Subcategory   *categoryRecord `gorm:"foreignKey:SubcategoryID;constraint:OnDelete:RESTRICT"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (itemRecord) TableName() string { return "items" }

func (r *ItemRepository) Create(ctx context.Context, item *domain.Item) (*ports.ItemProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("cannot save nil item")
	}
	conn := pgplatform.Conn(ctx, r.db)
	if taken, err := nameTaken(conn, &itemRecord{}, item.Name, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ports.ErrDuplicateName
	}
	record := toItemRecord(item)
	record.ID = 0
	if err := conn.Omit("Category", "Subcategory").Create(&record).Error; err != nil {
		return nil, translate(err)
	}
	return record.toProjection(), nil
}

func (r *ItemRepository) Update(ctx context.Context, item *domain.Item) (*ports.ItemProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errors.New("cannot save nil item")
	}
	conn := pgplatform.Conn(ctx, r.db)
	if taken, err := nameTaken(conn, &itemRecord{}, item.Name, item.ID); err != nil {
		return nil, err
	} else if taken {
		return nil, ports.ErrDuplicateName
	}
	record := toItemRecord(item)
	result := conn.Model(&itemRecord{}).Where("id = ?", item.ID).Updates(map[string]any{
		"name":           record.Name,
		"description":    record.Description,
		"price":          record.Price,
		"category_id":    record.CategoryID,
		"subcategory_id": record.SubcategoryID,
		"image_urls":     record.ImageURLs,
		"updated_at":     time.Now().UTC(),
	})
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, item.ID)
}

func (r *ItemRepository) SetAmount(ctx context.Context, id int64, amount int32) (*ports.ItemProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, domain.ErrNegativeAmount
	}
	var records []itemRecord
	result := pgplatform.Conn(ctx, r.db).Model(&records).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"amount":     amount,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 || len(records) == 0 {
		return nil, ports.ErrNotFound
	}
	return records[0].toProjection(), nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*ports.ItemProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record itemRecord
	if err := pgplatform.Conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return record.toProjection(), nil
}

func (r *ItemRepository) List(ctx context.Context) ([]*ports.ItemProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []itemRecord
	if err := pgplatform.Conn(ctx, r.db).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*ports.ItemProjection, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, nil
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := pgplatform.Conn(ctx, r.db).Delete(&itemRecord{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// AdjustAmount applies delta with a single conditional UPDATE so the row lock
// is held only for the statement (or the ambient transaction). When no row
// matches, the current row decides between not found and a range error.
func (r *ItemRepository) AdjustAmount(ctx context.Context, id int64, delta int32) (*ports.ItemProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := pgplatform.Conn(ctx, r.db)
	var records []itemRecord
	result := conn.Model(&records).
		Clauses(clause.Returning{}).
		Where("id = ? AND amount::bigint + ? BETWEEN 0 AND ?", id, delta, math.MaxInt32).
		Updates(map[string]any{
			"amount":     gorm.Expr("amount + ?", delta),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 1 && len(records) == 1 {
		return records[0].toProjection(), nil
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := current.Entity.Adjust(delta); err != nil {
		return nil, err
	}
	return nil, errors.New("item amount changed concurrently")
}

func (r *ItemRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres item repository not configured")
	}
	return nil
}

// nameTaken compares names case-insensitively against model's table.
func nameTaken(conn *gorm.DB, model any, name string, except int64) (bool, error) {
	var count int64
	err := conn.Model(model).
		Where("lower(name) = lower(?) AND id <> ?", name, except).
		Count(&count).Error
	return count > 0, err
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ports.ErrNotFound
	case pgplatform.IsUniqueViolation(err):
		return ports.ErrDuplicateName
	case pgplatform.IsForeignKeyViolation(err):
		return ports.ErrInUse
	default:
		return err
	}
}

func toItemRecord(item *domain.Item) itemRecord {
	return itemRecord{
		ID:            item.ID,
		Name:          item.Name,
		Description:   item.Description,
		Price:         item.Price,
		Amount:        item.Amount,
		SellerID:      item.SellerID,
		CategoryID:    item.CategoryID,
		SubcategoryID: item.SubcategoryID,
		ImageURLs:     pq.StringArray(append([]string(nil), item.ImageURLs...)),
	}
}

func (r itemRecord) toProjection() *ports.ItemProjection {
	item := &domain.Item{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		Amount:        r.Amount,
		SellerID:      r.SellerID,
		CategoryID:    r.CategoryID,
		SubcategoryID: r.SubcategoryID,
		ImageURLs:     append([]string(nil), r.ImageURLs...),
	}
	p := projection.Of(item, r.CreatedAt, r.UpdatedAt)
	return &p
}
