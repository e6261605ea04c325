package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/catalog/ports"
	pgplatform "github.com/jakubzimnol/internet-shop/internal/platform/postgres"
)

var _ ports.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository persists categories in PostgreSQL. Subcategories live in
// the same table and point at their parent.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

type categoryRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	Name      string          `gorm:"column:name;size:80;not null;uniqueIndex"`
	ParentID  *int64          `gorm:"column:parent_id;index"`
	Parent    *categoryRecord `gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (categoryRecord) TableName() string { return "categories" }

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := pgplatform.Conn(ctx, r.db)
	if taken, err := nameTaken(conn, &categoryRecord{}, category.Name, 0); err != nil {
		return nil, err
	} else if taken {
		return nil, ports.ErrDuplicateName
	}
	record := categoryRecord{Name: category.Name, ParentID: category.ParentID}
	if err := conn.Omit("Parent").Create(&record).Error; err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	conn := pgplatform.Conn(ctx, r.db)
	if taken, err := nameTaken(conn, &categoryRecord{}, category.Name, category.ID); err != nil {
		return nil, err
	} else if taken {
		return nil, ports.ErrDuplicateName
	}
	result := conn.Model(&categoryRecord{}).Where("id = ?", category.ID).Updates(map[string]any{
		"name":       category.Name,
		"parent_id":  category.ParentID,
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, category.ID)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record categoryRecord
	if err := pgplatform.Conn(ctx, r.db).First(&record, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

func (r *CategoryRepository) List(ctx context.Context, subcategories bool) ([]*domain.Category, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := pgplatform.Conn(ctx, r.db).Order("id")
	if subcategories {
		query = query.Where("parent_id IS NOT NULL")
	} else {
		query = query.Where("parent_id IS NULL")
	}
	var records []categoryRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Category, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := pgplatform.Conn(ctx, r.db).Delete(&categoryRecord{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres category repository not configured")
	}
	return nil
}

func (r categoryRecord) toDomain() *domain.Category {
	return &domain.Category{ID: r.ID, Name: r.Name, ParentID: r.ParentID}
}
