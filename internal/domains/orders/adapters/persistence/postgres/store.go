package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jakubzimnol/internet-shop/internal/domains/orders/domain"
	"github.com/jakubzimnol/internet-shop/internal/domains/orders/ports"
	pgplatform "github.com/jakubzimnol/internet-shop/internal/platform/postgres"
)

var _ ports.OrderStore = (*Store)(nil)

// Store persists orders and order lines in PostgreSQL using GORM. Calls join
// the transaction carried by ctx when there is one.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed order store. Caller manages DB lifecycle
// and schema (see AutoMigrate).
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates the orders, order_lines and order_idempotency_keys
// tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&orderRecord{}, &orderLineRecord{}, &idempotencyRecord{})
}

// orderRecord maps the order aggregate. gateway_order_id stays NULL until
// the gateway assigns one and is unique once set.
type orderRecord struct {
	ID             int64             `gorm:"primaryKey;column:id"`
	Description    string            `gorm:"column:description;type:text"`
	BuyerID        int64             `gorm:"column:buyer_id;index"`
	BuyerEmail     string            `gorm:"column:buyer_email;size:120"`
	BuyerName      string            `gorm:"column:buyer_name;size:80"`
	GatewayOrderID *string           `gorm:"column:gateway_order_id;size:64;uniqueIndex"`
	PaymentStatus  string            `gorm:"column:payment_status;type:varchar(16);not null;default:'NEW'"`
	Status         string            `gorm:"column:status;type:varchar(16);not null;default:'NEW';index"`
	Lines          []orderLineRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time         `gorm:"column:created_at"`
	UpdatedAt      time.Time         `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID        int64  `gorm:"primaryKey;column:id"`
	OrderID   int64  `gorm:"column:order_id;index;not null"`
	ItemID    int64  `gorm:"column:item_id;index;not null"`
	ItemName  string `gorm:"column:item_name;size:80"`
	UnitPrice int64  `gorm:"column:unit_price;not null;check:chk_order_lines_unit_price,unit_price >= 0"`
	Quantity  int32  `gorm:"column:quantity;not null;check:chk_order_lines_quantity,quantity > 0"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

// CreateOrder inserts the order and its lines in one statement batch.
func (s *Store) CreateOrder(ctx context.Context, input ports.NewOrder) (*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	order, err := domain.NewOrder(input.Buyer, input.Description, input.Lines)
	if err != nil {
		return nil, err
	}
	record := toRecord(order)
	err = s.inTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	err := pgplatform.Conn(ctx, s.db).
		Preload("Lines", orderLinesByID).
		First(&record, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return record.toDomain(), nil
}

// FindByGatewayOrderID takes a row lock when called inside a transaction so
// concurrent notifications for one order apply one after another.
func (s *Store) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	query := pgplatform.Conn(ctx, s.db).Preload("Lines", orderLinesByID)
	if pgplatform.InTx(ctx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var record orderRecord
	if err := query.First(&record, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: gateway order %q", ports.ErrNotFound, gatewayOrderID)
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (s *Store) RecordGatewayOrderID(ctx context.Context, orderID int64, gatewayOrderID string) (*domain.Order, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) (map[string]any, error) {
		changed, err := order.AssignGatewayOrderID(gatewayOrderID)
		if err != nil || !changed {
			return nil, err
		}
		return map[string]any{"gateway_order_id": order.GatewayOrderID}, nil
	})
}

func (s *Store) ApplyPaymentStatus(ctx context.Context, orderID int64, status domain.PaymentStatus) (*domain.Order, error) {
	if _, err := domain.ParsePaymentStatus(string(status)); err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(order *domain.Order) (map[string]any, error) {
		if err := order.ApplyPayment(status); err != nil {
			return nil, err
		}
		return map[string]any{
			"payment_status": string(order.PaymentStatus),
			"status":         string(order.Status),
		}, nil
	})
}

func (s *Store) UpdateFulfillment(ctx context.Context, orderID int64, status domain.FulfillmentStatus) (*domain.Order, error) {
	if _, err := domain.ParseFulfillmentStatus(string(status)); err != nil {
		return nil, err
	}
	return s.mutate(ctx, orderID, func(order *domain.Order) (map[string]any, error) {
		order.Status = status
		return map[string]any{"status": string(status)}, nil
	})
}

// ListByBuyer returns the buyer's orders, or every order for buyerID 0.
func (s *Store) ListByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	query := pgplatform.Conn(ctx, s.db).Preload("Lines", orderLinesByID).Order("id")
	if buyerID != 0 {
		query = query.Where("buyer_id = ?", buyerID)
	}
	var records []orderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// mutate locks the order row, lets change edit the aggregate and persists
// the returned columns. A nil column set means nothing to write.
func (s *Store) mutate(ctx context.Context, orderID int64, change func(*domain.Order) (map[string]any, error)) (*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var result *domain.Order
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var record orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Lines", orderLinesByID).
			First(&record, "id = ?", orderID).Error; err != nil {
			return err
		}
		order := record.toDomain()
		columns, err := change(order)
		if err != nil {
			return err
		}
		if columns != nil {
			order.UpdatedAt = time.Now().UTC()
			columns["updated_at"] = order.UpdatedAt
			if err := tx.Model(&orderRecord{}).Where("id = ?", orderID).Updates(columns).Error; err != nil {
				return err
			}
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return result, nil
}

// inTx runs fn on the ambient transaction or opens a short one.
func (s *Store) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if pgplatform.InTx(ctx) {
		return fn(pgplatform.Conn(ctx, s.db))
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres order store not configured")
	}
	return nil
}

func orderLinesByID(db *gorm.DB) *gorm.DB {
	return db.Order("order_lines.id")
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ports.ErrNotFound
	case pgplatform.IsConflict(err):
		return fmt.Errorf("%w: %w", ports.ErrPersistenceConflict, err)
	default:
		return err
	}
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:            order.ID,
		Description:   order.Description,
		BuyerID:       order.Buyer.ID,
		BuyerEmail:    order.Buyer.Email,
		BuyerName:     order.Buyer.Name,
		PaymentStatus: string(order.PaymentStatus),
		Status:        string(order.Status),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
	if order.HasGatewayOrderID() {
		id := order.GatewayOrderID
		rec.GatewayOrderID = &id
	}
	for _, line := range order.Lines {
		rec.Lines = append(rec.Lines, orderLineRecord{
			ID:        line.ID,
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:            r.ID,
		Description:   r.Description,
		Buyer:         domain.Buyer{ID: r.BuyerID, Email: r.BuyerEmail, Name: r.BuyerName},
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		Status:        domain.FulfillmentStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.GatewayOrderID != nil {
		order.GatewayOrderID = *r.GatewayOrderID
	}
	for _, line := range r.Lines {
		order.Lines = append(order.Lines, domain.Line{
			ID:        line.ID,
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return order
}
