package migrations

import (
	"gorm.io/gorm"

	catalogpg "github.com/jakubzimnol/internet-shop/internal/domains/catalog/adapters/persistence/postgres"
	orderspg "github.com/jakubzimnol/internet-shop/internal/domains/orders/adapters/persistence/postgres"
	userspg "github.com/jakubzimnol/internet-shop/internal/domains/users/adapters/persistence/postgres"
)

// orderLineItemFK ties order lines to the items they reserved stock from.
// It spans two bounded contexts so neither adapter declares it.
const orderLineItemFK = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_order_lines_item') THEN
		ALTER TABLE order_lines
			ADD CONSTRAINT fk_order_lines_item
			FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE RESTRICT;
	END IF;
END
$$;`

// Run applies the schema for the bounded contexts in dependency order.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	steps := []func(*gorm.DB) error{
		userspg.AutoMigrate,
		catalogpg.AutoMigrate,
		orderspg.AutoMigrate,
		func(db *gorm.DB) error { return db.Exec(orderLineItemFK).Error },
	}
	for _, step := range steps {
		if err := step(db); err != nil {
			return err
		}
	}
	return nil
}
