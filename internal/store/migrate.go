package store

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/NEPJU/APIs/internal/model"
)

type foreignKey struct {
	model  any
	name   string
	table  string
	column string
	ref    string
	refCol string
}

// Product references are rewritten in place by catalog renumbering, so on
// PostgreSQL they must be deferrable.
var foreignKeys = []foreignKey{
	{&model.CartItem{}, "fk_shopping_cart_product", "shopping_cart", "product_id", "products", "product_id"},
	{&model.Favorite{}, "fk_favorite_products_product", "favorite_products", "product_id", "products", "product_id"},
	{&model.OrderItem{}, "fk_order_items_product", "order_items", "product_id", "products", "product_id"},
	{&model.Review{}, "fk_product_reviews_product", "product_reviews", "product_id", "products", "product_id"},
	{&model.OrderItem{}, "fk_order_items_order", "order_items", "order_id", "orders", "order_id"},
}

// Migrate creates or updates every table and then adds the named foreign
// keys that gorm is told not to create itself.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		log.Printf("store: migrate schema: %v", err)
		return err
	}

	dialect := db.Dialector.Name()
	if dialect == DriverSQLite {
		// SQLite cannot add constraints to an existing table.
		return nil
	}
	for _, fk := range foreignKeys {
		if db.Migrator().HasConstraint(fk.model, fk.name) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
			fk.table, fk.name, fk.column, fk.ref, fk.refCol)
		if dialect == DriverPostgres {
			stmt += " DEFERRABLE INITIALLY IMMEDIATE"
		}
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("store: add %s: %w", fk.name, err)
		}
	}
	log.Println("store: migrations completed")
	return nil
}
