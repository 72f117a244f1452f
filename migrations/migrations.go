package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	createUsers = `
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(100) NOT NULL,
			phone VARCHAR(20) NOT NULL,
			created_at DATETIME NULL,
			updated_at DATETIME NULL
		);
	`
	createCategories = `
		CREATE TABLE IF NOT EXISTS categories (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			slug VARCHAR(100) NOT NULL UNIQUE,
			description TEXT NULL,
			icon VARCHAR(100) NULL,
			created_at DATETIME NULL,
			updated_at DATETIME NULL
		);
	`
	createProducts = `
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NULL,
			short_description VARCHAR(500) NULL,
			price DECIMAL(10,2) NOT NULL,
			original_price DECIMAL(10,2) NULL,
			images JSON NULL,
			thumbnail VARCHAR(500) NULL,
			category_id VARCHAR(36) NULL,
			stock INT NOT NULL DEFAULT 0,
			sku VARCHAR(50) NULL UNIQUE,
			tags JSON NULL,
			specifications JSON NULL,
			featured TINYINT(1) NOT NULL DEFAULT 0,
			created_at DATETIME NULL,
			updated_at DATETIME NULL,
			INDEX idx_products_category (category_id),
			CHECK (stock >= 0)
		);
	`
	createOrders = `
		CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			order_number VARCHAR(50) NOT NULL UNIQUE,
			subtotal DECIMAL(10,2) NOT NULL,
			shipping DECIMAL(10,2) NOT NULL,
			discount DECIMAL(10,2) NOT NULL DEFAULT 0,
			total DECIMAL(10,2) NOT NULL,
			status VARCHAR(20) NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			recipient_name VARCHAR(100) NOT NULL,
			recipient_phone VARCHAR(20) NOT NULL,
			city VARCHAR(50) NOT NULL,
			district VARCHAR(50) NOT NULL,
			address VARCHAR(255) NOT NULL,
			postal_code VARCHAR(10) NOT NULL,
			tracking_number VARCHAR(100) NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			INDEX idx_orders_user_created (user_id, created_at)
		);
	`
	createOrderItems = `
		CREATE TABLE IF NOT EXISTS order_items (
			id INT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			order_id VARCHAR(36) NOT NULL,
			product_id VARCHAR(36) NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			product_thumbnail VARCHAR(500) NULL,
			price DECIMAL(10,2) NOT NULL,
			quantity INT NOT NULL,
			created_at DATETIME NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		);
	`
	createOrderSequences = `
		CREATE TABLE IF NOT EXISTS order_sequences (
			seq_date DATE PRIMARY KEY,
			last_value INT UNSIGNED NOT NULL
		);
	`
)

// AutoMigrate creates every table the service needs, in dependency order.
// Each statement is retried up to retries times before giving up.
func AutoMigrate(retries int, db *sql.DB) error {
	tables := []struct {
		name  string
		query string
	}{
		{"users", createUsers},
		{"categories", createCategories},
		{"products", createProducts},
		{"orders", createOrders},
		{"order_items", createOrderItems},
		{"order_sequences", createOrderSequences},
	}

	for _, table := range tables {
		if err := execWithRetry(db, retries, table.query); err != nil {
			return fmt.Errorf("migrate %s table: %w", table.name, err)
		}
	}
	return nil
}

func execWithRetry(db *sql.DB, retries int, query string) error {
	_, err := db.Exec(query)
	for i := 0; err != nil && i < retries; i++ {
		time.Sleep(1 * time.Second)
		_, err = db.Exec(query)
	}
	return err
}
