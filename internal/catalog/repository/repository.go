package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "modernc.org/sqlite"

	"github.com/batcstore/batc-storefront/internal/domain"
)

// Repository serves the static product list from an embedded SQLite
// database seeded by migrations.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// ListProducts returns the seeded static entries in display order.
func (r *Repository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, category, description, image, images, tags,
		       external_variant_id, external_product_id
		FROM products
		ORDER BY sort_order
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var images, tags string
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Description,
			&p.Image, &images, &tags, &p.ExternalVariantID, &p.ExternalProductID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		if err := decodeStrings(images, &p.Images); err != nil {
			return nil, fmt.Errorf("bad images for product %s: %w", p.ID, err)
		}
		if err := decodeStrings(tags, &p.Tags); err != nil {
			return nil, fmt.Errorf("bad tags for product %s: %w", p.ID, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	return products, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Images and tags are stored as JSON arrays in TEXT columns.
func decodeStrings(raw string, dst *[]string) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
