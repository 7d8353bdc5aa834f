package product

import (
	"context"
	"database/sql"
	"time"

	"customkeeps/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	GetAll(ctx context.Context) ([]Product, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	// PricesByName returns the current price of every named product that exists.
	PricesByName(ctx context.Context, names []string) (map[string]decimal.Decimal, error)
	Create(ctx context.Context, p Product) (Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetAll(ctx context.Context) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetAll"),
	)
	start := time.Now()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, price, image_url, created_at FROM products ORDER BY id`)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CreatedAt); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(products)),
		zap.Duration("duration", time.Since(start)),
	)
	return products, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, price, image_url, created_at FROM products WHERE name = $1`,
		name,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) PricesByName(ctx context.Context, names []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(names))
	if len(names) == 0 {
		return prices, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, price FROM products WHERE name = ANY($1)`,
		pq.Array(names),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name  string
			price decimal.Decimal
		)
		if err := rows.Scan(&name, &price); err != nil {
			return nil, err
		}
		prices[name] = price
	}
	return prices, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, description, price, image_url)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		p.Name, p.Description, p.Price, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt)
	return p, err
}
