package services

import (
	"context"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/platform/obs"
	"fleet-trip-service/internal/ports"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// StockService applies manual stock corrections outside of trip planning.
type StockService struct {
	Products ports.ProductStore
	Now      func() time.Time
}

func NewStockService(products ports.ProductStore) *StockService {
	return &StockService{Products: products, Now: time.Now}
}

func (s *StockService) Get(ctx context.Context, productID uuid.UUID) (_ *domain.ProductStock, err error) {
	defer obs.Time(ctx, "stock.Get")(&err)

	st, err := s.Products.GetStock(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get stock %s: %w", productID, err)
	}
	return st, nil
}

// Adjust applies a signed delta. The store rejects results below zero.
func (s *StockService) Adjust(ctx context.Context, productID uuid.UUID, delta int, reason string) (_ *domain.ProductStock, err error) {
	defer obs.Time(ctx, "stock.Adjust")(&err)

	if delta == 0 {
		return nil, fmt.Errorf("adjust stock %s: %w", productID, domain.ErrZeroDelta)
	}

	at := time.Now().UTC()
	if s.Now != nil {
		at = s.Now().UTC()
	}

	st, err := s.Products.AdjustStock(ctx, productID, delta, at)
	if err != nil {
		return nil, fmt.Errorf("adjust stock %s by %d: %w", productID, delta, err)
	}

	log.Printf("req_id=%s op=stock.adjusted product_id=%s delta=%d available=%d reason=%q",
		obs.RequestID(ctx), productID, delta, st.AvailableQuantity, reason)
	return st, nil
}
