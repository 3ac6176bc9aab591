// internal/market/orders.go
package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stall-market-api-server/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one requested product/quantity pair in an order.
type LineItem struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// Line item result statuses.
const (
	LineOK     = "ok"
	LineFailed = "failed"
)

// LineResult reports the outcome of one line item. Line items are
// processed independently per vendor-product pair, so one failure never
// aborts the rest of the batch.
type LineResult struct {
	ProductID string `json:"productId"`
	OrderID   string `json:"orderId,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// OrderService is the order/stock ledger. Stock deduction and order append
// happen in a single conditional document update per line item.
type OrderService struct {
	vendors VendorRepository
	now     func() time.Time
}

// NewOrderService creates an order/stock ledger service.
func NewOrderService(vendors VendorRepository) *OrderService {
	return &OrderService{vendors: vendors, now: time.Now}
}

// PlaceOrder processes each line item against the owning vendor's product:
// missing products and insufficient stock fail that item only, a success
// decrements stock and appends a Pending order atomically.
func (s *OrderService) PlaceOrder(ctx context.Context, userID primitive.ObjectID, items []LineItem) ([]LineResult, error) {
	if len(items) == 0 {
		return nil, validationf("order must contain at least one line item")
	}

	results := make([]LineResult, 0, len(items))
	for _, item := range items {
		results = append(results, s.placeLine(ctx, userID, item))
	}
	return results, nil
}

func (s *OrderService) placeLine(ctx context.Context, userID primitive.ObjectID, item LineItem) LineResult {
	if item.Quantity <= 0 {
		return lineFailed(item.ProductID, validationf("quantity must be positive"))
	}

	vendor, err := s.vendors.FindByProductID(ctx, item.ProductID)
	if err != nil {
		if isNotFound(err) {
			return lineFailed(item.ProductID, notFoundf("product %s not found", item.ProductID))
		}
		return lineFailed(item.ProductID, err)
	}

	var product *models.Product
	for i := range vendor.Products {
		if vendor.Products[i].ProductID == item.ProductID {
			product = &vendor.Products[i]
			break
		}
	}
	if product == nil {
		return lineFailed(item.ProductID, notFoundf("product %s not found", item.ProductID))
	}

	order := models.Order{
		OrderID:     generateOrderID(),
		UserID:      userID,
		ProductID:   product.ProductID,
		ProductName: product.Name,
		Quantity:    item.Quantity,
		Price:       product.Price,
		Status:      models.OrderPending,
		OrderedAt:   s.now(),
	}

	ok, err := s.vendors.DeductStockAndAppendOrder(ctx, vendor.ID, product.ProductID, item.Quantity, order)
	if err != nil {
		return lineFailed(item.ProductID, err)
	}
	if !ok {
		// The conditional update only misses when stock dropped below the
		// requested quantity (or the product vanished) since the read.
		return lineFailed(item.ProductID, fmt.Errorf("%w: requested %d of %q", ErrInsufficientStock, item.Quantity, product.Name))
	}

	return LineResult{ProductID: item.ProductID, OrderID: order.OrderID, Status: LineOK}
}

// CompleteOrder transitions one of the vendor's orders Pending ->
// Completed. Completed is terminal.
func (s *OrderService) CompleteOrder(ctx context.Context, vendorID primitive.ObjectID, orderID string) error {
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		return err
	}

	var order *models.Order
	for i := range vendor.Orders {
		if vendor.Orders[i].OrderID == orderID {
			order = &vendor.Orders[i]
			break
		}
	}
	if order == nil {
		return notFoundf("order %s not found", orderID)
	}
	if order.Status == models.OrderCompleted {
		return conflictf("order %s is already completed", orderID)
	}

	ok, err := s.vendors.CompleteOrder(ctx, vendorID, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return conflictf("order %s is no longer pending", orderID)
	}
	return nil
}

// UserOrders lists every order the user has placed, across all vendors.
func (s *OrderService) UserOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.vendors.FindOrdersByUser(ctx, userID)
}

// generateOrderID creates a human-readable order id: ORD-XXXXXXXX.
func generateOrderID() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}

func lineFailed(productID string, err error) LineResult {
	return LineResult{ProductID: productID, Status: LineFailed, Error: err.Error()}
}
