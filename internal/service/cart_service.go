package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/pricing"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/session"
)

// CartView is a register's cart with totals computed under the current
// settings.
type CartView struct {
	RegisterID string           `json:"register_id"`
	Cart       pricing.Cart     `json:"cart"`
	Totals     pricing.Totals   `json:"totals"`
	AmountDue  decimal.Decimal  `json:"amount_due"`
	OrderType  models.OrderType `json:"order_type"`
}

// ShippingRequest sets or clears a cart's delivery details. An empty
// address clears shipping; a nil cost uses the store default.
type ShippingRequest struct {
	Address            string           `json:"address"`
	Cost               *decimal.Decimal `json:"cost,omitempty"`
	DeliveryProviderID string           `json:"delivery_provider_id,omitempty"`
}

// CartService applies cart operations to register sessions.
type CartService struct {
	sessions *session.Manager
	catalog  *CatalogService
	settings *SettingsService
	orders   repository.OrderStore
	metrics  MetricsRecorder
	logger   *logging.LoggerV2
}

func NewCartService(
	sessions *session.Manager,
	catalog *CatalogService,
	settings *SettingsService,
	orders repository.OrderStore,
	metrics MetricsRecorder,
) *CartService {
	return &CartService{
		sessions: sessions,
		catalog:  catalog,
		settings: settings,
		orders:   orders,
		metrics:  metrics,
		logger:   logging.NewLoggerV2("cart-service"),
	}
}

func (s *CartService) GetCart(ctx context.Context, registerID string) (*CartView, error) {
	return s.view(ctx, s.sessions.Snapshot(registerID))
}

// AddItem adds one unit of a catalog product.
func (s *CartService) AddItem(ctx context.Context, registerID, productID string) (*CartView, error) {
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return s.addProduct(ctx, registerID, product)
}

// ScanItem adds one unit of the product whose SKU was scanned.
func (s *CartService) ScanItem(ctx context.Context, registerID, code string) (*CartView, error) {
	product, err := s.catalog.GetProductBySKU(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.addProduct(ctx, registerID, product)
}

func (s *CartService) addProduct(ctx context.Context, registerID string, p *models.Product) (*CartView, error) {
	return s.update(ctx, registerID, "add_item", func(c *pricing.Cart) error {
		c.AddItem(p.ID, p.Name, p.Price)
		return nil
	})
}

// SetQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, registerID, productID string, quantity int) (*CartView, error) {
	return s.update(ctx, registerID, "set_quantity", func(c *pricing.Cart) error {
		if !c.SetQuantity(productID, quantity) {
			return errors.ErrNotFound
		}
		return nil
	})
}

func (s *CartService) AdjustQuantity(ctx context.Context, registerID, productID string, delta int) (*CartView, error) {
	return s.update(ctx, registerID, "adjust_quantity", func(c *pricing.Cart) error {
		if !c.AdjustQuantity(productID, delta) {
			return errors.ErrNotFound
		}
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, registerID, productID string) (*CartView, error) {
	return s.update(ctx, registerID, "remove_item", func(c *pricing.Cart) error {
		if !c.RemoveItem(productID) {
			return errors.ErrNotFound
		}
		return nil
	})
}

func (s *CartService) ApplyItemDiscount(ctx context.Context, registerID, productID string, percent decimal.Decimal) (*CartView, error) {
	return s.update(ctx, registerID, "item_discount", func(c *pricing.Cart) error {
		if !c.ApplyItemDiscount(productID, percent) {
			return errors.ErrNotFound
		}
		return nil
	})
}

func (s *CartService) ApplyOrderDiscount(ctx context.Context, registerID string, percent decimal.Decimal) (*CartView, error) {
	return s.update(ctx, registerID, "order_discount", func(c *pricing.Cart) error {
		c.ApplyOrderDiscount(percent)
		return nil
	})
}

// SetFees replaces the cart's fees. Fees without a description or with a
// non-positive amount are dropped, as the fee form does.
func (s *CartService) SetFees(ctx context.Context, registerID string, fees []pricing.Fee) (*CartView, error) {
	kept := lo.Filter(fees, func(f pricing.Fee, _ int) bool {
		return strings.TrimSpace(f.Description) != "" && f.Amount.IsPositive()
	})
	return s.update(ctx, registerID, "set_fees", func(c *pricing.Cart) error {
		c.SetFees(kept)
		return nil
	})
}

// SetCustomer attaches a customer. The guest id or an empty id detaches.
func (s *CartService) SetCustomer(ctx context.Context, registerID, customerID string) (*CartView, error) {
	customer, err := s.catalog.ResolveCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, registerID, "set_customer", func(c *pricing.Cart) error {
		if customer.ID == models.GuestCustomerID {
			c.SetCustomer(nil)
			return nil
		}
		c.SetCustomer(&pricing.CartCustomer{ID: customer.ID, Name: customer.Name})
		return nil
	})
}

func (s *CartService) SetNotes(ctx context.Context, registerID, notes string) (*CartView, error) {
	notes = SanitizeOrderNotes(notes)
	return s.update(ctx, registerID, "set_notes", func(c *pricing.Cart) error {
		c.SetNotes(notes)
		return nil
	})
}

func (s *CartService) SetShipping(ctx context.Context, registerID string, req *ShippingRequest) (*CartView, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" {
		return s.update(ctx, registerID, "clear_shipping", func(c *pricing.Cart) error {
			c.SetShipping(nil)
			return nil
		})
	}

	shipping := &pricing.Shipping{Address: address}
	if req.Cost != nil {
		if req.Cost.IsNegative() {
			return nil, errors.NewValidationError("cost", "shipping cost cannot be negative")
		}
		shipping.Cost = *req.Cost
	} else {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		shipping.Cost = settings.Shipping.DefaultCost
	}

	if req.DeliveryProviderID != "" {
		provider, err := s.catalog.GetDeliveryProvider(ctx, req.DeliveryProviderID)
		if errors.IsNotFound(err) {
			return nil, errors.NewValidationError("delivery_provider_id", "unknown delivery provider")
		}
		if err != nil {
			return nil, err
		}
		if !provider.IsActive {
			return nil, errors.NewValidationError("delivery_provider_id", "delivery provider is inactive")
		}
		shipping.DeliveryProviderID = provider.ID
		shipping.DeliveryProviderName = provider.Name
	}

	return s.update(ctx, registerID, "set_shipping", func(c *pricing.Cart) error {
		c.SetShipping(shipping)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, registerID string) (*CartView, error) {
	return s.update(ctx, registerID, "clear", func(c *pricing.Cart) error {
		c.Clear()
		return nil
	})
}

// LoadOrder replaces the register's cart with the contents of a saved
// order so it can be reviewed or re-rung.
func (s *CartService) LoadOrder(ctx context.Context, registerID, orderID string) (*CartView, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	view, err := s.update(ctx, registerID, "load_order", func(c *pricing.Cart) error {
		c.Clear()
		for _, item := range order.Items {
			if item.Quantity <= 0 {
				continue
			}
			c.AddItem(item.ProductID, item.Name, item.Price)
			c.AdjustQuantity(item.ProductID, item.Quantity-1)
			if item.Discount.IsPositive() {
				c.ApplyItemDiscount(item.ProductID, item.Discount)
			}
		}
		c.ApplyOrderDiscount(order.OrderDiscountPercent)
		c.SetFees(order.Fees)
		if order.CustomerID != "" && order.CustomerID != models.GuestCustomerID {
			c.SetCustomer(&pricing.CartCustomer{ID: order.CustomerID, Name: order.CustomerName})
		}
		c.SetNotes(order.Notes)
		if order.ShippingAddress != "" {
			c.SetShipping(&pricing.Shipping{
				Address:              order.ShippingAddress,
				Cost:                 order.ShippingCost,
				DeliveryProviderID:   order.DeliveryProviderID,
				DeliveryProviderName: order.DeliveryProviderName,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order loaded into cart", logging.Fields{
		"register_id": registerID,
		"order_id":    orderID,
	})
	return view, nil
}

func (s *CartService) update(ctx context.Context, registerID, op string, fn func(c *pricing.Cart) error) (*CartView, error) {
	reg, err := s.sessions.Update(registerID, func(r *session.Register) error {
		return fn(&r.Cart)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.CartOperation(op)
	return s.view(ctx, reg)
}

func (s *CartService) view(ctx context.Context, reg session.Register) (*CartView, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	totals := cartTotals(&reg.Cart, settings)
	return &CartView{
		RegisterID: reg.ID,
		Cart:       reg.Cart,
		Totals:     totals,
		AmountDue:  amountDue(totals, reg.Cart.Shipping),
		OrderType:  orderType(reg.Cart.Shipping),
	}, nil
}

// cartTotals computes totals with the store's calculator and rounds them
// to the store's currency precision.
func cartTotals(c *pricing.Cart, settings *models.Settings) pricing.Totals {
	return c.Totals(settings.Calculator(), settings.TaxRate).Round(settings.DecimalPlaces)
}

// amountDue is the order total plus shipping, which is charged outside
// the tax calculation.
func amountDue(t pricing.Totals, shipping *pricing.Shipping) decimal.Decimal {
	if shipping == nil {
		return t.Total
	}
	return t.Total.Add(shipping.Cost)
}

func orderType(shipping *pricing.Shipping) models.OrderType {
	if shipping != nil && shipping.Address != "" {
		return models.OrderTypeDelivery
	}
	return models.OrderTypeRetail
}
