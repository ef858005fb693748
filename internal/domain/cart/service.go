// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/config"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/domain/catalog"
	"github.com/omarandresjimenez/bella-luna-inventory-sub001/internal/pkg/apperrors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const sessionCartTTL = 24 * time.Hour

// Service handles cart business logic. Signed-in customers get a database
// cart, guests get a Redis session cart; both follow the same rules.
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	catalog     *catalog.Service
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, catalogService *catalog.Service) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		catalog:     catalogService,
	}
}

// AddItemRequest represents an add-to-cart request. Either variant_id or
// product_id plus attribute_value_ids must be supplied; the latter is
// resolved to a variant first.
type AddItemRequest struct {
	VariantID         uint   `json:"variant_id"`
	ProductID         uint   `json:"product_id"`
	AttributeValueIDs []uint `json:"attribute_value_ids"`
	Quantity          int    `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents a quantity change for a cart line
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// ItemResponse represents a cart line enriched with catalog data
type ItemResponse struct {
	VariantID uint             `json:"variant_id"`
	ProductID uint             `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice int64            `json:"unit_price"`
	LineTotal int64            `json:"line_total"`
	Product   *catalog.Product `json:"product,omitempty"`
	Variant   *catalog.Variant `json:"variant,omitempty"`
	AddedAt   time.Time        `json:"added_at"`
}

// Totals represents the derived cart summary, always recomputed from lines
type Totals struct {
	Subtotal  int64 `json:"subtotal"`
	ItemCount int   `json:"item_count"`
}

// Response represents a shopping cart
type Response struct {
	SessionID string         `json:"session_id,omitempty"`
	UserID    *uint          `json:"user_id,omitempty"`
	Items     []ItemResponse `json:"items"`
	Totals    Totals         `json:"totals"`
}

// GetCart retrieves the cart for a user or guest session
func (s *Service) GetCart(userID *uint, sessionID string) (*Response, error) {
	lines, err := s.loadLines(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(userID, sessionID, lines)
}

// AddItem adds a variant to the cart. An existing line for the same variant
// merges quantities; in both cases the unit price snapshot is refreshed.
func (s *Service) AddItem(userID *uint, sessionID string, req *AddItemRequest) (*Response, error) {
	variant, err := s.resolveRequest(req)
	if err != nil {
		return nil, err
	}

	existingQty := 0
	lines, err := s.loadLines(userID, sessionID)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if line.VariantID == variant.ID {
			existingQty = line.Quantity
			break
		}
	}

	newQty := existingQty + req.Quantity
	if err := s.checkAdvisory(variant, newQty); err != nil {
		return nil, err
	}

	unitPrice := variant.UnitPrice(variant.Product)

	if userID != nil {
		if err := s.upsertUserLine(*userID, variant, newQty, unitPrice); err != nil {
			return nil, err
		}
	} else {
		if err := s.upsertSessionLine(sessionID, variant, newQty, unitPrice); err != nil {
			return nil, err
		}
	}

	return s.GetCart(userID, sessionID)
}

// UpdateItem changes a line's quantity. Quantity must stay positive; removal
// is its own operation. The price snapshot is refreshed and the new quantity
// gets an advisory stock check.
func (s *Service) UpdateItem(userID *uint, sessionID string, variantID uint, req *UpdateItemRequest) (*Response, error) {
	if req.Quantity < 1 {
		return nil, apperrors.New(apperrors.CodeValidation, "quantity must be at least 1")
	}

	lines, err := s.loadLines(userID, sessionID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, line := range lines {
		if line.VariantID == variantID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "variant %d is not in the cart", variantID)
	}

	variant, err := s.catalog.GetVariant(variantID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAdvisory(variant, req.Quantity); err != nil {
		return nil, err
	}

	unitPrice := variant.UnitPrice(variant.Product)

	if userID != nil {
		if err := s.upsertUserLine(*userID, variant, req.Quantity, unitPrice); err != nil {
			return nil, err
		}
	} else {
		if err := s.upsertSessionLine(sessionID, variant, req.Quantity, unitPrice); err != nil {
			return nil, err
		}
	}

	return s.GetCart(userID, sessionID)
}

// RemoveItem deletes a single line from the cart
func (s *Service) RemoveItem(userID *uint, sessionID string, variantID uint) (*Response, error) {
	if userID != nil {
		result := s.db.Where("user_id = ? AND variant_id = ?", *userID, variantID).Delete(&CartItem{})
		if result.Error != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "variant %d is not in the cart", variantID)
		}
	} else {
		sessionCart, err := s.loadSessionCart(sessionID)
		if err != nil {
			return nil, err
		}
		kept := sessionCart.Items[:0]
		removed := false
		for _, item := range sessionCart.Items {
			if item.VariantID == variantID {
				removed = true
				continue
			}
			kept = append(kept, item)
		}
		if !removed {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "variant %d is not in the cart", variantID)
		}
		sessionCart.Items = kept
		if err := s.saveSessionCart(sessionCart); err != nil {
			return nil, err
		}
	}

	return s.GetCart(userID, sessionID)
}

// Clear empties the cart
func (s *Service) Clear(userID *uint, sessionID string) error {
	if userID != nil {
		if err := s.db.Where("user_id = ?", *userID).Delete(&CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	}
	return s.deleteSessionCart(sessionID)
}

// ClearUserCartTx empties a user cart inside the caller's transaction, so
// order creation can clear the cart atomically with everything else.
func (s *Service) ClearUserCartTx(tx *gorm.DB, userID uint) error {
	if err := tx.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ClearSessionCart deletes a guest cart. Called after a guest checkout
// commits; Redis is outside the DB transaction so this is best effort.
func (s *Service) ClearSessionCart(sessionID string) error {
	return s.deleteSessionCart(sessionID)
}

// MergeGuestCart folds a guest session cart into the user's cart on login.
// Quantities merge per variant and prices are re-snapshotted.
func (s *Service) MergeGuestCart(userID uint, sessionID string) (*Response, error) {
	if sessionID == "" {
		return s.GetCart(&userID, "")
	}

	sessionCart, err := s.loadSessionCart(sessionID)
	if err != nil {
		return nil, err
	}

	for _, item := range sessionCart.Items {
		variant, err := s.catalog.GetVariant(item.VariantID)
		if err != nil {
			// Variant removed from the catalog since the guest added it
			continue
		}

		var existing CartItem
		newQty := item.Quantity
		err = s.db.Where("user_id = ? AND variant_id = ?", userID, item.VariantID).First(&existing).Error
		if err == nil {
			newQty += existing.Quantity
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check cart line: %w", err)
		}

		if err := s.upsertUserLine(userID, variant, newQty, variant.UnitPrice(variant.Product)); err != nil {
			return nil, err
		}
	}

	if err := s.deleteSessionCart(sessionID); err != nil {
		return nil, err
	}

	return s.GetCart(&userID, "")
}

// internals

// line is the storage-independent view of a cart line
type line struct {
	VariantID uint
	ProductID uint
	Quantity  int
	UnitPrice int64
	AddedAt   time.Time
}

func (s *Service) loadLines(userID *uint, sessionID string) ([]line, error) {
	if userID != nil {
		var items []CartItem
		if err := s.db.Where("user_id = ?", *userID).Order("created_at ASC").Find(&items).Error; err != nil {
			return nil, fmt.Errorf("failed to retrieve cart: %w", err)
		}
		lines := make([]line, len(items))
		for i, item := range items {
			lines[i] = line{
				VariantID: item.VariantID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				AddedAt:   item.CreatedAt,
			}
		}
		return lines, nil
	}

	sessionCart, err := s.loadSessionCart(sessionID)
	if err != nil {
		return nil, err
	}
	lines := make([]line, len(sessionCart.Items))
	for i, item := range sessionCart.Items {
		lines[i] = line{
			VariantID: item.VariantID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			AddedAt:   item.AddedAt,
		}
	}
	return lines, nil
}

func (s *Service) buildResponse(userID *uint, sessionID string, lines []line) (*Response, error) {
	response := &Response{
		UserID: userID,
		Items:  make([]ItemResponse, 0, len(lines)),
	}
	if userID == nil {
		response.SessionID = sessionID
	}

	for _, l := range lines {
		item := ItemResponse{
			VariantID: l.VariantID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.UnitPrice * int64(l.Quantity),
			AddedAt:   l.AddedAt,
		}
		if variant, err := s.catalog.GetVariant(l.VariantID); err == nil {
			item.Variant = variant
			item.Product = variant.Product
		}
		response.Items = append(response.Items, item)

		response.Totals.Subtotal += item.LineTotal
		response.Totals.ItemCount += l.Quantity
	}

	return response, nil
}

func (s *Service) resolveRequest(req *AddItemRequest) (*catalog.Variant, error) {
	if req.VariantID > 0 {
		variant, err := s.catalog.GetVariant(req.VariantID)
		if err != nil {
			return nil, err
		}
		if variant.Product == nil || !variant.Product.IsActive || !variant.IsActive {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "variant %d not found", req.VariantID)
		}
		return variant, nil
	}
	if req.ProductID > 0 {
		return s.catalog.ResolveVariant(req.ProductID, req.AttributeValueIDs)
	}
	return nil, apperrors.New(apperrors.CodeValidation, "variant_id or product_id is required")
}

// checkAdvisory is the cart-time stock check. It only rejects what is
// obviously unavailable; checkout re-checks authoritatively.
func (s *Service) checkAdvisory(variant *catalog.Variant, quantity int) error {
	if !variant.InStock(variant.Product, quantity) {
		return apperrors.Newf(apperrors.CodeOutOfStock,
			"variant %d has only %d in stock", variant.ID, variant.Stock)
	}
	return nil
}

func (s *Service) upsertUserLine(userID uint, variant *catalog.Variant, quantity int, unitPrice int64) error {
	var existing CartItem
	err := s.db.Where("user_id = ? AND variant_id = ?", userID, variant.ID).First(&existing).Error
	if err == nil {
		existing.Quantity = quantity
		existing.UnitPrice = unitPrice
		if err := s.db.Save(&existing).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check cart line: %w", err)
	}

	item := &CartItem{
		UserID:    userID,
		VariantID: variant.ID,
		ProductID: variant.ProductID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
	if err := s.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

func (s *Service) upsertSessionLine(sessionID string, variant *catalog.Variant, quantity int, unitPrice int64) error {
	sessionCart, err := s.loadSessionCart(sessionID)
	if err != nil {
		return err
	}

	updated := false
	for i := range sessionCart.Items {
		if sessionCart.Items[i].VariantID == variant.ID {
			sessionCart.Items[i].Quantity = quantity
			sessionCart.Items[i].UnitPrice = unitPrice
			updated = true
			break
		}
	}
	if !updated {
		sessionCart.Items = append(sessionCart.Items, SessionCartItem{
			VariantID: variant.ID,
			ProductID: variant.ProductID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			AddedAt:   time.Now(),
		})
	}

	return s.saveSessionCart(sessionCart)
}

func sessionCartKey(sessionID string) string {
	return fmt.Sprintf("cart:session:%s", sessionID)
}

func (s *Service) loadSessionCart(sessionID string) (*SessionCart, error) {
	if sessionID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "session id is required for guest carts")
	}

	data, err := s.redisClient.Get(context.Background(), sessionCartKey(sessionID)).Result()
	if err == redis.Nil {
		return &SessionCart{SessionID: sessionID, CreatedAt: time.Now()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve session cart: %w", err)
	}

	var sessionCart SessionCart
	if err := json.Unmarshal([]byte(data), &sessionCart); err != nil {
		return nil, fmt.Errorf("failed to decode session cart: %w", err)
	}
	return &sessionCart, nil
}

func (s *Service) saveSessionCart(sessionCart *SessionCart) error {
	sessionCart.UpdatedAt = time.Now()
	data, err := json.Marshal(sessionCart)
	if err != nil {
		return fmt.Errorf("failed to encode session cart: %w", err)
	}
	key := sessionCartKey(sessionCart.SessionID)
	if err := s.redisClient.Set(context.Background(), key, data, sessionCartTTL).Err(); err != nil {
		return fmt.Errorf("failed to store session cart: %w", err)
	}
	return nil
}

func (s *Service) deleteSessionCart(sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.redisClient.Del(context.Background(), sessionCartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session cart: %w", err)
	}
	return nil
}
