package core

import (
	"context"
	"strconv"

	"github.com/JonMunkholm/resale/internal/logging"
	"github.com/JonMunkholm/resale/internal/store"
)

// ListInventory returns every inventory item in stored order.
func (s *Service) ListInventory(ctx context.Context) ([]InventoryItem, error) {
	return s.readInventory(ctx)
}

// CreateInventoryItem appends an item. Item names are unique.
func (s *Service) CreateInventoryItem(ctx context.Context, payload store.Record) (InventoryItem, error) {
	rec, err := normalize(CollectionInventory, payload)
	if err != nil {
		return InventoryItem{}, err
	}
	item := fromRecord[InventoryItem](rec)

	release := s.locks.acquire(CollectionInventory)
	defer release()

	items, err := s.readInventory(ctx)
	if err != nil {
		return InventoryItem{}, err
	}
	if findItem(items, item.ItemName) >= 0 {
		return InventoryItem{}, conflict("inventory item", item.ItemName)
	}

	items = append(items, item)
	if err := s.writeInventory(ctx, items); err != nil {
		return InventoryItem{}, err
	}

	logging.FromContext(ctx).Info("inventory item created", "item_name", item.ItemName)
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionInventoryCreate,
		Collection: CollectionInventory,
		RecordKey:  item.ItemName,
	})
	return item, nil
}

// UpdateInventoryItem replaces the item named itemName. The payload may
// rename the item as long as the new name is free; an omitted item_name
// keeps the current one.
func (s *Service) UpdateInventoryItem(ctx context.Context, itemName string, payload store.Record) (InventoryItem, error) {
	if _, ok := payload["item_name"]; !ok {
		payload = payload.Clone()
		payload["item_name"] = itemName
	}
	rec, err := normalize(CollectionInventory, payload)
	if err != nil {
		return InventoryItem{}, err
	}
	updated := fromRecord[InventoryItem](rec)

	release := s.locks.acquire(CollectionInventory)
	defer release()

	items, err := s.readInventory(ctx)
	if err != nil {
		return InventoryItem{}, err
	}
	idx := findItem(items, itemName)
	if idx < 0 {
		return InventoryItem{}, notFound("inventory item", itemName)
	}
	if updated.ItemName != itemName && findItem(items, updated.ItemName) >= 0 {
		return InventoryItem{}, conflict("inventory item", updated.ItemName)
	}

	items[idx] = updated
	if err := s.writeInventory(ctx, items); err != nil {
		return InventoryItem{}, err
	}

	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionInventoryUpdate,
		Collection: CollectionInventory,
		RecordKey:  itemName,
		Details:    map[string]any{"item_name": updated.ItemName, "quantity": updated.Quantity},
	})
	return updated, nil
}

// DeleteInventoryItem removes the item named itemName.
func (s *Service) DeleteInventoryItem(ctx context.Context, itemName string) (InventoryItem, error) {
	release := s.locks.acquire(CollectionInventory)
	defer release()

	items, err := s.readInventory(ctx)
	if err != nil {
		return InventoryItem{}, err
	}
	idx := findItem(items, itemName)
	if idx < 0 {
		return InventoryItem{}, notFound("inventory item", itemName)
	}
	removed := items[idx]
	items = append(items[:idx], items[idx+1:]...)
	if err := s.writeInventory(ctx, items); err != nil {
		return InventoryItem{}, err
	}

	logging.FromContext(ctx).Info("inventory item deleted", "item_name", itemName)
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionInventoryDelete,
		Collection: CollectionInventory,
		RecordKey:  itemName,
	})
	return removed, nil
}

func (s *Service) readInventory(ctx context.Context) ([]InventoryItem, error) {
	recs, err := s.readCollection(ctx, CollectionInventory)
	if err != nil {
		return nil, err
	}
	return fromRecords[InventoryItem](recs), nil
}

func (s *Service) writeInventory(ctx context.Context, items []InventoryItem) error {
	return s.writeCollection(ctx, CollectionInventory, toRecords(items))
}

func findItem(items []InventoryItem, name string) int {
	for i, item := range items {
		if item.ItemName == name {
			return i
		}
	}
	return -1
}

// unitsInStock parses an item's quantity. Unreadable quantities count as
// zero so they can never satisfy an order.
func unitsInStock(item InventoryItem) int {
	n, err := strconv.Atoi(item.Quantity)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
