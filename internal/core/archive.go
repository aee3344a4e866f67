package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/resale/internal/logging"
)

// ListArchive returns every archived order in stored order.
func (s *Service) ListArchive(ctx context.Context) ([]DeletedOrder, error) {
	return s.readArchive(ctx)
}

// RecoverOrder moves an archived order back to the active orders without
// its deletion date. Recovering an id that is already active is a conflict.
func (s *Service) RecoverOrder(ctx context.Context, orderID string) (Order, error) {
	release := s.locks.acquire(CollectionOrders, CollectionDeletedOrders)
	defer release()

	archived, err := s.readArchive(ctx)
	if err != nil {
		return Order{}, err
	}
	idx := findArchived(archived, orderID)
	if idx < 0 {
		return Order{}, notFound("archived order", orderID)
	}
	orders, err := s.readOrders(ctx)
	if err != nil {
		return Order{}, err
	}
	if findOrder(orders, orderID) >= 0 {
		return Order{}, conflict("order", orderID)
	}

	recovered := archived[idx].Order
	orders = append(orders, recovered)
	if err := s.writeOrders(ctx, orders); err != nil {
		return Order{}, err
	}
	if err := s.writeArchive(ctx, withoutArchived(archived, orderID)); err != nil {
		return Order{}, err
	}

	logging.FromContext(ctx).Info("order recovered", "order_id", orderID)
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionOrderRecover,
		Collection: CollectionDeletedOrders,
		RecordKey:  orderID,
	})
	return recovered, nil
}

// PermanentlyDeleteOrder drops an order from the archive for good.
func (s *Service) PermanentlyDeleteOrder(ctx context.Context, orderID string) (DeletedOrder, error) {
	release := s.locks.acquire(CollectionDeletedOrders)
	defer release()

	archived, err := s.readArchive(ctx)
	if err != nil {
		return DeletedOrder{}, err
	}
	idx := findArchived(archived, orderID)
	if idx < 0 {
		return DeletedOrder{}, notFound("archived order", orderID)
	}
	removed := archived[idx]
	if err := s.writeArchive(ctx, withoutArchived(archived, orderID)); err != nil {
		return DeletedOrder{}, err
	}

	logging.FromContext(ctx).Info("archived order purged", "order_id", orderID)
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionOrderPurge,
		Collection: CollectionDeletedOrders,
		RecordKey:  orderID,
	})
	return removed, nil
}

// PurgeArchive empties the archive and returns how many orders it held.
func (s *Service) PurgeArchive(ctx context.Context) (int, error) {
	release := s.locks.acquire(CollectionDeletedOrders)
	defer release()

	archived, err := s.readArchive(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.writeArchive(ctx, nil); err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info("archive purged", "orders", len(archived))
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionArchivePurge,
		Collection: CollectionDeletedOrders,
		Details:    map[string]any{"purged": len(archived)},
	})
	return len(archived), nil
}

// PurgeArchivedBefore drops archived orders deleted before cutoff. Deletion
// dates are read as days in cutoff's location. Entries with an unreadable
// deletion date are kept.
func (s *Service) PurgeArchivedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	release := s.locks.acquire(CollectionDeletedOrders)
	defer release()

	archived, err := s.readArchive(ctx)
	if err != nil {
		return 0, err
	}
	kept := make([]DeletedOrder, 0, len(archived))
	for _, entry := range archived {
		deleted, err := time.ParseInLocation(DateLayout, entry.DeletionDate, cutoff.Location())
		if err == nil && deleted.Before(cutoff) {
			continue
		}
		kept = append(kept, entry)
	}
	purged := len(archived) - len(kept)
	if purged == 0 {
		return 0, nil
	}
	if err := s.writeArchive(ctx, kept); err != nil {
		return 0, err
	}
	return purged, nil
}

func (s *Service) readArchive(ctx context.Context) ([]DeletedOrder, error) {
	recs, err := s.readCollection(ctx, CollectionDeletedOrders)
	if err != nil {
		return nil, err
	}
	return fromRecords[DeletedOrder](recs), nil
}

func (s *Service) writeArchive(ctx context.Context, archived []DeletedOrder) error {
	return s.writeCollection(ctx, CollectionDeletedOrders, toRecords(archived))
}

func findArchived(archived []DeletedOrder, orderID string) int {
	for i, entry := range archived {
		if entry.OrderID == orderID {
			return i
		}
	}
	return -1
}

// withoutArchived drops every archive entry for orderID.
func withoutArchived(archived []DeletedOrder, orderID string) []DeletedOrder {
	kept := make([]DeletedOrder, 0, len(archived))
	for _, entry := range archived {
		if entry.OrderID != orderID {
			kept = append(kept, entry)
		}
	}
	return kept
}

func archivedKey(d DeletedOrder) string { return d.OrderID }
