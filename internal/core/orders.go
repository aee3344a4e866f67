package core

import (
	"context"
	"strconv"

	"github.com/JonMunkholm/resale/internal/logging"
	"github.com/JonMunkholm/resale/internal/store"
)

// DefaultShippingStatus is applied to orders created without one.
const DefaultShippingStatus = "Pending"

// ListOrders returns every active order in stored order.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	return s.readOrders(ctx)
}

// CreateOrder records a sale of one unit of payload's items_purchased.
//
// The item must be in inventory with at least one unit. The order gets the
// next order_id unless the caller supplies an unused one, and today's date
// unless one is given. A linked ledger record is appended, then the item's
// stock is decremented when the service is configured to do so. Writes go
// orders, ledger, inventory; a failure part way leaves earlier writes in
// place.
func (s *Service) CreateOrder(ctx context.Context, payload store.Record) (Order, error) {
	rec, err := normalize(CollectionOrders, payload)
	if err != nil {
		return Order{}, err
	}
	order := fromRecord[Order](rec)
	if order.ShippingStatus == "" {
		order.ShippingStatus = DefaultShippingStatus
	}
	profit, fees, err := ledgerFigures(order.TotalCost, order.SalesPrice)
	if err != nil {
		return Order{}, err
	}

	release := s.locks.acquire(CollectionInventory, CollectionOrders, CollectionDeletedOrders,
		CollectionFinancial, CollectionSequences)
	defer release()

	items, err := s.readInventory(ctx)
	if err != nil {
		return Order{}, err
	}
	idx := findItem(items, order.ItemsPurchased)
	if idx < 0 || unitsInStock(items[idx]) <= 0 {
		return Order{}, ErrOutOfStock
	}

	orders, err := s.readOrders(ctx)
	if err != nil {
		return Order{}, err
	}
	archived, err := s.readArchive(ctx)
	if err != nil {
		return Order{}, err
	}
	ledger, err := s.readLedger(ctx)
	if err != nil {
		return Order{}, err
	}
	seq, err := s.loadSequences(ctx)
	if err != nil {
		return Order{}, err
	}

	if order.OrderID == "" {
		floor := max(maxID(orders, orderKey), maxID(archived, archivedKey))
		order.OrderID = strconv.FormatInt(seq.next(SequenceOrderID, floor), 10)
	} else {
		if findOrder(orders, order.OrderID) >= 0 || findArchived(archived, order.OrderID) >= 0 ||
			findLinked(ledger, order.OrderID) >= 0 {
			return Order{}, conflict("order", order.OrderID)
		}
		id, _ := strconv.ParseInt(order.OrderID, 10, 64)
		seq.advance(SequenceOrderID, id)
	}
	if order.OrderDate == "" {
		order.OrderDate = s.today()
	}

	txID := seq.next(SequenceTransactionID, maxID(ledger, transactionKey))
	record := FinancialRecord{
		TransactionID:   strconv.FormatInt(txID, 10),
		OrderID:         order.OrderID,
		TransactionDate: order.OrderDate,
		Profit:          profit,
		Fees:            fees,
		Expenses:        "0",
		TotalSales:      order.SalesPrice,
	}

	if err := s.saveSequences(ctx, seq); err != nil {
		return Order{}, err
	}
	orders = append(orders, order)
	if err := s.writeOrders(ctx, orders); err != nil {
		return Order{}, err
	}
	ledger = append(ledger, record)
	if err := s.writeLedger(ctx, ledger); err != nil {
		return Order{}, err
	}
	if s.decrementStock {
		items[idx].Quantity = strconv.Itoa(unitsInStock(items[idx]) - 1)
		if err := s.writeInventory(ctx, items); err != nil {
			return Order{}, err
		}
	}

	logging.FromContext(ctx).Info("order created",
		"order_id", order.OrderID,
		"transaction_id", record.TransactionID,
		"item", order.ItemsPurchased,
	)
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionOrderCreate,
		Collection: CollectionOrders,
		RecordKey:  order.OrderID,
		Details: map[string]any{
			"transaction_id":  record.TransactionID,
			"items_purchased": order.ItemsPurchased,
			"stock_adjusted":  s.decrementStock,
		},
	})
	return order, nil
}

// EditOrder replaces the order with the payload, keeping its order_id and,
// when the payload omits order_date, its original date. If total_cost or
// sales_price changed, the linked ledger record's profit, fees and
// total_sales are recomputed. Inventory is never touched.
func (s *Service) EditOrder(ctx context.Context, orderID string, payload store.Record) (Order, error) {
	payload = payload.Clone()
	delete(payload, "order_id")
	rec, err := normalize(CollectionOrders, payload)
	if err != nil {
		return Order{}, err
	}
	updated := fromRecord[Order](rec)
	updated.OrderID = orderID

	release := s.locks.acquire(CollectionOrders, CollectionFinancial)
	defer release()

	orders, err := s.readOrders(ctx)
	if err != nil {
		return Order{}, err
	}
	idx := findOrder(orders, orderID)
	if idx < 0 {
		return Order{}, notFound("order", orderID)
	}
	current := orders[idx]
	if _, ok := rec["order_date"]; !ok {
		updated.OrderDate = current.OrderDate
	}

	log := logging.WithFields(ctx, "order_id", orderID)

	amountsChanged := !sameAmount(current.TotalCost, updated.TotalCost) ||
		!sameAmount(current.SalesPrice, updated.SalesPrice)
	if amountsChanged {
		profit, fees, err := ledgerFigures(updated.TotalCost, updated.SalesPrice)
		if err != nil {
			return Order{}, err
		}
		ledger, err := s.readLedger(ctx)
		if err != nil {
			return Order{}, err
		}
		if i := findLinked(ledger, orderID); i < 0 {
			log.Warn("no ledger record linked to edited order")
		} else {
			ledger[i].Profit = profit
			ledger[i].Fees = fees
			ledger[i].TotalSales = updated.SalesPrice
			if err := s.writeLedger(ctx, ledger); err != nil {
				return Order{}, err
			}
		}
	}

	orders[idx] = updated
	if err := s.writeOrders(ctx, orders); err != nil {
		return Order{}, err
	}

	log.Info("order edited", "ledger_recomputed", amountsChanged)
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionOrderEdit,
		Collection: CollectionOrders,
		RecordKey:  orderID,
		Details: map[string]any{
			"total_cost":  updated.TotalCost,
			"sales_price": updated.SalesPrice,
		},
	})
	return updated, nil
}

// DeleteOrder moves an active order into the archive stamped with today's
// date. Its ledger record is kept.
func (s *Service) DeleteOrder(ctx context.Context, orderID string) (DeletedOrder, error) {
	release := s.locks.acquire(CollectionOrders, CollectionDeletedOrders)
	defer release()

	orders, err := s.readOrders(ctx)
	if err != nil {
		return DeletedOrder{}, err
	}
	idx := findOrder(orders, orderID)
	if idx < 0 {
		return DeletedOrder{}, notFound("order", orderID)
	}
	archived, err := s.readArchive(ctx)
	if err != nil {
		return DeletedOrder{}, err
	}

	entry := DeletedOrder{Order: orders[idx], DeletionDate: s.today()}
	archived = append(archived, entry)
	if err := s.writeArchive(ctx, archived); err != nil {
		return DeletedOrder{}, err
	}
	orders = append(orders[:idx], orders[idx+1:]...)
	if err := s.writeOrders(ctx, orders); err != nil {
		return DeletedOrder{}, err
	}

	logging.FromContext(ctx).Info("order archived", "order_id", orderID)
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionOrderArchive,
		Collection: CollectionOrders,
		RecordKey:  orderID,
	})
	return entry, nil
}

func (s *Service) readOrders(ctx context.Context) ([]Order, error) {
	recs, err := s.readCollection(ctx, CollectionOrders)
	if err != nil {
		return nil, err
	}
	return fromRecords[Order](recs), nil
}

func (s *Service) writeOrders(ctx context.Context, orders []Order) error {
	return s.writeCollection(ctx, CollectionOrders, toRecords(orders))
}

func findOrder(orders []Order, orderID string) int {
	for i, o := range orders {
		if o.OrderID == orderID {
			return i
		}
	}
	return -1
}

func orderKey(o Order) string { return o.OrderID }
