package core

import (
	"context"
	"fmt"
	"strconv"

	"github.com/JonMunkholm/resale/internal/logging"
	"github.com/JonMunkholm/resale/internal/store"
)

// ListLedger returns every financial record in stored order.
func (s *Service) ListLedger(ctx context.Context) ([]FinancialRecord, error) {
	return s.readLedger(ctx)
}

// CreateLedgerRecord appends a manual ledger entry, such as an expense not
// tied to an order. A missing transaction_id is assigned from the sequence
// and a missing date defaults to today.
//
// An entry naming an order_id must refer to an active or archived order
// that has no ledger record yet. Its profit, fees and total_sales are
// derived from that order; payload values that disagree are rejected.
func (s *Service) CreateLedgerRecord(ctx context.Context, payload store.Record) (FinancialRecord, error) {
	rec, err := normalize(CollectionFinancial, payload)
	if err != nil {
		return FinancialRecord{}, err
	}
	record := fromRecord[FinancialRecord](rec)
	if record.TransactionDate == "" {
		record.TransactionDate = s.today()
	}
	if record.Expenses == "" {
		record.Expenses = "0"
	}

	release := s.locks.acquire(CollectionFinancial, CollectionOrders, CollectionDeletedOrders,
		CollectionSequences)
	defer release()

	ledger, err := s.readLedger(ctx)
	if err != nil {
		return FinancialRecord{}, err
	}
	if record.OrderID != "" {
		if findLinked(ledger, record.OrderID) >= 0 {
			return FinancialRecord{}, conflict("ledger record for order", record.OrderID)
		}
		order, err := s.findAnyOrder(ctx, record.OrderID)
		if err != nil {
			return FinancialRecord{}, err
		}
		profit, fees, err := ledgerFigures(order.TotalCost, order.SalesPrice)
		if err != nil {
			return FinancialRecord{}, err
		}
		derived := FinancialRecord{Profit: profit, Fees: fees, TotalSales: order.SalesPrice}
		if err := checkDerived(rec, derived, record.OrderID); err != nil {
			return FinancialRecord{}, err
		}
		record.Profit, record.Fees, record.TotalSales = derived.Profit, derived.Fees, derived.TotalSales
	}
	seq, err := s.loadSequences(ctx)
	if err != nil {
		return FinancialRecord{}, err
	}
	if record.TransactionID == "" {
		id := seq.next(SequenceTransactionID, maxID(ledger, transactionKey))
		record.TransactionID = strconv.FormatInt(id, 10)
	} else {
		if findTransaction(ledger, record.TransactionID) >= 0 {
			return FinancialRecord{}, conflict("transaction", record.TransactionID)
		}
		id, _ := strconv.ParseInt(record.TransactionID, 10, 64)
		seq.advance(SequenceTransactionID, id)
	}

	if err := s.saveSequences(ctx, seq); err != nil {
		return FinancialRecord{}, err
	}
	ledger = append(ledger, record)
	if err := s.writeLedger(ctx, ledger); err != nil {
		return FinancialRecord{}, err
	}

	logging.FromContext(ctx).Info("ledger record created", "transaction_id", record.TransactionID)
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionLedgerCreate,
		Collection: CollectionFinancial,
		RecordKey:  record.TransactionID,
	})
	return record, nil
}

// UpdateLedgerRecord merges payload into the record. Fields the payload
// omits keep their current values; transaction_id never changes and
// order_id cannot be changed. On a record linked to an order, profit, fees
// and total_sales follow the order and may only be resent unchanged.
func (s *Service) UpdateLedgerRecord(ctx context.Context, transactionID string, payload store.Record) (FinancialRecord, error) {
	payload = payload.Clone()
	delete(payload, "transaction_id")
	rec, err := normalize(CollectionFinancial, payload)
	if err != nil {
		return FinancialRecord{}, err
	}

	release := s.locks.acquire(CollectionFinancial)
	defer release()

	ledger, err := s.readLedger(ctx)
	if err != nil {
		return FinancialRecord{}, err
	}
	idx := findTransaction(ledger, transactionID)
	if idx < 0 {
		return FinancialRecord{}, notFound("transaction", transactionID)
	}

	current := ledger[idx]
	if v, ok := rec["order_id"]; ok && v != current.OrderID {
		return FinancialRecord{}, &ValidationError{Field: "order_id", Value: v, Message: "cannot be changed"}
	}
	if current.OrderID != "" {
		if err := checkDerived(rec, current, current.OrderID); err != nil {
			return FinancialRecord{}, err
		}
	}

	merged := toRecord(current)
	for k, v := range rec {
		merged[k] = v
	}
	updated := fromRecord[FinancialRecord](merged)
	updated.TransactionID = transactionID
	if current.OrderID != "" {
		updated.Profit, updated.Fees, updated.TotalSales = current.Profit, current.Fees, current.TotalSales
	}
	ledger[idx] = updated

	if err := s.writeLedger(ctx, ledger); err != nil {
		return FinancialRecord{}, err
	}

	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionLedgerUpdate,
		Collection: CollectionFinancial,
		RecordKey:  transactionID,
	})
	return updated, nil
}

// DeleteLedgerRecord removes a ledger record. The order it belongs to, if
// any, is left alone.
func (s *Service) DeleteLedgerRecord(ctx context.Context, transactionID string) (FinancialRecord, error) {
	release := s.locks.acquire(CollectionFinancial)
	defer release()

	ledger, err := s.readLedger(ctx)
	if err != nil {
		return FinancialRecord{}, err
	}
	idx := findTransaction(ledger, transactionID)
	if idx < 0 {
		return FinancialRecord{}, notFound("transaction", transactionID)
	}
	removed := ledger[idx]
	ledger = append(ledger[:idx], ledger[idx+1:]...)
	if err := s.writeLedger(ctx, ledger); err != nil {
		return FinancialRecord{}, err
	}

	logging.FromContext(ctx).Info("ledger record deleted", "transaction_id", transactionID)
	s.recordAudit(ctx, AuditLogParams{
		Action:     ActionLedgerDelete,
		Collection: CollectionFinancial,
		RecordKey:  transactionID,
		Details:    map[string]any{"order_id": removed.OrderID},
	})
	return removed, nil
}

func (s *Service) readLedger(ctx context.Context) ([]FinancialRecord, error) {
	recs, err := s.readCollection(ctx, CollectionFinancial)
	if err != nil {
		return nil, err
	}
	return fromRecords[FinancialRecord](recs), nil
}

func (s *Service) writeLedger(ctx context.Context, ledger []FinancialRecord) error {
	return s.writeCollection(ctx, CollectionFinancial, toRecords(ledger))
}

func findTransaction(ledger []FinancialRecord, transactionID string) int {
	for i, r := range ledger {
		if r.TransactionID == transactionID {
			return i
		}
	}
	return -1
}

func transactionKey(r FinancialRecord) string { return r.TransactionID }

// findLinked returns the index of the ledger record for orderID, or -1.
func findLinked(ledger []FinancialRecord, orderID string) int {
	for i, r := range ledger {
		if r.OrderID == orderID {
			return i
		}
	}
	return -1
}

// checkDerived rejects payload values for order-derived fields that differ
// from want.
func checkDerived(rec store.Record, want FinancialRecord, orderID string) error {
	for _, f := range []struct{ name, want string }{
		{"profit", want.Profit},
		{"fees", want.Fees},
		{"total_sales", want.TotalSales},
	} {
		got, ok := rec[f.name]
		if !ok || got == "" || sameAmount(got, f.want) {
			continue
		}
		return &ValidationError{
			Field:   f.name,
			Value:   got,
			Message: fmt.Sprintf("cannot be changed on the ledger record of order %s; edit the order instead", orderID),
		}
	}
	return nil
}

// findAnyOrder looks orderID up among active, then archived orders.
// Callers hold the orders and archive locks.
func (s *Service) findAnyOrder(ctx context.Context, orderID string) (Order, error) {
	orders, err := s.readOrders(ctx)
	if err != nil {
		return Order{}, err
	}
	if i := findOrder(orders, orderID); i >= 0 {
		return orders[i], nil
	}
	archived, err := s.readArchive(ctx)
	if err != nil {
		return Order{}, err
	}
	if i := findArchived(archived, orderID); i >= 0 {
		return archived[i].Order, nil
	}
	return Order{}, notFound("order", orderID)
}
