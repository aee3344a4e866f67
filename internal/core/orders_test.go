package core_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/resale/internal/core"
	"github.com/JonMunkholm/resale/internal/store"
)

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	seedInventory(t, svc, "Widget", "2")

	// Create
	order, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	assert.Equal(t, "1", order.OrderID)
	assert.Equal(t, today, order.OrderDate)
	assert.Equal(t, core.DefaultShippingStatus, order.ShippingStatus)

	ledger, err := svc.ListLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, core.FinancialRecord{
		TransactionID:   "1",
		OrderID:         "1",
		TransactionDate: today,
		Profit:          "5.0",
		Fees:            "1.0",
		Expenses:        "0",
		TotalSales:      "15",
	}, ledger[0])

	items, err := svc.ListInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", items[0].Quantity)

	// Edit
	edited, err := svc.EditOrder(ctx, "1", orderPayload("Widget", "12", "20"))
	require.NoError(t, err)
	assert.Equal(t, "1", edited.OrderID)
	assert.Equal(t, today, edited.OrderDate, "omitted order_date keeps the original")

	ledger, err = svc.ListLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, "8.0", ledger[0].Profit)
	assert.Equal(t, "1.2", ledger[0].Fees)
	assert.Equal(t, "20", ledger[0].TotalSales)

	// Delete
	archivedEntry, err := svc.DeleteOrder(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, today, archivedEntry.DeletionDate)

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	archived, err := svc.ListArchive(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "1", archived[0].OrderID)
	assert.Equal(t, "20", archived[0].SalesPrice)

	ledger, err = svc.ListLedger(ctx)
	require.NoError(t, err)
	assert.Len(t, ledger, 1, "archiving keeps the ledger record")

	// Recover
	recovered, err := svc.RecoverOrder(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, edited, recovered)

	orders, err = svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, edited, orders[0])
	archived, err = svc.ListArchive(ctx)
	require.NoError(t, err)
	assert.Empty(t, archived)

	items, err = svc.ListInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", items[0].Quantity, "edit, delete and recover leave stock alone")
}

func TestCreateOrder_OutOfStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	seedInventory(t, svc, "Widget", "0")

	_, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	assert.ErrorIs(t, err, core.ErrOutOfStock)

	_, err = svc.CreateOrder(ctx, orderPayload("Missing", "10", "15"))
	assert.ErrorIs(t, err, core.ErrOutOfStock)

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	ledger, err := svc.ListLedger(ctx)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestCreateOrder_OutOfStockLeavesFilesUntouched(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewCSVFileStore(t.TempDir())
	require.NoError(t, err)
	svc := core.NewService(st, core.Options{DecrementStock: true, Now: func() time.Time { return fixedNow }})
	seedInventory(t, svc, "Widget", "1")
	seedInventory(t, svc, "Gadget", "0")
	_, err = svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)

	files := []string{core.CollectionInventory, core.CollectionOrders, core.CollectionFinancial, core.CollectionSequences}
	snapshot := func() map[string]string {
		out := make(map[string]string, len(files))
		for _, c := range files {
			data, err := os.ReadFile(st.Path(c))
			if errors.Is(err, fs.ErrNotExist) {
				out[c] = "<absent>"
				continue
			}
			require.NoError(t, err)
			out[c] = string(data)
		}
		return out
	}
	before := snapshot()

	for _, item := range []string{"Widget", "Gadget", "Missing"} {
		_, err := svc.CreateOrder(ctx, orderPayload(item, "10", "15"))
		assert.ErrorIs(t, err, core.ErrOutOfStock, item)
	}

	assert.Equal(t, before, snapshot())
}

func TestCreateOrder_WithoutStockDecrement(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)
	seedInventory(t, svc, "Widget", "1")

	_, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err, "stock is only checked, not consumed")

	items, err := svc.ListInventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", items[0].Quantity)
}

func TestCreateOrder_DecrementsToZero(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	seedInventory(t, svc, "Widget", "1")

	_, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	assert.ErrorIs(t, err, core.ErrOutOfStock)
}

func TestCreateOrder_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	seedInventory(t, svc, "Widget", "5")

	tests := []struct {
		name    string
		payload store.Record
		field   string
	}{
		{"missing sales price", store.Record{"items_purchased": "Widget", "total_cost": "10"}, "sales_price"},
		{"non numeric cost", orderPayload("Widget", "ten", "15"), "total_cost"},
		{"bad date", store.Record{"items_purchased": "Widget", "total_cost": "1", "sales_price": "2", "order_date": "14/03/2026"}, "order_date"},
		{"unknown column", store.Record{"items_purchased": "Widget", "total_cost": "1", "sales_price": "2", "coupon": "X"}, "coupon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, tt.payload)
			var ve *core.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCreateOrder_KeepsGivenDateAndStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	seedInventory(t, svc, "Widget", "1")

	payload := orderPayload("Widget", "10", "15")
	payload["order_date"] = "2026-01-02"
	payload["shipping_status"] = "Shipped"
	order, err := svc.CreateOrder(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02", order.OrderDate)
	assert.Equal(t, "Shipped", order.ShippingStatus)

	ledger, err := svc.ListLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-02", ledger[0].TransactionDate)
}

func TestOrderIDsAreNeverReused(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	seedInventory(t, svc, "Widget", "10")

	first, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	second, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	assert.Equal(t, "1", first.OrderID)
	assert.Equal(t, "2", second.OrderID)

	// Deleting the newest order and purging it must not free its id.
	_, err = svc.DeleteOrder(ctx, second.OrderID)
	require.NoError(t, err)
	_, err = svc.PermanentlyDeleteOrder(ctx, second.OrderID)
	require.NoError(t, err)

	third, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	assert.Equal(t, "3", third.OrderID)

	ledger, err := svc.ListLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{
		ledger[0].TransactionID, ledger[1].TransactionID, ledger[2].TransactionID,
	})
}

func TestOrderIDsSeedFromExistingData(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, true)
	seedInventory(t, svc, "Widget", "3")

	def, _ := core.Get(core.CollectionOrders)
	require.NoError(t, st.WriteAll(ctx, core.CollectionOrders, []store.Record{
		{"order_id": "41", "items_purchased": "Widget", "total_cost": "1", "sales_price": "2"},
	}, def.Info.Columns))

	order, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	assert.Equal(t, "42", order.OrderID)
}

func TestCreateOrder_ExplicitID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	seedInventory(t, svc, "Widget", "3")

	payload := orderPayload("Widget", "10", "15")
	payload["order_id"] = "100"
	order, err := svc.CreateOrder(ctx, payload)
	require.NoError(t, err)
	assert.Equal(t, "100", order.OrderID)

	_, err = svc.CreateOrder(ctx, payload)
	assert.ErrorIs(t, err, core.ErrConflict)

	next, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	assert.Equal(t, "101", next.OrderID)
}

func TestEditOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	seedInventory(t, svc, "Widget", "5")
	_, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)

	t.Run("unchanged amounts leave ledger alone", func(t *testing.T) {
		payload := orderPayload("Widget", "10.00", "15")
		payload["shipping_status"] = "Shipped"
		edited, err := svc.EditOrder(ctx, "1", payload)
		require.NoError(t, err)
		assert.Equal(t, "Shipped", edited.ShippingStatus)

		ledger, err := svc.ListLedger(ctx)
		require.NoError(t, err)
		assert.Equal(t, "5.0", ledger[0].Profit)
	})

	t.Run("explicit date replaces original", func(t *testing.T) {
		payload := orderPayload("Widget", "10", "15")
		payload["order_date"] = "2026-02-01"
		edited, err := svc.EditOrder(ctx, "1", payload)
		require.NoError(t, err)
		assert.Equal(t, "2026-02-01", edited.OrderDate)
	})

	t.Run("order_id in payload is ignored", func(t *testing.T) {
		payload := orderPayload("Widget", "10", "15")
		payload["order_id"] = "999"
		edited, err := svc.EditOrder(ctx, "1", payload)
		require.NoError(t, err)
		assert.Equal(t, "1", edited.OrderID)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := svc.EditOrder(ctx, "77", orderPayload("Widget", "10", "15"))
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("missing ledger record still edits order", func(t *testing.T) {
		_, err := svc.DeleteLedgerRecord(ctx, "1")
		require.NoError(t, err)

		edited, err := svc.EditOrder(ctx, "1", orderPayload("Widget", "30", "50"))
		require.NoError(t, err)
		assert.Equal(t, "30", edited.TotalCost)

		ledger, err := svc.ListLedger(ctx)
		require.NoError(t, err)
		assert.Empty(t, ledger)
	})
}

func TestDeleteOrder_NotFound(t *testing.T) {
	svc, _ := newTestService(t, true)
	_, err := svc.DeleteOrder(context.Background(), "5")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

// Widget walk-through: stock 2, order, edit, delete, recover, then a
// second order and a permanent delete of the first.
func TestWidgetScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, true)
	seedInventory(t, svc, "Widget", "2")

	first, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	_, err = svc.EditOrder(ctx, first.OrderID, orderPayload("Widget", "12", "20"))
	require.NoError(t, err)
	_, err = svc.DeleteOrder(ctx, first.OrderID)
	require.NoError(t, err)
	_, err = svc.RecoverOrder(ctx, first.OrderID)
	require.NoError(t, err)

	second, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	assert.Equal(t, "2", second.OrderID)

	_, err = svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	assert.ErrorIs(t, err, core.ErrOutOfStock)

	_, err = svc.DeleteOrder(ctx, first.OrderID)
	require.NoError(t, err)
	_, err = svc.PermanentlyDeleteOrder(ctx, first.OrderID)
	require.NoError(t, err)

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "2", orders[0].OrderID)

	archived, err := svc.ListArchive(ctx)
	require.NoError(t, err)
	assert.Empty(t, archived)

	ledger, err := svc.ListLedger(ctx)
	require.NoError(t, err)
	require.Len(t, ledger, 2, "ledger records outlive their orders")
	assert.Equal(t, "8.0", ledger[0].Profit)
	assert.Equal(t, "5.0", ledger[1].Profit)
}

func TestCreateOrder_CanonicalIDs(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)
	seedInventory(t, svc, "Widget", "5")

	withID := func(id string) store.Record {
		p := orderPayload("Widget", "10", "15")
		p["order_id"] = id
		return p
	}

	order, err := svc.CreateOrder(ctx, withID("01"))
	require.NoError(t, err)
	assert.Equal(t, "1", order.OrderID)

	_, err = svc.CreateOrder(ctx, withID("1"))
	assert.ErrorIs(t, err, core.ErrConflict)
	_, err = svc.CreateOrder(ctx, withID("001"))
	assert.ErrorIs(t, err, core.ErrConflict)

	for _, bad := range []string{"0", "-3", "abc", "1.5"} {
		_, err := svc.CreateOrder(ctx, withID(bad))
		var ve *core.ValidationError
		if assert.ErrorAs(t, err, &ve, bad) {
			assert.Equal(t, "order_id", ve.Field)
			assert.Equal(t, "VAL007", core.MapError(err).Code)
		}
	}

	order, err = svc.CreateOrder(ctx, withID("+7"))
	require.NoError(t, err)
	assert.Equal(t, "7", order.OrderID)

	orders, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
	}
	assert.Equal(t, []string{"1", "7"}, ids)
}

func TestCreateOrder_ExplicitIDWithExistingLedgerRecord(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)
	seedInventory(t, svc, "Widget", "5")

	_, err := svc.CreateOrder(ctx, orderPayload("Widget", "10", "15"))
	require.NoError(t, err)
	_, err = svc.DeleteOrder(ctx, "1")
	require.NoError(t, err)
	_, err = svc.PermanentlyDeleteOrder(ctx, "1")
	require.NoError(t, err)

	p := orderPayload("Widget", "10", "15")
	p["order_id"] = "1"
	_, err = svc.CreateOrder(ctx, p)
	assert.ErrorIs(t, err, core.ErrConflict, "the retained ledger record still belongs to order 1")
}
