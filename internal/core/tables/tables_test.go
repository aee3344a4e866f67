package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/resale/internal/core"
)

func TestCollectionColumns(t *testing.T) {
	tests := []struct {
		key     string
		columns []string
	}{
		{core.CollectionInventory, []string{"item_name", "category", "size", "condition", "cost", "quantity", "description"}},
		{core.CollectionOrders, []string{"order_id", "buyer_name", "order_date", "items_purchased", "total_cost", "shipping_status", "sales_price"}},
		{core.CollectionDeletedOrders, []string{"order_id", "buyer_name", "order_date", "items_purchased", "total_cost", "shipping_status", "sales_price", "deletion_date"}},
		{core.CollectionFinancial, []string{"transaction_id", "order_id", "transaction_date", "profit", "fees", "expenses", "total_sales"}},
		{core.CollectionSequences, []string{"name", "value"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			def, ok := core.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.columns, def.Info.Columns)
		})
	}
}

func TestInternalCollectionsHidden(t *testing.T) {
	svc := core.NewService(nil, core.Options{})
	var keys []string
	for _, info := range svc.ListCollections() {
		keys = append(keys, info.Key)
	}
	assert.ElementsMatch(t, []string{
		core.CollectionInventory, core.CollectionOrders,
		core.CollectionDeletedOrders, core.CollectionFinancial,
	}, keys)
}
