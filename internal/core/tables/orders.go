package tables

import "github.com/JonMunkholm/resale/internal/core"

func init() {
	registerOrders()
	registerDeletedOrders()
}

var orderFields = []core.FieldSpec{
	{Name: "order_id", Type: core.FieldID},
	{Name: "buyer_name", Type: core.FieldText},
	{Name: "order_date", Type: core.FieldDate},
	{Name: "items_purchased", Type: core.FieldText, Required: true},
	{Name: "total_cost", Type: core.FieldNumeric, Required: true},
	{Name: "shipping_status", Type: core.FieldText},
	{Name: "sales_price", Type: core.FieldNumeric, Required: true},
}

func registerOrders() {
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Key:       core.CollectionOrders,
			Label:     "Orders",
			UniqueKey: "order_id",
		},
		FieldSpecs: orderFields,
	})
}

// Archived orders are only ever written by the service, so their specs
// just fix the column order.
func registerDeletedOrders() {
	specs := append(append([]core.FieldSpec(nil), orderFields...),
		core.FieldSpec{Name: "deletion_date", Type: core.FieldDate})
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Key:       core.CollectionDeletedOrders,
			Label:     "Deleted Orders",
			UniqueKey: "order_id",
		},
		FieldSpecs: specs,
	})
}
