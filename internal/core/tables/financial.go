package tables

import "github.com/JonMunkholm/resale/internal/core"

func init() {
	registerFinancial()
}

func registerFinancial() {
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Key:       core.CollectionFinancial,
			Label:     "Financial",
			UniqueKey: "transaction_id",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "transaction_id", Type: core.FieldID},
			{Name: "order_id", Type: core.FieldID},
			{Name: "transaction_date", Type: core.FieldDate},
			{Name: "profit", Type: core.FieldNumeric},
			{Name: "fees", Type: core.FieldNumeric},
			{Name: "expenses", Type: core.FieldNumeric},
			{Name: "total_sales", Type: core.FieldNumeric},
		},
	})
}
