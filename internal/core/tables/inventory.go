package tables

import "github.com/JonMunkholm/resale/internal/core"

func init() {
	registerInventory()
}

func registerInventory() {
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Key:       core.CollectionInventory,
			Label:     "Inventory",
			UniqueKey: "item_name",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "item_name", Type: core.FieldText, Required: true},
			{Name: "category", Type: core.FieldText},
			{Name: "size", Type: core.FieldText},
			{Name: "condition", Type: core.FieldText},
			{Name: "cost", Type: core.FieldNumeric},
			{Name: "quantity", Type: core.FieldInteger, Required: true},
			{Name: "description", Type: core.FieldText},
		},
	})
}
