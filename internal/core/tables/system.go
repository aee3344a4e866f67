package tables

import "github.com/JonMunkholm/resale/internal/core"

func init() {
	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Key:       core.CollectionSequences,
			Label:     "Sequences",
			UniqueKey: "name",
		},
		FieldSpecs: []core.FieldSpec{
			{Name: "name", Type: core.FieldText, Required: true},
			{Name: "value", Type: core.FieldInteger, Required: true},
		},
		Internal: true,
	})

	core.Register(core.CollectionDefinition{
		Info: core.CollectionInfo{
			Key:       core.CollectionAuditLog,
			Label:     "Audit Log",
			UniqueKey: "id",
			Columns: []string{
				"id", "created_at", "action", "severity", "collection",
				"record_key", "details", "ip_address", "user_agent",
			},
		},
		Internal: true,
	})
}
