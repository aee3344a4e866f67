// Package core provides the business logic for a small resale shop:
// inventory, orders, an archive of deleted orders and a financial ledger.
//
// The package has no HTTP dependencies. Persistence goes through
// [store.Store], which reads and replaces whole collections, so every
// mutation here is a read-modify-write under per-collection locks.
//
// # Collections
//
// Collections are registered at init time using [Register], normally by
// importing internal/core/tables. Each [CollectionDefinition] lists the
// stored column order and the [FieldSpec] rules incoming records must pass:
//
//	core.Register(core.CollectionDefinition{
//	    Info: core.CollectionInfo{Key: "inventory", Label: "Inventory", UniqueKey: "item_name"},
//	    FieldSpecs: []core.FieldSpec{
//	        {Name: "item_name", Type: core.FieldText, Required: true},
//	        {Name: "quantity", Type: core.FieldInteger, Required: true},
//	    },
//	})
//
// # Order lifecycle
//
//  1. [Service.CreateOrder] checks stock, assigns an order_id, appends the
//     order and a linked ledger record, then decrements stock
//  2. [Service.EditOrder] replaces the order and recomputes its ledger
//     record when the amounts change
//  3. [Service.DeleteOrder] moves the order to the archive
//  4. [Service.RecoverOrder] moves it back, or
//     [Service.PermanentlyDeleteOrder] and [Service.PurgeArchive] drop it
//
// Order and transaction ids come from persisted sequences and are never
// reused, even after deletion.
//
// # Error Handling
//
// Operations return [ErrNotFound], [ErrOutOfStock], [ErrConflict],
// *[ValidationError] or *[StorageError], wrapped with context. [MapError]
// turns any of them into a coded [UserMessage] for display.
//
// # Audit Logging
//
// Every mutation appends an [AuditEntry] to the audit_log collection. Audit
// failures are logged, never returned, since the mutation has already been
// persisted.
package core
