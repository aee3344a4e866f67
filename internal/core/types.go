package core

import (
	"encoding/json"

	"github.com/JonMunkholm/resale/internal/store"
)

// Collection keys.
const (
	CollectionInventory     = "inventory"
	CollectionOrders        = "orders"
	CollectionDeletedOrders = "deleted_orders"
	CollectionFinancial     = "financial"
	CollectionSequences     = "_sequences"
	CollectionAuditLog      = "audit_log"
)

// Sequence names kept in CollectionSequences.
const (
	SequenceOrderID       = "order_id"
	SequenceTransactionID = "transaction_id"
)

// InventoryItem is a stocked product, keyed by ItemName.
type InventoryItem struct {
	ItemName    string `json:"item_name"`
	Category    string `json:"category"`
	Size        string `json:"size"`
	Condition   string `json:"condition"`
	Cost        string `json:"cost"`
	Quantity    string `json:"quantity"`
	Description string `json:"description"`
}

// Order is an active sale. ItemsPurchased names a single inventory item.
type Order struct {
	OrderID        string `json:"order_id"`
	BuyerName      string `json:"buyer_name"`
	OrderDate      string `json:"order_date"`
	ItemsPurchased string `json:"items_purchased"`
	TotalCost      string `json:"total_cost"`
	ShippingStatus string `json:"shipping_status"`
	SalesPrice     string `json:"sales_price"`
}

// DeletedOrder is an order moved to the archive.
type DeletedOrder struct {
	Order
	DeletionDate string `json:"deletion_date"`
}

// FinancialRecord is one ledger row. Orders created through the service
// get exactly one record each, linked by OrderID.
type FinancialRecord struct {
	TransactionID   string `json:"transaction_id"`
	OrderID         string `json:"order_id"`
	TransactionDate string `json:"transaction_date"`
	Profit          string `json:"profit"`
	Fees            string `json:"fees"`
	Expenses        string `json:"expenses"`
	TotalSales      string `json:"total_sales"`
}

// FieldType represents the expected data type for a record field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldNumeric
	FieldDate
	// FieldID is a positive record id, stored without sign or leading zeros.
	FieldID
)

// FieldSpec defines validation rules for a single column.
type FieldSpec struct {
	Name     string    // Column name as stored
	Type     FieldType // Expected data type
	Required bool      // Value must be present and non-empty on input
}

// CollectionInfo contains display information about a collection.
type CollectionInfo struct {
	Key       string   `json:"key"`                  // Store collection name: "orders"
	Label     string   `json:"label"`                // Display name: "Orders"
	Columns   []string `json:"columns"`              // Stored column order
	UniqueKey string   `json:"unique_key,omitempty"` // Column holding the record key, empty if none
}

// CollectionDefinition is everything needed to validate and persist a collection.
type CollectionDefinition struct {
	Info       CollectionInfo
	FieldSpecs []FieldSpec

	// Internal collections are not writable through the record API.
	Internal bool
}

// toRecord flattens a domain struct into a store record using its json tags.
func toRecord(v any) store.Record {
	b, _ := json.Marshal(v)
	rec := store.Record{}
	_ = json.Unmarshal(b, &rec)
	return rec
}

// fromRecord fills a domain struct from a store record. Columns without a
// matching field are ignored.
func fromRecord[T any](rec store.Record) T {
	var v T
	b, _ := json.Marshal(rec)
	_ = json.Unmarshal(b, &v)
	return v
}

func toRecords[T any](items []T) []store.Record {
	out := make([]store.Record, len(items))
	for i, item := range items {
		out[i] = toRecord(item)
	}
	return out
}

func fromRecords[T any](recs []store.Record) []T {
	out := make([]T, len(recs))
	for i, rec := range recs {
		out[i] = fromRecord[T](rec)
	}
	return out
}
