package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Summary holds the headline figures shown on the dashboard.
type Summary struct {
	InventoryItems int    `json:"inventory_items"`
	UnitsInStock   int    `json:"units_in_stock"`
	OutOfStock     int    `json:"out_of_stock"`
	ActiveOrders   int    `json:"active_orders"`
	PendingOrders  int    `json:"pending_orders"`
	ArchivedOrders int    `json:"archived_orders"`
	Transactions   int    `json:"transactions"`
	TotalSales     string `json:"total_sales"`
	TotalProfit    string `json:"total_profit"`
	TotalFees      string `json:"total_fees"`
	TotalExpenses  string `json:"total_expenses"`
	NetProfit      string `json:"net_profit"`
}

// Summary computes dashboard totals. Amounts that do not parse are skipped.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	items, err := s.readInventory(ctx)
	if err != nil {
		return Summary{}, err
	}
	orders, err := s.readOrders(ctx)
	if err != nil {
		return Summary{}, err
	}
	archived, err := s.readArchive(ctx)
	if err != nil {
		return Summary{}, err
	}
	ledger, err := s.readLedger(ctx)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		InventoryItems: len(items),
		ActiveOrders:   len(orders),
		ArchivedOrders: len(archived),
		Transactions:   len(ledger),
	}
	for _, item := range items {
		n := unitsInStock(item)
		sum.UnitsInStock += n
		if n == 0 {
			sum.OutOfStock++
		}
	}
	for _, o := range orders {
		if o.ShippingStatus == DefaultShippingStatus {
			sum.PendingOrders++
		}
	}

	var sales, profit, fees, expenses decimal.Decimal
	for _, r := range ledger {
		sales = sales.Add(amountOrZero(r.TotalSales))
		profit = profit.Add(amountOrZero(r.Profit))
		fees = fees.Add(amountOrZero(r.Fees))
		expenses = expenses.Add(amountOrZero(r.Expenses))
	}
	sum.TotalSales = FormatAmount(sales)
	sum.TotalProfit = FormatAmount(profit)
	sum.TotalFees = FormatAmount(fees)
	sum.TotalExpenses = FormatAmount(expenses)
	sum.NetProfit = FormatAmount(profit.Sub(fees).Sub(expenses))
	return sum, nil
}

func amountOrZero(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
