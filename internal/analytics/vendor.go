package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"treasury-analytics/internal/models"
)

// MaxVendors caps the vendor breakdown.
const MaxVendors = 50

type vendorTotal struct {
	name  string
	sum   decimal.Decimal // signed, negative for spend
	count int
}

// groupOutgoingByVendor sums spend per counterparty, skipping inflows and
// transactions without a counterparty. The result is ordered by signed sum
// ascending, so the largest spend comes first.
func groupOutgoingByVendor(txs []models.Transaction) []*vendorTotal {
	index := make(map[string]*vendorTotal)
	var vendors []*vendorTotal
	for _, tx := range txs {
		if !tx.Amount.IsNegative() || tx.Counterparty == nil || *tx.Counterparty == "" {
			continue
		}
		v, ok := index[*tx.Counterparty]
		if !ok {
			v = &vendorTotal{name: *tx.Counterparty}
			index[v.name] = v
			vendors = append(vendors, v)
		}
		v.sum = v.sum.Add(tx.Amount)
		v.count++
	}

	sort.SliceStable(vendors, func(i, j int) bool {
		if c := vendors[i].sum.Cmp(vendors[j].sum); c != 0 {
			return c < 0
		}
		return vendors[i].name < vendors[j].name
	})
	return vendors
}

// BuildVendorBreakdown ranks the top vendors by spend. Percentages are shares
// of the spend of the vendors kept. paymentMethods maps a vendor to the
// transaction types seen for it.
func BuildVendorBreakdown(txs []models.Transaction, paymentMethods map[string][]string) []models.VendorBreakdown {
	vendors := groupOutgoingByVendor(txs)
	if len(vendors) > MaxVendors {
		vendors = vendors[:MaxVendors]
	}

	total := decimal.Zero
	for _, v := range vendors {
		total = total.Add(v.sum.Abs())
	}

	out := make([]models.VendorBreakdown, 0, len(vendors))
	for _, v := range vendors {
		methods := paymentMethods[v.name]
		if methods == nil {
			methods = []string{}
		}
		out = append(out, models.VendorBreakdown{
			VendorName:       v.name,
			TotalAmount:      round2(v.sum.Abs()),
			TransactionCount: v.count,
			Percentage:       percentOf(v.sum.Abs(), total),
			PaymentMethods:   methods,
		})
	}
	return out
}

// TopVendorNames returns the names BuildVendorBreakdown would keep.
func TopVendorNames(txs []models.Transaction) []string {
	vendors := groupOutgoingByVendor(txs)
	if len(vendors) > MaxVendors {
		vendors = vendors[:MaxVendors]
	}
	names := make([]string, len(vendors))
	for i, v := range vendors {
		names[i] = v.name
	}
	return names
}
