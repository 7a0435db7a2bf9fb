package partner

import "strings"

// skipPatterns are substrings of ledger names that mark internal accounts
// (cash, banks, taxes, stock and the like) rather than trade customers.
var skipPatterns = []string{
	"cash", "bank", "profit", "loss", "suspense", "fixed asset",
	"loan", "capital", "reserve", "depreciation", "purchase",
	"sale", "income", "expense", "duty", "tax", "gst",
	"discount", "commission", "interest", "salary", "wages",
	"opening balance", "closing stock", "stock", "vat",
	"cgst", "sgst", "igst", "rounding", "miscellaneous",
}

// ShouldSkipLedger reports whether the ledger name looks like a system account
func ShouldSkipLedger(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range skipPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsSundryDebtor reports whether the account group is the trade customer group
func IsSundryDebtor(parent string) bool {
	return strings.EqualFold(parent, SundryDebtorsGroup)
}

// AcceptLedger applies both gates: the name must not be a system account
// and the parent group must be Sundry Debtors.
func AcceptLedger(name, parent string) bool {
	return !ShouldSkipLedger(name) && IsSundryDebtor(parent)
}
