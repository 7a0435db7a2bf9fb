package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldSkipLedger(t *testing.T) {
	t.Run("system accounts are skipped", func(t *testing.T) {
		for _, name := range []string{
			"Cash Account", "HDFC BANK", "Profit & Loss A/c", "Output CGST 9%",
			"Closing Stock", "Rounding Off", "Sales - Local", "Salary Payable",
		} {
			assert.True(t, ShouldSkipLedger(name), name)
		}
	})

	t.Run("trade names pass", func(t *testing.T) {
		for _, name := range []string{"ABC Traders", "Zeta Corp", "Shree Engineering Works"} {
			assert.False(t, ShouldSkipLedger(name), name)
		}
	})

	t.Run("patterns match inside words", func(t *testing.T) {
		// "Wholesale" contains "sale"
		assert.True(t, ShouldSkipLedger("Wholesale Agencies"))
	})
}

func TestIsSundryDebtor(t *testing.T) {
	assert.True(t, IsSundryDebtor("Sundry Debtors"))
	assert.True(t, IsSundryDebtor("SUNDRY DEBTORS"))
	assert.True(t, IsSundryDebtor("sundry debtors"))
	assert.False(t, IsSundryDebtor("Sundry Creditors"))
	assert.False(t, IsSundryDebtor("Sundry Debtors - North"))
	assert.False(t, IsSundryDebtor(""))
}

func TestAcceptLedger(t *testing.T) {
	t.Run("sundry debtor with trade name passes", func(t *testing.T) {
		assert.True(t, AcceptLedger("ABC Traders", "Sundry Debtors"))
		assert.True(t, AcceptLedger("ABC Traders", "sundry DEBTORS"))
	})

	t.Run("creditor is rejected regardless of name", func(t *testing.T) {
		assert.False(t, AcceptLedger("ABC Traders", "Sundry Creditors"))
	})

	t.Run("skip pattern wins over debtor group", func(t *testing.T) {
		assert.False(t, AcceptLedger("Cash Account", "Sundry Debtors"))
	})
}
