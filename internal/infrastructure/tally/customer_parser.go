package tally

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tallysync/backend/internal/domain/partner"
	"go.uber.org/zap"
)

// ErrLedgerSkipped marks ledgers the filter rejects; it is not a failure
var ErrLedgerSkipped = errors.New("ledger is not a trade customer")

// ParseCustomer converts one LEDGER node. It returns ErrLedgerSkipped for
// system accounts and ledgers outside Sundry Debtors.
func ParseCustomer(n Node) (*partner.NormalizedCustomer, error) {
	name, code := ledgerNames(n)
	if name == "" {
		return nil, fmt.Errorf("ledger without name: %w", ErrLedgerSkipped)
	}

	// parent_group keeps the ERP text as written; only the gate trims it
	parent := ""
	if p, ok := n.First("PARENT"); ok {
		parent = p.Text()
	}
	if !partner.AcceptLedger(name, strings.TrimSpace(parent)) {
		return nil, ErrLedgerSkipped
	}

	var mobile *string
	if raw, ok := n.FirstText("LEDGERMOBILE"); ok {
		mobile = partner.NormalizeMobile(raw)
	}

	state := partner.DefaultState
	if raw, ok := n.FirstText("STATE"); ok && raw != "-" && !strings.EqualFold(raw, "na") {
		state = raw
	}

	var email *string
	if raw, ok := n.FirstText("EMAIL"); ok && raw != "-" {
		email = &raw
	}

	customerType := partner.DefaultCustomerType
	if category, ok := productCategory(n); ok {
		customerType = category
	}

	return partner.NewNormalizedCustomer(name, code, email, mobile, state, customerType, parent)
}

// ledgerNames reads NAME: a sequence carries display name then code
func ledgerNames(n Node) (string, *string) {
	names := n.Field("NAME")
	switch {
	case len(names) >= 2:
		code := strings.TrimSpace(names[1].Text())
		return strings.TrimSpace(names[0].Text()), &code
	case len(names) == 1:
		return strings.TrimSpace(names[0].Text()), nil
	}
	return "", nil
}

// productCategory reads UDF:PRODUCTCATEGORY.LIST / UDF:PRODUCTCATEGORY,
// taking the first entry when the list repeats.
func productCategory(n Node) (string, bool) {
	list, ok := n.First("UDF:PRODUCTCATEGORY.LIST")
	if !ok {
		return "", false
	}
	value, ok := list.FirstText("UDF:PRODUCTCATEGORY")
	if !ok {
		return "", false
	}
	return strings.ToLower(value), true
}

// ParseCustomers converts every LEDGER node, keeping only trade customers.
// A node that fails to parse is logged and dropped; the batch continues.
func ParseCustomers(nodes []Node, log *zap.Logger) []partner.NormalizedCustomer {
	customers := make([]partner.NormalizedCustomer, 0, len(nodes))
	for i, n := range nodes {
		c, err := safeParse(func() (*partner.NormalizedCustomer, error) { return ParseCustomer(n) })
		if err != nil {
			if isSkip(err) {
				log.Debug("Skipping ledger", zap.Int("index", i), zap.String("reason", err.Error()))
			} else {
				log.Warn("Error processing ledger", zap.Int("index", i), zap.Error(err))
			}
			continue
		}
		log.Debug("Sundry debtor customer",
			zap.String("name", c.CustomerName),
			zap.String("type", c.CustomerType),
			zap.String("code", c.NaturalKey()),
		)
		customers = append(customers, *c)
	}
	log.Info("Parsed customers", zap.Int("nodes", len(nodes)), zap.Int("customers", len(customers)))
	return customers
}
