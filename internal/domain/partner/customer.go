package partner

import (
	"strings"

	"github.com/tallysync/backend/internal/domain/shared"
)

// CustomerStatus represents the status of an imported customer account
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive" // Imported accounts start here until they sign up
)

const (
	// DefaultState is stored when the ledger has no usable state
	DefaultState = "not_applicable"
	// DefaultCustomerType is used when the ledger has no product category
	DefaultCustomerType = "direct"
	// SundryDebtorsGroup is the account group that holds trade customers
	SundryDebtorsGroup = "Sundry Debtors"
)

// NormalizedCustomer is a customer record produced from one ERP ledger.
// It is created per decode pass and never mutated after creation.
type NormalizedCustomer struct {
	CustomerCode *string `json:"customer_code"`
	CustomerName string  `json:"customer_name"`
	Email        *string `json:"email"`
	MobileNumber *string `json:"mobile_number"`
	State        string  `json:"state"`
	CustomerType string  `json:"customer_type"`
	Role         string  `json:"role"`
	ParentGroup  string  `json:"parent_group"`
}

// NewNormalizedCustomer builds a customer, applying the import defaults.
// role always mirrors customerType.
func NewNormalizedCustomer(name string, code, email, mobile *string, state, customerType, parentGroup string) (*NormalizedCustomer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "customer name cannot be empty")
	}

	state = strings.TrimSpace(state)
	if state == "" {
		state = DefaultState
	}
	customerType = strings.ToLower(strings.TrimSpace(customerType))
	if customerType == "" {
		customerType = DefaultCustomerType
	}

	return &NormalizedCustomer{
		CustomerCode: trimmedOrNil(code),
		CustomerName: name,
		Email:        trimmedOrNil(email),
		MobileNumber: mobile,
		State:        state,
		CustomerType: customerType,
		Role:         customerType,
		ParentGroup:  parentGroup,
	}, nil
}

// NaturalKey returns the trimmed customer code, or "" when the record has none
func (c NormalizedCustomer) NaturalKey() string {
	if c.CustomerCode == nil {
		return ""
	}
	return strings.TrimSpace(*c.CustomerCode)
}

// DisplayName is used in log lines
func (c NormalizedCustomer) DisplayName() string {
	return c.CustomerName
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
