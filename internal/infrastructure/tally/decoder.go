package tally

import "fmt"

// Kind selects which master records an export carries
type Kind string

const (
	KindCustomers Kind = "customers"
	KindItems     Kind = "items"
)

// NodeTag is the element name of one record of the kind
func (k Kind) NodeTag() string {
	if k == KindItems {
		return "STOCKITEM"
	}
	return "LEDGER"
}

// Valid reports whether k names a known kind
func (k Kind) Valid() bool {
	return k == KindCustomers || k == KindItems
}

// ParseKind converts user input to a Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCustomers, "customer", "ledgers":
		return KindCustomers, nil
	case KindItems, "item", "stockitems":
		return KindItems, nil
	}
	return "", fmt.Errorf("unknown export kind %q", s)
}

// envelopePath leads from the document root to the message containers
var envelopePath = []string{"ENVELOPE", "BODY", "IMPORTDATA", "REQUESTDATA", "TALLYMESSAGE"}

// Decoder extracts the record nodes of one kind from an export document,
// in document order. A document without the expected sections yields no
// nodes and no error.
type Decoder interface {
	Name() string
	Decode(raw []byte, kind Kind) ([]Node, error)
}
