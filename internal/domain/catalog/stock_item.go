package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tallysync/backend/internal/domain/shared"
)

// DefaultParentGroup is used when a stock item has no stock group
const DefaultParentGroup = "General"

// leadingNumber matches the numeric prefix of values like "12.50/Nos"
var leadingNumber = regexp.MustCompile(`^([\d.]+)`)

// NormalizedStockItem is a catalog record produced from one ERP stock item
type NormalizedStockItem struct {
	ItemCode      *string  `json:"item_code"`
	StockItemName string   `json:"stock_item_name"`
	ParentGroup   string   `json:"parent_group"`
	UOM           *string  `json:"uom"`
	GST           *string  `json:"gst"`
	HSN           *string  `json:"hsn"`
	Rate          *float64 `json:"rate"`
}

// NewNormalizedStockItem builds a stock item, applying the import defaults
func NewNormalizedStockItem(name, parentGroup string, code, uom, gst, hsn *string, rate *float64) (*NormalizedStockItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ITEM_NAME", "stock item name cannot be empty")
	}
	parentGroup = strings.TrimSpace(parentGroup)
	if parentGroup == "" {
		parentGroup = DefaultParentGroup
	}

	return &NormalizedStockItem{
		ItemCode:      trimmedOrNil(code),
		StockItemName: name,
		ParentGroup:   parentGroup,
		UOM:           trimmedOrNil(uom),
		GST:           trimmedOrNil(gst),
		HSN:           trimmedOrNil(hsn),
		Rate:          rate,
	}, nil
}

// NaturalKey returns the trimmed item code, or "" when the item has none
func (i NormalizedStockItem) NaturalKey() string {
	if i.ItemCode == nil {
		return ""
	}
	return strings.TrimSpace(*i.ItemCode)
}

// DisplayName is used in log lines
func (i NormalizedStockItem) DisplayName() string {
	return i.StockItemName
}

// ParseRate reads the leading numeric part of an opening rate.
// "12.50/Nos" gives 12.5; values without a numeric prefix give nil.
func ParseRate(raw string) *float64 {
	m := leadingNumber.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		// "1.2.3" matches the prefix pattern; keep the longest parseable head
		v, err = strconv.ParseFloat(firstDecimal(m[1]), 64)
		if err != nil {
			return nil
		}
	}
	return &v
}

// firstDecimal cuts "1.2.3" down to "1.2"
func firstDecimal(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if j := strings.IndexByte(s[i+1:], '.'); j >= 0 {
			return s[:i+1+j]
		}
	}
	return s
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
