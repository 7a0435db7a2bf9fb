package tally

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tallysync/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// ParseStockItem converts one STOCKITEM node. Items without a name are
// rejected; items without a code are kept and dropped at persistence.
func ParseStockItem(n Node) (*catalog.NormalizedStockItem, error) {
	name, _ := n.FirstText("NAME")
	if name == "" {
		return nil, errors.New("stock item without name")
	}

	parent, _ := n.FirstText("PARENT")

	var uom, gst, hsn *string
	if v, ok := n.FirstText("BASEUNITS"); ok {
		uom = &v
	}
	if v, ok := n.FirstText("RATEOFVAT"); ok {
		gst = &v
	}
	if v, ok := latestHSN(n); ok {
		hsn = &v
	}

	var rate *float64
	if v, ok := n.FirstText("OPENINGRATE"); ok {
		rate = catalog.ParseRate(v)
	}

	var code *string
	if v, ok := itemCode(n); ok {
		code = &v
	}

	return catalog.NewNormalizedStockItem(name, parent, code, uom, gst, hsn, rate)
}

// itemCode looks for the mailing name: first in MAILINGNAME.LIST, then
// anywhere in the node, then at the root.
func itemCode(n Node) (string, bool) {
	if list, ok := n.First("MAILINGNAME.LIST"); ok {
		if v, ok := list.FirstText("MAILINGNAME"); ok {
			return v, true
		}
	}
	if v, ok := n.FindFirst("MAILINGNAME"); ok {
		return v, true
	}
	return n.FirstText("MAILINGNAME")
}

// latestHSN picks the HSN code with the most recent APPLICABLEFROM date
// (yyyymmdd). Entries without a code are ignored; later ties win.
func latestHSN(n Node) (string, bool) {
	var (
		code   string
		latest int64 = -1
	)
	for _, details := range n.Field("HSNDETAILS.LIST") {
		c, ok := details.FirstText("HSNCODE")
		if !ok {
			continue
		}
		from := int64(0)
		if raw, ok := details.FirstText("APPLICABLEFROM"); ok {
			from = leadingInt(raw)
		}
		if from >= latest {
			latest, code = from, c
		}
	}
	return code, code != ""
}

func leadingInt(s string) int64 {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseStockItems converts every STOCKITEM node. A node that fails to
// parse is logged and dropped; the batch continues.
func ParseStockItems(nodes []Node, log *zap.Logger) []catalog.NormalizedStockItem {
	items := make([]catalog.NormalizedStockItem, 0, len(nodes))
	withCode := 0
	for i, n := range nodes {
		item, err := safeParse(func() (*catalog.NormalizedStockItem, error) { return ParseStockItem(n) })
		if err != nil {
			log.Warn("Error processing stock item", zap.Int("index", i), zap.Error(err))
			continue
		}
		if item.NaturalKey() != "" {
			withCode++
		}
		items = append(items, *item)
	}
	log.Info("Parsed stock items",
		zap.Int("nodes", len(nodes)),
		zap.Int("items", len(items)),
		zap.Int("with_code", withCode),
	)
	return items
}

// safeParse isolates a single record: a panic inside the parser becomes
// an error for that record only.
func safeParse[T any](parse func() (*T, error)) (out *T, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("malformed record: %v", r)
		}
	}()
	return parse()
}

func isSkip(err error) bool {
	return errors.Is(err, ErrLedgerSkipped)
}
