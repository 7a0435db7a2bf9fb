package tally

import (
	"html"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ledgerBlock    = regexp.MustCompile(`<LEDGER[\s\S]*?</LEDGER>`)
	stockItemBlock = regexp.MustCompile(`<STOCKITEM[\s\S]*?</STOCKITEM>`)

	productCategoryPattern = regexp.MustCompile(`<UDF:PRODUCTCATEGORY\.LIST[\s\S]*?<UDF:PRODUCTCATEGORY[^>]*>(.*?)</UDF:PRODUCTCATEGORY>`)
	mailingNameListPattern = regexp.MustCompile(`<MAILINGNAME\.LIST[\s\S]*?<MAILINGNAME>(.*?)</MAILINGNAME>`)
	hsnBlockPattern        = regexp.MustCompile(`<HSNDETAILS\.LIST>[\s\S]*?</HSNDETAILS\.LIST>`)

	fieldPatterns = compileFieldPatterns(
		"NAME", "PARENT", "LEDGERMOBILE", "EMAIL", "STATE",
		"BASEUNITS", "MAILINGNAME", "OPENINGRATE", "GSTRATE",
		"APPLICABLEFROM", "HSNCODE",
	)
)

func compileFieldPatterns(tags ...string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(tags))
	for _, tag := range tags {
		q := regexp.QuoteMeta(tag)
		out[tag] = regexp.MustCompile(`<` + q + `>(.*?)</` + q + `>`)
	}
	return out
}

// RegexDecoder is the degraded strategy: it finds record boundaries and
// fields by text patterns, for exports the tree decoder cannot walk.
// It builds the same Node shapes so the record parsers apply unchanged.
type RegexDecoder struct{}

// NewRegexDecoder creates the pattern-based decoder
func NewRegexDecoder() *RegexDecoder {
	return &RegexDecoder{}
}

// Name implements Decoder
func (d *RegexDecoder) Name() string {
	return "regex"
}

// Decode implements Decoder; it never fails on malformed input
func (d *RegexDecoder) Decode(raw []byte, kind Kind) ([]Node, error) {
	utf8Raw, err := ToUTF8(raw)
	if err != nil {
		return nil, err
	}
	text := string(utf8Raw)

	if kind == KindItems {
		blocks := stockItemBlock.FindAllString(text, -1)
		nodes := make([]Node, 0, len(blocks))
		for _, b := range blocks {
			nodes = append(nodes, stockItemFromText(b))
		}
		return nodes, nil
	}

	blocks := ledgerBlock.FindAllString(text, -1)
	nodes := make([]Node, 0, len(blocks))
	for _, b := range blocks {
		nodes = append(nodes, ledgerFromText(b))
	}
	return nodes, nil
}

func ledgerFromText(block string) Node {
	n := NewElement()

	// first NAME is the display name, the second (if any) the code
	names := matchAll(block, "NAME")
	if len(names) > 2 {
		names = names[:2]
	}
	for _, name := range names {
		n.Add("NAME", Scalar(name))
	}
	addFirst(&n, block, "PARENT")
	addFirst(&n, block, "LEDGERMOBILE")
	addFirst(&n, block, "EMAIL")
	addFirst(&n, block, "STATE")

	if m := productCategoryPattern.FindStringSubmatch(block); m != nil {
		list := NewElement()
		list.Add("UDF:PRODUCTCATEGORY", Scalar(unescape(m[1])))
		n.Add("UDF:PRODUCTCATEGORY.LIST", list)
	}
	return n
}

func stockItemFromText(block string) Node {
	n := NewElement()

	if names := matchAll(block, "NAME"); len(names) > 0 {
		n.Add("NAME", Scalar(names[0]))
	}
	addFirst(&n, block, "PARENT")
	addFirst(&n, block, "BASEUNITS")
	addFirst(&n, block, "OPENINGRATE")

	if m := mailingNameListPattern.FindStringSubmatch(block); m != nil {
		list := NewElement()
		list.Add("MAILINGNAME", Scalar(unescape(m[1])))
		n.Add("MAILINGNAME.LIST", list)
	} else {
		addFirst(&n, block, "MAILINGNAME")
	}

	// the pattern strategy has no RATEOFVAT; derive it from the highest
	// positive GST rate the item lists, or 0 when rates are all zero
	if rates := matchAll(block, "GSTRATE"); len(rates) > 0 {
		n.Add("RATEOFVAT", Scalar(maxPositiveRate(rates).String()))
	}

	for _, hsnBlock := range hsnBlockPattern.FindAllString(block, -1) {
		details := NewElement()
		addFirst(&details, hsnBlock, "APPLICABLEFROM")
		addFirst(&details, hsnBlock, "HSNCODE")
		n.Add("HSNDETAILS.LIST", details)
	}
	return n
}

func maxPositiveRate(values []string) decimal.Decimal {
	highest := decimal.Zero
	for _, v := range values {
		rate, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil || !rate.IsPositive() {
			continue
		}
		if rate.GreaterThan(highest) {
			highest = rate
		}
	}
	return highest
}

func matchAll(block, tag string) []string {
	matches := fieldPatterns[tag].FindAllStringSubmatch(block, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, unescape(m[1]))
	}
	return out
}

func addFirst(n *Node, block, tag string) {
	if m := fieldPatterns[tag].FindStringSubmatch(block); m != nil {
		n.Add(tag, Scalar(unescape(m[1])))
	}
}

func unescape(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
