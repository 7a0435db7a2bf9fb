package syncapp

import (
	"github.com/tallysync/backend/internal/domain/catalog"
	"github.com/tallysync/backend/internal/domain/partner"
	"github.com/tallysync/backend/internal/infrastructure/tally"
	"go.uber.org/zap"
)

// DecoderChain decodes with Primary and falls back to Fallback only when
// the primary strategy yields no parsed records
type DecoderChain struct {
	Primary  tally.Decoder
	Fallback tally.Decoder
}

// DefaultDecoderChain is the tree decoder backed by the pattern scanner
func DefaultDecoderChain() DecoderChain {
	return DecoderChain{Primary: tally.NewTreeDecoder(), Fallback: tally.NewRegexDecoder()}
}

type parseFunc[T any] func(nodes []tally.Node, log *zap.Logger) []T

// decodeRecords runs the chain and returns the records with the name of
// the decoder that produced them
func decodeRecords[T any](chain DecoderChain, raw []byte, kind tally.Kind, parse parseFunc[T], log *zap.Logger) ([]T, string) {
	records, name := decodeWith(chain.Primary, raw, kind, parse, log)
	if len(records) > 0 || chain.Fallback == nil {
		return records, name
	}

	log.Info("Primary decoder found no records, trying fallback",
		zap.String("primary", name),
		zap.String("fallback", chain.Fallback.Name()),
	)
	fallback, fname := decodeWith(chain.Fallback, raw, kind, parse, log)
	if len(fallback) == 0 {
		return fallback, name
	}
	return fallback, fname
}

func decodeWith[T any](d tally.Decoder, raw []byte, kind tally.Kind, parse parseFunc[T], log *zap.Logger) ([]T, string) {
	if d == nil {
		return nil, ""
	}
	nodes, err := d.Decode(raw, kind)
	if err != nil {
		// partial trees are still parsed
		log.Warn("Decoder reported an error", zap.String("decoder", d.Name()), zap.Int("nodes", len(nodes)), zap.Error(err))
	}
	log.Debug("Decoded export", zap.String("decoder", d.Name()), zap.Int("nodes", len(nodes)))
	return parse(nodes, log), d.Name()
}

// Preview is a decoded export that was not persisted
type Preview struct {
	Kind      tally.Kind                    `json:"kind"`
	Decoder   string                        `json:"decoder"`
	Found     int                           `json:"found"`
	Customers []partner.NormalizedCustomer  `json:"customers,omitempty"`
	Items     []catalog.NormalizedStockItem `json:"items,omitempty"`
}

// DecodeExport decodes and parses a saved export without touching the database
func DecodeExport(chain DecoderChain, raw []byte, kind tally.Kind, log *zap.Logger) Preview {
	p := Preview{Kind: kind}
	switch kind {
	case tally.KindCustomers:
		p.Customers, p.Decoder = decodeRecords(chain, raw, kind, tally.ParseCustomers, log)
		p.Found = len(p.Customers)
	case tally.KindItems:
		p.Items, p.Decoder = decodeRecords(chain, raw, kind, tally.ParseStockItems, log)
		p.Found = len(p.Items)
	}
	return p
}
