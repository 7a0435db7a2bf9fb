package syncapp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tallysync/backend/internal/domain/catalog"
	"github.com/tallysync/backend/internal/domain/partner"
	"github.com/tallysync/backend/internal/infrastructure/capture"
	"github.com/tallysync/backend/internal/infrastructure/logger"
	"github.com/tallysync/backend/internal/infrastructure/tally"
	"github.com/tallysync/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service runs customer and stock item syncs. Each run is a single pass:
// fetch, decode, parse, persist. Nothing is retried.
type Service struct {
	fetcher   tally.Fetcher
	company   string
	customers partner.CustomerRepository
	items     catalog.StockItemRepository
	decoders  DecoderChain
	sink      capture.Sink
	status    StatusStore
	metrics   *telemetry.SyncMetrics
	logger    *zap.Logger
	dryRun    bool
	now       func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithDecoders replaces the default tree-then-regex chain
func WithDecoders(chain DecoderChain) Option {
	return func(s *Service) {
		s.decoders = chain
	}
}

// WithCapture stores every raw response in sink
func WithCapture(sink capture.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithStatusStore records the latest result of each kind
func WithStatusStore(store StatusStore) Option {
	return func(s *Service) {
		s.status = store
	}
}

// WithMetrics records run counters
func WithMetrics(m *telemetry.SyncMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCompany sets the company named in operator hints
func WithCompany(company string) Option {
	return func(s *Service) {
		s.company = company
	}
}

// WithDryRun decodes and parses without writing to the database
func WithDryRun(dryRun bool) Option {
	return func(s *Service) {
		s.dryRun = dryRun
	}
}

// NewService creates a sync Service
func NewService(
	fetcher tally.Fetcher,
	customers partner.CustomerRepository,
	items catalog.StockItemRepository,
	opts ...Option,
) *Service {
	s := &Service{
		fetcher:   fetcher,
		customers: customers,
		items:     items,
		decoders:  DefaultDecoderChain(),
		sink:      capture.NopSink{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SyncCustomers imports the Sundry Debtors ledgers as customers
func (s *Service) SyncCustomers(ctx context.Context) Result {
	return run(ctx, s, tally.KindCustomers, tally.ParseCustomers, Inserter[partner.NormalizedCustomer](s.customers))
}

// SyncItems imports stock items
func (s *Service) SyncItems(ctx context.Context) Result {
	return run(ctx, s, tally.KindItems, tally.ParseStockItems, Inserter[catalog.NormalizedStockItem](s.items))
}

// SyncAll runs customers then items. A failed customers run does not stop
// the items run.
func (s *Service) SyncAll(ctx context.Context) AllResult {
	customers := s.SyncCustomers(ctx)
	items := s.SyncItems(ctx)
	return AllResult{
		Customers: customers,
		Items:     items,
		Found:     customers.Found + items.Found,
		Total:     customers.Outcome.Add(items.Outcome),
	}
}

// Sync dispatches to the run for kind
func (s *Service) Sync(ctx context.Context, kind tally.Kind) Result {
	if kind == tally.KindItems {
		return s.SyncItems(ctx)
	}
	return s.SyncCustomers(ctx)
}

// Ping tests the connection to Tally
func (s *Service) Ping(ctx context.Context) (*tally.PingResult, *Failure) {
	res, err := s.fetcher.Ping(ctx)
	if err != nil {
		return nil, s.failure(err)
	}
	return res, nil
}

// LastResults returns the stored result of each kind that has run
func (s *Service) LastResults(ctx context.Context) (map[tally.Kind]*Result, error) {
	out := make(map[tally.Kind]*Result, 2)
	if s.status == nil {
		return out, nil
	}
	for _, kind := range []tally.Kind{tally.KindCustomers, tally.KindItems} {
		r, err := s.status.Last(ctx, kind)
		if err != nil {
			return nil, err
		}
		if r != nil {
			out[kind] = r
		}
	}
	return out, nil
}

func run[T Record](ctx context.Context, s *Service, kind tally.Kind, parse parseFunc[T], repo Inserter[T]) (result Result) {
	result = Result{
		RunID:     uuid.NewString(),
		Kind:      kind,
		DryRun:    s.dryRun,
		StartedAt: s.now(),
	}

	ctx = logger.WithContext(ctx, logger.FromContextOr(ctx, s.logger).With(zap.String("kind", string(kind))))
	ctx = logger.WithRunID(ctx, result.RunID)
	ctx, span := telemetry.StartSpan(ctx, "sync.run", "kind", string(kind), "run_id", result.RunID)
	defer span.End()
	log := logger.L(ctx)
	log.Info("Sync started", zap.Bool("dry_run", s.dryRun))

	defer func() {
		result.Duration = time.Since(result.StartedAt)
		s.finish(ctx, result, log)
	}()

	raw, err := s.fetch(ctx, kind)
	if err != nil {
		result.Failure = s.failure(err)
		result.Errors = 1
		telemetry.RecordError(span, err)
		log.Error("Failed to fetch export from Tally",
			zap.String("cause", string(result.Failure.Cause)),
			zap.String("hint", result.Failure.Hint),
			zap.Error(err),
		)
		return result
	}

	if loc, err := s.sink.Save(ctx, string(kind), string(kind)+"-response", raw); err != nil {
		log.Warn("Failed to capture raw response", zap.Error(err))
	} else if loc != "" {
		result.Capture = loc
		log.Info("Raw response captured", zap.String("location", loc))
	}

	_, decodeSpan := telemetry.StartSpan(ctx, "sync.decode")
	records, decoder := decodeRecords(s.decoders, raw, kind, parse, log)
	telemetry.SetAttributes(decodeSpan, "decoder", decoder, "records", len(records))
	decodeSpan.End()

	result.Found = len(records)
	result.Decoder = decoder
	log.Info("Records decoded", zap.Int("found", result.Found), zap.String("decoder", decoder))

	if s.dryRun {
		telemetry.SetOK(span)
		return result
	}

	persistCtx, persistSpan := telemetry.StartSpan(ctx, "sync.persist")
	result.Outcome = Persist(persistCtx, repo, records, log)
	telemetry.SetAttributes(persistSpan, "saved", result.Saved, "duplicates", result.Duplicates, "errors", result.Errors)
	persistSpan.End()

	telemetry.SetOK(span)
	return result
}

func (s *Service) fetch(ctx context.Context, kind tally.Kind) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, "sync.fetch", "kind", string(kind))
	defer span.End()

	raw, err := s.fetcher.FetchExport(ctx, kind)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "bytes", len(raw))
	return raw, nil
}

func (s *Service) failure(err error) *Failure {
	te := tally.ClassifyError(err)
	return &Failure{
		Cause:   te.Cause,
		Code:    te.Code(),
		Message: te.Error(),
		Hint:    te.Hint(s.company),
	}
}

func (s *Service) finish(ctx context.Context, result Result, log *zap.Logger) {
	rec := telemetry.SyncRun{
		Kind:       string(result.Kind),
		Decoder:    result.Decoder,
		Found:      result.Found,
		Saved:      result.Saved,
		Duplicates: result.Duplicates,
		Errors:     result.Errors,
		Duration:   result.Duration,
	}
	if result.Failure != nil {
		rec.Cause = string(result.Failure.Cause)
	}
	s.metrics.RecordRun(ctx, rec)

	if s.status != nil {
		if err := s.status.Save(ctx, result); err != nil {
			log.Warn("Failed to store sync status", zap.Error(err))
		}
	}

	log.Info("Sync finished",
		zap.Int("found", result.Found),
		zap.Int("saved", result.Saved),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("errors", result.Errors),
		zap.Duration("duration", result.Duration),
	)
}
