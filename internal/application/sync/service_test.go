package syncapp

import (
	"context"
	"errors"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tallysync/backend/internal/domain/partner"
	"github.com/tallysync/backend/internal/infrastructure/logger"
	"github.com/tallysync/backend/internal/infrastructure/tally"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(f *fakeFetcher, opts ...Option) (*Service, *fakeCustomerRepo, *fakeItemRepo) {
	customers := &fakeCustomerRepo{}
	items := &fakeItemRepo{}
	return NewService(f, customers, items, opts...), customers, items
}

func TestSyncCustomers_EndToEnd(t *testing.T) {
	f := &fakeFetcher{exports: map[tally.Kind][]byte{tally.KindCustomers: envelope(threeLedgers)}}
	svc, repo, _ := newTestService(f, WithCompany("Demo Co"))
	ctx := context.Background()

	first := svc.SyncCustomers(ctx)

	require.Nil(t, first.Failure)
	assert.Equal(t, tally.KindCustomers, first.Kind)
	assert.Equal(t, 1, first.Found)
	assert.Equal(t, Outcome{Saved: 1}, first.Outcome)
	assert.Equal(t, "tree", first.Decoder)
	assert.NotEmpty(t, first.RunID)
	assert.True(t, repo.keys["ZC-001"])

	second := svc.SyncCustomers(ctx)

	assert.Equal(t, Outcome{Duplicates: 1}, second.Outcome)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestDecodeExport_ThreeLedgers(t *testing.T) {
	p := DecodeExport(DefaultDecoderChain(), envelope(threeLedgers), tally.KindCustomers, zap.NewNop())

	require.Len(t, p.Customers, 1)
	c := p.Customers[0]
	assert.Equal(t, "Zeta Corp", c.CustomerName)
	assert.Equal(t, "9123456789", *c.MobileNumber)
	assert.Equal(t, "direct", c.CustomerType)
	assert.Equal(t, "direct", c.Role)
	assert.Equal(t, partner.DefaultState, c.State)
	assert.Equal(t, "ZC-001", c.NaturalKey())
	assert.Equal(t, 1, p.Found)
}

func TestSyncItems_DropsItemsWithoutCode(t *testing.T) {
	f := &fakeFetcher{exports: map[tally.Kind][]byte{tally.KindItems: envelope(twoItems)}}
	svc, _, repo := newTestService(f)

	res := svc.SyncItems(context.Background())

	assert.Equal(t, 2, res.Found)
	assert.Equal(t, Outcome{Saved: 1}, res.Outcome)
	assert.True(t, repo.keys["EL-6013-315"])
}

func TestSync_TransportFailure(t *testing.T) {
	refused := &url.Error{Op: "Post", URL: "http://localhost:9000", Err: syscall.ECONNREFUSED}
	f := &fakeFetcher{err: tally.ClassifyError(refused)}
	status := &memoryStatus{}
	svc, repo, _ := newTestService(f, WithCompany("Demo Co"), WithStatusStore(status))

	res := svc.SyncCustomers(context.Background())

	require.NotNil(t, res.Failure)
	assert.True(t, res.Failed())
	assert.Equal(t, tally.CauseConnectionRefused, res.Failure.Cause)
	assert.Equal(t, "ECONNREFUSED", res.Failure.Code)
	assert.Contains(t, res.Failure.Hint, "Demo Co")
	assert.Equal(t, 0, res.Found)
	assert.Equal(t, Outcome{Errors: 1}, res.Outcome)
	assert.Empty(t, repo.keys)
	assert.Len(t, f.calls, 1, "no retry")

	stored, err := status.Last(context.Background(), tally.KindCustomers)
	require.NoError(t, err)
	assert.Equal(t, res.RunID, stored.RunID)
}

func TestSync_UnclassifiedErrorIsTransport(t *testing.T) {
	svc, _, _ := newTestService(&fakeFetcher{err: errors.New("boom")})

	res := svc.SyncItems(context.Background())

	assert.Equal(t, tally.CauseTransport, res.Failure.Cause)
}

func TestSyncAll_MergesOutcomes(t *testing.T) {
	f := &fakeFetcher{exports: map[tally.Kind][]byte{
		tally.KindCustomers: envelope(threeLedgers),
		tally.KindItems:     envelope(twoItems),
	}}
	svc, _, _ := newTestService(f)

	all := svc.SyncAll(context.Background())

	assert.Equal(t, []tally.Kind{tally.KindCustomers, tally.KindItems}, f.calls)
	assert.Equal(t, 3, all.Found)
	assert.Equal(t, Outcome{Saved: 2}, all.Total)
	assert.False(t, all.Failed())
}

func TestSyncAll_FirstFailureDoesNotStopSecond(t *testing.T) {
	f := &failingFirst{fakeFetcher: fakeFetcher{exports: map[tally.Kind][]byte{tally.KindItems: envelope(twoItems)}}}
	svc := NewService(f, &fakeCustomerRepo{}, &fakeItemRepo{})

	all := svc.SyncAll(context.Background())

	assert.True(t, all.Customers.Failed())
	assert.False(t, all.Items.Failed())
	assert.Equal(t, Outcome{Saved: 1, Errors: 1}, all.Total)
	assert.True(t, all.Failed())
}

type failingFirst struct {
	fakeFetcher
}

func (f *failingFirst) FetchExport(ctx context.Context, kind tally.Kind) ([]byte, error) {
	if kind == tally.KindCustomers {
		return nil, tally.NewStatusError(500)
	}
	return f.fakeFetcher.FetchExport(ctx, kind)
}

func TestSync_DryRunDoesNotPersist(t *testing.T) {
	f := &fakeFetcher{exports: map[tally.Kind][]byte{tally.KindCustomers: envelope(threeLedgers)}}
	svc, repo, _ := newTestService(f, WithDryRun(true))

	res := svc.SyncCustomers(context.Background())

	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Found)
	assert.Equal(t, Outcome{}, res.Outcome)
	assert.Empty(t, repo.keys)
}

func TestSync_CapturesRawResponse(t *testing.T) {
	f := &fakeFetcher{exports: map[tally.Kind][]byte{tally.KindItems: envelope(twoItems)}}
	sink := &recordingSink{}
	svc, _, _ := newTestService(f, WithCapture(sink))

	res := svc.SyncItems(context.Background())

	assert.Equal(t, []string{"items-response"}, sink.labels)
	assert.Equal(t, "mem://items-response", res.Capture)
}

func TestSync_CaptureFailureDoesNotFailRun(t *testing.T) {
	f := &fakeFetcher{exports: map[tally.Kind][]byte{tally.KindItems: envelope(twoItems)}}
	svc, _, _ := newTestService(f, WithCapture(&recordingSink{err: errors.New("disk full")}))

	res := svc.SyncItems(context.Background())

	assert.Nil(t, res.Failure)
	assert.Equal(t, 1, res.Saved)
}

func TestSync_StatusStoreFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := &fakeFetcher{exports: map[tally.Kind][]byte{tally.KindItems: envelope(twoItems)}}
	svc, _, _ := newTestService(f, WithStatusStore(&memoryStatus{err: errors.New("redis down")}), WithLogger(zap.New(core)))

	res := svc.SyncItems(context.Background())

	assert.Equal(t, 1, res.Saved)
	assert.Equal(t, 1, logs.FilterMessage("Failed to store sync status").Len())
}

func TestSync_UsesContextLoggerWithRunID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	f := &fakeFetcher{exports: map[tally.Kind][]byte{tally.KindItems: envelope(twoItems)}}
	svc, _, _ := newTestService(f)
	ctx := logger.WithContext(context.Background(), zap.New(core))

	res := svc.SyncItems(ctx)

	finished := logs.FilterMessage("Sync finished").All()
	require.Len(t, finished, 1)
	fields := finished[0].ContextMap()
	assert.Equal(t, res.RunID, fields["run_id"])
	assert.Equal(t, "items", fields["kind"])
	assert.EqualValues(t, 1, fields["saved"])
}

func TestService_PingAndLastResults(t *testing.T) {
	status := &memoryStatus{}
	f := &fakeFetcher{exports: map[tally.Kind][]byte{tally.KindItems: envelope(twoItems)}}
	svc, _, _ := newTestService(f, WithStatusStore(status))
	ctx := context.Background()

	ping, failure := svc.Ping(ctx)
	require.Nil(t, failure)
	assert.Equal(t, 200, ping.Status)

	svc.SyncItems(ctx)
	last, err := svc.LastResults(ctx)
	require.NoError(t, err)
	assert.Contains(t, last, tally.KindItems)
	assert.NotContains(t, last, tally.KindCustomers)

	f.err = tally.NewStatusError(503)
	_, failure = svc.Ping(ctx)
	require.NotNil(t, failure)
	assert.Equal(t, "HTTP_503", failure.Code)
}
