package syncapp

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tallysync/backend/internal/domain/catalog"
	"github.com/tallysync/backend/internal/domain/partner"
	"github.com/tallysync/backend/internal/infrastructure/tally"
)

type fakeFetcher struct {
	exports map[tally.Kind][]byte
	err     error
	calls   []tally.Kind
}

func (f *fakeFetcher) FetchExport(_ context.Context, kind tally.Kind) ([]byte, error) {
	f.calls = append(f.calls, kind)
	if f.err != nil {
		return nil, f.err
	}
	return f.exports[kind], nil
}

func (f *fakeFetcher) Ping(context.Context) (*tally.PingResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &tally.PingResult{Status: 200, DataLength: 10}, nil
}

// keyStore is an in-memory natural-key table
type keyStore struct {
	mu     sync.Mutex
	keys   map[string]bool
	failOn string
}

func (s *keyStore) insert(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys == nil {
		s.keys = map[string]bool{}
	}
	if key == s.failOn {
		return false, errors.New("value too long for column")
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

type fakeCustomerRepo struct{ keyStore }

func (r *fakeCustomerRepo) InsertIfAbsent(_ context.Context, c partner.NormalizedCustomer) (bool, error) {
	return r.insert(c.NaturalKey())
}

func (r *fakeCustomerRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	return r.keys[code], nil
}

func (r *fakeCustomerRepo) Count(context.Context) (int64, error) {
	return int64(len(r.keys)), nil
}

type fakeItemRepo struct{ keyStore }

func (r *fakeItemRepo) InsertIfAbsent(_ context.Context, i catalog.NormalizedStockItem) (bool, error) {
	return r.insert(i.NaturalKey())
}

func (r *fakeItemRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	return r.keys[code], nil
}

func (r *fakeItemRepo) Count(context.Context) (int64, error) {
	return int64(len(r.keys)), nil
}

type memoryStatus struct {
	results map[tally.Kind]Result
	err     error
}

func (m *memoryStatus) Save(_ context.Context, r Result) error {
	if m.err != nil {
		return m.err
	}
	if m.results == nil {
		m.results = map[tally.Kind]Result{}
	}
	m.results[r.Kind] = r
	return nil
}

func (m *memoryStatus) Last(_ context.Context, kind tally.Kind) (*Result, error) {
	r, ok := m.results[kind]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

type recordingSink struct {
	labels []string
	err    error
}

func (s *recordingSink) Save(_ context.Context, _, label string, _ []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.labels = append(s.labels, label)
	return "mem://" + label, nil
}

func envelope(messages ...string) []byte {
	var b strings.Builder
	b.WriteString("<ENVELOPE><BODY><IMPORTDATA><REQUESTDATA>")
	for _, m := range messages {
		b.WriteString(`<TALLYMESSAGE xmlns:UDF="TallyUDF">` + m + "</TALLYMESSAGE>")
	}
	b.WriteString("</REQUESTDATA></IMPORTDATA></BODY></ENVELOPE>")
	return []byte(b.String())
}

const threeLedgers = `<LEDGER NAME="Cash"><PARENT>Cash</PARENT><NAME>Cash</NAME></LEDGER>` +
	`<LEDGER NAME="Zeta Corp"><PARENT>Sundry Debtors</PARENT><LEDGERMOBILE>09123456789</LEDGERMOBILE><NAME>Zeta Corp</NAME><NAME>ZC-001</NAME></LEDGER>` +
	`<LEDGER NAME="Acme Supplies"><PARENT>Sundry Creditors</PARENT><NAME>Acme Supplies</NAME><NAME>AS-900</NAME></LEDGER>`

const twoItems = `<STOCKITEM NAME="Electrode 3.15mm"><NAME>Electrode 3.15mm</NAME><PARENT>Electrodes</PARENT>` +
	`<MAILINGNAME.LIST><MAILINGNAME>EL-6013-315</MAILINGNAME></MAILINGNAME.LIST><BASEUNITS>Nos</BASEUNITS><OPENINGRATE>412.50/Nos</OPENINGRATE></STOCKITEM>` +
	`<STOCKITEM NAME="Sample Kit"><NAME>Sample Kit</NAME></STOCKITEM>`
