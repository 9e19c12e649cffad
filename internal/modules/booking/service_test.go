// README: Booking service tests (mock ids, spend guard, degraded and strict settlement).
package booking

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"concierge/internal/config"
)

type failingSettlement struct{ calls int }

func (f *failingSettlement) Submit(context.Context, SettlementRequest) (*SettlementResult, error) {
	f.calls++
	return nil, errors.New("rpc unreachable")
}

func testConfig() config.BookingConfig {
	return config.BookingConfig{MaxSpendUSD: 500, TimeoutSeconds: 2}
}

func sampleRequest() Request {
	return Request{
		ThreadID:    "t-1",
		Description: "Hotel Kotor Bay - Suite",
		Destination: "Kotor",
		USDTotal:    337.5,
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusSubmitted, true},
		{StatusPending, StatusMock, true},
		{StatusPending, StatusMockFallback, true},
		{StatusPending, StatusFailed, true},
		{StatusSubmitted, StatusFailed, false},
		{StatusMock, StatusPending, false},
		{StatusFailed, StatusSubmitted, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestMockTxIDDeterministic(t *testing.T) {
	a := MockTxID("Hotel A - Suite", 300, "Kotor")
	b := MockTxID("Hotel A - Suite", 300, "Kotor")
	c := MockTxID("Hotel A - Suite", 300.01, "Kotor")
	if a != b {
		t.Fatalf("mock tx not deterministic: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("different totals should give different tx ids")
	}
	if !regexp.MustCompile(`^0xMOCK_[0-9a-f]{16}$`).MatchString(a) {
		t.Fatalf("unexpected tx format %q", a)
	}
	ref := ReferenceFor(a)
	if !regexp.MustCompile(`^WRD-[0-9A-F]{8}$`).MatchString(ref) {
		t.Fatalf("unexpected reference format %q", ref)
	}
	if ReferenceFor("0xabc") != "WRD-0XABC" {
		t.Fatalf("short tx reference = %q", ReferenceFor("0xabc"))
	}
}

func TestSubmitMockWhenNoSettlement(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil, testConfig(), zap.NewNop())

	b, err := svc.Submit(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if b.Status != StatusMock || b.Degraded {
		t.Fatalf("status = %s degraded = %v", b.Status, b.Degraded)
	}
	if b.TxHash != MockTxID("Hotel Kotor Bay - Suite", 337.5, "Kotor") {
		t.Fatalf("tx = %s", b.TxHash)
	}
	stored, err := store.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Status != StatusMock || stored.Reference != b.Reference {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestSubmitSpendGuard(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil, testConfig(), zap.NewNop())
	req := sampleRequest()
	req.USDTotal = 500.01

	_, err := svc.Submit(context.Background(), req)
	if !errors.Is(err, ErrSpendLimit) {
		t.Fatalf("err = %v, want ErrSpendLimit", err)
	}
	if store.Len() != 0 {
		t.Fatalf("rejected booking should not be stored")
	}

	req.USDTotal = 500
	if _, err := svc.Submit(context.Background(), req); err != nil {
		t.Fatalf("total at the limit should pass: %v", err)
	}
}

func TestSubmitBadRequest(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, testConfig(), zap.NewNop())
	if _, err := svc.Submit(context.Background(), Request{Description: "x"}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("err = %v", err)
	}
}

func TestSubmitSettlementFailureDegrades(t *testing.T) {
	settle := &failingSettlement{}
	svc := NewService(NewMemoryStore(), settle, testConfig(), zap.NewNop())

	b, err := svc.Submit(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("degraded submit should not fail: %v", err)
	}
	if settle.calls != 1 {
		t.Fatalf("settlement calls = %d", settle.calls)
	}
	if !b.Degraded || b.Status != StatusMockFallback {
		t.Fatalf("booking = %+v", b)
	}
	if b.TxHash == "" || b.Reference == "" {
		t.Fatalf("fallback booking missing ids: %+v", b)
	}
}

func TestSubmitStrictSettlementSurfacesFailure(t *testing.T) {
	cfg := testConfig()
	cfg.StrictSettlement = true
	store := NewMemoryStore()
	svc := NewService(store, &failingSettlement{}, cfg, zap.NewNop())

	b, err := svc.Submit(context.Background(), sampleRequest())
	if !errors.Is(err, ErrBookingFailed) {
		t.Fatalf("err = %v, want ErrBookingFailed", err)
	}
	stored, gerr := store.Get(context.Background(), b.ID)
	if gerr != nil {
		t.Fatalf("get: %v", gerr)
	}
	if stored.Status != StatusFailed {
		t.Fatalf("stored status = %s", stored.Status)
	}
}

// flakyStore wraps MemoryStore and fails the configured operations.
type flakyStore struct {
	*MemoryStore
	createErr, updateErr error
}

func (f *flakyStore) Create(ctx context.Context, b *Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.MemoryStore.Create(ctx, b)
}

func (f *flakyStore) UpdateStatus(ctx context.Context, b *Booking, from Status) (bool, error) {
	if f.updateErr != nil {
		return false, f.updateErr
	}
	return f.MemoryStore.UpdateStatus(ctx, b, from)
}

type okSettlement struct{ calls int }

func (o *okSettlement) Submit(context.Context, SettlementRequest) (*SettlementResult, error) {
	o.calls++
	return &SettlementResult{ReferenceID: "WRD-00C0FFEE", TxID: "0xabc00c0ffee"}, nil
}

func TestSubmitStoreFailuresKeepSettledBooking(t *testing.T) {
	cases := []struct {
		name  string
		store *flakyStore
	}{
		{"update fails", &flakyStore{MemoryStore: NewMemoryStore(), updateErr: errors.New("connection reset")}},
		{"create fails", &flakyStore{MemoryStore: NewMemoryStore(), createErr: errors.New("disk full")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settle := &okSettlement{}
			svc := NewService(tc.store, settle, testConfig(), zap.NewNop())

			b, err := svc.Submit(context.Background(), sampleRequest())
			if err != nil {
				t.Fatalf("settled booking must not fail on store errors: %v", err)
			}
			if settle.calls != 1 {
				t.Fatalf("settlement calls = %d", settle.calls)
			}
			if b.Status != StatusSubmitted || b.Reference != "WRD-00C0FFEE" || b.TxHash != "0xabc00c0ffee" || b.Degraded {
				t.Fatalf("booking = %+v", b)
			}
		})
	}
}

func TestSubmitCreateFailureStillMocks(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(), createErr: errors.New("disk full")}
	svc := NewService(store, nil, testConfig(), zap.NewNop())

	b, err := svc.Submit(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if b.Status != StatusMock || b.TxHash != MockTxID("Hotel Kotor Bay - Suite", 337.5, "Kotor") {
		t.Fatalf("booking = %+v", b)
	}
	if store.Len() != 0 {
		t.Fatalf("nothing should be stored when create fails")
	}
}

func TestHTTPSettlement(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tx_hash":"0x12ab34cd56ef7890","status":"submitted"}`))
	}))
	defer srv.Close()

	svc := NewService(NewMemoryStore(), NewHTTPSettlement(srv.URL, "secret"), testConfig(), zap.NewNop())
	b, err := svc.Submit(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if b.Status != StatusSubmitted || b.TxHash != "0x12ab34cd56ef7890" || b.Reference != "WRD-56EF7890" {
		t.Fatalf("booking = %+v", b)
	}
}

func TestHTTPSettlementRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "insufficient funds", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	_, err := NewHTTPSettlement(srv.URL, "").Submit(context.Background(), SettlementRequest{Description: "x", USDTotal: 1})
	if err == nil {
		t.Fatal("expected error for 402")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "bookings.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	store := NewSQLiteStore(db)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := NewService(store, &failingSettlement{}, testConfig(), zap.NewNop())
	b, err := svc.Submit(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	got, err := store.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusMockFallback || !got.Degraded || got.TxHash != b.TxHash {
		t.Fatalf("stored = %+v", got)
	}
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}
