package pending

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ignite/listflow/internal/pkg/logger"
)

// mockRepo is an in-memory repository for testing.
type mockRepo struct {
	mu      sync.Mutex
	records map[string]*Record
	// forceDuplicate makes every Insert collide, for exhaustion tests.
	forceDuplicate bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[string]*Record)}
}

func (m *mockRepo) Insert(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.forceDuplicate {
		return ErrDuplicateToken
	}
	if _, exists := m.records[rec.Token]; exists {
		return ErrDuplicateToken
	}
	cp := *rec
	cp.Fields = make(map[string]string, len(rec.Fields))
	for k, v := range rec.Fields {
		cp.Fields[k] = v
	}
	m.records[rec.Token] = &cp
	return nil
}

func (m *mockRepo) Get(_ context.Context, token string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[token], nil
}

func (m *mockRepo) Take(_ context.Context, token string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[token]
	if !ok {
		return nil, nil
	}
	delete(m.records, token)
	return rec, nil
}

func (m *mockRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for token, rec := range m.records {
		if rec.ExpiresAt.Before(now) {
			delete(m.records, token)
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) Find(_ context.Context, f Filter) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Record
	for _, rec := range m.records {
		if f.Type != "" && rec.Type != f.Type {
			continue
		}
		if f.ListID != "" && rec.ListID != f.ListID {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

func testService(repo Repository) *Service {
	return NewService(repo, Config{}, logger.New(&bytes.Buffer{}, logger.ERROR))
}

func TestAdd_MintsDistinctTokens(t *testing.T) {
	svc := testService(newMockRepo())
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := svc.Add(ctx, map[string]any{"type": "re-enable"}, 0)
		if err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
		if len(token) != 40 {
			t.Fatalf("token length = %d, want 40 hex chars", len(token))
		}
		if seen[token] {
			t.Fatalf("duplicate token minted: %s", token)
		}
		seen[token] = true
	}

	n, _ := svc.Count(ctx)
	if n != 50 {
		t.Errorf("Count = %d, want 50", n)
	}
}

func TestAdd_MissingType_Fails(t *testing.T) {
	svc := testService(newMockRepo())

	_, err := svc.Add(context.Background(), map[string]any{"member": "a@example.com"}, 0)
	if !errors.Is(err, ErrMissingType) {
		t.Errorf("err = %v, want ErrMissingType", err)
	}
}

func TestAdd_ExhaustsAfterBoundedRetries(t *testing.T) {
	repo := newMockRepo()
	repo.forceDuplicate = true
	svc := testService(repo)

	_, err := svc.Add(context.Background(), map[string]any{"type": "re-enable"}, 0)
	if !errors.Is(err, ErrTokenExhausted) {
		t.Fatalf("err = %v, want ErrTokenExhausted", err)
	}
}

func TestConfirm_OneShotWithExpunge(t *testing.T) {
	svc := testService(newMockRepo())
	ctx := context.Background()

	token, err := svc.Add(ctx, map[string]any{
		"type":    "re-enable",
		"list_id": "test.example.com",
		"member":  "anne@example.org",
	}, 0)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	fields, err := svc.Confirm(ctx, token, true)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if fields == nil {
		t.Fatal("first Confirm returned nil fields")
	}
	if fields["type"] != "re-enable" {
		t.Errorf(`fields["type"] = %v, want "re-enable"`, fields["type"])
	}
	if fields["member"] != "anne@example.org" {
		t.Errorf(`fields["member"] = %v, want member address`, fields["member"])
	}

	again, err := svc.Confirm(ctx, token, true)
	if err != nil {
		t.Fatalf("second Confirm: %v", err)
	}
	if again != nil {
		t.Error("second Confirm on an expunged token should return nil")
	}
}

func TestConfirm_WithoutExpunge_LeavesRecord(t *testing.T) {
	svc := testService(newMockRepo())
	ctx := context.Background()

	token, _ := svc.Add(ctx, map[string]any{"type": "subscription-confirm"}, 0)

	for i := 0; i < 2; i++ {
		fields, err := svc.Confirm(ctx, token, false)
		if err != nil {
			t.Fatalf("Confirm #%d: %v", i, err)
		}
		if fields == nil {
			t.Fatalf("Confirm #%d returned nil for a live record", i)
		}
	}
}

func TestConfirm_UnknownToken_SoftMiss(t *testing.T) {
	svc := testService(newMockRepo())

	fields, err := svc.Confirm(context.Background(), "deadbeef", true)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if fields != nil {
		t.Error("unknown token should yield nil fields, not an error")
	}
}

func TestConfirm_RoundTripsBinaryAndStructuredValues(t *testing.T) {
	svc := testService(newMockRepo())
	ctx := context.Background()

	raw := []byte{0x00, 0xff, 0x10, 0x80}
	pairs := [][2]string{{"header", "X-Original-To"}, {"value", "list@example.com"}}
	token, err := svc.Add(ctx, map[string]any{
		"type":    "held-message",
		"payload": raw,
		"headers": pairs,
	}, 0)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	fields, err := svc.Confirm(ctx, token, true)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	got, ok := fields["payload"].([]byte)
	if !ok || !bytes.Equal(got, raw) {
		t.Errorf("payload = %#v, want original bytes", fields["payload"])
	}
	gotPairs, ok := fields["headers"].([][2]string)
	if !ok || len(gotPairs) != 2 || gotPairs[0] != pairs[0] || gotPairs[1] != pairs[1] {
		t.Errorf("headers = %#v, want original tuples", fields["headers"])
	}
}

func TestEvict_RemovesOnlyExpired(t *testing.T) {
	repo := newMockRepo()
	svc := testService(repo)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	expired, _ := svc.Add(ctx, map[string]any{"type": "re-enable"}, time.Hour)
	live, _ := svc.Add(ctx, map[string]any{"type": "re-enable"}, 48*time.Hour)

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	if err := svc.Evict(ctx); err != nil {
		t.Fatalf("Evict: %v", err)
	}

	if fields, _ := svc.Confirm(ctx, expired, false); fields != nil {
		t.Error("expired record survived eviction")
	}
	if fields, _ := svc.Confirm(ctx, live, false); fields == nil {
		t.Error("live record was evicted")
	}
}

func TestFind_FiltersByTypeAndList(t *testing.T) {
	svc := testService(newMockRepo())
	ctx := context.Background()

	t1, _ := svc.Add(ctx, map[string]any{"type": "re-enable", "list_id": "alpha.example.com"}, 0)
	_, _ = svc.Add(ctx, map[string]any{"type": "re-enable", "list_id": "beta.example.com"}, 0)
	_, _ = svc.Add(ctx, map[string]any{"type": "subscription-confirm", "list_id": "alpha.example.com"}, 0)

	found, err := svc.Find(ctx, Filter{Type: "re-enable", ListID: "alpha.example.com"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) != 1 || found[0].Token != t1 {
		t.Fatalf("Find returned %d records, want exactly the alpha re-enable", len(found))
	}
	if found[0].Fields["list_id"] != "alpha.example.com" {
		t.Errorf("list_id = %v", found[0].Fields["list_id"])
	}

	all, _ := svc.Find(ctx, Filter{})
	if len(all) != 3 {
		t.Errorf("unfiltered Find returned %d records, want 3", len(all))
	}
}

func TestFind_DoesNotConsume(t *testing.T) {
	svc := testService(newMockRepo())
	ctx := context.Background()

	_, _ = svc.Add(ctx, map[string]any{"type": "re-enable"}, 0)
	_, _ = svc.Find(ctx, Filter{Type: "re-enable"})

	n, _ := svc.Count(ctx)
	if n != 1 {
		t.Errorf("Count after Find = %d, want 1", n)
	}
}
