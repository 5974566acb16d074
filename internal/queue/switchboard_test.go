package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/listflow/internal/domain"
)

func testSwitchboard(t *testing.T) *Switchboard {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return NewSwitchboard(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestPushPop_RoundTripsMessageAndMetadata(t *testing.T) {
	sb := testSwitchboard(t)
	ctx := context.Background()

	msg := domain.NewMessage("<ant>")
	msg.Set("Subject", "a test")
	msg.Body = "testing\n"
	meta := domain.Metadata{domain.MetaListname: "test@example.com"}
	meta.SetRecipients("anne@example.com", "bart@example.com")

	if err := sb.Push(ctx, "out", msg, meta); err != nil {
		t.Fatalf("Push: %v", err)
	}

	env, err := sb.Pop(ctx, "out", time.Second)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if env == nil {
		t.Fatal("Pop returned nil for a non-empty queue")
	}
	if env.Message.Get("subject") != "a test" {
		t.Errorf("subject = %q", env.Message.Get("subject"))
	}
	if env.Message.Body != "testing\n" {
		t.Errorf("body = %q", env.Message.Body)
	}
	if got := env.Metadata.String(domain.MetaListname); got != "test@example.com" {
		t.Errorf("listname = %q", got)
	}
	recips := env.Metadata.Recipients()
	if len(recips) != 2 || recips[0] != "anne@example.com" {
		t.Errorf("recipients survived badly: %v", recips)
	}
	if env.ID == "" || env.Queue != "out" {
		t.Errorf("envelope bookkeeping: id=%q queue=%q", env.ID, env.Queue)
	}
}

func TestPop_EmptyQueue_TimesOutNil(t *testing.T) {
	sb := testSwitchboard(t)

	env, err := sb.Pop(context.Background(), "out", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if env != nil {
		t.Errorf("Pop on empty queue = %+v, want nil", env)
	}
}

func TestQueues_AreIndependent(t *testing.T) {
	sb := testSwitchboard(t)
	ctx := context.Background()

	_ = sb.Push(ctx, "out", domain.NewMessage("<a>"), domain.Metadata{})
	_ = sb.Push(ctx, "virgin", domain.NewMessage("<b>"), domain.Metadata{})
	_ = sb.Push(ctx, "virgin", domain.NewMessage("<c>"), domain.Metadata{})

	if n, _ := sb.Len(ctx, "out"); n != 1 {
		t.Errorf("out len = %d, want 1", n)
	}
	if n, _ := sb.Len(ctx, "virgin"); n != 2 {
		t.Errorf("virgin len = %d, want 2", n)
	}

	env, _ := sb.Pop(ctx, "virgin", time.Second)
	if env.Message.ID != "<b>" {
		t.Errorf("FIFO violated: got %s", env.Message.ID)
	}
}
