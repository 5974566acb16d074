package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/listflow/internal/pending"
)

func testRecord() *pending.Record {
	return &pending.Record{
		Token:     "0123456789abcdef0123456789abcdef01234567",
		Type:      "re-enable",
		ListID:    "test.example.com",
		Fields:    map[string]string{"member": `{"v":1,"kind":"text","text":"anne@example.org"}`},
		ExpiresAt: time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC),
	}
}

func TestPendingRepo_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec := testRecord()
	mock.ExpectExec("INSERT INTO pending_records").
		WithArgs(rec.Token, rec.Type, rec.ListID, sqlmock.AnyArg(), rec.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewPendingRepo(db).Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPendingRepo_Insert_DuplicateToken(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	// ON CONFLICT DO NOTHING reports zero affected rows on collision.
	mock.ExpectExec("INSERT INTO pending_records").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPendingRepo(db).Insert(context.Background(), testRecord())
	if !errors.Is(err, pending.ErrDuplicateToken) {
		t.Fatalf("err = %v, want ErrDuplicateToken", err)
	}
}

func TestPendingRepo_Take_HitAndMiss(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	repo := NewPendingRepo(db)
	rec := testRecord()

	cols := []string{"token", "pend_type", "list_id", "fields", "expires_at"}
	mock.ExpectQuery("DELETE FROM pending_records").
		WithArgs(rec.Token).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(rec.Token, rec.Type, rec.ListID,
				[]byte(`{"member":"{\"v\":1,\"kind\":\"text\",\"text\":\"anne@example.org\"}"}`),
				rec.ExpiresAt))

	got, err := repo.Take(context.Background(), rec.Token)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if got == nil || got.Type != "re-enable" || got.Fields["member"] == "" {
		t.Fatalf("Take returned %+v", got)
	}

	mock.ExpectQuery("DELETE FROM pending_records").
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows(cols))

	got, err = repo.Take(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("Take miss: %v", err)
	}
	if got != nil {
		t.Errorf("Take on unknown token = %+v, want nil", got)
	}
}

func TestPendingRepo_DeleteExpired(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	now := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("DELETE FROM pending_records WHERE expires_at").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewPendingRepo(db).DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 4 {
		t.Errorf("deleted = %d, want 4", n)
	}
}

func TestPendingRepo_Find_Filtered(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	rec := testRecord()

	cols := []string{"token", "pend_type", "list_id", "fields", "expires_at"}
	mock.ExpectQuery("SELECT token, pend_type, list_id, fields, expires_at").
		WithArgs("re-enable", "test.example.com").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(rec.Token, rec.Type, rec.ListID, []byte(`{}`), rec.ExpiresAt))

	recs, err := NewPendingRepo(db).Find(context.Background(),
		pending.Filter{Type: "re-enable", ListID: "test.example.com"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(recs) != 1 || recs[0].Token != rec.Token {
		t.Errorf("Find = %+v", recs)
	}
}

func TestPendingRepo_Count(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := NewPendingRepo(db).Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 7 {
		t.Errorf("Count = %d, want 7", n)
	}
}
