package event

import (
	"context"
	"fmt"
	"testing"

	"peerfund-core/internal/adapter/repository/mysql"
	evt "peerfund-core/internal/domain/event"
	"peerfund-core/internal/domain/uow"
	"peerfund-core/internal/testutil/sqlitedb"
)

func seedFeed(t *testing.T, u uow.UnitOfWork, n int) {
	t.Helper()
	err := u.WithinTx(context.Background(), func(r uow.Repos) error {
		for i := 0; i < n; i++ {
			ev := evt.New(evt.AccountDeposited, fmt.Sprintf("key-%03d", i), "actor", map[string]any{"i": i})
			if err := r.Events.Append(context.Background(), ev); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestList_CursorAndOrdering(t *testing.T) {
	u := mysql.NewGormUoW(sqlitedb.Open(t))
	uc := NewUsecase(u)
	seedFeed(t, u, 10)

	rows, err := uc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 10 {
		t.Fatalf("len=%d", len(rows))
	}
	for i, ev := range rows {
		if ev.Seq != uint64(i+1) {
			t.Fatalf("row %d has seq %d", i, ev.Seq)
		}
	}

	// The cursor is exclusive: after=7 starts at seq 8.
	rows, err = uc.List(context.Background(), 7, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 || rows[0].Seq != 8 {
		t.Fatalf("cursor page: %+v", rows)
	}

	// Past the end the feed is empty, not an error.
	rows, err = uc.List(context.Background(), 100, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty page, got %d", len(rows))
	}
}

func TestList_LimitClamping(t *testing.T) {
	u := mysql.NewGormUoW(sqlitedb.Open(t))
	uc := NewUsecase(u)
	seedFeed(t, u, 120)

	rows, err := uc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != defaultLimit {
		t.Fatalf("default limit not applied: %d", len(rows))
	}

	rows, err = uc.List(context.Background(), 0, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("explicit limit not applied: %d", len(rows))
	}

	rows, err = uc.List(context.Background(), 0, 10_000)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 120 {
		t.Fatalf("oversized limit page: %d", len(rows))
	}
}
