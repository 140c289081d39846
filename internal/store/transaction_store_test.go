package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestTransactionStoreCreate(t *testing.T) {
	ctx := context.Background()
	stakeID := "stake-1"
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "INSERT INTO transactions") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 6 {
				t.Fatalf("expected 6 args, got %d", len(args))
			}
			if args[2] != TxTypeAccrual || args[3] != int64(2500) {
				t.Fatalf("unexpected args: %#v", args)
			}
			return stubResult{rows: 1}, nil
		},
	}
	store := NewTransactionStore(stubDB{})
	err := store.Create(ctx, execer, TransactionInput{
		ID:          "tx-1",
		OwnerID:     "user-1",
		Type:        TxTypeAccrual,
		AmountMinor: 2500,
		StakeID:     &stakeID,
		Metadata:    "{}",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTransactionStoreListByOwner(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if strings.Contains(query, "AND type = $2") {
				t.Fatalf("unexpected type filter: %s", query)
			}
			if len(args) != 3 || args[0] != "user-1" || args[1] != 20 || args[2] != 0 {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]Transaction) = []Transaction{{ID: "tx-1"}}
			return nil
		},
	})
	rows, err := store.ListByOwner(ctx, "user-1", "", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "tx-1" {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestTransactionStoreListByOwnerWithType(t *testing.T) {
	ctx := context.Background()
	store := NewTransactionStore(stubDB{
		selectFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "AND type = $2") {
				t.Fatalf("expected type filter: %s", query)
			}
			if !strings.Contains(query, "LIMIT $3 OFFSET $4") {
				t.Fatalf("unexpected paging params: %s", query)
			}
			if len(args) != 4 || args[1] != TxTypeStake {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*[]Transaction) = []Transaction{{ID: "tx-2", Type: TxTypeStake}}
			return nil
		},
	})
	rows, err := store.ListByOwner(ctx, "user-1", TxTypeStake, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Type != TxTypeStake {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}
