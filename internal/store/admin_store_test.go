package store

import (
	"context"
	"database/sql"
	"strings"
	"testing"
)

func TestAdminStoreIsAdmin(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM admins") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*bool) = true
			return nil
		},
	})
	isAdmin, isSuper, err := store.IsAdmin(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isAdmin || !isSuper {
		t.Fatalf("expected super admin, got %v/%v", isAdmin, isSuper)
	}
}

func TestAdminStoreIsAdminNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(stubDB{
		getFn: func(context.Context, any, string, ...any) error {
			return sql.ErrNoRows
		},
	})
	isAdmin, isSuper, err := store.IsAdmin(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isAdmin || isSuper {
		t.Fatalf("expected non-admin, got %v/%v", isAdmin, isSuper)
	}
}

func TestAdminStoreHasRole(t *testing.T) {
	ctx := context.Background()
	store := NewAdminStore(stubDB{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM admin_roles") {
				t.Fatalf("unexpected query: %s", query)
			}
			if len(args) != 2 || args[0] != "user-1" || args[1] != "CanRunAccrual" {
				t.Fatalf("unexpected args: %#v", args)
			}
			*dest.(*int) = 1
			return nil
		},
	})
	has, err := store.HasRole(ctx, "user-1", "CanRunAccrual")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !has {
		t.Fatalf("expected role grant")
	}
}

func TestAdminStoreGrantRoleIdempotent(t *testing.T) {
	ctx := context.Background()
	execer := stubExecer{
		execFn: func(_ context.Context, query string, args ...any) (sql.Result, error) {
			if !strings.Contains(query, "ON CONFLICT DO NOTHING") {
				t.Fatalf("unexpected query: %s", query)
			}
			return stubResult{rows: 0}, nil
		},
	}
	store := NewAdminStore(stubDB{})
	if err := store.GrantRole(ctx, execer, "user-1", "CanViewUsers"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdminStoreHasAnyAdmin(t *testing.T) {
	ctx := context.Background()
	getter := stubGetter{
		getFn: func(_ context.Context, dest any, query string, args ...any) error {
			if !strings.Contains(query, "FROM admins") {
				t.Fatalf("unexpected query: %s", query)
			}
			*dest.(*int) = 0
			return nil
		},
	}
	store := NewAdminStore(stubDB{})
	has, err := store.HasAnyAdmin(ctx, getter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if has {
		t.Fatalf("expected no admins")
	}
}
