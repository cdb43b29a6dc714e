package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSequenceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:sequence_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS tenant_settings (
			tenant_id BIGINT PRIMARY KEY,
			invoice_prefix TEXT NOT NULL DEFAULT 'INV',
			next_invoice_number BIGINT NOT NULL DEFAULT 1,
			default_tax_rate NUMERIC NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'USD',
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() {
		db.Exec(`DELETE FROM tenant_settings`)
	})
	return db
}

func insertSettings(t *testing.T, db *gorm.DB, tenantID int64, prefix string, next int64) {
	t.Helper()
	if err := db.Exec(
		`INSERT INTO tenant_settings (tenant_id, invoice_prefix, next_invoice_number) VALUES (?, ?, ?)`,
		tenantID, prefix, next,
	).Error; err != nil {
		t.Fatalf("insert settings: %v", err)
	}
}

func TestAllocateFormatsAndAdvances(t *testing.T) {
	db := setupSequenceTestDB(t)
	insertSettings(t, db, 1, "INV", 7)

	alloc, err := Allocate(context.Background(), db, snowflake.ID(1))
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if alloc.Number != "INV00007" {
		t.Fatalf("expected INV00007, got %q", alloc.Number)
	}
	if alloc.Value != 7 {
		t.Fatalf("expected consumed value 7, got %d", alloc.Value)
	}

	var next int64
	if err := db.Raw(`SELECT next_invoice_number FROM tenant_settings WHERE tenant_id = 1`).Scan(&next).Error; err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if next != 8 {
		t.Fatalf("expected counter advanced to 8, got %d", next)
	}
}

func TestAllocateMissingTenant(t *testing.T) {
	db := setupSequenceTestDB(t)

	if _, err := Allocate(context.Background(), db, snowflake.ID(99)); !errors.Is(err, ErrSequenceMissing) {
		t.Fatalf("expected ErrSequenceMissing, got %v", err)
	}
	if _, err := Allocate(context.Background(), db, 0); !errors.Is(err, ErrSequenceMissing) {
		t.Fatalf("expected ErrSequenceMissing for zero tenant, got %v", err)
	}
}

func TestAllocateSequentialNoGapsNoDuplicates(t *testing.T) {
	db := setupSequenceTestDB(t)
	insertSettings(t, db, 2, "INV", 1)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		alloc, err := Allocate(context.Background(), db, snowflake.ID(2))
		if err != nil {
			t.Fatalf("allocate %d: %v", i, err)
		}
		if seen[alloc.Number] {
			t.Fatalf("duplicate number %q", alloc.Number)
		}
		seen[alloc.Number] = true
		want := Format("INV", int64(i+1))
		if alloc.Number != want {
			t.Fatalf("expected %q, got %q", want, alloc.Number)
		}
	}
}

func TestAllocateConcurrentDistinctNumbers(t *testing.T) {
	db := setupSequenceTestDB(t)
	insertSettings(t, db, 3, "INV", 1)

	const workers = 10
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		numbers = make(map[string]bool)
	)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			// Retry on sqlite write contention; postgres row locks instead.
			for {
				alloc, err := Allocate(context.Background(), db, snowflake.ID(3))
				if err == nil {
					mu.Lock()
					numbers[alloc.Number] = true
					mu.Unlock()
					return
				}
			}
		}()
	}
	wg.Wait()

	if len(numbers) != workers {
		t.Fatalf("expected %d distinct numbers, got %d", workers, len(numbers))
	}

	var next int64
	if err := db.Raw(`SELECT next_invoice_number FROM tenant_settings WHERE tenant_id = 3`).Scan(&next).Error; err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if next != workers+1 {
		t.Fatalf("expected counter %d, got %d", workers+1, next)
	}
}

func TestFormatZeroPadding(t *testing.T) {
	if got := Format("INV", 7); got != "INV00007" {
		t.Fatalf("expected INV00007, got %q", got)
	}
	if got := Format("ACME-", 123456); got != "ACME-123456" {
		t.Fatalf("expected ACME-123456, got %q", got)
	}
}
