package db

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

// openTestDB opens a uniquely named shared-cache in-memory database so
// the pooled connections all see the same schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared&_fk=1", testDBSeq.Add(1))
	gdb, err := Connect("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	if _, err := Connect("oracle", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver, got nil")
	}
}
