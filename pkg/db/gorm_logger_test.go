package db

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/gudang-backend/pkg/logger"
)

func TestGormLoggerReportsFailuresNotMisses(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Format: logger.FormatJSON, Output: &buf})

	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: newGormLogger(logg, time.Hour),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var missing testModel
	_ = conn.First(&missing, 999).Error
	if buf.Len() != 0 {
		t.Fatalf("record not found should not be logged, got %q", buf.String())
	}

	_ = conn.Exec("SELECT * FROM no_such_table").Error
	if !strings.Contains(buf.String(), "db.query_failed") {
		t.Fatalf("expected failed query to be logged, got %q", buf.String())
	}
}

func TestGormLoggerSlowQuery(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Format: logger.FormatJSON, Output: &buf})
	gl := newGormLogger(logg, time.Millisecond)

	gl.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "UPDATE items SET stock = stock - 1", 1
	}, nil)
	if !strings.Contains(buf.String(), "db.slow_query") || !strings.Contains(buf.String(), "UPDATE items") {
		t.Fatalf("expected slow query warning, got %q", buf.String())
	}

	buf.Reset()
	gl.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	if buf.Len() != 0 {
		t.Fatalf("silent mode should suppress output, got %q", buf.String())
	}
}
