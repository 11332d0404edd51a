package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestClassifySQLiteError_Busy(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("SQLITE_BUSY: database is locked"))
	if !busy || locked {
		t.Fatalf("expected busy=true locked=false, got busy=%v locked=%v", busy, locked)
	}
}

func TestClassifySQLiteError_Locked(t *testing.T) {
	busy, locked := classifySQLiteError(errors.New("SQLITE_LOCKED: database table is locked"))
	if busy || !locked {
		t.Fatalf("expected busy=false locked=true, got busy=%v locked=%v", busy, locked)
	}
}

func TestClassifySQLiteError_IgnoresCancellation(t *testing.T) {
	busy, locked := classifySQLiteError(context.Canceled)
	if busy || locked {
		t.Fatalf("cancellation should not be classified, got busy=%v locked=%v", busy, locked)
	}
}

func TestMetricsLogger_IgnoresRecordNotFound(t *testing.T) {
	before := SQLiteBusyErrorsTotal()
	l := sqliteMetricsLogger{inner: logger.Discard}
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "", 0 }, gorm.ErrRecordNotFound)
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "", 0 }, errors.New("SQLITE_BUSY"))
	if got := SQLiteBusyErrorsTotal(); got != before+1 {
		t.Fatalf("busy counter = %d, want %d", got, before+1)
	}
}
