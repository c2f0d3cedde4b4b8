package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/picontrol/eversolo2hub/internal/core/port"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteDeviceStore keeps the device cache in a single-file SQLite database.
// One connection, one writer; every operation is serialized under the mutex.
type SQLiteDeviceStore struct {
	db     *sql.DB
	mutex  sync.Mutex
	logger *zap.Logger
}

func CreateSQLiteDeviceStore(path string, logger *zap.Logger) (port.DeviceStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open device cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS device_cache (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare device cache schema: %w", err)
	}

	return &SQLiteDeviceStore{
		db:     db,
		logger: logger.With(zap.String("store", path)),
	}, nil
}

func (s *SQLiteDeviceStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM device_cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read device cache key %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteDeviceStore) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO device_cache (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("write device cache key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteDeviceStore) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM device_cache WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete device cache key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteDeviceStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.Close()
}

var _ port.DeviceStore = (*SQLiteDeviceStore)(nil)
