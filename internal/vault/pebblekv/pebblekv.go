package pebblekv

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

// Store 基于 Pebble（LSM）实现 vault.KV。
type Store struct {
	db  *pebble.DB
	log *zap.Logger
}

// Open 打开（或创建）dir 下的 Pebble 数据库。
func Open(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := pebble.Open(dir, &pebble.Options{Logger: &pebbleLogger{log.Sugar()}})
	if err != nil {
		return nil, fmt.Errorf("打开 pebble 失败：%s：%w", dir, err)
	}
	return &Store{db: db, log: log}, nil
}

// OpenReadOnly 以只读方式打开已存在的数据库目录，不会创建任何文件。
// 目录不存在时返回的错误满足 errors.Is(err, os.ErrNotExist)。
func OpenReadOnly(dir string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	db, err := pebble.Open(dir, &pebble.Options{ReadOnly: true, Logger: &pebbleLogger{log.Sugar()}})
	if err != nil {
		return nil, fmt.Errorf("只读打开 pebble 失败：%s：%w", dir, err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("pebble get：%w", err)
	}
	defer closer.Close()

	// v 只在 closer.Close 前有效。
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) Set(ctx context.Context, key string, val []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Set([]byte(key), val, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set：%w", err)
	}
	return nil
}

// pebbleLogger 把 Pebble 的内部日志转给 zap。
type pebbleLogger struct {
	s *zap.SugaredLogger
}

func (l *pebbleLogger) Infof(format string, args ...any)  { l.s.Debugf(format, args...) }
func (l *pebbleLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }
func (l *pebbleLogger) Fatalf(format string, args ...any) { l.s.Fatalf(format, args...) }
