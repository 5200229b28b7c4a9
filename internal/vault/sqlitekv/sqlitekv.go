package sqlitekv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// ErrReadOnly 表示在只读模式下尝试写入。
var ErrReadOnly = errors.New("sqlitekv: read-only")

// Store 用 SQLite 单表模拟 localStorage 的键值语义。
type Store struct {
	db       *sql.DB
	readOnly bool
	// noTable=true 表示只读打开时库里还没有 kv 表：所有 Get 都未命中。
	noTable bool
}

// Open 打开（必要时创建）数据库文件并建表。path=":memory:" 用于测试。
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite 路径不能为空")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开 sqlite 失败：%w", err)
	}
	// 单连接：:memory: 库在多连接下各自独立；文件库也只有一个写者。
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("连接 sqlite 失败：%w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("建表失败：%w", err)
	}
	return &Store{db: db}, nil
}

// OpenReadOnly 以 query_only 方式打开已存在的数据库文件：不建表、不创建文件。
// 文件不存在时返回的错误满足 errors.Is(err, os.ErrNotExist)。
func OpenReadOnly(path string) (*Store, error) {
	path = filepath.Clean(strings.TrimSpace(path))
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path+"?_pragma=query_only(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("打开 sqlite 失败：%w", err)
	}
	db.SetMaxOpenConns(1)

	var n int
	if err := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'kv'`).Scan(&n); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("读取 sqlite 表结构失败：%w", err)
	}
	return &Store{db: db, readOnly: true, noTable: n == 0}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s == nil || s.db == nil {
		return nil, false, errors.New("sqlite 未初始化")
	}
	if s.noTable {
		return nil, false, nil
	}
	var val []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("读取 %q 失败：%w", key, err)
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key string, val []byte) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite 未初始化")
	}
	if s.readOnly {
		return ErrReadOnly
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("key 不能为空")
	}
	if val == nil {
		val = []byte{}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, val, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("写入 %q 失败：%w", key, err)
	}
	return nil
}
