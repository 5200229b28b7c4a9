package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/John-Robertt/herovault/internal/domain"
)

// Key 是收藏列表在 KV 中的唯一键（沿用历史数据的键名）。
const Key = "hero_vault"

// KV 是最小的持久化键值接口（语义对齐浏览器 localStorage：整值读写）。
type KV interface {
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte) error
}

// WriteError 表示持久化失败；此时内存列表保持变更前的状态。
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return fmt.Sprintf("收藏写入失败：%v", e.Err) }

func (e *WriteError) Unwrap() error { return e.Err }

// IsWriteError 判断 err 是否为持久化失败。
func IsWriteError(err error) bool {
	var e *WriteError
	return errors.As(err, &e)
}

// Store 持有内存中的 FavouritesList。
//
// 不变量：每个变更方法返回时，kv 中 Key 的内容反序列化后与 List() 完全一致。
// 实现方式是“先写后改”：序列化新列表并写入成功后，才替换内存列表。
type Store struct {
	mu   sync.Mutex
	kv   KV
	list domain.FavouritesList
	log  *zap.Logger
}

// Open 从 kv 加载收藏列表。键不存在或内容无法解析时回退为空列表（只记日志）。
// kv 读取本身失败（I/O 错误）则返回错误。
func Open(ctx context.Context, kv KV, log *zap.Logger) (*Store, error) {
	if kv == nil {
		return nil, errors.New("kv 不能为空")
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: kv, log: log, list: domain.FavouritesList{}}

	b, ok, err := kv.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("读取收藏失败：%w", err)
	}
	if !ok || len(strings.TrimSpace(string(b))) == 0 {
		return s, nil
	}

	var l domain.FavouritesList
	if err := json.Unmarshal(b, &l); err != nil {
		log.Warn("收藏数据无法解析，按空列表处理", zap.String("key", Key), zap.Error(err))
		return s, nil
	}
	s.list = l.Normalize()
	return s, nil
}

// Toggle 存在则移除，不存在则追加到末尾。added 表示本次是否为追加。
func (s *Store) Toggle(ctx context.Context, e domain.FavouriteEntry) (added bool, err error) {
	e.ID = strings.TrimSpace(e.ID)
	if e.ID == "" {
		return false, errors.New("id 不能为空")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, added := s.list.Toggled(e)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	s.log.Debug("收藏已切换", zap.String("id", e.ID), zap.Bool("added", added), zap.Int("count", len(next)))
	return added, nil
}

// Remove 移除 id；不存在时不写入，removed=false。
func (s *Store) Remove(ctx context.Context, id string) (removed bool, err error) {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.list.Without(id)
	if !ok {
		return false, nil
	}
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	s.log.Debug("收藏已移除", zap.String("id", id), zap.Int("count", len(next)))
	return true, nil
}

// commit 必须在持锁时调用。
func (s *Store) commit(ctx context.Context, next domain.FavouritesList) error {
	if next == nil {
		next = domain.FavouritesList{}
	}
	b, err := json.Marshal(next)
	if err != nil {
		return &WriteError{Err: err}
	}
	if err := s.kv.Set(ctx, Key, b); err != nil {
		s.log.Error("收藏写入失败，内存列表保持不变", zap.Error(err))
		return &WriteError{Err: err}
	}
	s.list = next
	return nil
}

// List 返回当前列表的副本。
func (s *Store) List() domain.FavouritesList {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(domain.FavouritesList, len(s.list))
	copy(out, s.list)
	return out
}

func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Contains(id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}
