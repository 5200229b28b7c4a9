package filekv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/herovault/internal/infra/fsx"
)

var ErrReadOnly = errors.New("filekv: read-only")

// Store 是基于目录的 KV：每个键存为 <dir>/<key>.json，原子替换写入。
// ReadOnly=true 时拒绝写入（只读命令使用）。
type Store struct {
	Dir      string
	ReadOnly bool
}

func New(dir string, readOnly bool) Store {
	return Store{
		Dir:      filepath.Clean(strings.TrimSpace(dir)),
		ReadOnly: readOnly,
	}
}

// Path 返回 key 对应的文件绝对路径。
func (s Store) Path(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, k+".json"), nil
}

func (s Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := s.Path(key)
	if err != nil {
		return nil, false, err
	}
	return fsx.ReadFileIfExists(path)
}

func (s Store) Set(ctx context.Context, key string, val []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ReadOnly {
		return ErrReadOnly
	}
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(s.Dir, k+".json", val)
}

var keyRE = regexp.MustCompile(`^[a-z0-9_]+$`)

func cleanKey(k string) (string, error) {
	k = strings.ToLower(strings.TrimSpace(k))
	if k == "" {
		return "", fmt.Errorf("key 不能为空")
	}
	// 最小约束：避免路径穿越。
	if !keyRE.MatchString(k) {
		return "", fmt.Errorf("非法 key：%q", k)
	}
	return k, nil
}
