package source

import (
	"context"
	"fmt"

	"github.com/John-Robertt/herovault/internal/domain"
)

// HeroSource 查询 hero 数据接口。
//
// 约束：found=false 表示接口明确回答“没有匹配”（response!="success" 或结果为空），
// 与 err!=nil（网络/状态码/解析失败）严格区分。
type HeroSource interface {
	SearchHeroes(ctx context.Context, term string) (heroes []domain.Hero, found bool, err error)
}

// MovieSource 查询电影库。没有结果返回 (nil, nil)。
type MovieSource interface {
	SearchMovies(ctx context.Context, term string, limit int) ([]domain.Movie, error)
}

// Error 标记失败发生在哪个数据源、哪个阶段，便于日志定位。
// 上层不区分两个接口的失败，统一转成连接类提示。
type Error struct {
	Source string // "hero" / "movie"
	Stage  string // "fetch" / "decode"
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source=%s stage=%s: %v", e.Source, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
