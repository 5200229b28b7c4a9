package search

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/John-Robertt/herovault/internal/domain"
	"github.com/John-Robertt/herovault/internal/source"
)

// Searcher 串联 hero 与 movie 两个数据源，并把所有失败收敛为 domain.Outcome。
//
// 约束：
// - 两个请求严格串行：movie 请求只在 hero 请求成功且有匹配后发出
// - 不做重试、不做缓存
// - Movies==nil 表示不查询电影库
type Searcher struct {
	Heroes     source.HeroSource
	Movies     source.MovieSource
	MovieLimit int
	Log        *zap.Logger
}

// Search 执行一次完整的搜索周期。空白 term 返回 OutcomeEmpty 且不发请求。
func (s *Searcher) Search(ctx context.Context, term string) domain.Outcome {
	term = strings.TrimSpace(term)
	if term == "" {
		return domain.Outcome{Kind: domain.OutcomeEmpty}
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	if s.Heroes == nil {
		return s.failed(log, term, errors.New("hero source 未配置"))
	}

	heroes, found, err := s.Heroes.SearchHeroes(ctx, term)
	if err != nil {
		return s.failed(log, term, err)
	}
	if !found || len(heroes) == 0 {
		return domain.Outcome{Kind: domain.OutcomeNotFound, Term: term}
	}

	var movies []domain.Movie
	if s.Movies != nil {
		movies, err = s.Movies.SearchMovies(ctx, term, s.MovieLimit)
		if err != nil {
			// 与 hero 接口失败不做区分：整次搜索按连接失败处理。
			return s.failed(log, term, err)
		}
	}

	log.Debug("搜索完成", zap.String("term", term), zap.Int("heroes", len(heroes)), zap.Int("movies", len(movies)))
	return domain.Outcome{Kind: domain.OutcomeResults, Term: term, Heroes: heroes, Movies: movies}
}

func (s *Searcher) failed(log *zap.Logger, term string, err error) domain.Outcome {
	fields := []zap.Field{zap.String("term", term), zap.Error(err)}
	var se *source.Error
	if errors.As(err, &se) {
		fields = append(fields, zap.String("source", se.Source), zap.String("stage", se.Stage))
	}
	if code, ok := source.IsHTTPStatus(err); ok {
		fields = append(fields, zap.Int("status", code))
	}
	log.Error("API Error", fields...)
	return domain.Outcome{Kind: domain.OutcomeFailed, Term: term, Err: err}
}
