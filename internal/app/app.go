package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/John-Robertt/herovault/internal/domain"
	"github.com/John-Robertt/herovault/internal/vault"
)

// Searcher 由 search.Searcher 实现；测试可替换。
type Searcher interface {
	Search(ctx context.Context, term string) domain.Outcome
}

// Snapshot 是渲染所需的只读视图。
type Snapshot struct {
	Status     domain.Status
	Current    domain.Outcome // Kind=="" 表示还没有任何搜索
	Favourites domain.FavouritesList
}

// App 把原先散落的全局状态收拢到一个对象里，读/改/持久化都走显式方法。
//
// 并发：HTTP 层会并发调用，所有状态读写都持锁；搜索本身在锁外执行。
// 两次搜索交错时，后返回的一次会覆盖当前视图（即使它更旧）。
type App struct {
	mu      sync.Mutex
	search  Searcher
	vault   *vault.Store
	status  domain.Status
	current domain.Outcome
	log     *zap.Logger
}

func New(s Searcher, v *vault.Store, log *zap.Logger) (*App, error) {
	if s == nil {
		return nil, errors.New("searcher 不能为空")
	}
	if v == nil {
		return nil, errors.New("vault 不能为空")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &App{search: s, vault: v, status: domain.StatusIdle, log: log}, nil
}

// Submit 处理一次用户提交。空白 term 被忽略：不发请求、不改变当前视图，changed=false。
//
// 搜索不随调用方取消：客户端断开后搜索照常完成并更新当前视图，
// 只受 HTTP client 的超时约束。
func (a *App) Submit(ctx context.Context, term string) (out domain.Outcome, changed bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return domain.Outcome{Kind: domain.OutcomeEmpty}, false
	}

	a.mu.Lock()
	a.transition(domain.EventSubmit)
	a.mu.Unlock()

	out = a.search.Search(context.WithoutCancel(ctx), term)

	a.mu.Lock()
	defer a.mu.Unlock()
	if out.Kind == domain.OutcomeResults {
		a.transition(domain.EventMatched)
	} else {
		a.transition(domain.EventFailed)
	}
	a.current = out
	return out, true
}

// transition 必须在持锁时调用。
// 交错提交时状态可能已不在 loading：此时按“从 loading 迁移”处理，保证指示器最终落到结果态。
func (a *App) transition(ev domain.Event) {
	next, err := a.status.Next(ev)
	if err != nil {
		a.log.Debug("状态迁移被拒绝", zap.Error(err))
		if ev == domain.EventSubmit {
			return
		}
		next, _ = domain.StatusLoading.Next(ev)
	}
	a.status = next
}

// ToggleFavourite 切换收藏；持久化失败时返回 vault.WriteError，内存不变。
func (a *App) ToggleFavourite(ctx context.Context, e domain.FavouriteEntry) (added bool, err error) {
	added, err = a.vault.Toggle(ctx, e)
	if err != nil {
		a.log.Warn("切换收藏失败", zap.String("id", e.ID), zap.Error(err))
	}
	return added, err
}

// RemoveFavourite 从收藏面板移除；id 不存在时无操作。
func (a *App) RemoveFavourite(ctx context.Context, id string) error {
	_, err := a.vault.Remove(ctx, id)
	if err != nil {
		a.log.Warn("移除收藏失败", zap.String("id", id), zap.Error(err))
	}
	return err
}

func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Status:     a.status,
		Current:    a.current,
		Favourites: a.vault.List(),
	}
}
