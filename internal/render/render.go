// Package render 把结果与收藏渲染为 HTML 片段（templ.Component）。
//
// 交互通过 HTMX 属性声明：卡片上的收藏按钮携带由数据生成的 hx-vals，
// 不使用内联脚本。每次变更都整体替换容器内容，不做增量 diff。
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/John-Robertt/herovault/internal/domain"
)

// 容器 id：Page 与各片段共享，HTMX 按 id 定位替换目标。
const (
	GridID    = "heroGrid"
	BadgeID   = "favBadge"
	FavListID = "favList"
	StatusID  = "status"
	ToastsID  = "toasts"
	LoaderID  = "loader"
)

const (
	PlaceholderAlterEgo = "Alter Ego Hidden"
	PlaceholderMovies   = "No records found."
)

// htmlWriter 吞掉第一个写错误，之后的写入全部跳过。
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// safe 是已确认无需转义的片段（仅用于本包生成的固定属性）。
type safe string

// f 按 format 写入；所有 string 参数都会先做 HTML 转义，safe 参数原样输出。
func (h *htmlWriter) f(format string, args ...any) {
	for i, a := range args {
		if s, ok := a.(string); ok {
			args[i] = templ.EscapeString(s)
		}
	}
	h.raw(fmt.Sprintf(format, args...))
}

func component(fn func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		fn(h)
		return h.err
	})
}

// Results 渲染结果区域的内部内容：
// - 尚无搜索（Kind 为空）：空
// - not_found/failed：单条提示文案
// - results：每个 hero 一张卡片
func Results(out domain.Outcome, favs domain.FavouritesList) templ.Component {
	return component(func(h *htmlWriter) {
		writeResults(h, out, favs)
	})
}

func writeResults(h *htmlWriter, out domain.Outcome, favs domain.FavouritesList) {
	switch out.Kind {
	case domain.OutcomeResults:
		for _, hero := range out.Heroes {
			writeCard(h, hero, out.Movies, favs.Contains(string(hero.ID)))
		}
	case domain.OutcomeNotFound, domain.OutcomeFailed:
		writeNotification(h, out.Message())
	}
}

// Notification 渲染替换整个结果区域的提示。
func Notification(msg string) templ.Component {
	return component(func(h *htmlWriter) { writeNotification(h, msg) })
}

func writeNotification(h *htmlWriter, msg string) {
	h.f(`<p class="notice">%s</p>`, msg)
}

// Card 渲染单个 hero 卡片；active 决定收藏按钮的视觉状态。
func Card(hero domain.Hero, movies []domain.Movie, active bool) templ.Component {
	return component(func(h *htmlWriter) { writeCard(h, hero, movies, active) })
}

func writeCard(h *htmlWriter, hero domain.Hero, movies []domain.Movie, active bool) {
	cls := "fav-btn-float"
	pressed := "false"
	if active {
		cls += " active"
		pressed = "true"
	}

	h.f(`<div class="hero-card" data-id="%s">`, string(hero.ID))
	h.f(`<button type="button" class="%s" aria-pressed="%s" aria-label="Toggle favourite" hx-post="/favourites/toggle" hx-vals="%s" hx-target="#%s" hx-swap="innerHTML">&#9829;</button>`,
		cls, pressed, toggleVals(hero), GridID)
	h.f(`<img src="%s" alt="%s" loading="lazy">`, hero.ImageURL, hero.Name)
	h.raw(`<div class="hero-content">`)
	h.f(`<h3>%s</h3>`, hero.Name)
	alter := hero.FullName
	if alter == "" {
		alter = PlaceholderAlterEgo
	}
	h.f(`<small>%s</small>`, alter)

	h.raw(`<div class="stat-group">`)
	h.f(`<span class="pill">INT: %s</span>`, hero.Stats.Intelligence)
	h.f(`<span class="pill">STR: %s</span>`, hero.Stats.Strength)
	h.f(`<span class="pill">SPD: %s</span>`, hero.Stats.Speed)
	h.raw(`</div>`)

	h.raw(`<div class="movie-list"><h4>CINEMATIC RECORDS</h4>`)
	if len(movies) == 0 {
		h.f(`<p>%s</p>`, PlaceholderMovies)
	}
	for i, m := range movies {
		if i == 3 {
			break
		}
		h.f(`<p class="movie">%s (%s)</p>`, m.Title, m.Year)
	}
	h.raw(`</div></div></div>`)
}

// toggleVals 生成 hx-vals 的 JSON（随后整体做属性转义）。
func toggleVals(hero domain.Hero) string {
	b, _ := json.Marshal(map[string]string{
		"id":   string(hero.ID),
		"name": hero.Name,
		"img":  hero.ImageURL,
	})
	return string(b)
}

// Badge 渲染收藏数量。oob=true 时作为 HTMX out-of-band 片段输出。
func Badge(n int, oob bool) templ.Component {
	return component(func(h *htmlWriter) { writeBadge(h, n, oob) })
}

func writeBadge(h *htmlWriter, n int, oob bool) {
	h.f(`<span id="%s" class="badge"%s>%d</span>`, BadgeID, oobAttr(oob), n)
}

// FavList 渲染收藏面板列表，每项带移除按钮。
func FavList(favs domain.FavouritesList, oob bool) templ.Component {
	return component(func(h *htmlWriter) { writeFavList(h, favs, oob) })
}

func writeFavList(h *htmlWriter, favs domain.FavouritesList, oob bool) {
	h.f(`<div id="%s" class="fav-list"%s>`, FavListID, oobAttr(oob))
	if len(favs) == 0 {
		h.raw(`<p class="fav-empty">Vault is empty.</p>`)
	}
	for _, f := range favs {
		vals, _ := json.Marshal(map[string]string{"id": f.ID})
		h.f(`<div class="fav-item" data-id="%s">`, f.ID)
		h.f(`<img src="%s" width="50" height="50" alt="">`, f.Img)
		h.f(`<span>%s</span>`, f.Name)
		h.f(`<button type="button" class="fav-remove" aria-label="Remove favourite" hx-post="/favourites/remove" hx-vals="%s" hx-target="#%s" hx-swap="innerHTML">&#128465;</button>`,
			string(vals), GridID)
		h.raw(`</div>`)
	}
	h.raw(`</div>`)
}

// StatusIndicator 渲染状态机当前状态（供样式与调试使用）。
func StatusIndicator(st domain.Status, oob bool) templ.Component {
	return component(func(h *htmlWriter) { writeStatus(h, st, oob) })
}

func writeStatus(h *htmlWriter, st domain.Status, oob bool) {
	h.f(`<span id="%s" class="status status-%s" data-status="%s"%s></span>`, StatusID, string(st), string(st), oobAttr(oob))
}

// Toast 渲染一次性提示（追加到 #toasts）。
func Toast(msg string) templ.Component {
	return component(func(h *htmlWriter) { writeToast(h, msg) })
}

func writeToast(h *htmlWriter, msg string) {
	h.f(`<div id="%s" hx-swap-oob="beforeend"><div class="toast" data-auto-dismiss="3000">%s</div></div>`, ToastsID, msg)
}

func oobAttr(oob bool) safe {
	if oob {
		return ` hx-swap-oob="true"`
	}
	return ""
}
