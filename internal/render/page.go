package render

import (
	"github.com/a-h/templ"

	"github.com/John-Robertt/herovault/internal/domain"
)

// PageData 是整页渲染的输入。
type PageData struct {
	Title      string
	Status     domain.Status
	Current    domain.Outcome
	Favourites domain.FavouritesList
	HTMXSrc    string
}

// DefaultHTMXSrc 是默认的 htmx 脚本地址。
const DefaultHTMXSrc = "https://unpkg.com/htmx.org@2.0.4"

// Page 渲染完整页面：搜索框、结果区域、收藏徽标与滑出面板。
//
// 面板开合用 checkbox + label 实现，不需要脚本。
func Page(d PageData) templ.Component {
	return component(func(h *htmlWriter) {
		title := d.Title
		if title == "" {
			title = "Hero Vault"
		}
		src := d.HTMXSrc
		if src == "" {
			src = DefaultHTMXSrc
		}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.f(`<title>%s</title>`, title)
		h.raw(`<link rel="stylesheet" href="/static/app.css">`)
		h.f(`<script src="%s" defer></script>`, src)
		h.raw(`</head><body>`)

		h.raw(`<header class="topbar">`)
		h.f(`<h1>%s</h1>`, title)
		h.f(`<form id="searchForm" hx-post="/search" hx-target="#%s" hx-swap="innerHTML" hx-indicator="#%s">`, GridID, LoaderID)
		h.raw(`<input id="searchInput" type="search" name="q" placeholder="Search a hero..." autocomplete="off">`)
		h.raw(`<button id="searchBtn" type="submit">Search</button>`)
		h.raw(`</form>`)
		h.raw(`<label id="favTrigger" for="favDrawerToggle" class="fav-trigger">&#9829; `)
		writeBadge(h, len(d.Favourites), false)
		h.raw(`</label>`)
		writeStatus(h, d.Status, false)
		h.raw(`</header>`)

		h.f(`<div id="%s" class="loader htmx-indicator"></div>`, LoaderID)

		h.f(`<main id="%s" class="hero-grid">`, GridID)
		writeResults(h, d.Current, d.Favourites)
		h.raw(`</main>`)

		h.raw(`<input type="checkbox" id="favDrawerToggle" class="drawer-toggle" hidden>`)
		h.raw(`<aside id="favDrawer" class="drawer">`)
		h.raw(`<label id="closeDrawer" for="favDrawerToggle" class="drawer-close">&times;</label>`)
		h.raw(`<h2>Hero Vault</h2>`)
		writeFavList(h, d.Favourites, false)
		h.raw(`</aside>`)

		h.f(`<div id="%s" class="toast-container"></div>`, ToastsID)
		h.raw(`</body></html>`)
	})
}

// FavouritesChanged 是收藏变更后的响应：重渲染结果网格（更新心形状态），
// 并以 OOB 片段同步徽标与面板。toast 非空时追加提示。
func FavouritesChanged(current domain.Outcome, favs domain.FavouritesList, toast string) templ.Component {
	return component(func(h *htmlWriter) {
		writeResults(h, current, favs)
		writeBadge(h, len(favs), true)
		writeFavList(h, favs, true)
		if toast != "" {
			writeToast(h, toast)
		}
	})
}

// SearchResponse 是一次搜索的响应：结果区域内容 + OOB 状态指示器。
func SearchResponse(st domain.Status, out domain.Outcome, favs domain.FavouritesList) templ.Component {
	return component(func(h *htmlWriter) {
		writeResults(h, out, favs)
		writeStatus(h, st, true)
	})
}
