package domain

import "strings"

// FavouriteEntry 是收藏项的持久化形态（字段名与历史存量数据保持一致：id/name/img）。
type FavouriteEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Img  string `json:"img"`
}

// FavouritesList 是按插入顺序排列、按 ID 唯一的收藏列表。
type FavouritesList []FavouriteEntry

// IndexOf 返回 id 所在下标；不存在返回 -1。
func (l FavouritesList) IndexOf(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

func (l FavouritesList) Contains(id string) bool { return l.IndexOf(id) >= 0 }

// Toggled 返回切换 e.ID 之后的新列表（不修改 l）。
// added=true 表示追加到末尾；false 表示移除了已有条目。
func (l FavouritesList) Toggled(e FavouriteEntry) (next FavouritesList, added bool) {
	idx := l.IndexOf(e.ID)
	if idx < 0 {
		next = make(FavouritesList, 0, len(l)+1)
		next = append(next, l...)
		return append(next, e), true
	}
	return l.without(idx), false
}

// Without 返回移除 id 之后的新列表；id 不存在时 ok=false 且返回 l 本身。
func (l FavouritesList) Without(id string) (next FavouritesList, ok bool) {
	idx := l.IndexOf(id)
	if idx < 0 {
		return l, false
	}
	return l.without(idx), true
}

func (l FavouritesList) without(idx int) FavouritesList {
	next := make(FavouritesList, 0, len(l)-1)
	next = append(next, l[:idx]...)
	return append(next, l[idx+1:]...)
}

// Normalize 丢弃 ID 为空的条目，并按首次出现去重（用于加载外部存量数据）。
func (l FavouritesList) Normalize() FavouritesList {
	seen := make(map[string]struct{}, len(l))
	out := make(FavouritesList, 0, len(l))
	for _, e := range l {
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			continue
		}
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
