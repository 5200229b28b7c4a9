package domain

// HeroID 是 hero API 返回的标识（接口里是字符串，偶尔是数字；统一成字符串）。
type HeroID string

// Hero 是一次搜索返回的单条 hero 记录（瞬时数据，不落盘）。
type Hero struct {
	ID       HeroID
	Name     string
	ImageURL string
	// FullName 来自 biography["full-name"]，允许为空。
	FullName string
	Stats    PowerStats
}

// PowerStats 保留 API 的原始字符串：未知值在接口里是 "null"，不做数值化。
type PowerStats struct {
	Intelligence string
	Strength     string
	Speed        string
	Durability   string
	Power        string
	Combat       string
}

// Movie 是电影库的一条搜索结果。
//
// 注意：Movie 与 Hero 之间没有共享键，只是“同一次搜索”里取回的；
// 这是已知的不精确关联，按 best-effort 展示。
type Movie struct {
	Title string
	Year  string
}

// Favourite 把 Hero 投影为可持久化的 FavouriteEntry。
func (h Hero) Favourite() FavouriteEntry {
	return FavouriteEntry{ID: string(h.ID), Name: h.Name, Img: h.ImageURL}
}
