package render

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"

	"github.com/John-Robertt/herovault/internal/domain"
)

func mustDoc(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render 失败：%v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("解析 HTML 失败：%v", err)
	}
	return doc
}

var batman = domain.Outcome{
	Kind: domain.OutcomeResults,
	Term: "Batman",
	Heroes: []domain.Hero{
		{ID: "70", Name: "Batman", ImageURL: "https://img.test/70.jpg", FullName: "Terry McGinnis",
			Stats: domain.PowerStats{Intelligence: "81", Strength: "40", Speed: "29"}},
		{ID: "71", Name: "Batman II", ImageURL: "https://img.test/71.jpg"},
	},
	Movies: []domain.Movie{{Title: "Batman Begins", Year: "2005"}, {Title: "The Batman", Year: "2022"}},
}

func TestResults_OneCardPerHero(t *testing.T) {
	doc := mustDoc(t, Results(batman, nil))
	if n := doc.Find(".hero-card").Length(); n != len(batman.Heroes) {
		t.Fatalf("期望 %d 张卡片，实际 %d", len(batman.Heroes), n)
	}
	if doc.Find("p.notice").Length() != 0 {
		t.Fatalf("有结果时不应出现提示")
	}

	first := doc.Find(".hero-card").First()
	if got := first.Find("h3").Text(); got != "Batman" {
		t.Fatalf("名称不符合预期：%q", got)
	}
	if got := first.Find("small").Text(); got != "Terry McGinnis" {
		t.Fatalf("全名不符合预期：%q", got)
	}
	var pills []string
	first.Find(".pill").Each(func(_ int, s *goquery.Selection) { pills = append(pills, s.Text()) })
	if strings.Join(pills, "|") != "INT: 81|STR: 40|SPD: 29" {
		t.Fatalf("属性不符合预期：%v", pills)
	}
	if got := first.Find(".movie").Length(); got != 2 {
		t.Fatalf("期望 2 条电影，实际 %d", got)
	}
	if got := first.Find(".movie").First().Text(); got != "Batman Begins (2005)" {
		t.Fatalf("电影文案不符合预期：%q", got)
	}

	second := doc.Find(".hero-card").Eq(1)
	if got := second.Find("small").Text(); got != PlaceholderAlterEgo {
		t.Fatalf("缺失全名应显示占位，实际 %q", got)
	}
}

func TestResults_NoMoviesPlaceholder(t *testing.T) {
	out := batman
	out.Movies = nil
	doc := mustDoc(t, Results(out, nil))
	doc.Find(".hero-card").Each(func(i int, s *goquery.Selection) {
		if got := strings.TrimSpace(s.Find(".movie-list p").Text()); got != PlaceholderMovies {
			t.Fatalf("card[%d] 期望占位 %q，实际 %q", i, PlaceholderMovies, got)
		}
	})
}

func TestResults_FavouriteActiveState(t *testing.T) {
	favs := domain.FavouritesList{{ID: "70", Name: "Batman"}}
	doc := mustDoc(t, Results(batman, favs))

	doc.Find(".hero-card").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-id")
		btn := s.Find("button.fav-btn-float")
		active := btn.HasClass("active")
		if active != favs.Contains(id) {
			t.Fatalf("id=%s 收藏状态不一致：active=%v", id, active)
		}
	})
}

func TestResults_NotificationsOnly(t *testing.T) {
	for _, out := range []domain.Outcome{
		{Kind: domain.OutcomeNotFound},
		{Kind: domain.OutcomeFailed},
	} {
		doc := mustDoc(t, Results(out, nil))
		if doc.Find(".hero-card").Length() != 0 {
			t.Fatalf("%s 不应渲染卡片", out.Kind)
		}
		if got := doc.Find("p.notice").Text(); got != out.Message() {
			t.Fatalf("%s 提示不符合预期：%q", out.Kind, got)
		}
	}
}

func TestCard_EscapesAndCarriesToggleVals(t *testing.T) {
	hero := domain.Hero{ID: "1", Name: `O'Neil <b>`, ImageURL: "https://img.test/1.jpg"}
	var b strings.Builder
	if err := Card(hero, nil, false).Render(context.Background(), &b); err != nil {
		t.Fatalf("Render 失败：%v", err)
	}
	if strings.Contains(b.String(), "<b>") {
		t.Fatalf("名称未转义：%s", b.String())
	}

	doc := mustDoc(t, Card(hero, nil, false))
	vals, ok := doc.Find("button.fav-btn-float").Attr("hx-vals")
	if !ok {
		t.Fatalf("收藏按钮缺少 hx-vals")
	}
	if vals != `{"id":"1","img":"https://img.test/1.jpg","name":"O'Neil \u003cb\u003e"}` {
		t.Fatalf("hx-vals 不符合预期：%s", vals)
	}
}

func TestFavouritesChanged_OOBFragments(t *testing.T) {
	favs := domain.FavouritesList{{ID: "70", Name: "Batman", Img: "b.jpg"}}
	doc := mustDoc(t, FavouritesChanged(batman, favs, ""))

	if got := doc.Find("#" + BadgeID).Text(); got != "1" {
		t.Fatalf("徽标应为 1，实际 %q", got)
	}
	if v, _ := doc.Find("#" + BadgeID).Attr("hx-swap-oob"); v != "true" {
		t.Fatalf("徽标应为 OOB 片段")
	}
	if n := doc.Find("#" + FavListID + " .fav-item").Length(); n != 1 {
		t.Fatalf("面板应有 1 项，实际 %d", n)
	}
	if n := doc.Find(".hero-card button.active").Length(); n != 1 {
		t.Fatalf("网格中应有 1 个激活的收藏按钮，实际 %d", n)
	}
	if doc.Find("#"+ToastsID).Length() != 0 {
		t.Fatalf("无提示时不应输出 toast")
	}

	doc = mustDoc(t, FavouritesChanged(batman, nil, domain.MsgVaultWrite))
	if got := doc.Find("#" + ToastsID + " .toast").Text(); got != domain.MsgVaultWrite {
		t.Fatalf("toast 不符合预期：%q", got)
	}
	if got := doc.Find(".fav-empty").Length(); got != 1 {
		t.Fatalf("空收藏应显示空面板提示")
	}
}

func TestPage_InitialState(t *testing.T) {
	doc := mustDoc(t, Page(PageData{
		Status:     domain.StatusIdle,
		Favourites: domain.FavouritesList{{ID: "1"}, {ID: "2"}},
	}))
	if got := doc.Find("#" + BadgeID).Text(); got != "2" {
		t.Fatalf("徽标应为 2，实际 %q", got)
	}
	if got := doc.Find("#" + GridID).Children().Length(); got != 0 {
		t.Fatalf("初始结果区域应为空，实际 %d 个子节点", got)
	}
	if v, _ := doc.Find("#" + StatusID).Attr("data-status"); v != string(domain.StatusIdle) {
		t.Fatalf("状态应为 idle，实际 %q", v)
	}
	if doc.Find("form#searchForm input[name='q']").Length() != 1 {
		t.Fatalf("缺少搜索输入框")
	}
}
