package heroapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/John-Robertt/herovault/internal/domain"
	"github.com/John-Robertt/herovault/internal/source"
)

// Name 用于错误与日志中的来源标记。
const Name = "hero"

// Client 实现 superheroapi.com 风格的搜索接口：GET <BaseURL>/search/<term>。
//
// BaseURL 通常包含 access token 路径段，例如 https://superheroapi.com/api.php/<token>。
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

var _ source.HeroSource = (*Client)(nil)

type searchResponse struct {
	Response string   `json:"response"`
	Error    string   `json:"error"`
	Results  []result `json:"results"`
}

type result struct {
	ID    flexString `json:"id"`
	Name  string     `json:"name"`
	Image struct {
		URL string `json:"url"`
	} `json:"image"`
	Biography struct {
		FullName string `json:"full-name"`
	} `json:"biography"`
	Powerstats struct {
		Intelligence flexString `json:"intelligence"`
		Strength     flexString `json:"strength"`
		Speed        flexString `json:"speed"`
		Durability   flexString `json:"durability"`
		Power        flexString `json:"power"`
		Combat       flexString `json:"combat"`
	} `json:"powerstats"`
}

// SearchURL 返回 term 对应的搜索地址（term 按路径段转义）。
func (c *Client) SearchURL(term string) string {
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/") + "/search/" + url.PathEscape(term)
}

// SearchHeroes 按名称搜索 hero。
func (c *Client) SearchHeroes(ctx context.Context, term string) ([]domain.Hero, bool, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, false, errors.New("term 不能为空")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return nil, false, &source.Error{Source: Name, Stage: "fetch", Err: errors.New("hero_base_url 未配置")}
	}

	var sr searchResponse
	if err := source.GetJSON(ctx, c.HTTP, Name, c.SearchURL(term), &sr); err != nil {
		return nil, false, err
	}
	if sr.Response != "success" || len(sr.Results) == 0 {
		return nil, false, nil
	}

	heroes := make([]domain.Hero, 0, len(sr.Results))
	for _, r := range sr.Results {
		heroes = append(heroes, domain.Hero{
			ID:       domain.HeroID(r.ID),
			Name:     strings.TrimSpace(r.Name),
			ImageURL: strings.TrimSpace(r.Image.URL),
			FullName: strings.TrimSpace(r.Biography.FullName),
			Stats: domain.PowerStats{
				Intelligence: string(r.Powerstats.Intelligence),
				Strength:     string(r.Powerstats.Strength),
				Speed:        string(r.Powerstats.Speed),
				Durability:   string(r.Powerstats.Durability),
				Power:        string(r.Powerstats.Power),
				Combat:       string(r.Powerstats.Combat),
			},
		})
	}
	return heroes, true, nil
}

// flexString 接受 JSON 字符串或数字（接口文档写的是字符串，但历史上出现过数字）。
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
