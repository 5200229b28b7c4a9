package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/John-Robertt/herovault/internal/domain"
	"github.com/John-Robertt/herovault/internal/source"
)

const Name = "movie"

// DefaultLimit 是每次搜索最多展示的电影条数。
const DefaultLimit = 3

// Client 实现 OMDb 的标题搜索：GET <BaseURL>?apikey=<key>&s=<term>&type=movie。
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

var _ source.MovieSource = (*Client)(nil)

type searchResponse struct {
	// Search 在无匹配时缺失或为 null（此时 Response="False"）。
	Search []struct {
		Title string `json:"Title"`
		Year  string `json:"Year"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// SearchURL 在 BaseURL 原有 query 的基础上追加 apikey/s/type。
func (c *Client) SearchURL(term string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil {
		return "", err
	}
	q := u.Query()
	if k := strings.TrimSpace(c.APIKey); k != "" {
		q.Set("apikey", k)
	}
	q.Set("s", term)
	q.Set("type", "movie")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SearchMovies 返回最多 limit 条电影；limit<=0 时使用 DefaultLimit。
func (c *Client) SearchMovies(ctx context.Context, term string, limit int) ([]domain.Movie, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.New("term 不能为空")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	u, err := c.SearchURL(term)
	if err != nil {
		return nil, &source.Error{Source: Name, Stage: "fetch", Err: err}
	}

	var sr searchResponse
	if err := source.GetJSON(ctx, c.HTTP, Name, u, &sr); err != nil {
		return nil, err
	}
	if len(sr.Search) == 0 {
		return nil, nil
	}
	if len(sr.Search) > limit {
		sr.Search = sr.Search[:limit]
	}
	movies := make([]domain.Movie, 0, len(sr.Search))
	for _, m := range sr.Search {
		movies = append(movies, domain.Movie{
			Title: strings.TrimSpace(m.Title),
			Year:  strings.TrimSpace(m.Year),
		})
	}
	return movies, nil
}
