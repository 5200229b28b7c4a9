package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout 是单个请求的总超时（0 表示不设超时）。
const DefaultTimeout = 20 * time.Second

// UserAgent 会写入所有出站请求（调用方已设置时不覆盖）。
const UserAgent = "herovault/1 (+https://github.com/John-Robertt/herovault)"

// Transport 统一出站请求的头部策略：UA + Accept: application/json。
//
// 约束：不做重试。任何失败对本次搜索都是终态，由上层转换为提示文案。
type Transport struct {
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		return nil, errors.New("nil base transport")
	}

	// Clone 避免在 RoundTripper 内部修改调用方的 request。
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", UserAgent)
	}
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", "application/json")
	}
	return base.RoundTrip(r)
}

// NewClient 构造用于 hero/movie 接口的 HTTP client。
//
// 规则：
// - proxyURL 非空：所有请求走该代理
// - timeout<=0：不设总超时（仅依赖 request context）
func NewClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		MaxIdleConnsPerHost:   2,
	}

	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy.url 缺少 scheme 或 host")
		}
		base.Proxy = http.ProxyURL(u)
	}

	if timeout < 0 {
		timeout = 0
	}
	return &http.Client{
		Transport: &Transport{Base: base},
		Timeout:   timeout,
	}, nil
}
