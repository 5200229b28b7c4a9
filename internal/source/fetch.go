package source

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBody 限制单个响应体大小（接口返回的是小 JSON，超过即视为异常）。
const maxBody = 4 << 20

// GetJSON 发起 GET 并把响应体解码到 v。
// 失败按阶段包装为 *Error：请求/状态码为 fetch，JSON 为 decode。
//
// 非 2xx 时仍尝试解码：两个接口都会用非 2xx 返回业务 JSON（例如 key 无效时的 401），
// 能解码就交给调用方按内容判断；解码不了才返回 HTTPStatusError。
func GetJSON(ctx context.Context, c *http.Client, name, u string, v any) error {
	if c == nil {
		return &Error{Source: name, Stage: "fetch", Err: errors.New("http client 不能为空")}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &Error{Source: name, Stage: "fetch", Err: err}
	}
	resp, err := c.Do(req)
	if err != nil {
		return &Error{Source: name, Stage: "fetch", Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &Error{Source: name, Stage: "fetch", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if json.Valid(b) && json.Unmarshal(b, v) == nil {
			return nil
		}
		return &Error{Source: name, Stage: "fetch", Err: &HTTPStatusError{URL: u, StatusCode: resp.StatusCode}}
	}
	if err := json.Unmarshal(b, v); err != nil {
		return &Error{Source: name, Stage: "decode", Err: err}
	}
	return nil
}
