package source

import (
	"errors"
	"fmt"
)

// HTTPStatusError 表示接口返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsHTTPStatus 判断 err 链上是否有 HTTPStatusError，并返回状态码。
func IsHTTPStatus(err error) (int, bool) {
	var e *HTTPStatusError
	if errors.As(err, &e) && e != nil {
		return e.StatusCode, true
	}
	return 0, false
}
