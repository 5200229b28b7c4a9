package domain

import "fmt"

// Status 是加载指示器的状态机。
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusResults Status = "showing-results"
)

// Event 驱动 Status 迁移。
type Event string

const (
	EventSubmit  Event = "submit"  // 非空搜索词提交
	EventMatched Event = "matched" // 搜索成功且有结果
	EventFailed  Event = "failed"  // 网络/解析失败或无匹配
)

// TransitionError 表示状态机拒绝了一次迁移。
type TransitionError struct {
	From  Status
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("非法状态迁移：%s --%s-->", e.From, e.Event)
}

// Next 计算迁移结果。没有终态：error/showing-results 都可以再次 submit。
//
// 迁移表（固定）：
// - idle/showing-results/error + submit  -> loading
// - loading + matched                     -> showing-results
// - loading + failed                      -> error
func (s Status) Next(ev Event) (Status, error) {
	switch ev {
	case EventSubmit:
		switch s {
		case StatusIdle, StatusResults, StatusError:
			return StatusLoading, nil
		}
	case EventMatched:
		if s == StatusLoading {
			return StatusResults, nil
		}
	case EventFailed:
		if s == StatusLoading {
			return StatusError, nil
		}
	}
	return s, &TransitionError{From: s, Event: ev}
}
