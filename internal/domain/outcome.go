package domain

// OutcomeKind 是一次搜索的结果分类（错误分类在这里收敛，不再向上传播结构化错误）。
type OutcomeKind string

const (
	OutcomeEmpty    OutcomeKind = "empty"     // 空输入：静默忽略，不发请求
	OutcomeNotFound OutcomeKind = "not_found" // hero 接口返回失败或空结果
	OutcomeFailed   OutcomeKind = "failed"    // 任一请求网络/解析失败
	OutcomeResults  OutcomeKind = "results"
)

// 面向用户的提示文案。
const (
	MsgNotFound   = "No hero found in the database."
	MsgConnection = "Signal lost. Check connection."
	MsgVaultWrite = "Vault write failed. Favourites unchanged."
)

// Outcome 是一次搜索的最终产物（渲染层直接消费）。
type Outcome struct {
	Kind   OutcomeKind
	Term   string
	Heroes []Hero
	// Movies 最多 3 条；nil 表示没有电影记录（或未启用电影查询）。
	Movies []Movie
	// Err 仅用于日志诊断（OutcomeFailed 时非空）。
	Err error
}

// Message 返回需要替换结果区域的提示文案；结果类返回空串。
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeNotFound:
		return MsgNotFound
	case OutcomeFailed:
		return MsgConnection
	default:
		return ""
	}
}
