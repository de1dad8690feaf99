package entity

// Msg 是面板 API 统一的响应结构。
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}
