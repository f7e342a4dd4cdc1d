package response

import (
	"encoding/json"

	"github.com/s2265681/Project-Auto-Testing/pkg/errorutil"
)

// ResultI 业务处理结果接口
type ResultI interface {
	// ResultID 返回业务 ID
	ResultID() string
}

// Response 业务处理响应
type Response struct {
	Result ResultI          // 业务结果
	Err    *errorutil.Error // 业务错误, nil 表示成功
}

// WrapResponse 包装业务结果与错误为响应
func WrapResponse(result ResultI, err error) *Response {
	return &Response{
		Result: result,
		Err:    errorutil.UnWrapResponse(err),
	}
}

// Success 是否成功
func (r *Response) Success() bool {
	return r.Err == nil
}

// Marshal 序列化业务结果
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r.Result)
}
