package errorutil

import (
	"errors"
	"fmt"
)

// Kind 错误类别（封闭集合）
// 调用方通过 Kind 区分可重试/终态错误，禁止字符串匹配
type Kind string

const (
	// KindValidation 入参校验失败，立即返回，永不重试
	KindValidation Kind = "VALIDATION_ERROR"
	// KindElementNotFound 页面元素未命中（逻辑错误，不重试）
	KindElementNotFound Kind = "ELEMENT_NOT_FOUND"
	// KindInvalidImage 图像不可用（零尺寸/解码失败，不重试）
	KindInvalidImage Kind = "INVALID_IMAGE"
	// KindCaptureTimeout 页面导航/元素解析超时（可重试）
	KindCaptureTimeout Kind = "CAPTURE_TIMEOUT"
	// KindRateLimit 外部依赖限流（可重试）
	KindRateLimit Kind = "RATE_LIMIT"
	// KindTransient 瞬时网络/5xx 错误（可重试）
	KindTransient Kind = "TRANSIENT_NETWORK"
	// KindAuthorization 认证/授权失败（终态，需人工介入）
	KindAuthorization Kind = "AUTHORIZATION_ERROR"
	// KindNotFound 资源不存在（终态，不重试）
	KindNotFound Kind = "NOT_FOUND"
	// KindDesignExport 设计稿导出彻底失败（直连 + 浏览器兜底均失败）
	KindDesignExport Kind = "DESIGN_EXPORT_ERROR"
	// KindInternal 未分类内部错误（默认不重试）
	KindInternal Kind = "INTERNAL_ERROR"
)

// Error 错误结构（类别 + 可重试标记 + 原因链）
type Error struct {
	Kind       Kind   `json:"kind"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`

	cause error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 暴露原因链
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause 附加底层原因
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// WithDetails 附加开发调试信息
func (e *Error) WithDetails(details string) *Error {
	e.DevDetails = details
	return e
}

func newError(kind Kind, code int, retryable bool, format string, args ...interface{}) *Error {
	return &Error{
		Kind:      kind,
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Retryable: retryable,
	}
}

// Validation 入参校验错误
func Validation(format string, args ...interface{}) *Error {
	return newError(KindValidation, 400, false, format, args...)
}

// ElementNotFound 元素未命中
func ElementNotFound(format string, args ...interface{}) *Error {
	return newError(KindElementNotFound, 404, false, format, args...)
}

// InvalidImage 图像不可用
func InvalidImage(format string, args ...interface{}) *Error {
	return newError(KindInvalidImage, 422, false, format, args...)
}

// CaptureTimeout 截图超时
func CaptureTimeout(format string, args ...interface{}) *Error {
	return newError(KindCaptureTimeout, 504, true, format, args...)
}

// RateLimit 限流
func RateLimit(format string, args ...interface{}) *Error {
	return newError(KindRateLimit, 429, true, format, args...)
}

// Transient 瞬时网络错误
func Transient(format string, args ...interface{}) *Error {
	return newError(KindTransient, 500, true, format, args...)
}

// Authorization 认证失败
func Authorization(format string, args ...interface{}) *Error {
	return newError(KindAuthorization, 401, false, format, args...)
}

// NotFound 资源不存在
func NotFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, 404, false, format, args...)
}

// Internal 内部错误
func Internal(format string, args ...interface{}) *Error {
	return newError(KindInternal, 500, false, format, args...)
}

// DesignExport 设计稿导出错误，同时携带直连与兜底两条失败原因
func DesignExport(exportCause, fallbackCause error) *Error {
	e := newError(KindDesignExport, 502, false,
		"design export failed: direct=%v, fallback=%v", exportCause, fallbackCause)
	e.cause = errors.Join(exportCause, fallbackCause)
	return e
}

// IsRetryable 判断错误是否可重试
// 非 *Error 类型默认不可重试（未知错误交给人处理）
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// KindOf 提取错误类别
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UnWrapResponse 提取 *Error 用于响应序列化
// 非 *Error 的错误按内部错误归类
func UnWrapResponse(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("%v", err)
}

// Wrap 包装未知错误（保持原因链，默认不可重试）
func Wrap(err error, msg string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	wrapped := newError(KindInternal, 500, false, "%s", msg)
	wrapped.cause = err
	return wrapped
}
