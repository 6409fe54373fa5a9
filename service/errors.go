package service

import "errors"

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("记录不存在")

// ValidationError 用户输入不合法，页面在对应字段旁展示 Message
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AuthError 凭证校验失败
type AuthError struct {
	Field   string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// AsValidation 判断 err 是否为输入校验错误
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsAuth 判断 err 是否为认证错误
func AsAuth(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
