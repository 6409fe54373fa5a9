package service

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmountCents 把十进制金额字符串解析为整数分
// 支持点号和逗号两种小数分隔符，第二位小数之后按四舍五入进位
// （round half away from zero，12.345 -> 1235），不接受负数和非法格式
func ParseAmountCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "amount", Message: "请输入金额"}
	}
	// 兼容逗号小数分隔符
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, &ValidationError{Field: "amount", Message: "金额必须大于 0"}
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, &ValidationError{Field: "amount", Message: "金额格式错误"}
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, &ValidationError{Field: "amount", Message: "金额格式错误"}
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, &ValidationError{Field: "amount", Message: "金额格式错误"}
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "amount", Message: "金额超出范围"}
	}
	if iv > (1<<62)/100 {
		return 0, &ValidationError{Field: "amount", Message: "金额超出范围"}
	}

	cents := iv * 100
	digits := fracPart + "00"
	cents += int64(digits[0]-'0')*10 + int64(digits[1]-'0')
	// 第三位小数 >= 5 时向远离零的方向进位
	if len(fracPart) > 2 && fracPart[2] >= '5' {
		cents++
	}
	return cents, nil
}
