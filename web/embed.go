// Package web 嵌入页面模板
package web

import "embed"

// TemplatesFS 页面模板文件
//
//go:embed templates/*.html
var TemplatesFS embed.FS
