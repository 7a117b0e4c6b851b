// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"github.com/gin-gonic/gin"

	"linkedin-post-ai-api/internal/domain/repository"
)

// PageQuery 分页查询参数，非法值按默认值处理而不报错
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// BindPage 从查询串读取分页参数并收敛到合法区间
func BindPage(c *gin.Context) repository.Pagination {
	var q PageQuery
	// 非数字时 gin 会部分填充，直接忽略错误
	_ = c.ShouldBindQuery(&q)
	return repository.NewPagination(q.Page, q.PageSize)
}

// BindPostID 路径参数 pid
func BindPostID(c *gin.Context) string {
	return c.Param("pid")
}

// BindSectionKey 路径参数 section
func BindSectionKey(c *gin.Context) string {
	return c.Param("section")
}
