package repository

import "gorm.io/gorm"

// 单页上限，与 handler 层的 page_size 钳制保持一致
const maxPageSize = 200

// paginate 应用分页；pageSize<=0 表示不分页，越界页码回落到首页
func paginate(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}
