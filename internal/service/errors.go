package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mdibnuahmad159-cpu/studio-sub000/internal/dto"
)

// ErrForbidden 写操作缺少管理员权限
var ErrForbidden = errors.New("无权限执行该操作")

// ImportValidationError 导入文件校验失败（整份文件被拒绝，未写入任何数据）
type ImportValidationError struct {
	Errors []dto.ImportError
}

func (e *ImportValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for i, ie := range e.Errors {
		if i == 5 {
			parts = append(parts, fmt.Sprintf("... 共 %d 处错误", len(e.Errors)))
			break
		}
		if ie.Column != "" {
			parts = append(parts, fmt.Sprintf("第%d行[%s]: %s", ie.Row, ie.Column, ie.Reason))
		} else {
			parts = append(parts, fmt.Sprintf("第%d行: %s", ie.Row, ie.Reason))
		}
	}
	return "导入校验失败: " + strings.Join(parts, "; ")
}
