// email_handler.go
package email

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"OrderInsight/src/utils"
)

// 接受的数据集附件扩展名
var datasetExts = []string{".csv", ".xlsx"}

// DatasetAttachmentHandler 把匹配主题的邮件里的数据集附件保存到数据目录
// 保存后文件目录监控会触发重新分析
type DatasetAttachmentHandler struct {
	TargetSubject string          // 目标邮件主题关键词
	DataDir       string          // 附件保存目录
	processedUIDs map[uint32]bool // 已处理邮件UID记录
	mu            sync.RWMutex    // 保护processedUIDs的读写锁
}

func NewDatasetAttachmentHandler(subject, dataDir string) *DatasetAttachmentHandler {
	return &DatasetAttachmentHandler{
		TargetSubject: subject,
		DataDir:       dataDir,
		processedUIDs: make(map[uint32]bool),
	}
}

// isProcessed 检查邮件是否已处理过（线程安全）
func (h *DatasetAttachmentHandler) isProcessed(uid uint32) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.processedUIDs[uid]
}

// markAsProcessed 标记邮件为已处理（线程安全）
func (h *DatasetAttachmentHandler) markAsProcessed(uid uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.processedUIDs[uid] = true
}

// Handle 处理单个邮件，返回保存的附件数量
func (h *DatasetAttachmentHandler) Handle(e *Email) (int, error) {
	if e == nil || h.isProcessed(e.UID) {
		return 0, nil
	}

	// 主题不匹配的邮件直接跳过
	if !strings.Contains(e.Subject, h.TargetSubject) {
		return 0, nil
	}

	if err := os.MkdirAll(h.DataDir, 0755); err != nil {
		return 0, fmt.Errorf("创建目录失败: %w", err)
	}

	saved := 0
	for _, attachment := range e.Attachments {
		ext := strings.ToLower(filepath.Ext(attachment.Filename))
		if !utils.Contains(datasetExts, ext) {
			continue
		}

		// 只取基础文件名，防止附件名里带路径
		filePath := filepath.Join(h.DataDir, filepath.Base(attachment.Filename))
		if err := os.WriteFile(filePath, attachment.Content, 0644); err != nil {
			return saved, fmt.Errorf("保存附件失败: %w", err)
		}
		saved++
	}

	if saved > 0 {
		h.markAsProcessed(e.UID)
	}

	return saved, nil
}
