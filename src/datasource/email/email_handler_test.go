package email

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"OrderInsight/src/storage"
)

func datasetMail(uid uint32, subject string, attachments ...*Attachment) *Email {
	return &Email{
		UID:         uid,
		Date:        time.Now(),
		From:        "data@supplier.example",
		Subject:     subject,
		Attachments: attachments,
	}
}

func TestHandleSavesDatasetAttachments(t *testing.T) {
	dir := t.TempDir()
	h := NewDatasetAttachmentHandler("数据集更新", dir)

	e := datasetMail(1, "数据集更新 2018-08",
		&Attachment{Filename: "orders.csv", Content: []byte("order_id\no1\n")},
		&Attachment{Filename: "说明.txt", Content: []byte("跳过")},
	)

	saved, err := h.Handle(e)
	if err != nil {
		t.Fatal(err)
	}
	if saved != 1 {
		t.Errorf("期望保存1个附件，实际%d", saved)
	}

	data, err := os.ReadFile(filepath.Join(dir, "orders.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "order_id\no1\n" {
		t.Errorf("附件内容异常: %s", data)
	}
	// 非数据集扩展名不落盘
	if _, err := os.Stat(filepath.Join(dir, "说明.txt")); !os.IsNotExist(err) {
		t.Error("txt附件不应被保存")
	}
}

func TestHandleSkipsMismatchedSubject(t *testing.T) {
	dir := t.TempDir()
	h := NewDatasetAttachmentHandler("数据集更新", dir)

	e := datasetMail(2, "会议通知",
		&Attachment{Filename: "orders.csv", Content: []byte("x")})

	saved, err := h.Handle(e)
	if err != nil {
		t.Fatal(err)
	}
	if saved != 0 {
		t.Errorf("主题不匹配时不应保存附件，实际%d", saved)
	}
}

func TestHandleDeduplicatesByUID(t *testing.T) {
	dir := t.TempDir()
	h := NewDatasetAttachmentHandler("数据集更新", dir)

	e := datasetMail(3, "数据集更新",
		&Attachment{Filename: "payments.csv", Content: []byte("v1")})

	if saved, _ := h.Handle(e); saved != 1 {
		t.Fatalf("首次处理应保存附件，实际%d", saved)
	}

	// 同一UID重复投递不再处理
	e.Attachments[0].Content = []byte("v2")
	if saved, _ := h.Handle(e); saved != 0 {
		t.Errorf("重复邮件不应再保存，实际%d", saved)
	}

	data, _ := os.ReadFile(filepath.Join(dir, "payments.csv"))
	if string(data) != "v1" {
		t.Errorf("重复投递覆盖了已保存文件: %s", data)
	}
}

func TestHandleStripsAttachmentPath(t *testing.T) {
	dir := t.TempDir()
	h := NewDatasetAttachmentHandler("数据集更新", dir)

	e := datasetMail(4, "数据集更新",
		&Attachment{Filename: "../evil/reviews.csv", Content: []byte("r")})

	if _, err := h.Handle(e); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "reviews.csv")); err != nil {
		t.Errorf("附件应保存在数据目录内: %v", err)
	}
}

// fakeMailService 模拟邮件服务，测试检查流程不依赖真实IMAP服务器
type fakeMailService struct {
	emails  []*Email
	fetched bool
}

func (f *fakeMailService) Connect() error { return nil }
func (f *fakeMailService) Disconnect()    {}
func (f *fakeMailService) FetchUnreadEmails() ([]*Email, error) {
	f.fetched = true
	return f.emails, nil
}

func TestCheckAndProcessEmails(t *testing.T) {
	dir := t.TempDir()
	logger, err := storage.NewLogger(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	svc := &fakeMailService{emails: []*Email{
		datasetMail(10, "数据集更新",
			&Attachment{Filename: "orders.csv", Content: []byte("o")},
			&Attachment{Filename: "reviews.xlsx", Content: []byte("r")}),
		datasetMail(11, "其他邮件",
			&Attachment{Filename: "customers.csv", Content: []byte("c")}),
	}}
	h := NewDatasetAttachmentHandler("数据集更新", dir)

	saved, err := CheckAndProcessEmails(svc, h, logger)
	if err != nil {
		t.Fatal(err)
	}
	if !svc.fetched {
		t.Error("应调用邮件服务获取未读邮件")
	}
	if saved != 2 {
		t.Errorf("期望保存2个附件，实际%d", saved)
	}
}
