package datapush

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"OrderInsight/src/config"
	"OrderInsight/src/processor"
	"OrderInsight/src/storage"
)

func testDashboard(t *testing.T, store *processor.ResultStore) *Dashboard {
	t.Helper()

	cfg := &config.Config{}
	cfg.Analysis.TargetCity = "sao paulo"
	cfg.Analysis.TargetYear = 2018
	cfg.Dashboard.Addr = ":0"

	logger, err := storage.NewLogger(filepath.Join(t.TempDir(), "app.log"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { logger.Close() })

	return NewDashboard(cfg, store, logger)
}

func TestDashboardIndex(t *testing.T) {
	store := &processor.ResultStore{}
	store.Set(testResult())

	srv := httptest.NewServer(testDashboard(t, store).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("状态码期望200，实际%d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "sao paulo") {
		t.Errorf("页面缺少目标城市")
	}
	if !strings.Contains(string(body), "汇总统计") {
		t.Errorf("页面缺少汇总区块")
	}
}

func TestDashboardIndexBeforeFirstRun(t *testing.T) {
	srv := httptest.NewServer(testDashboard(t, &processor.ResultStore{}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "数据尚未加载") {
		t.Errorf("无结果时应显示占位状态")
	}
}

func TestDashboardSummaryJSON(t *testing.T) {
	store := &processor.ResultStore{}
	store.Set(testResult())

	srv := httptest.NewServer(testDashboard(t, store).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/summary")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var payload struct {
		City    string `json:"city"`
		Summary struct {
			Rows        int      `json:"rows"`
			MeanPayment *float64 `json:"mean_payment"`
			Pearson     *float64 `json:"pearson"`
		} `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}

	if payload.City != "sao paulo" {
		t.Errorf("城市期望sao paulo，实际%s", payload.City)
	}
	if payload.Summary.Rows != 2 {
		t.Errorf("行数期望2，实际%d", payload.Summary.Rows)
	}
	if payload.Summary.MeanPayment == nil || *payload.Summary.MeanPayment != 50 {
		t.Errorf("平均支付金额期望50，实际%+v", payload.Summary.MeanPayment)
	}
	// 两行支付金额与评分都无差异，方差为零，相关系数无效并序列化为null
	if payload.Summary.Pearson != nil {
		t.Errorf("零方差样本的Pearson系数应为null，实际%v", *payload.Summary.Pearson)
	}
}

func TestDashboardSummaryUnavailable(t *testing.T) {
	srv := httptest.NewServer(testDashboard(t, &processor.ResultStore{}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/summary")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("数据未加载时期望503，实际%d", resp.StatusCode)
	}
}
