package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDurationJSON(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"5m"`), &d); err != nil {
		t.Fatal(err)
	}
	if time.Duration(d) != 5*time.Minute {
		t.Errorf("期望5m，实际%v", time.Duration(d))
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"5m0s"` {
		t.Errorf("序列化异常: %s", out)
	}

	if err := json.Unmarshal([]byte(`"不是时长"`), &d); err == nil {
		t.Error("非法时长应报错")
	}
}

func TestGetColumnFallback(t *testing.T) {
	dcfg := &DataConfig{Columns: map[string]string{
		ColOrderID: "id_do_pedido",
	}}

	if got := dcfg.GetColumn(ColOrderID); got != "id_do_pedido" {
		t.Errorf("期望映射列名，实际%s", got)
	}
	// 未配置的逻辑列返回自身
	if got := dcfg.GetColumn(ColPaymentValue); got != ColPaymentValue {
		t.Errorf("期望回退到逻辑列名，实际%s", got)
	}
}

func TestLoadConfigs(t *testing.T) {
	dir := t.TempDir()

	cfgJSON := `{
		"data_dir": "./data",
		"analysis": {"target_city": "sao paulo", "target_year": 2018, "top_cities": 5, "refresh_interval": "1h"},
		"log_name": "app.log"
	}`
	dcfgJSON := `{"columns": {}, "score_bounds": {"min": 1, "max": 5}}`

	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(cfgJSON), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "analysis.json"), []byte(dcfgJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, dcfg, err := loadConfigs(dir, "config.json", "analysis.json")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Analysis.TargetCity != "sao paulo" || cfg.Analysis.TargetYear != 2018 {
		t.Errorf("分析参数解析异常: %+v", cfg.Analysis)
	}
	if time.Duration(cfg.Analysis.RefreshInterval) != time.Hour {
		t.Errorf("刷新间隔期望1h，实际%v", time.Duration(cfg.Analysis.RefreshInterval))
	}
	if dcfg.ScoreBounds.Max != 5 {
		t.Errorf("评分上界期望5，实际%d", dcfg.ScoreBounds.Max)
	}
}

func TestLoadConfigsMissingFile(t *testing.T) {
	if _, _, err := loadConfigs(t.TempDir(), "config.json", "analysis.json"); err == nil {
		t.Error("配置文件缺失应报错")
	}
}
