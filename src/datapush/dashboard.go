// dashboard.go
package datapush

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"OrderInsight/src/config"
	"OrderInsight/src/processor"
	"OrderInsight/src/storage"
)

// Dashboard 提供分析结果的Web界面和JSON接口
type Dashboard struct {
	cfg    *config.Config
	store  *processor.ResultStore
	logger *storage.Logger
}

func NewDashboard(cfg *config.Config, store *processor.ResultStore, logger *storage.Logger) *Dashboard {
	return &Dashboard{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
}

// Handler 返回仪表盘的路由
func (d *Dashboard) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", d.handleIndex)
	mux.HandleFunc("/api/summary", d.handleSummary)
	mux.HandleFunc("/logs", d.handleLogs)
	return mux
}

// Start 启动HTTP服务，阻塞直到出错
func (d *Dashboard) Start() error {
	d.logger.Info("仪表盘已启动: " + d.cfg.Dashboard.Addr)
	return http.ListenAndServe(d.cfg.Dashboard.Addr, d.Handler())
}

type indexData struct {
	City   string
	Year   int
	Result *processor.Result
}

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := indexData{
		City:   d.cfg.Analysis.TargetCity,
		Year:   d.cfg.Analysis.TargetYear,
		Result: d.store.Get(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		d.logger.Error("渲染仪表盘失败: " + err.Error())
	}
}

// summaryPayload JSON接口的响应体，无效统计量为null
type summaryPayload struct {
	City      string               `json:"city"`
	Year      int                  `json:"year"`
	UpdatedAt string               `json:"updated_at"`
	Summary   processor.Summary    `json:"summary"`
	Boards    processor.CityBoards `json:"boards"`
}

func (d *Dashboard) handleSummary(w http.ResponseWriter, r *http.Request) {
	result := d.store.Get()
	if result == nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, processor.ErrNoData), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	payload := summaryPayload{
		City:      d.cfg.Analysis.TargetCity,
		Year:      d.cfg.Analysis.TargetYear,
		UpdatedAt: result.UpdatedAt.Format("2006-01-02 15:04:05"),
		Summary:   result.Summary,
		Boards:    result.Boards,
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		d.logger.Error("序列化汇总数据失败: " + err.Error())
	}
}

// handleLogs 以chunked方式向客户端持续推送日志
func (d *Dashboard) handleLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Transfer-Encoding", "chunked")

	logChan := d.logger.Subscribe()

	for {
		select {
		case msg := <-logChan:
			if _, err := fmt.Fprintln(w, msg); err != nil {
				// 写入失败说明客户端已断开
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="zh">
<head>
<meta charset="utf-8">
<title>订单分析仪表盘</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #bbb; padding: 4px 12px; text-align: left; }
h2 { margin-top: 1.5em; }
.cols { display: flex; gap: 3em; flex-wrap: wrap; }
.muted { color: #888; }
</style>
</head>
<body>
<h1>订单分析仪表盘：{{.City}} / {{.Year}}年</h1>
{{if not .Result}}
<p class="muted">数据尚未加载。</p>
{{else}}
<p class="muted">更新时间：{{.Result.UpdatedAt.Format "2006-01-02 15:04:05"}}</p>

<h2>汇总统计</h2>
<table>
<tr><th>分析行数</th><td>{{.Result.Summary.Rows}}</td></tr>
<tr><th>平均支付金额</th><td>{{.Result.Summary.MeanPayment}}</td></tr>
<tr><th>平均评分</th><td>{{.Result.Summary.MeanReview}}</td></tr>
<tr><th>Pearson相关系数</th><td>{{.Result.Summary.Pearson}}</td></tr>
<tr><th>Spearman相关系数</th><td>{{.Result.Summary.Spearman}}</td></tr>
</table>

<h2>月度均值</h2>
{{if .Result.Summary.Monthly}}
<table>
<tr><th>月份</th><th>行数</th><th>平均支付金额</th><th>平均评分</th></tr>
{{range .Result.Summary.Monthly}}
<tr><td>{{.Month}}</td><td>{{.Rows}}</td><td>{{.MeanPayment}}</td><td>{{.MeanReview}}</td></tr>
{{end}}
</table>
{{else}}
<p class="muted">无数据。</p>
{{end}}

<h2>城市排行（全量数据）</h2>
<div class="cols">
<div>
<h3>订单量</h3>
{{if .Result.Boards.ByOrders}}
<table>
<tr><th>城市</th><th>订单量</th></tr>
{{range .Result.Boards.ByOrders}}
<tr><td>{{.City}}</td><td>{{.Orders}}</td></tr>
{{end}}
</table>
{{else}}<p class="muted">无数据。</p>{{end}}
</div>
<div>
<h3>支付总额</h3>
{{if .Result.Boards.ByPayment}}
<table>
<tr><th>城市</th><th>支付总额</th></tr>
{{range .Result.Boards.ByPayment}}
<tr><td>{{.City}}</td><td>{{printf "%.2f" .Payment}}</td></tr>
{{end}}
</table>
{{else}}<p class="muted">无数据。</p>{{end}}
</div>
</div>
{{end}}
</body>
</html>
`))
