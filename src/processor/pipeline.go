// pipeline.go
package processor

import (
	"time"

	"github.com/go-gota/gota/dataframe"
)

// Params 一次分析运行的参数，来自配置而非硬编码常量
type Params struct {
	City      string // 目标城市，精确匹配
	Year      int    // 目标年份
	TopCities int    // 城市排行榜数量
}

// Run 执行完整的分析流水线：并入城市 → 过滤 → 连接 → 汇总
// 四张表加载后只读，各步骤都是无副作用的转换
func Run(customers, orders, reviews, payments dataframe.DataFrame, p Params) *Result {
	located := AttachCity(orders, customers)

	filtered := FilterOrders(located, p.City, p.Year)
	rows := BuildAnalysisRows(filtered, reviews, payments)

	return &Result{
		Rows:    rows,
		Summary: Summarize(rows),
		Boards: CityBoards{
			ByOrders:  TopCitiesByOrders(located, p.TopCities),
			ByPayment: TopCitiesByPayment(located, payments, p.TopCities),
		},
		Totals:    TotalPerOrder(filtered, payments),
		UpdatedAt: time.Now(),
	}
}
