// types.go
package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
)

var (
	// ErrNoData 表示过滤或连接后没有任何可分析的行，属于合法状态而非故障
	ErrNoData = errors.New("没有可分析的数据")

	// ErrInsufficientData 表示某项统计量的有效样本不足，不影响其他统计量
	ErrInsufficientData = errors.New("有效样本不足")
)

// Stat 单个统计量，Valid为false表示"无数据/样本不足"
// 绝不用0或NaN冒充缺失值
type Stat struct {
	Value float64
	Valid bool
}

func NewStat(v float64) Stat {
	return Stat{Value: v, Valid: true}
}

func (s Stat) String() string {
	if !s.Valid {
		return "无数据"
	}
	return fmt.Sprintf("%.2f", s.Value)
}

// MarshalJSON 无效统计量序列化为null而不是数值占位符
func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// MonthlyStat 单个自然月的分组均值，没有数据的月份不会出现
type MonthlyStat struct {
	Month       string `json:"month"` // 格式 2006-01
	Rows        int    `json:"rows"`
	MeanPayment Stat   `json:"mean_payment"`
	MeanReview  Stat   `json:"mean_review"`
}

// Summary 一次分析运行的汇总统计
type Summary struct {
	Rows        int           `json:"rows"`
	MeanPayment Stat          `json:"mean_payment"`
	MeanReview  Stat          `json:"mean_review"`
	Pearson     Stat          `json:"pearson"`
	Spearman    Stat          `json:"spearman"`
	Monthly     []MonthlyStat `json:"monthly"`
}

// CityCount 城市订单量排行条目
type CityCount struct {
	City   string `json:"city"`
	Orders int    `json:"orders"`
}

// CityValue 城市支付总额排行条目
type CityValue struct {
	City    string  `json:"city"`
	Payment float64 `json:"payment"`
}

// CityBoards 全量数据上的城市排行榜
type CityBoards struct {
	ByOrders  []CityCount `json:"by_orders"`
	ByPayment []CityValue `json:"by_payment"`
}

// Result 一次完整分析的产物
type Result struct {
	Rows      dataframe.DataFrame // 分析行，每笔分期一行
	Summary   Summary
	Boards    CityBoards
	Totals    dataframe.DataFrame // 每单支付总额（显式求和步骤的产物）
	UpdatedAt time.Time
}

// ResultStore 保存最近一次分析结果，供仪表盘并发读取
type ResultStore struct {
	mu     sync.RWMutex
	result *Result
}

func (s *ResultStore) Set(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = r
}

// Get 返回最近一次结果，尚未产出时返回nil
func (s *ResultStore) Get() *Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}
