// stats.go
package processor

import (
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"

	"OrderInsight/src/config"
	"OrderInsight/src/utils"
)

// Summarize 对分析行计算汇总统计
// 输入为空或样本退化时相应统计量标记为无效，其余统计量照常计算
func Summarize(rows dataframe.DataFrame) Summary {
	sum := Summary{Rows: rows.Nrow()}
	if rows.Nrow() == 0 {
		return sum
	}

	payments := columnFloats(rows, config.ColPaymentValue)
	scores := columnFloats(rows, config.ColReviewScore)

	sum.MeanPayment = meanStat(compact(payments))
	sum.MeanReview = meanStat(compact(scores))

	// 相关系数只在两个变量都有值的行上计算
	xs, ys := completePairs(payments, scores)
	sum.Pearson = pearsonStat(xs, ys)
	sum.Spearman = pearsonStat(Ranks(xs), Ranks(ys))

	sum.Monthly = monthlyStats(rows, payments, scores)
	return sum
}

// columnFloats 按行序提取浮点列，NA和不可解析的值为NaN
func columnFloats(df dataframe.DataFrame, name string) []float64 {
	col := df.Col(name)
	out := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			out[i] = math.NaN()
			continue
		}
		out[i] = e.Float()
	}
	return out
}

// compact 去掉NaN，保留有效观测
func compact(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// completePairs 取出两个变量都有值的配对观测
func completePairs(xs, ys []float64) ([]float64, []float64) {
	px := make([]float64, 0, len(xs))
	py := make([]float64, 0, len(ys))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, ys[i])
	}
	return px, py
}

func meanStat(xs []float64) Stat {
	if len(xs) == 0 {
		return Stat{}
	}
	return NewStat(stat.Mean(xs, nil))
}

// Correlation 计算Pearson相关系数
// 要求至少2个配对观测且两个变量方差都不为零，否则返回ErrInsufficientData
func Correlation(xs, ys []float64) (float64, error) {
	if len(xs) < 2 {
		return 0, ErrInsufficientData
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0, ErrInsufficientData
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) {
		return 0, ErrInsufficientData
	}
	return r, nil
}

func pearsonStat(xs, ys []float64) Stat {
	r, err := Correlation(xs, ys)
	if err != nil {
		return Stat{}
	}
	return NewStat(r)
}

// Ranks 返回平均秩（并列值取秩的平均），Spearman系数即秩上的Pearson系数
func Ranks(xs []float64) []float64 {
	n := len(xs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		// [i, j] 为并列区间，秩取平均
		avg := (float64(i) + float64(j)) / 2.0
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg + 1
		}
		i = j + 1
	}
	return ranks
}

// monthlyStats 按下单时间的自然月分组求均值，没有数据的月份省略
func monthlyStats(rows dataframe.DataFrame, payments, scores []float64) []MonthlyStat {
	col := rows.Col(config.ColPurchaseTime)

	groups := make(map[string][]int)
	for i := 0; i < col.Len(); i++ {
		t, err := utils.ParseTime(col.Elem(i))
		if err != nil || t.IsZero() {
			continue // 时间不可解析的行不参与月度分组
		}
		month := t.Format("2006-01")
		groups[month] = append(groups[month], i)
	}

	months := make([]string, 0, len(groups))
	for m := range groups {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]MonthlyStat, 0, len(months))
	for _, m := range months {
		var pay, score []float64
		for _, i := range groups[m] {
			if !math.IsNaN(payments[i]) {
				pay = append(pay, payments[i])
			}
			if !math.IsNaN(scores[i]) {
				score = append(score, scores[i])
			}
		}
		out = append(out, MonthlyStat{
			Month:       m,
			Rows:        len(groups[m]),
			MeanPayment: meanStat(pay),
			MeanReview:  meanStat(score),
		})
	}
	return out
}
