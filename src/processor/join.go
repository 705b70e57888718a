// join.go
package processor

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"OrderInsight/src/config"
)

// 分析行的列：订单号、城市、下单时间、支付金额、评分
var analysisColumns = []string{
	config.ColOrderID,
	config.ColCity,
	config.ColPurchaseTime,
	config.ColPaymentValue,
	config.ColReviewScore,
}

// emptyAnalysisFrame 返回零行但列齐备的分析表，供下游安全消费
func emptyAnalysisFrame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{}, series.String, config.ColOrderID),
		series.New([]string{}, series.String, config.ColCity),
		series.New([]string{}, series.String, config.ColPurchaseTime),
		series.New([]float64{}, series.Float, config.ColPaymentValue),
		series.New([]float64{}, series.Float, config.ColReviewScore),
	)
}

// BuildAnalysisRows 把过滤后的订单与支付、评价连接为分析行
//
// 连接语义：
//   - 订单与支付内连接，没有支付记录的订单被丢弃；
//   - 再与评价左连接，缺失的评分保持NA，绝不当作0；
//   - 每个(支付, 评价)组合产生一行，多笔分期不做预先求和，
//     每笔分期独立参与分布和相关性分析（如需按单汇总用TotalPerOrder）。
func BuildAnalysisRows(filtered, reviews, payments dataframe.DataFrame) dataframe.DataFrame {
	if filtered.Nrow() == 0 || payments.Nrow() == 0 {
		return emptyAnalysisFrame()
	}

	orderCols := filtered.Select([]string{config.ColOrderID, config.ColCity, config.ColPurchaseTime})
	paymentCols := payments.Select([]string{config.ColOrderID, config.ColPaymentValue})

	paid := orderCols.InnerJoin(paymentCols, config.ColOrderID)
	if paid.Nrow() == 0 {
		return emptyAnalysisFrame()
	}

	var rows dataframe.DataFrame
	if reviews.Nrow() == 0 {
		// 没有任何评价时补一列NA评分，保持列结构一致
		rows = paid.Mutate(naScoreColumn(paid.Nrow()))
	} else {
		reviewCols := reviews.Select([]string{config.ColOrderID, config.ColReviewScore})
		rows = paid.LeftJoin(reviewCols, config.ColOrderID)
	}

	return rows.Select(analysisColumns)
}

// naScoreColumn 构造长度为n的全NA评分列
func naScoreColumn(n int) series.Series {
	vals := make([]string, n)
	for i := range vals {
		vals[i] = "NaN"
	}
	return series.New(vals, series.Float, config.ColReviewScore)
}

// TotalPerOrder 按订单汇总支付总额（显式的"每单求和"步骤）
// 默认流水线不调用它做统计，只在报表中单独呈现
func TotalPerOrder(orders, payments dataframe.DataFrame) dataframe.DataFrame {
	if orders.Nrow() == 0 || payments.Nrow() == 0 {
		return dataframe.New(
			series.New([]string{}, series.String, config.ColOrderID),
			series.New([]float64{}, series.Float, config.ColPaymentValue+"_SUM"),
		)
	}

	paid := orders.Select([]string{config.ColOrderID}).
		InnerJoin(payments.Select([]string{config.ColOrderID, config.ColPaymentValue}), config.ColOrderID)
	if paid.Nrow() == 0 {
		return dataframe.New(
			series.New([]string{}, series.String, config.ColOrderID),
			series.New([]float64{}, series.Float, config.ColPaymentValue+"_SUM"),
		)
	}

	return paid.GroupBy(config.ColOrderID).
		Aggregation(
			[]dataframe.AggregationType{dataframe.Aggregation_SUM},
			[]string{config.ColPaymentValue},
		)
}
