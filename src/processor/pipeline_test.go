package processor

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"OrderInsight/src/config"
)

// 规格场景：两个订单只有一个匹配过滤条件，
// 连接后产生一条分析行，均值等于该行的值，相关系数无效
func TestRunEndToEndScenario(t *testing.T) {
	customers := dataframe.New(
		series.New([]string{"c1", "c2"}, series.String, config.ColCustomerID),
		series.New([]string{"São Paulo", "Rio"}, series.String, config.ColCity),
	)
	orders := dataframe.New(
		series.New([]string{"o1", "o2"}, series.String, config.ColOrderID),
		series.New([]string{"c1", "c2"}, series.String, config.ColCustomerID),
		series.New([]string{"2018-03-01 10:00:00", "2018-03-01 11:00:00"}, series.String, config.ColPurchaseTime),
	)
	reviews := dataframe.New(
		series.New([]string{"o1"}, series.String, config.ColOrderID),
		series.New([]float64{5}, series.Float, config.ColReviewScore),
	)
	payments := dataframe.New(
		series.New([]string{"o1"}, series.String, config.ColOrderID),
		series.New([]float64{100}, series.Float, config.ColPaymentValue),
	)

	result := Run(customers, orders, reviews, payments, Params{
		City:      "São Paulo",
		Year:      2018,
		TopCities: 5,
	})

	if result.Rows.Nrow() != 1 {
		t.Fatalf("期望1条分析行，实际%d", result.Rows.Nrow())
	}
	if id := result.Rows.Col(config.ColOrderID).Elem(0).String(); id != "o1" {
		t.Errorf("期望o1，实际%s", id)
	}

	sum := result.Summary
	if !sum.MeanPayment.Valid || sum.MeanPayment.Value != 100 {
		t.Errorf("平均支付金额期望100，实际%+v", sum.MeanPayment)
	}
	if !sum.MeanReview.Valid || sum.MeanReview.Value != 5 {
		t.Errorf("平均评分期望5，实际%+v", sum.MeanReview)
	}
	if sum.Pearson.Valid || sum.Spearman.Valid {
		t.Errorf("单行样本的相关系数应为无效")
	}

	// 排行榜基于全量数据而不是过滤后的子集
	if len(result.Boards.ByOrders) != 2 {
		t.Errorf("期望2个城市上榜，实际%+v", result.Boards.ByOrders)
	}
}

func TestRunEmptyDatasetReportsNoData(t *testing.T) {
	customers := dataframe.New(
		series.New([]string{}, series.String, config.ColCustomerID),
		series.New([]string{}, series.String, config.ColCity),
	)
	orders := dataframe.New(
		series.New([]string{}, series.String, config.ColOrderID),
		series.New([]string{}, series.String, config.ColCustomerID),
		series.New([]string{}, series.String, config.ColPurchaseTime),
	)
	reviews := dataframe.New(
		series.New([]string{}, series.String, config.ColOrderID),
		series.New([]float64{}, series.Float, config.ColReviewScore),
	)
	payments := dataframe.New(
		series.New([]string{}, series.String, config.ColOrderID),
		series.New([]float64{}, series.Float, config.ColPaymentValue),
	)

	result := Run(customers, orders, reviews, payments, Params{City: "São Paulo", Year: 2018, TopCities: 5})

	if result.Rows.Nrow() != 0 {
		t.Errorf("空数据集应产生空分析集，实际%d行", result.Rows.Nrow())
	}
	sum := result.Summary
	if sum.MeanPayment.Valid || sum.MeanReview.Valid || sum.Pearson.Valid || sum.Spearman.Valid {
		t.Errorf("空数据集下所有统计量都应为无数据状态: %+v", sum)
	}
	if len(result.Boards.ByOrders) != 0 || len(result.Boards.ByPayment) != 0 {
		t.Errorf("空数据集不应产生排行榜: %+v", result.Boards)
	}
}
