// cities.go
package processor

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"OrderInsight/src/config"
)

// TopCitiesByOrders 全量数据上按订单量排名前n的城市
func TopCitiesByOrders(orders dataframe.DataFrame, n int) []CityCount {
	if orders.Nrow() == 0 || n <= 0 {
		return nil
	}

	countCol := config.ColOrderID + "_COUNT"
	agg := withCity(orders.Select([]string{config.ColOrderID, config.ColCity})).
		GroupBy(config.ColCity).
		Aggregation(
			[]dataframe.AggregationType{dataframe.Aggregation_COUNT},
			[]string{config.ColOrderID},
		)
	if agg.Err != nil || agg.Nrow() == 0 {
		return nil
	}

	agg = agg.Arrange(dataframe.RevSort(countCol))

	out := make([]CityCount, 0, n)
	for i := 0; i < agg.Nrow() && i < n; i++ {
		out = append(out, CityCount{
			City:   agg.Col(config.ColCity).Elem(i).String(),
			Orders: int(agg.Col(countCol).Elem(i).Float()),
		})
	}
	return out
}

// TopCitiesByPayment 全量数据上按支付总额排名前n的城市
func TopCitiesByPayment(orders, payments dataframe.DataFrame, n int) []CityValue {
	if orders.Nrow() == 0 || payments.Nrow() == 0 || n <= 0 {
		return nil
	}

	sumCol := config.ColPaymentValue + "_SUM"
	paid := withCity(orders.Select([]string{config.ColOrderID, config.ColCity})).
		InnerJoin(payments.Select([]string{config.ColOrderID, config.ColPaymentValue}), config.ColOrderID)
	if paid.Nrow() == 0 {
		return nil
	}

	agg := paid.GroupBy(config.ColCity).
		Aggregation(
			[]dataframe.AggregationType{dataframe.Aggregation_SUM},
			[]string{config.ColPaymentValue},
		)
	if agg.Err != nil || agg.Nrow() == 0 {
		return nil
	}

	agg = agg.Arrange(dataframe.RevSort(sumCol))

	out := make([]CityValue, 0, n)
	for i := 0; i < agg.Nrow() && i < n; i++ {
		out = append(out, CityValue{
			City:    agg.Col(config.ColCity).Elem(i).String(),
			Payment: agg.Col(sumCol).Elem(i).Float(),
		})
	}
	return out
}

// withCity 去掉城市缺失的行，排行榜不统计无归属订单
func withCity(df dataframe.DataFrame) dataframe.DataFrame {
	return df.Filter(
		dataframe.F{
			Colname:    config.ColCity,
			Comparator: series.CompFunc,
			Comparando: func(el series.Element) bool {
				return !el.IsNA() && el.String() != ""
			},
		},
	)
}
