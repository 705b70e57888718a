// filter.go
package processor

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"OrderInsight/src/config"
	"OrderInsight/src/utils"
)

// AttachCity 把客户表的城市列并入订单表（左连接，customer_id）
// 订单在客户表中无对应记录时城市为NA，后续精确匹配自然排除
func AttachCity(orders, customers dataframe.DataFrame) dataframe.DataFrame {
	if orders.Nrow() == 0 {
		return orders
	}
	if customers.Nrow() == 0 {
		return orders
	}

	cities := customers.Select([]string{config.ColCustomerID, config.ColCity})
	return orders.LeftJoin(cities, config.ColCustomerID)
}

// FilterOrders 选出城市精确匹配且下单时间落在目标年份的订单
// 空结果是合法状态，不是错误
func FilterOrders(orders dataframe.DataFrame, city string, year int) dataframe.DataFrame {
	if orders.Nrow() == 0 {
		return orders
	}

	byCity := orders.Filter(
		dataframe.F{Colname: config.ColCity, Comparator: series.Eq, Comparando: city},
	)
	if byCity.Nrow() == 0 {
		return byCity
	}

	return byCity.Filter(
		dataframe.F{
			Colname:    config.ColPurchaseTime,
			Comparator: series.CompFunc,
			Comparando: func(el series.Element) bool {
				t, err := utils.ParseTime(el)
				if err != nil || t.IsZero() {
					return false
				}
				return t.Year() == year
			},
		},
	)
}
