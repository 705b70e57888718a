package processor

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"OrderInsight/src/config"
)

// 构造订单表（已并入城市列）
func ordersFrame(rows ...[4]string) dataframe.DataFrame {
	n := len(rows)
	ids := make([]string, n)
	customers := make([]string, n)
	cities := make([]string, n)
	times := make([]string, n)
	for i, r := range rows {
		ids[i] = r[0]
		customers[i] = r[1]
		cities[i] = r[2]
		times[i] = r[3]
	}
	return dataframe.New(
		series.New(ids, series.String, config.ColOrderID),
		series.New(customers, series.String, config.ColCustomerID),
		series.New(cities, series.String, config.ColCity),
		series.New(times, series.String, config.ColPurchaseTime),
	)
}

func emptyOrdersFrame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{}, series.String, config.ColOrderID),
		series.New([]string{}, series.String, config.ColCustomerID),
		series.New([]string{}, series.String, config.ColCity),
		series.New([]string{}, series.String, config.ColPurchaseTime),
	)
}

func TestFilterOrdersByCityAndYear(t *testing.T) {
	orders := ordersFrame(
		[4]string{"o1", "c1", "São Paulo", "2018-03-01 10:00:00"},
		[4]string{"o2", "c2", "Rio", "2018-03-01 11:00:00"},
		[4]string{"o3", "c3", "São Paulo", "2017-03-01 12:00:00"},
		[4]string{"o4", "c4", "São Paulo", "2018-12-31 23:59:59"},
	)

	got := FilterOrders(orders, "São Paulo", 2018)

	if got.Nrow() != 2 {
		t.Fatalf("期望2行，实际%d行", got.Nrow())
	}

	// 输出是输入的子集，且每行都满足谓词
	inputIDs := orders.Col(config.ColOrderID).Records()
	for i := 0; i < got.Nrow(); i++ {
		id := got.Col(config.ColOrderID).Elem(i).String()
		found := false
		for _, in := range inputIDs {
			if in == id {
				found = true
			}
		}
		if !found {
			t.Errorf("输出行 %s 不在输入中", id)
		}
		if city := got.Col(config.ColCity).Elem(i).String(); city != "São Paulo" {
			t.Errorf("城市不匹配: %s", city)
		}
	}
}

func TestFilterOrdersCaseSensitive(t *testing.T) {
	orders := ordersFrame(
		[4]string{"o1", "c1", "sao paulo", "2018-03-01 10:00:00"},
	)

	if got := FilterOrders(orders, "Sao Paulo", 2018); got.Nrow() != 0 {
		t.Errorf("城市匹配应区分大小写，实际匹配了%d行", got.Nrow())
	}
}

func TestFilterOrdersEmptyResultIsValid(t *testing.T) {
	orders := ordersFrame(
		[4]string{"o1", "c1", "Rio", "2018-03-01 10:00:00"},
	)

	got := FilterOrders(orders, "São Paulo", 2018)
	if got.Nrow() != 0 {
		t.Errorf("期望空结果，实际%d行", got.Nrow())
	}
}

func TestFilterOrdersEmptyInput(t *testing.T) {
	got := FilterOrders(emptyOrdersFrame(), "São Paulo", 2018)
	if got.Nrow() != 0 {
		t.Errorf("空输入应产生空输出，实际%d行", got.Nrow())
	}
}

func TestFilterOrdersUnparsableTimeExcluded(t *testing.T) {
	orders := ordersFrame(
		[4]string{"o1", "c1", "São Paulo", "不是时间"},
		[4]string{"o2", "c2", "São Paulo", "2018-05-01"},
	)

	got := FilterOrders(orders, "São Paulo", 2018)
	if got.Nrow() != 1 {
		t.Fatalf("期望1行，实际%d行", got.Nrow())
	}
	if id := got.Col(config.ColOrderID).Elem(0).String(); id != "o2" {
		t.Errorf("期望o2，实际%s", id)
	}
}

func TestAttachCity(t *testing.T) {
	orders := dataframe.New(
		series.New([]string{"o1", "o2"}, series.String, config.ColOrderID),
		series.New([]string{"c1", "c9"}, series.String, config.ColCustomerID),
		series.New([]string{"2018-01-01 00:00:00", "2018-02-01 00:00:00"}, series.String, config.ColPurchaseTime),
	)
	customers := dataframe.New(
		series.New([]string{"c1"}, series.String, config.ColCustomerID),
		series.New([]string{"São Paulo"}, series.String, config.ColCity),
	)

	got := AttachCity(orders, customers)
	if got.Nrow() != 2 {
		t.Fatalf("左连接不应丢行，实际%d行", got.Nrow())
	}

	// c9在客户表中不存在，城市为NA，后续过滤自然排除
	filtered := FilterOrders(got, "São Paulo", 2018)
	if filtered.Nrow() != 1 {
		t.Fatalf("期望1行，实际%d行", filtered.Nrow())
	}
	if id := filtered.Col(config.ColOrderID).Elem(0).String(); id != "o1" {
		t.Errorf("期望o1，实际%s", id)
	}
}
