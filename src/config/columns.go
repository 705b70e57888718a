package config

// 流水线内部使用的逻辑列名，与Olist数据集的默认列名一致
// 数据集列名不同时通过DataConfig.Columns映射，加载时重命名
const (
	ColOrderID      = "order_id"
	ColCustomerID   = "customer_id"
	ColCity         = "customer_city"
	ColPurchaseTime = "order_purchase_timestamp"
	ColReviewScore  = "review_score"
	ColPaymentValue = "payment_value"
)
