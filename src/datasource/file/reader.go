// reader.go
package file

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"OrderInsight/src/config"
	"OrderInsight/src/utils"
)

// Tables 持有分析所需的四张原始表
// 加载完成后只读，后续处理均产生新的DataFrame
type Tables struct {
	Customers dataframe.DataFrame
	Orders    dataframe.DataFrame
	Reviews   dataframe.DataFrame
	Payments  dataframe.DataFrame
}

// LoadTables 从数据目录加载客户、订单、评价、支付四张表
// 任何一张表缺失或不可读都是致命错误，流水线在过滤前终止
func LoadTables(cfg *config.Config, dcfg *config.DataConfig) (*Tables, error) {
	customers, err := loadTable(cfg, dcfg, cfg.Datasets.Customers,
		[]string{config.ColCustomerID, config.ColCity},
		map[string]series.Type{
			dcfg.GetColumn(config.ColCustomerID): series.String,
			dcfg.GetColumn(config.ColCity):       series.String,
		})
	if err != nil {
		return nil, fmt.Errorf("加载客户表失败: %w", err)
	}

	orders, err := loadTable(cfg, dcfg, cfg.Datasets.Orders,
		[]string{config.ColOrderID, config.ColCustomerID, config.ColPurchaseTime},
		map[string]series.Type{
			dcfg.GetColumn(config.ColOrderID):      series.String,
			dcfg.GetColumn(config.ColCustomerID):   series.String,
			dcfg.GetColumn(config.ColPurchaseTime): series.String,
		})
	if err != nil {
		return nil, fmt.Errorf("加载订单表失败: %w", err)
	}

	reviews, err := loadTable(cfg, dcfg, cfg.Datasets.Reviews,
		[]string{config.ColOrderID, config.ColReviewScore},
		map[string]series.Type{
			dcfg.GetColumn(config.ColOrderID):     series.String,
			dcfg.GetColumn(config.ColReviewScore): series.Float,
		})
	if err != nil {
		return nil, fmt.Errorf("加载评价表失败: %w", err)
	}

	payments, err := loadTable(cfg, dcfg, cfg.Datasets.Payments,
		[]string{config.ColOrderID, config.ColPaymentValue},
		map[string]series.Type{
			dcfg.GetColumn(config.ColOrderID):      series.String,
			dcfg.GetColumn(config.ColPaymentValue): series.Float,
		})
	if err != nil {
		return nil, fmt.Errorf("加载支付表失败: %w", err)
	}

	// 越界评分置为NA，避免污染均值和相关系数
	reviews = ClampScores(reviews, dcfg.ScoreBounds.Min, dcfg.ScoreBounds.Max)

	// 可选的城市名规范化（小写+去重音），默认关闭，过滤本身保持精确匹配
	if cfg.Analysis.NormalizeCity {
		customers = NormalizeCities(customers)
	}

	return &Tables{
		Customers: customers,
		Orders:    orders,
		Reviews:   reviews,
		Payments:  payments,
	}, nil
}

// loadTable 加载单个表文件并把数据集列名重命名为逻辑列名
func loadTable(cfg *config.Config, dcfg *config.DataConfig, filename string,
	logicalCols []string, types map[string]series.Type) (dataframe.DataFrame, error) {

	if filename == "" {
		return dataframe.DataFrame{}, fmt.Errorf("未配置数据集文件名")
	}

	path := filepath.Join(cfg.DataDir, filename)
	var (
		df  dataframe.DataFrame
		err error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		df, err = ReadCSVToDataFrame(path, types)
	case ".xlsx":
		df, err = ReadXLSXToDataFrame(path, "")
	default:
		return dataframe.DataFrame{}, fmt.Errorf("不支持的文件格式: %s", filename)
	}
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	df = renameColumns(df, dcfg, logicalCols)

	// 重命名后逻辑列必须齐备
	for _, col := range logicalCols {
		if !utils.HasColumn(df, col) {
			return dataframe.DataFrame{}, fmt.Errorf("表 %s 缺少必需列 %s", filename, col)
		}
	}

	return df, nil
}

// ReadCSVToDataFrame 读取CSV文件为DataFrame
// 未指定类型的列一律按字符串加载，避免自动类型推断产生意外
func ReadCSVToDataFrame(path string, types map[string]series.Type) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("打开CSV文件失败: %w", err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("解析CSV失败: %w", df.Err)
	}
	return df, nil
}

// ReadXLSXToDataFrame 读取XLSX文件为DataFrame
// sheetName为空时取第一个工作表，首行为标题行
func ReadXLSXToDataFrame(path, sheetName string) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("打开XLSX文件失败: %w", err)
	}

	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("XLSX文件中没有工作表")
	}

	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("工作表 %s 不存在", sheetName)
		}
		sheet = s
	}

	return convertSheetToDataFrame(sheet)
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame
func convertSheetToDataFrame(sheet *xlsx.Sheet) (dataframe.DataFrame, error) {
	if len(sheet.Rows) < 1 {
		return dataframe.DataFrame{}, fmt.Errorf("工作表为空")
	}

	// 首行作为列名
	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, cell.Value)
	}
	if len(headers) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("工作表缺少标题行")
	}

	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(sheet.Rows)-1)
	}

	for _, row := range sheet.Rows[1:] {
		for i := range headers {
			val := ""
			if i < len(row.Cells) {
				val = row.Cells[i].Value
			}
			columns[i] = append(columns[i], val)
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}

	df := dataframe.New(seriesList...)
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	return df, nil
}

// renameColumns 把数据集列名重命名为逻辑列名
func renameColumns(df dataframe.DataFrame, dcfg *config.DataConfig, logicalCols []string) dataframe.DataFrame {
	for _, logical := range logicalCols {
		actual := dcfg.GetColumn(logical)
		if actual != logical && utils.HasColumn(df, actual) {
			df = df.Rename(logical, actual)
		}
	}
	return df
}

// ClampScores 把越界评分置为NA
// 区间未配置（上界为0）时不做处理
func ClampScores(reviews dataframe.DataFrame, min, max int) dataframe.DataFrame {
	if max == 0 || reviews.Nrow() == 0 || !utils.HasColumn(reviews, config.ColReviewScore) {
		return reviews
	}

	clamped := reviews.Col(config.ColReviewScore).Map(func(e series.Element) series.Element {
		if e.IsNA() {
			return e
		}
		v := e.Float()
		if math.IsNaN(v) || v < float64(min) || v > float64(max) {
			e.Set(math.NaN())
		}
		return e
	})

	return reviews.Mutate(series.New(clamped, series.Float, config.ColReviewScore))
}

// 去掉组合用音符号（重音、波浪号等）
var cityTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCity 城市名规范化：小写并去除重音
// Olist官方数据本身已是小写无重音，该函数服务于其他来源的数据
func NormalizeCity(s string) string {
	out, _, err := transform.String(cityTransformer, s)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// NormalizeCities 规范化客户表的城市列
func NormalizeCities(customers dataframe.DataFrame) dataframe.DataFrame {
	if customers.Nrow() == 0 || !utils.HasColumn(customers, config.ColCity) {
		return customers
	}

	normalized := customers.Col(config.ColCity).Map(func(e series.Element) series.Element {
		if e.IsNA() {
			return e
		}
		e.Set(NormalizeCity(e.String()))
		return e
	})

	return customers.Mutate(series.New(normalized, series.String, config.ColCity))
}
