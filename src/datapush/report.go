// report.go
package datapush

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"

	"OrderInsight/src/processor"
)

// 报表的工作表名
const (
	sheetRows    = "分析明细"
	sheetSummary = "汇总"
	sheetMonthly = "月度"
	sheetCities  = "城市排行"
	sheetTotals  = "每单支付总额"
)

// WriteReport 把分析结果写成带图表的XLSX报表
func WriteReport(path string, result *processor.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeFrame(f, sheetRows, result.Rows); err != nil {
		return err
	}
	if err := writeSummary(f, result.Summary); err != nil {
		return err
	}
	if err := writeMonthly(f, result.Summary.Monthly); err != nil {
		return err
	}
	if err := writeCities(f, result.Boards); err != nil {
		return err
	}
	if err := writeFrame(f, sheetTotals, result.Totals); err != nil {
		return err
	}

	// 删掉excelize的默认工作表，汇总页设为首页
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存报表失败: %w", err)
	}
	return nil
}

// writeFrame 把DataFrame写入指定工作表，首行为列名
func writeFrame(f *excelize.File, sheetName string, df dataframe.DataFrame) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("创建工作表 %s 失败: %w", sheetName, err)
	}

	colNames := df.Names()
	for i, name := range colNames {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, name)
	}

	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		for colIdx, colName := range colNames {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			elem := df.Col(colName).Elem(rowIdx)
			if elem.IsNA() {
				continue // NA留空，不写占位数值
			}
			f.SetCellValue(sheetName, cell, elem.Val())
		}
	}
	return nil
}

func writeSummary(f *excelize.File, sum processor.Summary) error {
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("创建工作表 %s 失败: %w", sheetSummary, err)
	}

	entries := []struct {
		label string
		value string
	}{
		{"分析行数", fmt.Sprintf("%d", sum.Rows)},
		{"平均支付金额", sum.MeanPayment.String()},
		{"平均评分", sum.MeanReview.String()},
		{"Pearson相关系数", sum.Pearson.String()},
		{"Spearman相关系数", sum.Spearman.String()},
	}

	for i, e := range entries {
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", i+1), e.label)
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", i+1), e.value)
	}
	return nil
}

func writeMonthly(f *excelize.File, monthly []processor.MonthlyStat) error {
	if _, err := f.NewSheet(sheetMonthly); err != nil {
		return fmt.Errorf("创建工作表 %s 失败: %w", sheetMonthly, err)
	}

	headers := []string{"月份", "行数", "平均支付金额", "平均评分"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetMonthly, cell, h)
	}

	for i, m := range monthly {
		row := i + 2
		f.SetCellValue(sheetMonthly, fmt.Sprintf("A%d", row), m.Month)
		f.SetCellValue(sheetMonthly, fmt.Sprintf("B%d", row), m.Rows)
		if m.MeanPayment.Valid {
			f.SetCellValue(sheetMonthly, fmt.Sprintf("C%d", row), m.MeanPayment.Value)
		}
		if m.MeanReview.Valid {
			f.SetCellValue(sheetMonthly, fmt.Sprintf("D%d", row), m.MeanReview.Value)
		}
	}

	if len(monthly) == 0 {
		return nil
	}

	// 月度均值折线图
	last := len(monthly) + 1
	return f.AddChart(sheetMonthly, "F2", &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$C$1", sheetMonthly),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetMonthly, last),
				Values:     fmt.Sprintf("%s!$C$2:$C$%d", sheetMonthly, last),
			},
			{
				Name:       fmt.Sprintf("%s!$D$1", sheetMonthly),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetMonthly, last),
				Values:     fmt.Sprintf("%s!$D$2:$D$%d", sheetMonthly, last),
			},
		},
		Title:  []excelize.RichTextRun{{Text: "月度均值"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
}

func writeCities(f *excelize.File, boards processor.CityBoards) error {
	if _, err := f.NewSheet(sheetCities); err != nil {
		return fmt.Errorf("创建工作表 %s 失败: %w", sheetCities, err)
	}

	f.SetCellValue(sheetCities, "A1", "城市")
	f.SetCellValue(sheetCities, "B1", "订单量")
	for i, c := range boards.ByOrders {
		f.SetCellValue(sheetCities, fmt.Sprintf("A%d", i+2), c.City)
		f.SetCellValue(sheetCities, fmt.Sprintf("B%d", i+2), c.Orders)
	}

	f.SetCellValue(sheetCities, "D1", "城市")
	f.SetCellValue(sheetCities, "E1", "支付总额")
	for i, c := range boards.ByPayment {
		f.SetCellValue(sheetCities, fmt.Sprintf("D%d", i+2), c.City)
		f.SetCellValue(sheetCities, fmt.Sprintf("E%d", i+2), c.Payment)
	}

	if len(boards.ByOrders) == 0 {
		return nil
	}

	// 城市订单量柱状图
	last := len(boards.ByOrders) + 1
	return f.AddChart(sheetCities, "G2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$B$1", sheetCities),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetCities, last),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheetCities, last),
			},
		},
		Title:  []excelize.RichTextRun{{Text: "城市订单量排行"}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}
