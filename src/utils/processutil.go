package utils

import (
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// 数据集中出现过的时间格式，按常见程度排列
var timeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTime 解析时间元素，空值和NA返回零值时间
func ParseTime(s series.Element) (time.Time, error) {
	if s.IsNA() {
		return time.Time{}, nil
	}
	return ParseTimeString(s.String())
}

// ParseTimeString 依次尝试已知格式解析时间字符串
// 解析失败返回零值时间和最后一次的错误
func ParseTimeString(str string) (time.Time, error) {
	if str == "" || str == "NaN" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, format := range timeFormats {
		t, err := time.Parse(format, str)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
