package review

import (
	"fmt"
	"math"
	"strconv"
)

// AverageRating 平均评分,以"十分之一星"为单位的整数(43 表示 4.3)
// 设计说明:
// 1. 由SUM(rating)和COUNT(*)两个精确整数计算,只在最后一步做一次四舍五入
// 2. 避免浮点数在数据库AVG和JSON序列化之间多次舍入产生误差
// 3. JSON序列化为恰好一位小数的数字(4.0、4.3)
type AverageRating int64

// NewAverageRating 根据评分总和与评论数计算平均分(四舍五入到一位小数)
// count为0时返回0
func NewAverageRating(sum, count int64) AverageRating {
	if count <= 0 {
		return 0
	}
	// round(sum*10/count) = floor((sum*20 + count) / (2*count))
	return AverageRating((sum*20 + count) / (2 * count))
}

// Tenths 返回以十分之一星为单位的值
func (a AverageRating) Tenths() int64 {
	return int64(a)
}

// Float64 返回浮点表示(仅用于展示)
func (a AverageRating) Float64() float64 {
	return float64(a) / 10
}

// String 返回一位小数的字符串,如"4.0"
func (a AverageRating) String() string {
	return fmt.Sprintf("%d.%d", int64(a)/10, int64(a)%10)
}

// MarshalJSON 序列化为一位小数的JSON数字
func (a AverageRating) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON 从JSON数字解析(客户端和测试使用)
func (a *AverageRating) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("无效的平均评分: %s", data)
	}
	*a = AverageRating(math.Round(f * 10))
	return nil
}

// Summary 图书评分统计
// 不落库,每次由当前评论集合实时计算
type Summary struct {
	BookID        uint
	AverageRating AverageRating
	TotalReviews  int64
}

// NewSummary 根据评分总和与评论数构造统计结果
func NewSummary(bookID uint, sum, count int64) Summary {
	return Summary{
		BookID:        bookID,
		AverageRating: NewAverageRating(sum, count),
		TotalReviews:  count,
	}
}

// Summarize 在内存中根据评分列表计算统计(与数据库聚合结果一致)
func Summarize(bookID uint, ratings []int) Summary {
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	return NewSummary(bookID, sum, int64(len(ratings)))
}
