package metrics

import "math"

// Returns 단순 수익률 (p[i]/p[i-1] − 1), 첫 관측치 제외
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out[i-1] = prices[i]/prices[i-1] - 1
	}
	return out
}

// Mean 평균 계산
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev 표본 표준편차 (n−1). 관측치 1개 이하면 0
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// PopStdDev 모집단 표준편차 (n)
func PopStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// Covariance 표본 공분산 (n−1). 길이가 다르거나 관측치 1개 이하면 0
func Covariance(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return 0
	}
	mx, my := Mean(x), Mean(y)
	var sum float64
	for i := range x {
		sum += (x[i] - mx) * (y[i] - my)
	}
	return sum / float64(len(x)-1)
}

// Correlation Pearson 상관계수.
// 어느 한쪽 분산이 0이거나 관측치가 2개 미만이면 ok=false
func Correlation(x, y []float64) (float64, bool) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, false
	}
	sx, sy := StdDev(x), StdDev(y)
	if sx == 0 || sy == 0 {
		return 0, false
	}
	r := Covariance(x, y) / (sx * sy)
	if math.IsNaN(r) {
		return 0, false
	}
	// 부동소수 오차로 [-1, 1] 을 벗어나지 않도록
	return math.Max(-1, math.Min(1, r)), true
}

// DownsideDeviation 0 기준 하방편차 sqrt(mean(min(0, r)²)), 연환산 전
func DownsideDeviation(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var sumSq float64
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
		}
	}
	return math.Sqrt(sumSq / float64(len(returns)))
}

// RangeDrawdown (max − min) / max 가격 범위 기반 낙폭
func RangeDrawdown(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	hi, lo := prices[0], prices[0]
	for _, p := range prices[1:] {
		if p > hi {
			hi = p
		}
		if p < lo {
			lo = p
		}
	}
	if hi == 0 {
		return 0
	}
	return (hi - lo) / hi
}

// Subtract element-wise x − y (같은 길이 가정)
func Subtract(x, y []float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] - y[i]
	}
	return out
}
