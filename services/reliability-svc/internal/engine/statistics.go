// services/reliability-svc/internal/engine/statistics.go
package engine

import "math"

// Interval доверительный интервал
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// WilsonInterval доверительный интервал Уилсона для доли successes/trials.
// В отличие от нормального приближения остаётся в [0, 1] и не вырождается
// при доле 0 или 1.
func WilsonInterval(successes, trials int64, confidenceLevel float64) Interval {
	if trials <= 0 {
		return Interval{Low: 0, High: 1}
	}

	z := zScore(confidenceLevel)
	n := float64(trials)
	p := float64(successes) / n
	z2 := z * z

	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	half := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denom

	return Interval{
		Low:  math.Max(0, center-half),
		High: math.Min(1, center+half),
	}
}

// StandardError стандартная ошибка оценки доли
func StandardError(successes, trials int64) float64 {
	if trials <= 0 {
		return 0
	}
	p := float64(successes) / float64(trials)
	return math.Sqrt(p * (1 - p) / float64(trials))
}

// RequiredTrials число испытаний, при котором полуширина нормального интервала
// для доли p не превышает margin
func RequiredTrials(p, margin, confidenceLevel float64) int64 {
	if margin <= 0 {
		return 0
	}
	if p <= 0 || p >= 1 {
		p = 0.5
	}
	z := zScore(confidenceLevel)
	return int64(math.Ceil(z * z * p * (1 - p) / (margin * margin)))
}

func zScore(confidenceLevel float64) float64 {
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return 1.959963984540054
	}
	return normalInverse((1 + confidenceLevel) / 2)
}

// delayStats накопитель статистики задержки по испытаниям, дошедшим до её расчёта
type delayStats struct {
	count    int64 // конечные значения
	infinite int64
	sum      float64
	sumSq    float64
	min      float64
	max      float64
}

func newDelayStats() delayStats {
	return delayStats{min: math.Inf(1), max: math.Inf(-1)}
}

func (s *delayStats) add(d float64) {
	if math.IsInf(d, 1) {
		s.infinite++
		return
	}
	s.count++
	s.sum += d
	s.sumSq += d * d
	s.min = math.Min(s.min, d)
	s.max = math.Max(s.max, d)
}

func (s *delayStats) merge(o delayStats) {
	s.count += o.count
	s.infinite += o.infinite
	s.sum += o.sum
	s.sumSq += o.sumSq
	s.min = math.Min(s.min, o.min)
	s.max = math.Max(s.max, o.max)
}

// DelaySummary статистика задержки для отчёта
type DelaySummary struct {
	Evaluated int64   `json:"evaluated"`
	Saturated int64   `json:"saturated"` // испытания с бесконечной задержкой
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
}

func (s *delayStats) summary() DelaySummary {
	out := DelaySummary{
		Evaluated: s.count + s.infinite,
		Saturated: s.infinite,
	}
	if s.count == 0 {
		return out
	}
	n := float64(s.count)
	out.Mean = s.sum / n
	out.StdDev = math.Sqrt(math.Max(0, s.sumSq/n-out.Mean*out.Mean))
	out.Min = s.min
	out.Max = s.max
	return out
}

// normalInverse обратная функция стандартного нормального распределения
// (рациональная аппроксимация Acklam)
func normalInverse(p float64) float64 {
	a := []float64{-3.969683028665376e+01, 2.209460984245205e+02,
		-2.759285104469687e+02, 1.383577518672690e+02,
		-3.066479806614716e+01, 2.506628277459239e+00}
	b := []float64{-5.447609879822406e+01, 1.615858368580409e+02,
		-1.556989798598866e+02, 6.680131188771972e+01, -1.328068155288572e+01}
	c := []float64{-7.784894002430293e-03, -3.223964580411365e-01,
		-2.400758277161838e+00, -2.549732539343734e+00,
		4.374664141464968e+00, 2.938163982698783e+00}
	d := []float64{7.784695709041462e-03, 3.224671290700398e-01,
		2.445134137142996e+00, 3.754408661907416e+00}

	const pLow = 0.02425
	const pHigh = 1 - pLow

	switch {
	case p < pLow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p <= pHigh:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	default:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	}
}
