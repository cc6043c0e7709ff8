package service

import "errors"

// ErrNotFound means the dish has no records in the historical report.
var ErrNotFound = errors.New("dish not found in historical data")

type HistoryPoint struct {
	Year  int `json:"period"`
	Units int `json:"sales"`
}

type ForecastResult struct {
	Dish           string         `json:"dish"`
	PredictedYear  int            `json:"predicted_period"`
	PredictedUnits int            `json:"predicted_sales"`
	Slope          float64        `json:"slope"`
	Intercept      float64        `json:"intercept"`
	HistorySeries  []HistoryPoint `json:"historical_data_used"`
}

// ForecastNextYear fits units ≈ slope·year + intercept over the dish's series and
// evaluates it at targetYear, rounding half to even.
func ForecastNextYear(report HistoricalReport, dish string, targetYear int) (ForecastResult, error) {
	series := seriesFor(report, dish)
	if len(series) == 0 {
		return ForecastResult{}, ErrNotFound
	}

	fit := linearRegression(series)

	return ForecastResult{
		Dish:           dish,
		PredictedYear:  targetYear,
		PredictedUnits: fit.at(targetYear),
		Slope:          fit.slope(),
		Intercept:      fit.intercept(),
		HistorySeries:  series,
	}, nil
}

func seriesFor(report HistoricalReport, dish string) []HistoryPoint {
	var out []HistoryPoint
	for _, yr := range report.ByYear {
		for _, rec := range yr.SalesByDish {
			if rec.Dish == dish {
				out = append(out, HistoryPoint{Year: yr.Year, Units: rec.Units})
				break
			}
		}
	}
	return out
}

// olsFit holds the least-squares sums in integers, with years shifted by the
// first year. slope = sxy/sxx where sxy = n·Σxy − Σx·Σy and sxx = n·Σx² − (Σx)².
// sxx is zero when every point shares one year; the line is then flat at the mean.
type olsFit struct {
	origin   int64
	n        int64
	sumX     int64
	sumY     int64
	sxx, sxy int64
}

func linearRegression(points []HistoryPoint) olsFit {
	f := olsFit{origin: int64(points[0].Year), n: int64(len(points))}
	var sumXX, sumXY int64
	for _, p := range points {
		x := int64(p.Year) - f.origin
		y := int64(p.Units)
		f.sumX += x
		f.sumY += y
		sumXX += x * x
		sumXY += x * y
	}
	f.sxx = f.n*sumXX - f.sumX*f.sumX
	f.sxy = f.n*sumXY - f.sumX*f.sumY
	return f
}

func (f olsFit) slope() float64 {
	if f.sxx == 0 {
		return 0
	}
	return float64(f.sxy) / float64(f.sxx)
}

func (f olsFit) intercept() float64 {
	b := f.slope()
	return (float64(f.sumY)-b*float64(f.sumX))/float64(f.n) - b*float64(f.origin)
}

// at evaluates the line at year as the single fraction
// (Σy·sxx + sxy·(n·t − Σx)) / (n·sxx) and rounds it half to even.
func (f olsFit) at(year int) int {
	if f.sxx == 0 {
		return roundHalfEven(f.sumY, f.n)
	}
	t := int64(year) - f.origin
	num := f.sumY*f.sxx + f.sxy*(f.n*t-f.sumX)
	return roundHalfEven(num, f.n*f.sxx)
}

// roundHalfEven returns num/den rounded to the nearest integer, ties to even. den > 0.
func roundHalfEven(num, den int64) int {
	q := num / den
	r := num % den
	if r < 0 {
		q--
		r += den
	}
	switch {
	case 2*r > den:
		q++
	case 2*r == den && q%2 != 0:
		q++
	}
	return int(q)
}
