package filter

import (
	"math"
	"sort"

	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

// IQROutlierFilter удаляет пространственные выбросы внутри трека по
// межквартильному размаху: запись отбрасывается, если ее долгота, широта или
// высота выходит за [Q1 - k*IQR, Q3 + k*IQR] соответствующего измерения.
// Квартили считаются заново для каждого трека.
type IQROutlierFilter struct {
	config *FilterConfig
	logger *utils.Logger
}

// NewIQROutlierFilter создает новый фильтр выбросов
func NewIQROutlierFilter(config *FilterConfig, logger *utils.Logger) *IQROutlierFilter {
	return &IQROutlierFilter{
		config: config,
		logger: logger,
	}
}

// bound допустимый диапазон одного измерения
type bound struct {
	lower float64
	upper float64
}

// contains проверяет значение против границ включительно
func (b bound) contains(value float64) bool {
	return value >= b.lower && value <= b.upper
}

// Filter применяет фильтр выбросов к треку
func (f *IQROutlierFilter) Filter(track *models.Track) (*FilterResult, error) {
	// Слишком короткий трек: квартили вырождаются, выбросы не удаляем
	if len(track.Records) < f.config.MinQuartilePoints {
		return &FilterResult{
			OriginalCount: len(track.Records),
			FilteredCount: 0,
			Track:         track.Clone(),
			Statistics:    FilterStats{},
		}, nil
	}

	lons := make([]float64, len(track.Records))
	lats := make([]float64, len(track.Records))
	alts := make([]float64, len(track.Records))
	for i, rec := range track.Records {
		lons[i] = rec.Longitude
		lats[i] = rec.Latitude
		alts[i] = rec.Altitude
	}

	lonBound := f.iqrBound(lons)
	latBound := f.iqrBound(lats)
	altBound := f.iqrBound(alts)

	records := make([]models.PositionRecord, 0, len(track.Records))
	stats := FilterStats{}

	for i, rec := range track.Records {
		if lonBound.contains(rec.Longitude) &&
			latBound.contains(rec.Latitude) &&
			altBound.contains(rec.Altitude) {
			records = append(records, rec)
			continue
		}

		stats.Outliers++
		f.logger.WithField("track_id", track.ID).
			WithField("point_index", i).
			WithField("lat", rec.Latitude).
			WithField("lon", rec.Longitude).
			WithField("alt", rec.Altitude).
			Debug("Point outside IQR bounds")
	}

	if stats.Outliers > 0 {
		f.logger.WithField("track_id", track.ID).
			WithField("original_points", len(track.Records)).
			WithField("outliers_removed", stats.Outliers).
			Debug("IQR outlier filtering completed")
	}

	return &FilterResult{
		OriginalCount: len(track.Records),
		FilteredCount: stats.Outliers,
		Track:         &models.Track{ID: track.ID, Records: records},
		Statistics:    stats,
	}, nil
}

// iqrBound вычисляет допустимый диапазон измерения из квартилей
func (f *IQROutlierFilter) iqrBound(values []float64) bound {
	q1 := quantile(values, 0.25)
	q3 := quantile(values, 0.75)
	iqr := q3 - q1

	return bound{
		lower: q1 - f.config.IQRMultiplier*iqr,
		upper: q3 + f.config.IQRMultiplier*iqr,
	}
}

// quantile вычисляет квантиль с линейной интерполяцией между порядковыми
// статистиками: позиция (n-1)*q, дробная часть интерполируется между
// соседними элементами отсортированной выборки
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := float64(len(sorted)-1) * q
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))

	if lower == upper {
		return sorted[lower]
	}

	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Name возвращает имя фильтра
func (f *IQROutlierFilter) Name() string {
	return "IQROutlierFilter"
}

// Description возвращает описание фильтра
func (f *IQROutlierFilter) Description() string {
	return "Removes per-track spatial outliers using interquartile-range bounds on longitude, latitude and altitude"
}
