package filter

import (
	"fmt"
	"time"

	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

// FilterChain цепочка фильтров для последовательного применения к треку
type FilterChain struct {
	filters []TrackFilter
	config  *FilterConfig
	logger  *utils.Logger
}

// NewFilterChain создает цепочку построчных фильтров в порядке конвейера:
// очистка неполных записей, IQR выбросы, сглаживание высоты
func NewFilterChain(config *FilterConfig, logger *utils.Logger) *FilterChain {
	chain := &FilterChain{
		filters: make([]TrackFilter, 0),
		config:  config,
		logger:  logger,
	}

	// Добавляем фильтры в зависимости от конфигурации
	if config.EnableSanitizer {
		chain.AddFilter(NewSanitizeFilter(logger))
	}

	if config.EnableOutlierFilter {
		chain.AddFilter(NewIQROutlierFilter(config, logger))
	}

	if config.EnableAltitudeSmoother {
		chain.AddFilter(NewAltitudeSmoother(config, logger))
	}

	return chain
}

// AddFilter добавляет фильтр в цепочку
func (fc *FilterChain) AddFilter(filter TrackFilter) {
	fc.filters = append(fc.filters, filter)
}

// Filters возвращает фильтры цепочки в порядке применения
func (fc *FilterChain) Filters() []TrackFilter {
	return fc.filters
}

// Filter применяет все фильтры цепочки к одному треку
func (fc *FilterChain) Filter(track *models.Track) (*FilterResult, error) {
	if len(track.Records) == 0 {
		return &FilterResult{
			OriginalCount: 0,
			FilteredCount: 0,
			Track:         &models.Track{ID: track.ID},
			Statistics:    FilterStats{},
		}, nil
	}

	fc.logger.WithField("track_id", track.ID).
		WithField("original_points", len(track.Records)).
		WithField("filters_count", len(fc.filters)).
		Debug("Starting track filtering")

	originalCount := len(track.Records)
	current := track
	combinedStats := FilterStats{}

	// Применяем каждый фильтр последовательно
	for _, filter := range fc.filters {
		start := time.Now()

		result, err := filter.Filter(current)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filter.Name(), err)
		}

		duration := time.Since(start)

		fc.logger.WithField("track_id", track.ID).
			WithField("filter", filter.Name()).
			WithField("input_points", len(current.Records)).
			WithField("output_points", len(result.Track.Records)).
			WithField("duration_ms", duration.Milliseconds()).
			Debug("Filter applied")

		current = result.Track

		// Объединяем статистику
		combinedStats.MissingRows += result.Statistics.MissingRows
		combinedStats.Outliers += result.Statistics.Outliers
		combinedStats.AltitudeJumps += result.Statistics.AltitudeJumps
		combinedStats.InterpolatedValues += result.Statistics.InterpolatedValues
		combinedStats.UnresolvedMissing += result.Statistics.UnresolvedMissing
	}

	finalCount := len(current.Records)
	result := &FilterResult{
		OriginalCount: originalCount,
		FilteredCount: originalCount - finalCount,
		Track:         current,
		Statistics:    combinedStats,
	}

	fc.logger.WithField("track_id", track.ID).
		WithField("original_count", originalCount).
		WithField("final_count", finalCount).
		WithField("missing_rows", combinedStats.MissingRows).
		WithField("outliers", combinedStats.Outliers).
		WithField("altitude_jumps", combinedStats.AltitudeJumps).
		Debug("Track filtering completed")

	return result, nil
}

// Name возвращает имя цепочки фильтров
func (fc *FilterChain) Name() string {
	return "FilterChain"
}

// Description возвращает описание цепочки фильтров
func (fc *FilterChain) Description() string {
	filterNames := make([]string, len(fc.filters))
	for i, filter := range fc.filters {
		filterNames[i] = filter.Name()
	}
	return fmt.Sprintf("Chain of filters: %v", filterNames)
}
