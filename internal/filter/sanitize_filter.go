package filter

import (
	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

// SanitizeFilter удаляет записи без долготы, широты или высоты.
// Чистый построчный фильтр, порядок записей сохраняется.
type SanitizeFilter struct {
	logger *utils.Logger
}

// NewSanitizeFilter создает новый фильтр неполных записей
func NewSanitizeFilter(logger *utils.Logger) *SanitizeFilter {
	return &SanitizeFilter{logger: logger}
}

// Filter применяет фильтр к треку
func (f *SanitizeFilter) Filter(track *models.Track) (*FilterResult, error) {
	records := make([]models.PositionRecord, 0, len(track.Records))
	stats := FilterStats{}

	for _, rec := range track.Records {
		if rec.Complete() {
			records = append(records, rec)
		} else {
			stats.MissingRows++
		}
	}

	if stats.MissingRows > 0 {
		f.logger.WithField("track_id", track.ID).
			WithField("missing_rows", stats.MissingRows).
			Debug("Dropped incomplete records")
	}

	return &FilterResult{
		OriginalCount: len(track.Records),
		FilteredCount: stats.MissingRows,
		Track:         &models.Track{ID: track.ID, Records: records},
		Statistics:    stats,
	}, nil
}

// Name возвращает имя фильтра
func (f *SanitizeFilter) Name() string {
	return "SanitizeFilter"
}

// Description возвращает описание фильтра
func (f *SanitizeFilter) Description() string {
	return "Removes records missing longitude, latitude or altitude"
}
