package filter

import (
	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

// AirportFilter отбирает треки, связанные с аэропортом: трек проходит
// целиком, если хотя бы одна его запись попала в окно вокруг аэропорта на
// малой высоте. Это селектор уровня треков, а не строк.
type AirportFilter struct {
	airport models.GeoPoint
	window  models.Bounds
	config  *FilterConfig
	logger  *utils.Logger
}

// NewAirportFilter создает новый фильтр привязки к аэропорту
func NewAirportFilter(airport models.GeoPoint, config *FilterConfig, logger *utils.Logger) *AirportFilter {
	return &AirportFilter{
		airport: airport,
		window:  models.BoundsAround(airport, config.AirportBoxHalfWidthDeg),
		config:  config,
		logger:  logger,
	}
}

// SelectTracks возвращает треки, имеющие хотя бы одну запись в окне аэропорта
// ниже порога высоты. Записи выживших треков не изменяются и не отбрасываются.
func (f *AirportFilter) SelectTracks(tracks []*models.Track) []*models.Track {
	selected := make([]*models.Track, 0, len(tracks))
	dropped := 0

	for _, track := range tracks {
		if f.hasQualifyingRecord(track) {
			selected = append(selected, track)
		} else {
			dropped++
			f.logger.WithField("track_id", track.ID).
				Debug("Track has no qualifying point near airport")
		}
	}

	f.logger.WithField("airport_lat", f.airport.Latitude).
		WithField("airport_lon", f.airport.Longitude).
		WithField("selected_tracks", len(selected)).
		WithField("dropped_tracks", dropped).
		Info("Airport filtering completed")

	return selected
}

// hasQualifyingRecord проверяет наличие записи в окне аэропорта на малой высоте
func (f *AirportFilter) hasQualifyingRecord(track *models.Track) bool {
	for _, rec := range track.Records {
		if f.qualifies(rec) {
			return true
		}
	}
	return false
}

// qualifies проверяет одну запись: строгое окно по обеим координатам и
// строгий порог по высоте. Сравнения с NaN ложны, поэтому записи с
// отсутствующими полями не квалифицируют трек.
func (f *AirportFilter) qualifies(rec models.PositionRecord) bool {
	return f.window.Contains(rec.Position()) &&
		rec.Altitude < f.config.LowAltitudeM
}

// Name возвращает имя фильтра
func (f *AirportFilter) Name() string {
	return "AirportFilter"
}

// Description возвращает описание фильтра
func (f *AirportFilter) Description() string {
	return "Keeps only tracks that pass near the reference airport below the low-altitude threshold"
}
