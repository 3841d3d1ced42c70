package filter

import (
	"math"

	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

// AltitudeSmoother сглаживает профиль высоты трека в два прохода:
// сначала обнуляет неправдоподобные скачки высоты, затем восстанавливает
// пропуски линейной интерполяцией по соседним известным значениям.
//
// Дельты первого прохода считаются по исходному ряду высот, снятому до
// любых обнулений: обнуление откладывается и применяется только после
// полного прохода по треку. Так обнуленное значение все еще участвует как
// "предыдущее" при проверке следующей дельты.
type AltitudeSmoother struct {
	config *FilterConfig
	logger *utils.Logger
}

// NewAltitudeSmoother создает новый сглаживатель высоты
func NewAltitudeSmoother(config *FilterConfig, logger *utils.Logger) *AltitudeSmoother {
	return &AltitudeSmoother{
		config: config,
		logger: logger,
	}
}

// Filter применяет сглаживание к треку. Записи не удаляются; меняется
// только колонка высоты.
func (f *AltitudeSmoother) Filter(track *models.Track) (*FilterResult, error) {
	result := track.Clone()
	stats := FilterStats{}

	if len(result.Records) == 0 {
		return &FilterResult{
			OriginalCount: 0,
			FilteredCount: 0,
			Track:         result,
			Statistics:    stats,
		}, nil
	}

	// Фаза 1: пометить скачки по нетронутому ряду, обнулить после прохода
	jumps := f.detectJumps(result.Records)
	for _, i := range jumps {
		f.logger.WithField("track_id", track.ID).
			WithField("point_index", i).
			WithField("altitude", result.Records[i].Altitude).
			Debug("Nulling implausible altitude jump")
		result.Records[i].Altitude = models.MissingValue()
	}
	stats.AltitudeJumps = len(jumps)

	// Фаза 2: линейная интерполяция пропусков
	interpolated, unresolved := f.interpolate(result.Records)
	stats.InterpolatedValues = interpolated
	stats.UnresolvedMissing = unresolved

	if unresolved > 0 {
		f.logger.WithField("track_id", track.ID).
			WithField("unresolved_missing", unresolved).
			Warn("Track has altitude values that could not be interpolated")
	}

	if stats.AltitudeJumps > 0 || stats.InterpolatedValues > 0 {
		f.logger.WithField("track_id", track.ID).
			WithField("altitude_jumps", stats.AltitudeJumps).
			WithField("interpolated", stats.InterpolatedValues).
			Debug("Altitude smoothing completed")
	}

	return &FilterResult{
		OriginalCount: len(track.Records),
		FilteredCount: 0,
		Track:         result,
		Statistics:    stats,
	}, nil
}

// detectJumps возвращает индексы записей, чья высота отличается от высоты
// предыдущей записи исходного ряда больше чем на порог. Дельта с
// отсутствующим соседом не считается скачком.
func (f *AltitudeSmoother) detectJumps(records []models.PositionRecord) []int {
	var jumps []int

	for i := 1; i < len(records); i++ {
		prev := records[i-1].Altitude
		curr := records[i].Altitude
		if math.IsNaN(prev) || math.IsNaN(curr) {
			continue
		}

		if math.Abs(curr-prev) > f.config.AltitudeJumpM {
			jumps = append(jumps, i)
		}
	}

	return jumps
}

// interpolate заполняет пропуски высоты линейной интерполяцией между двумя
// ближайшими известными соседями. Один вызов перекрывает пропуск любой
// длины. Пропуски в начале и конце трека без обрамляющего соседа остаются
// отсутствующими, как и трек целиком без известных высот.
func (f *AltitudeSmoother) interpolate(records []models.PositionRecord) (interpolated, unresolved int) {
	n := len(records)

	i := 0
	for i < n {
		if !math.IsNaN(records[i].Altitude) {
			i++
			continue
		}

		// Границы пропуска [start, end)
		start := i
		end := i
		for end < n && math.IsNaN(records[end].Altitude) {
			end++
		}

		hasLeft := start > 0
		hasRight := end < n

		switch {
		case hasLeft && hasRight:
			left := records[start-1].Altitude
			right := records[end].Altitude
			span := float64(end - (start - 1))
			for j := start; j < end; j++ {
				frac := float64(j-(start-1)) / span
				records[j].Altitude = left + (right-left)*frac
				interpolated++
			}
		default:
			// Нет обрамляющего соседа с одной из сторон
			unresolved += end - start
		}

		i = end
	}

	return interpolated, unresolved
}

// Name возвращает имя фильтра
func (f *AltitudeSmoother) Name() string {
	return "AltitudeSmoother"
}

// Description возвращает описание фильтра
func (f *AltitudeSmoother) Description() string {
	return "Nulls implausible altitude jumps and linearly interpolates the gaps"
}
