package service

import (
	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

// TrackMilesCalculator вычисляет remaining track miles: геодезическое
// расстояние в километрах от точки до следующего по времени контакта с
// землей. Трек обходится в обратном порядке времени с явным аккумулятором,
// который сбрасывается в ноль на каждой наземной записи.
type TrackMilesCalculator struct {
	logger *utils.Logger
}

// NewTrackMilesCalculator создает новый калькулятор
func NewTrackMilesCalculator(logger *utils.Logger) *TrackMilesCalculator {
	return &TrackMilesCalculator{logger: logger}
}

// Annotate возвращает копию трека с заполненным RemainingTrackKM.
// Последняя по времени запись всегда получает ноль; единственная точка
// трека тоже (нет пары для расстояния).
func (c *TrackMilesCalculator) Annotate(track *models.Track) *models.Track {
	result := track.Clone()
	records := result.Records

	n := len(records)
	if n == 0 {
		return result
	}

	records[n-1].RemainingTrackKM = 0

	rtm := 0.0
	skippedPairs := 0

	for i := n - 2; i >= 0; i-- {
		if records[i].OnGround {
			// Контакт с землей: до следующей посадки осталось ноль
			rtm = 0
		} else if records[i].HasPosition() && records[i+1].HasPosition() {
			rtm += records[i].Position().DistanceTo(records[i+1].Position())
		} else {
			// Пара без координат не дает расстояния; аккумулятор не растет
			skippedPairs++
		}

		records[i].RemainingTrackKM = rtm
	}

	if skippedPairs > 0 {
		c.logger.WithField("track_id", track.ID).
			WithField("skipped_pairs", skippedPairs).
			Warn("Track miles accumulated over pairs with missing coordinates")
	}

	return result
}
