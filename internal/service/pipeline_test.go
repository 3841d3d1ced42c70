package service

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flybeeper/trackmiles/internal/filter"
	"github.com/flybeeper/trackmiles/internal/models"
)

var frankfurt = models.GeoPoint{Latitude: 50.033333, Longitude: 8.570556}

// approachRecords строит записи захода на посадку: снижение к аэропорту
// с посадкой на последней точке
func approachRecords(id string, n int) []models.PositionRecord {
	records := make([]models.PositionRecord, 0, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		records = append(records, models.PositionRecord{
			TrackID:   id,
			Time:      int64(1000 + i*10),
			Latitude:  50.5 - 0.45*frac,
			Longitude: 9.0 - 0.42*frac,
			Altitude:  3000 * (1 - frac),
			OnGround:  i == n-1,
		})
	}
	return records
}

// cruiseRecords строит записи пролета мимо аэропорта на эшелоне
func cruiseRecords(id string, n int) []models.PositionRecord {
	records := make([]models.PositionRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, models.PositionRecord{
			TrackID:   id,
			Time:      int64(1000 + i*10),
			Latitude:  50.0 + 0.01*float64(i),
			Longitude: 8.5 + 0.01*float64(i),
			Altitude:  10000,
		})
	}
	return records
}

func newTestPipeline(workers int) *Pipeline {
	return NewPipeline(frankfurt, filter.DefaultFilterConfig(), workers, testLogger())
}

func TestPipeline_Run(t *testing.T) {
	p := newTestPipeline(4)

	records := append(approachRecords("DLH123", 30), cruiseRecords("BAW456", 30)...)

	tracks := p.Run(records)

	// Пролетающий на эшелоне трек отброшен, заход сохранен целиком
	require.Len(t, tracks, 1)
	assert.Equal(t, "DLH123", tracks[0].ID)
	assert.Len(t, tracks[0].Records, 30)

	// Последняя точка имеет нулевой остаток пути
	last := tracks[0].Records[len(tracks[0].Records)-1]
	assert.InDelta(t, 0, last.RemainingTrackKM, 1e-9)

	// Назад по времени остаток не убывает до наземной точки
	recs := tracks[0].Records
	for i := len(recs) - 2; i >= 0; i-- {
		if recs[i].OnGround {
			continue
		}
		assert.GreaterOrEqual(t, recs[i].RemainingTrackKM, recs[i+1].RemainingTrackKM)
	}
}

func TestPipeline_RunCleansTracks(t *testing.T) {
	p := newTestPipeline(2)

	records := approachRecords("DLH123", 30)
	// Неполная запись и неправдоподобный скачок высоты
	records[5].Altitude = models.MissingValue()
	records[5].Latitude = models.MissingValue()
	records[12].Altitude = records[12].Altitude + 2500

	tracks := p.Run(records)
	require.Len(t, tracks, 1)

	for _, rec := range tracks[0].Records {
		assert.True(t, rec.HasPosition())
		assert.False(t, math.IsNaN(rec.RemainingTrackKM))
		// Скачок сглажен до правдоподобного профиля снижения
		assert.Less(t, rec.Altitude, 3100.0)
	}
}

func TestPipeline_ManyTracksConcurrently(t *testing.T) {
	p := newTestPipeline(8)

	var records []models.PositionRecord
	for i := 0; i < 40; i++ {
		records = append(records, approachRecords(fmt.Sprintf("DLH%03d", i), 25)...)
	}

	tracks := p.Run(records)
	require.Len(t, tracks, 40)

	// Порядок треков соответствует порядку появления во входных данных
	for i, track := range tracks {
		assert.Equal(t, fmt.Sprintf("DLH%03d", i), track.ID)
		assert.Len(t, track.Records, 25)
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	p := newTestPipeline(4)

	tracks := p.Run(nil)
	assert.Empty(t, tracks)
}

func TestPipeline_PanicOnOneTrackDoesNotAbortBatch(t *testing.T) {
	p := newTestPipeline(2)

	tracks := []*models.Track{
		{ID: "DLH001", Records: approachRecords("DLH001", 5)},
		{ID: "BROKEN", Records: approachRecords("BROKEN", 5)},
		{ID: "DLH002", Records: approachRecords("DLH002", 5)},
	}

	// Паника на одном треке пропускает его, остальные выживают в
	// исходном порядке
	out := p.forEachTrack(tracks, func(track *models.Track) (*models.Track, bool) {
		if track.ID == "BROKEN" {
			panic("corrupt record")
		}
		return track, true
	})

	require.Len(t, out, 2)
	assert.Equal(t, "DLH001", out[0].ID)
	assert.Equal(t, "DLH002", out[1].ID)
}

func TestPipeline_AllMissingAltitudeTrackSurvivesSelectionOnly(t *testing.T) {
	p := newTestPipeline(2)

	// Трек без высот: не может квалифицироваться у аэропорта и отбрасывается
	records := cruiseRecords("NOALT", 10)
	for i := range records {
		records[i].Altitude = models.MissingValue()
	}

	tracks := p.Run(records)
	assert.Empty(t, tracks)
}
