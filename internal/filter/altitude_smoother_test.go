package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flybeeper/trackmiles/internal/models"
)

func altitudeTrack(id string, altitudes ...float64) *models.Track {
	track := &models.Track{ID: id}
	for i, alt := range altitudes {
		track.Records = append(track.Records, models.PositionRecord{
			TrackID:   id,
			Time:      int64(100 + i*10),
			Latitude:  50.0,
			Longitude: 8.5,
			Altitude:  alt,
		})
	}
	return track
}

func altitudes(track *models.Track) []float64 {
	out := make([]float64, len(track.Records))
	for i, rec := range track.Records {
		out[i] = rec.Altitude
	}
	return out
}

func TestAltitudeSmoother_DeferredNulling(t *testing.T) {
	f := NewAltitudeSmoother(DefaultFilterConfig(), testLogger())

	// Дельта на индексе 2 равна +3950 и обнуляется; дельта на индексе 3
	// считается против исходного значения 5000 (-3900) и тоже обнуляется.
	// Хвостовой пропуск не имеет правого соседа и остается отсутствующим.
	track := altitudeTrack("DLH123", 1000, 1050, 5000, 1100)

	result, err := f.Filter(track)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Statistics.AltitudeJumps)
	assert.Equal(t, 0, result.Statistics.InterpolatedValues)
	assert.Equal(t, 2, result.Statistics.UnresolvedMissing)

	got := altitudes(result.Track)
	assert.InDelta(t, 1000, got[0], 1e-9)
	assert.InDelta(t, 1050, got[1], 1e-9)
	assert.True(t, math.IsNaN(got[2]))
	assert.True(t, math.IsNaN(got[3]))
}

func TestAltitudeSmoother_BridgesRunOfNulls(t *testing.T) {
	f := NewAltitudeSmoother(DefaultFilterConfig(), testLogger())

	// Обнуляются индексы 2 (+3950) и 3 (-3900 против исходного 5000);
	// индекс 4 остается (|1150-1100| = 50). Пропуск из двух значений
	// перекрывается одной интерполяцией между 1050 и 1150.
	track := altitudeTrack("DLH123", 1000, 1050, 5000, 1100, 1150)

	result, err := f.Filter(track)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Statistics.AltitudeJumps)
	assert.Equal(t, 2, result.Statistics.InterpolatedValues)
	assert.Equal(t, 0, result.Statistics.UnresolvedMissing)

	got := altitudes(result.Track)
	assert.InDelta(t, 1000, got[0], 1e-9)
	assert.InDelta(t, 1050, got[1], 1e-9)
	assert.InDelta(t, 1050+100.0/3, got[2], 1e-6)
	assert.InDelta(t, 1050+200.0/3, got[3], 1e-6)
	assert.InDelta(t, 1150, got[4], 1e-9)
}

func TestAltitudeSmoother_SingleGap(t *testing.T) {
	f := NewAltitudeSmoother(DefaultFilterConfig(), testLogger())

	track := altitudeTrack("DLH123", 1000, models.MissingValue(), 1100)

	result, err := f.Filter(track)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Statistics.AltitudeJumps)
	assert.Equal(t, 1, result.Statistics.InterpolatedValues)

	got := altitudes(result.Track)
	assert.InDelta(t, 1050, got[1], 1e-9)
}

func TestAltitudeSmoother_LeadingAndTrailingGapsStayMissing(t *testing.T) {
	f := NewAltitudeSmoother(DefaultFilterConfig(), testLogger())

	track := altitudeTrack("DLH123",
		models.MissingValue(), models.MissingValue(), 1000, 1050, models.MissingValue())

	result, err := f.Filter(track)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Statistics.InterpolatedValues)
	assert.Equal(t, 3, result.Statistics.UnresolvedMissing)

	got := altitudes(result.Track)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 1000, got[2], 1e-9)
	assert.InDelta(t, 1050, got[3], 1e-9)
	assert.True(t, math.IsNaN(got[4]))
}

func TestAltitudeSmoother_AllMissingTrack(t *testing.T) {
	f := NewAltitudeSmoother(DefaultFilterConfig(), testLogger())

	track := altitudeTrack("DLH123",
		models.MissingValue(), models.MissingValue(), models.MissingValue())

	result, err := f.Filter(track)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Statistics.UnresolvedMissing)
	for _, alt := range altitudes(result.Track) {
		assert.True(t, math.IsNaN(alt))
	}
}

func TestAltitudeSmoother_MissingNeighborIsNotAJump(t *testing.T) {
	f := NewAltitudeSmoother(DefaultFilterConfig(), testLogger())

	// Дельта против отсутствующего соседа не считается скачком
	track := altitudeTrack("DLH123", 1000, models.MissingValue(), 5000, 5050)

	result, err := f.Filter(track)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Statistics.AltitudeJumps)
	got := altitudes(result.Track)
	assert.InDelta(t, 3000, got[1], 1e-9) // Пропуск интерполирован между 1000 и 5000
	assert.InDelta(t, 5000, got[2], 1e-9)
}

func TestAltitudeSmoother_DoesNotMutateInput(t *testing.T) {
	f := NewAltitudeSmoother(DefaultFilterConfig(), testLogger())

	track := altitudeTrack("DLH123", 1000, 1050, 5000, 1100)
	_, err := f.Filter(track)
	require.NoError(t, err)

	assert.InDelta(t, 5000, track.Records[2].Altitude, 1e-9)
	assert.InDelta(t, 1100, track.Records[3].Altitude, 1e-9)
}
