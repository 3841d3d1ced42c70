package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

func testLogger() *utils.Logger {
	return utils.NewLogger("error", "text")
}

func exportTrack(id string) *models.Track {
	return &models.Track{
		ID: id,
		Records: []models.PositionRecord{
			{TrackID: id, Time: 1656360000, Latitude: 50.03, Longitude: 8.57, Altitude: 350},
			{TrackID: id, Time: 1656360010, Latitude: 50.04, Longitude: 8.58, Altitude: 420},
			{TrackID: id, Time: 1656360020, Latitude: models.MissingValue(), Longitude: 8.59, Altitude: 480},
			{TrackID: id, Time: 1656360030, Latitude: 50.06, Longitude: 8.60, Altitude: 540},
		},
	}
}

func TestExporter_WriteKML(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, testLogger())

	require.NoError(t, e.WriteKML([]*models.Track{exportTrack("DLH123")}))

	data, err := os.ReadFile(filepath.Join(dir, "kml", "DLH123.kml"))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "Flight path for DLH123")
	assert.Contains(t, content, "<LineString>")
	assert.Contains(t, content, "absolute")
	assert.Contains(t, content, "8.57,50.03,350")
	// Запись без широты пропущена
	assert.NotContains(t, content, "8.59")
}

func TestExporter_WriteAnimatedKML(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, testLogger())

	require.NoError(t, e.WriteAnimatedKML([]*models.Track{exportTrack("DLH123")}))

	data, err := os.ReadFile(filepath.Join(dir, "kml", "DLH123_animated.kml"))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "Animated flight path for DLH123")
	assert.Contains(t, content, "Track")
	assert.Contains(t, content, "when")
}

func TestExporter_WriteGPX(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, testLogger())

	require.NoError(t, e.WriteGPX([]*models.Track{exportTrack("DLH123")}))

	data, err := os.ReadFile(filepath.Join(dir, "gpx", "DLH123.gpx"))
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "<trk>")
	assert.Contains(t, content, "trkpt")
	assert.Contains(t, content, "50.03")
	// Запись без широты пропущена
	assert.NotContains(t, content, "8.59")
}

func TestExporter_SkipsTrackWithoutExportablePoints(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, testLogger())

	track := &models.Track{
		ID: "EMPTY1",
		Records: []models.PositionRecord{
			{TrackID: "EMPTY1", Time: 100, Latitude: models.MissingValue(), Longitude: 8.5, Altitude: 100},
		},
	}

	require.NoError(t, e.WriteKML([]*models.Track{track}))
	require.NoError(t, e.WriteGPX([]*models.Track{track}))

	_, err := os.Stat(filepath.Join(dir, "kml", "EMPTY1.kml"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "gpx", "EMPTY1.gpx"))
	assert.True(t, os.IsNotExist(err))
}

func TestSafeFileName(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "Plain callsign", id: "DLH123", want: "DLH123"},
		{name: "Trailing spaces trimmed", id: "DLH123  ", want: "DLH123"},
		{name: "Slash replaced", id: "DLH/123", want: "DLH_123"},
		{name: "Empty becomes unknown", id: "   ", want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, safeFileName(tt.id))
		})
	}
}
