package loader

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flybeeper/trackmiles/pkg/utils"
)

const sampleCSV = `time,icao24,lat,lon,velocity,callsign,onground,geoaltitude
1656360000,3c6444,50.03,8.57,120.5,DLH123,false,350.0
1656360010,3c6444,50.04,8.58,121.0,DLH123,false,420.0
1656360020,3c6444,,8.59,121.5,DLH123,false,NaN
1656360000,4ca123,53.63,9.98,0.0,BAW456,true,12.0
`

func testLogger() *utils.Logger {
	return utils.NewLogger("error", "text")
}

func TestRead(t *testing.T) {
	l := NewLoader(testLogger())

	records, err := l.Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 4)

	first := records[0]
	assert.Equal(t, "DLH123", first.TrackID)
	assert.Equal(t, int64(1656360000), first.Time)
	assert.InDelta(t, 50.03, first.Latitude, 1e-9)
	assert.InDelta(t, 8.57, first.Longitude, 1e-9)
	assert.InDelta(t, 350.0, first.Altitude, 1e-9)
	assert.False(t, first.OnGround)

	// Пустая ячейка и NaN дают отсутствующие значения
	third := records[2]
	assert.False(t, third.HasPosition())
	assert.False(t, third.HasAltitude())

	assert.True(t, records[3].OnGround)
}

func TestRead_SkipsMalformedRows(t *testing.T) {
	csvData := `time,icao24,lat,lon,velocity,callsign,onground,geoaltitude
1656360000,3c6444,50.03,8.57,120.5,DLH123,false,350.0
not-a-time,3c6444,50.04,8.58,121.0,DLH123,false,420.0
1656360020,3c6444,50.05,8.59,121.5,,false,430.0
1656360030,3c6444,50.06,8.60,122.0,DLH123,maybe,440.0
1656360040,3c6444,50.07,8.61,122.5,DLH123,false,450.0
`

	l := NewLoader(testLogger())
	records, err := l.Read(strings.NewReader(csvData))
	require.NoError(t, err)

	// Строки с плохим временем, пустым callsign и некорректным onground пропущены
	require.Len(t, records, 2)
	assert.Equal(t, int64(1656360000), records[0].Time)
	assert.Equal(t, int64(1656360040), records[1].Time)
}

func TestRead_MissingColumn(t *testing.T) {
	csvData := "time,icao24,lat,lon,callsign,onground\n1,a,2,3,X,false\n"

	l := NewLoader(testLogger())
	_, err := l.Read(strings.NewReader(csvData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "geoaltitude")
}

func TestLoadFile_Gzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "states.csv.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	l := NewLoader(testLogger())
	records, err := l.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestLoadFile_NotFound(t *testing.T) {
	l := NewLoader(testLogger())
	_, err := l.LoadFile("does-not-exist.csv.gz")
	assert.Error(t, err)
}
