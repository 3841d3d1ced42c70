// Package loader читает выгрузки state vector данных (CSV, опционально gzip)
// и превращает их в записи наблюдений.
package loader

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

// Обязательные колонки выгрузки. Позиции определяются по строке заголовка,
// остальные колонки игнорируются.
const (
	columnTime     = "time"
	columnTrackID  = "callsign"
	columnLat      = "lat"
	columnLon      = "lon"
	columnAltitude = "geoaltitude"
	columnOnGround = "onground"
)

// Loader читает записи наблюдений из CSV файлов
type Loader struct {
	logger *utils.Logger
}

// NewLoader создает новый загрузчик
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{logger: logger}
}

// LoadFile читает файл выгрузки. Файлы с суффиксом .gz распаковываются на лету.
func (l *Loader) LoadFile(path string) ([]models.PositionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	records, err := l.Read(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	l.logger.WithField("path", path).
		WithField("records", len(records)).
		Info("Loaded position records")

	return records, nil
}

// Read разбирает CSV поток с заголовком в записи наблюдений. Некорректные
// строки пропускаются с предупреждением, поток целиком не отклоняется.
func (l *Loader) Read(r io.Reader) ([]models.PositionRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var records []models.PositionRecord
	malformed := 0
	line := 1

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			malformed++
			l.logger.WithField("line", line).WithField("error", err).
				Warn("Skipping malformed row")
			continue
		}

		record, err := parseRow(row, columns)
		if err != nil {
			malformed++
			l.logger.WithField("line", line).WithField("error", err).
				Warn("Skipping malformed row")
			continue
		}

		records = append(records, record)
	}

	if malformed > 0 {
		l.logger.WithField("malformed_rows", malformed).
			WithField("accepted_rows", len(records)).
			Warn("Input contained malformed rows")
	}

	return records, nil
}

// columnIndex позиции обязательных колонок в строке
type columnIndex struct {
	time     int
	trackID  int
	lat      int
	lon      int
	altitude int
	onGround int
}

// mapColumns находит позиции обязательных колонок по заголовку
func mapColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	idx := columnIndex{}
	required := []struct {
		name string
		dst  *int
	}{
		{columnTime, &idx.time},
		{columnTrackID, &idx.trackID},
		{columnLat, &idx.lat},
		{columnLon, &idx.lon},
		{columnAltitude, &idx.altitude},
		{columnOnGround, &idx.onGround},
	}

	for _, col := range required {
		pos, ok := positions[col.name]
		if !ok {
			return idx, fmt.Errorf("missing required column %q in header", col.name)
		}
		*col.dst = pos
	}

	return idx, nil
}

// parseRow строит запись наблюдения из строки CSV
func parseRow(row []string, columns columnIndex) (models.PositionRecord, error) {
	maxIdx := columns.time
	for _, i := range []int{columns.trackID, columns.lat, columns.lon, columns.altitude, columns.onGround} {
		if i > maxIdx {
			maxIdx = i
		}
	}
	if len(row) <= maxIdx {
		return models.PositionRecord{}, fmt.Errorf("row has %d fields, need %d", len(row), maxIdx+1)
	}

	trackID := strings.TrimSpace(row[columns.trackID])
	if trackID == "" {
		return models.PositionRecord{}, fmt.Errorf("empty callsign")
	}

	timestamp, err := strconv.ParseInt(strings.TrimSpace(row[columns.time]), 10, 64)
	if err != nil {
		return models.PositionRecord{}, fmt.Errorf("parse time: %w", err)
	}

	onGround, err := parseBool(row[columns.onGround])
	if err != nil {
		return models.PositionRecord{}, fmt.Errorf("parse onground: %w", err)
	}

	lat, err := parseFloatOrMissing(row[columns.lat])
	if err != nil {
		return models.PositionRecord{}, fmt.Errorf("parse lat: %w", err)
	}
	lon, err := parseFloatOrMissing(row[columns.lon])
	if err != nil {
		return models.PositionRecord{}, fmt.Errorf("parse lon: %w", err)
	}
	altitude, err := parseFloatOrMissing(row[columns.altitude])
	if err != nil {
		return models.PositionRecord{}, fmt.Errorf("parse geoaltitude: %w", err)
	}

	return models.PositionRecord{
		TrackID:   trackID,
		Time:      timestamp,
		Latitude:  lat,
		Longitude: lon,
		Altitude:  altitude,
		OnGround:  onGround,
	}, nil
}

// parseFloatOrMissing разбирает число; пустая ячейка и "NaN" означают
// отсутствующее значение
func parseFloatOrMissing(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "nan") {
		return models.MissingValue(), nil
	}
	return strconv.ParseFloat(value, 64)
}

// parseBool разбирает булево значение в вариантах, встречающихся в выгрузках
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "t", "1":
		return true, nil
	case "false", "f", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean: %q", value)
	}
}
