// Package airports разрешает ICAO коды аэропортов в координаты по
// встроенному справочнику.
package airports

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/flybeeper/trackmiles/internal/models"
)

//go:embed data/airports.csv
var airportsCSV []byte

// Airport описывает аэропорт из справочника
type Airport struct {
	ICAO     string
	IATA     string
	Name     string
	Position models.GeoPoint
}

var (
	loadOnce sync.Once
	loadErr  error
	byICAO   map[string]Airport
)

// load разбирает встроенный CSV справочник один раз
func load() {
	byICAO = make(map[string]Airport)

	reader := csv.NewReader(bytes.NewReader(airportsCSV))

	// Заголовок
	if _, err := reader.Read(); err != nil {
		loadErr = fmt.Errorf("read airports header: %w", err)
		return
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			loadErr = fmt.Errorf("read airports row: %w", err)
			return
		}
		if len(row) < 5 {
			loadErr = fmt.Errorf("malformed airports row: %v", row)
			return
		}

		lat, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			loadErr = fmt.Errorf("parse latitude for %s: %w", row[0], err)
			return
		}
		lon, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			loadErr = fmt.Errorf("parse longitude for %s: %w", row[0], err)
			return
		}

		airport := Airport{
			ICAO:     strings.ToUpper(row[0]),
			IATA:     strings.ToUpper(row[1]),
			Name:     row[2],
			Position: models.GeoPoint{Latitude: lat, Longitude: lon},
		}

		if err := airport.Position.Validate(); err != nil {
			loadErr = fmt.Errorf("airport %s: %w", airport.ICAO, err)
			return
		}

		byICAO[airport.ICAO] = airport
	}
}

// Resolve возвращает аэропорт по ICAO коду. Неизвестный код — ошибка
// конфигурации, а не пустой результат.
func Resolve(icaoCode string) (Airport, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Airport{}, fmt.Errorf("airports reference data: %w", loadErr)
	}

	code := strings.ToUpper(strings.TrimSpace(icaoCode))
	if code == "" {
		return Airport{}, fmt.Errorf("empty airport code")
	}

	airport, ok := byICAO[code]
	if !ok {
		return Airport{}, fmt.Errorf("unknown airport code: %s", code)
	}

	return airport, nil
}
