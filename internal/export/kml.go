// Package export записывает очищенные треки в файлы KML и GPX.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	kml "github.com/twpayne/go-kml/v3"

	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

// Exporter записывает треки в файлы в выходном каталоге
type Exporter struct {
	outputDir string
	logger    *utils.Logger
}

// NewExporter создает экспортер для каталога
func NewExporter(outputDir string, logger *utils.Logger) *Exporter {
	return &Exporter{
		outputDir: outputDir,
		logger:    logger,
	}
}

// WriteKML записывает по одному KML файлу на трек: статический путь полета
// с абсолютным режимом высоты. Записи без координат или высоты пропускаются.
func (e *Exporter) WriteKML(tracks []*models.Track) error {
	dir := filepath.Join(e.outputDir, "kml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create kml dir: %w", err)
	}

	for _, track := range tracks {
		coords := trackCoordinates(track)
		if len(coords) == 0 {
			e.logger.WithField("track_id", track.ID).
				Warn("No exportable points for track")
			continue
		}

		doc := kml.KML(
			kml.Document(
				kml.Name(fmt.Sprintf("Flight path for %s", track.ID)),
				kml.Placemark(
					kml.Name(fmt.Sprintf("Flight path for %s", track.ID)),
					kml.LineString(
						kml.Extrude(true),
						kml.AltitudeMode(kml.AltitudeModeAbsolute),
						kml.Coordinates(coords...),
					),
				),
			),
		)

		path := filepath.Join(dir, safeFileName(track.ID)+".kml")
		if err := e.writeKMLFile(path, doc); err != nil {
			return fmt.Errorf("track %s: %w", track.ID, err)
		}

		e.logger.WithField("track_id", track.ID).
			WithField("path", path).
			WithField("points", len(coords)).
			Debug("Wrote KML file")
	}

	e.logger.WithField("tracks", len(tracks)).
		WithField("dir", dir).
		Info("KML export completed")

	return nil
}

// WriteAnimatedKML записывает анимированный вариант пути через gx:Track с
// временной меткой каждой точки
func (e *Exporter) WriteAnimatedKML(tracks []*models.Track) error {
	dir := filepath.Join(e.outputDir, "kml")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create kml dir: %w", err)
	}

	for _, track := range tracks {
		var elements []kml.Element
		elements = append(elements, kml.AltitudeMode(kml.AltitudeModeAbsolute))

		points := 0
		for _, rec := range track.Records {
			if !rec.Complete() {
				continue
			}
			elements = append(elements,
				kml.When(rec.Timestamp()),
				kml.GxCoord(kml.Coordinate{
					Lon: rec.Longitude,
					Lat: rec.Latitude,
					Alt: rec.Altitude,
				}),
			)
			points++
		}

		if points == 0 {
			e.logger.WithField("track_id", track.ID).
				Warn("No exportable points for track")
			continue
		}

		doc := kml.KML(
			kml.Document(
				kml.Name(fmt.Sprintf("Animated flight path for %s", track.ID)),
				kml.Placemark(
					kml.Name(fmt.Sprintf("Animated flight path for %s", track.ID)),
					kml.GxTrack(elements...),
				),
			),
		)

		path := filepath.Join(dir, safeFileName(track.ID)+"_animated.kml")
		if err := e.writeKMLFile(path, doc); err != nil {
			return fmt.Errorf("track %s: %w", track.ID, err)
		}
	}

	e.logger.WithField("tracks", len(tracks)).
		WithField("dir", dir).
		Info("Animated KML export completed")

	return nil
}

// kmlDocument минимальный интерфейс сериализации KML документа
type kmlDocument interface {
	WriteIndent(w io.Writer, prefix, indent string) error
}

// writeKMLFile сериализует документ в файл
func (e *Exporter) writeKMLFile(path string, doc kmlDocument) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := doc.WriteIndent(f, "", "  "); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

// trackCoordinates собирает полные точки трека в координаты KML
func trackCoordinates(track *models.Track) []kml.Coordinate {
	coords := make([]kml.Coordinate, 0, len(track.Records))
	for _, rec := range track.Records {
		if !rec.Complete() {
			continue
		}
		coords = append(coords, kml.Coordinate{
			Lon: rec.Longitude,
			Lat: rec.Latitude,
			Alt: rec.Altitude,
		})
	}
	return coords
}

// safeFileName приводит идентификатор трека к безопасному имени файла
func safeFileName(id string) string {
	id = strings.TrimSpace(id)
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "..", "_")
	name := replacer.Replace(id)
	if name == "" {
		name = "unknown"
	}
	return name
}
