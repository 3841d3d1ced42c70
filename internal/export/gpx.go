package export

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twpayne/go-gpx"

	"github.com/flybeeper/trackmiles/internal/models"
)

// WriteGPX записывает по одному GPX файлу на трек с временем и высотой
// каждой точки. Записи без координат или высоты пропускаются.
func (e *Exporter) WriteGPX(tracks []*models.Track) error {
	dir := filepath.Join(e.outputDir, "gpx")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create gpx dir: %w", err)
	}

	for _, track := range tracks {
		points := make([]*gpx.WptType, 0, len(track.Records))
		for _, rec := range track.Records {
			if !rec.Complete() {
				continue
			}
			points = append(points, &gpx.WptType{
				Lat:  rec.Latitude,
				Lon:  rec.Longitude,
				Ele:  rec.Altitude,
				Time: rec.Timestamp(),
			})
		}

		if len(points) == 0 {
			e.logger.WithField("track_id", track.ID).
				Warn("No exportable points for track")
			continue
		}

		doc := &gpx.GPX{
			Version: "1.1",
			Creator: "trackmiles",
			Trk: []*gpx.TrkType{
				{
					Name: track.ID,
					TrkSeg: []*gpx.TrkSegType{
						{TrkPt: points},
					},
				},
			},
		}

		path := filepath.Join(dir, safeFileName(track.ID)+".gpx")
		if err := writeGPXFile(path, doc); err != nil {
			return fmt.Errorf("track %s: %w", track.ID, err)
		}

		e.logger.WithField("track_id", track.ID).
			WithField("path", path).
			WithField("points", len(points)).
			Debug("Wrote GPX file")
	}

	e.logger.WithField("tracks", len(tracks)).
		WithField("dir", dir).
		Info("GPX export completed")

	return nil
}

// writeGPXFile сериализует документ в файл
func writeGPXFile(path string, doc *gpx.GPX) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := doc.WriteIndent(f, "", "  "); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
