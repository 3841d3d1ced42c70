package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

// Точность geohash для сводки трека (~2.4 км)
const summaryGeohashPrecision = 5

// RESTHandler обработчики REST API поверх снимка обогащенных треков
type RESTHandler struct {
	tracks []*models.Track
	byID   map[string]*models.Track
	logger *utils.Logger
}

// NewRESTHandler создает новый REST handler
func NewRESTHandler(tracks []*models.Track, logger *utils.Logger) *RESTHandler {
	byID := make(map[string]*models.Track, len(tracks))
	for _, track := range tracks {
		byID[track.ID] = track
	}

	return &RESTHandler{
		tracks: tracks,
		byID:   byID,
		logger: logger,
	}
}

// TrackCount возвращает количество треков в снимке
func (h *RESTHandler) TrackCount() int {
	return len(h.tracks)
}

// TrackSummary сводка по треку для списочного ответа
type TrackSummary struct {
	ID           string  `json:"id"`
	Points       int     `json:"points"`
	StartTime    int64   `json:"start_time"`
	EndTime      int64   `json:"end_time"`
	TotalTrackKM float64 `json:"total_track_km"`
	Geohash      string  `json:"geohash,omitempty"`
}

// TrackPoint одна точка трека в детальном ответе. Высота передается
// указателем: отсутствующее значение сериализуется как null
type TrackPoint struct {
	Time             int64    `json:"time"`
	Latitude         float64  `json:"latitude"`
	Longitude        float64  `json:"longitude"`
	Altitude         *float64 `json:"altitude"`
	OnGround         bool     `json:"on_ground"`
	RemainingTrackKM float64  `json:"remaining_track_km"`
}

// TrackDetail детальный ответ по одному треку
type TrackDetail struct {
	ID     string       `json:"id"`
	Points []TrackPoint `json:"points"`
}

// GetTracks обработчик GET /api/v1/tracks
// Возвращает сводки по всем трекам снимка, отсортированные по ID
func (h *RESTHandler) GetTracks(c *gin.Context) {
	summaries := make([]TrackSummary, 0, len(h.tracks))
	for _, track := range h.tracks {
		summaries = append(summaries, summarize(track))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})

	c.JSON(http.StatusOK, gin.H{
		"tracks": summaries,
		"count":  len(summaries),
	})
}

// GetTrack обработчик GET /api/v1/tracks/:id
func (h *RESTHandler) GetTrack(c *gin.Context) {
	id := c.Param("id")

	track, ok := h.byID[id]
	if !ok {
		h.logger.WithField("track_id", id).Debug("Track not found")
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "track_not_found",
			"message": "Track not found",
		})
		return
	}

	detail := TrackDetail{
		ID:     track.ID,
		Points: make([]TrackPoint, 0, len(track.Records)),
	}

	for _, record := range track.Records {
		point := TrackPoint{
			Time:             record.Time,
			Latitude:         record.Latitude,
			Longitude:        record.Longitude,
			OnGround:         record.OnGround,
			RemainingTrackKM: record.RemainingTrackKM,
		}
		if record.HasAltitude() {
			alt := record.Altitude
			point.Altitude = &alt
		}
		detail.Points = append(detail.Points, point)
	}

	c.JSON(http.StatusOK, detail)
}

// summarize строит сводку по треку
func summarize(track *models.Track) TrackSummary {
	summary := TrackSummary{
		ID:     track.ID,
		Points: len(track.Records),
	}

	if len(track.Records) == 0 {
		return summary
	}

	first := track.Records[0]
	last := track.Records[len(track.Records)-1]

	summary.StartTime = first.Time
	summary.EndTime = last.Time
	// Первая точка несет полную оставшуюся длину трека
	summary.TotalTrackKM = first.RemainingTrackKM

	if first.HasPosition() {
		summary.Geohash = first.Position().Geohash(summaryGeohashPrecision)
	}

	return summary
}
