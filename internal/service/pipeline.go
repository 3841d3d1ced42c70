package service

import (
	"sync"
	"time"

	"github.com/flybeeper/trackmiles/internal/filter"
	"github.com/flybeeper/trackmiles/internal/metrics"
	"github.com/flybeeper/trackmiles/internal/models"
	"github.com/flybeeper/trackmiles/pkg/utils"
)

// Pipeline выполняет полный конвейер очистки и аннотации треков.
// Каждый этап является барьером: следующий начинается только после
// обработки всех треков предыдущим. Внутри этапа независимые треки
// обрабатываются пулом воркеров, ошибка одного трека изолируется и не
// прерывает пакет.
type Pipeline struct {
	airportFilter *filter.AirportFilter
	chain         *filter.FilterChain
	calculator    *TrackMilesCalculator
	workers       int
	logger        *utils.Logger
}

// NewPipeline создает конвейер для заданного аэропорта
func NewPipeline(airport models.GeoPoint, cfg *filter.FilterConfig, workers int, logger *utils.Logger) *Pipeline {
	if workers < 1 {
		workers = 1
	}

	return &Pipeline{
		airportFilter: filter.NewAirportFilter(airport, cfg, logger),
		chain:         filter.NewFilterChain(cfg, logger),
		calculator:    NewTrackMilesCalculator(logger),
		workers:       workers,
		logger:        logger,
	}
}

// Run прогоняет записи через все этапы и возвращает очищенные треки с
// заполненным RemainingTrackKM
func (p *Pipeline) Run(records []models.PositionRecord) []*models.Track {
	metrics.PipelineRecordsLoaded.Add(float64(len(records)))

	// Группировка и единственная сортировка по времени
	start := time.Now()
	tracks := models.PartitionByTrack(records)
	metrics.PipelineStageDuration.WithLabelValues("partition").Observe(time.Since(start).Seconds())

	p.logger.WithField("records", len(records)).
		WithField("tracks", len(tracks)).
		Info("Partitioned records into tracks")

	// Селекция треков по привязке к аэропорту; этап глобальный, так как
	// зависит от принадлежности всего трека
	start = time.Now()
	selected := p.airportFilter.SelectTracks(tracks)
	metrics.PipelineStageDuration.WithLabelValues("airport_filter").Observe(time.Since(start).Seconds())
	metrics.PipelineTracksSelected.Add(float64(len(selected)))
	metrics.PipelineTracksDropped.WithLabelValues("no_airport_contact").
		Add(float64(len(tracks) - len(selected)))

	// Построчная очистка каждого трека
	start = time.Now()
	cleaned := p.forEachTrack(selected, p.cleanTrack)
	metrics.PipelineStageDuration.WithLabelValues("clean").Observe(time.Since(start).Seconds())

	// Аннотация remaining track miles
	start = time.Now()
	annotated := p.forEachTrack(cleaned, func(track *models.Track) (*models.Track, bool) {
		return p.calculator.Annotate(track), true
	})
	metrics.PipelineStageDuration.WithLabelValues("trackmiles").Observe(time.Since(start).Seconds())

	p.logger.WithField("input_tracks", len(tracks)).
		WithField("selected_tracks", len(selected)).
		WithField("output_tracks", len(annotated)).
		Info("Pipeline completed")

	return annotated
}

// cleanTrack применяет цепочку фильтров к одному треку. Ошибка или
// полностью опустевший трек приводят к его пропуску, не к остановке пакета.
func (p *Pipeline) cleanTrack(track *models.Track) (*models.Track, bool) {
	result, err := p.chain.Filter(track)
	if err != nil {
		p.logger.WithField("track_id", track.ID).
			WithField("error", err).
			Warn("Skipping track that failed filtering")
		metrics.PipelineTracksDropped.WithLabelValues("filter_error").Inc()
		return nil, false
	}

	metrics.PipelineRowsFiltered.WithLabelValues("sanitize").
		Add(float64(result.Statistics.MissingRows))
	metrics.PipelineRowsFiltered.WithLabelValues("iqr_outlier").
		Add(float64(result.Statistics.Outliers))
	metrics.PipelineAltitudesInterpolated.
		Add(float64(result.Statistics.InterpolatedValues))

	if len(result.Track.Records) == 0 {
		p.logger.WithField("track_id", track.ID).
			Warn("Track is empty after cleaning")
		metrics.PipelineTracksDropped.WithLabelValues("empty_after_cleaning").Inc()
		return nil, false
	}

	return result.Track, true
}

// forEachTrack обрабатывает треки пулом воркеров и возвращает результаты в
// исходном порядке, опуская пропущенные треки. Возврат из функции является
// барьером этапа.
func (p *Pipeline) forEachTrack(tracks []*models.Track, fn func(*models.Track) (*models.Track, bool)) []*models.Track {
	results := make([]*models.Track, len(tracks))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.workers)

	for i, track := range tracks {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, track *models.Track) {
			defer wg.Done()
			defer func() { <-semaphore }()
			// Паника на одном треке не должна ронять весь пакет:
			// трек пропускается, его слот в results остается nil
			defer func() {
				if r := recover(); r != nil {
					p.logger.WithField("track_id", track.ID).
						WithField("panic", r).
						Warn("Recovered from panic while processing track")
					metrics.PipelineTracksDropped.WithLabelValues("processing_panic").Inc()
				}
			}()

			if out, ok := fn(track); ok {
				results[i] = out
			}
		}(i, track)
	}

	wg.Wait()

	kept := make([]*models.Track, 0, len(results))
	for _, track := range results {
		if track != nil {
			kept = append(kept, track)
		}
	}

	return kept
}
