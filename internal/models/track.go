package models

import (
	"sort"
)

// Track представляет упорядоченную по времени последовательность записей
// одного воздушного судна
type Track struct {
	ID      string           `json:"track_id"`
	Records []PositionRecord `json:"records"`
}

// SortByTime сортирует записи трека по времени (стабильно, сохраняя
// относительный порядок записей с одинаковой меткой времени)
func (t *Track) SortByTime() {
	sort.SliceStable(t.Records, func(i, j int) bool {
		return t.Records[i].Time < t.Records[j].Time
	})
}

// Clone возвращает глубокую копию трека
func (t *Track) Clone() *Track {
	records := make([]PositionRecord, len(t.Records))
	copy(records, t.Records)
	return &Track{ID: t.ID, Records: records}
}

// Len возвращает количество записей трека
func (t *Track) Len() int {
	return len(t.Records)
}

// PartitionByTrack группирует записи по track_id и сортирует каждый трек по
// времени. Это единственная сортировка в конвейере: дальнейшие этапы обязаны
// сохранять установленный здесь порядок. Треки возвращаются в порядке первого
// появления идентификатора во входных данных.
func PartitionByTrack(records []PositionRecord) []*Track {
	index := make(map[string]*Track)
	tracks := make([]*Track, 0)

	for _, rec := range records {
		track, ok := index[rec.TrackID]
		if !ok {
			track = &Track{ID: rec.TrackID}
			index[rec.TrackID] = track
			tracks = append(tracks, track)
		}
		track.Records = append(track.Records, rec)
	}

	for _, track := range tracks {
		track.SortByTime()
	}

	return tracks
}

// FlattenTracks собирает записи всех треков в один слайс, сохраняя порядок
// треков и порядок записей внутри трека
func FlattenTracks(tracks []*Track) []PositionRecord {
	total := 0
	for _, track := range tracks {
		total += len(track.Records)
	}

	records := make([]PositionRecord, 0, total)
	for _, track := range tracks {
		records = append(records, track.Records...)
	}

	return records
}
