package models

import (
	"math"
	"time"
)

// PositionRecord представляет одну запись наблюдения (state vector) воздушного судна.
// Отсутствующие координаты и высота кодируются как NaN.
type PositionRecord struct {
	TrackID   string  `json:"track_id"`
	Time      int64   `json:"time"` // Unix секунды
	Longitude float64 `json:"lon"`
	Latitude  float64 `json:"lat"`
	Altitude  float64 `json:"alt"` // Геометрическая высота в метрах
	OnGround  bool    `json:"on_ground"`

	// RemainingTrackKM заполняется калькулятором remaining track miles:
	// геодезическое расстояние в км до следующего контакта с землей
	RemainingTrackKM float64 `json:"remaining_track_km"`
}

// MissingValue сигнальное значение для отсутствующих полей
func MissingValue() float64 {
	return math.NaN()
}

// HasPosition сообщает, заданы ли обе координаты
func (r PositionRecord) HasPosition() bool {
	return !math.IsNaN(r.Latitude) && !math.IsNaN(r.Longitude)
}

// HasAltitude сообщает, задана ли высота
func (r PositionRecord) HasAltitude() bool {
	return !math.IsNaN(r.Altitude)
}

// Complete сообщает, заполнены ли все обязательные поля (координаты и высота)
func (r PositionRecord) Complete() bool {
	return r.HasPosition() && r.HasAltitude()
}

// Position возвращает координаты записи как GeoPoint
func (r PositionRecord) Position() GeoPoint {
	return GeoPoint{Latitude: r.Latitude, Longitude: r.Longitude}
}

// Timestamp возвращает время записи как time.Time (UTC)
func (r PositionRecord) Timestamp() time.Time {
	return time.Unix(r.Time, 0).UTC()
}
