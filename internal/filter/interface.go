package filter

import (
	"github.com/flybeeper/trackmiles/internal/models"
)

// FilterResult результат применения фильтра к треку
type FilterResult struct {
	OriginalCount int           `json:"original_count"`
	FilteredCount int           `json:"filtered_count"`
	Track         *models.Track `json:"track"`
	Statistics    FilterStats   `json:"statistics"`
}

// FilterStats статистика фильтрации
type FilterStats struct {
	MissingRows        int `json:"missing_rows,omitempty"`        // Строки без координат или высоты
	Outliers           int `json:"outliers,omitempty"`            // Строки за пределами IQR границ
	AltitudeJumps      int `json:"altitude_jumps,omitempty"`      // Обнуленные скачки высоты
	InterpolatedValues int `json:"interpolated_values,omitempty"` // Восстановленные интерполяцией значения
	UnresolvedMissing  int `json:"unresolved_missing,omitempty"`  // Высоты, оставшиеся отсутствующими
}

// TrackFilter интерфейс для фильтров треков
type TrackFilter interface {
	// Filter применяет фильтр к треку
	Filter(track *models.Track) (*FilterResult, error)

	// Name возвращает имя фильтра
	Name() string

	// Description возвращает описание фильтра
	Description() string
}

// FilterConfig конфигурация фильтров
type FilterConfig struct {
	// Полуширина квадратного окна вокруг аэропорта (градусы)
	AirportBoxHalfWidthDeg float64 `json:"airport_box_half_width_deg"`

	// Порог малой высоты для привязки трека к аэропорту (м)
	LowAltitudeM float64 `json:"low_altitude_m"`

	// Порог скачка высоты между соседними записями (м)
	AltitudeJumpM float64 `json:"altitude_jump_m"`

	// Множитель IQR для границ выбросов
	IQRMultiplier float64 `json:"iqr_multiplier"`

	// Минимальное число точек для вычисления квартилей
	MinQuartilePoints int `json:"min_quartile_points"`

	// Включить/выключить отдельные фильтры
	EnableSanitizer        bool `json:"enable_sanitizer"`
	EnableOutlierFilter    bool `json:"enable_outlier_filter"`
	EnableAltitudeSmoother bool `json:"enable_altitude_smoother"`
}

// DefaultFilterConfig возвращает конфигурацию по умолчанию
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		AirportBoxHalfWidthDeg: 0.1,  // 0.1° окно вокруг аэропорта
		LowAltitudeM:           1000, // Ниже 1000 м считается заходом/вылетом
		AltitudeJumpM:          200,  // Скачок больше 200 м неправдоподобен
		IQRMultiplier:          1.5,
		MinQuartilePoints:      4,
		EnableSanitizer:        true,
		EnableOutlierFilter:    true,
		EnableAltitudeSmoother: true,
	}
}
