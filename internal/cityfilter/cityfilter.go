// Package cityfilter は公開対象都市の判定を提供する。
// 都市の境界ボックスはバイナリに埋め込んだJSONで管理する。
package cityfilter

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed enabled_cities.json
var enabledCitiesJSON []byte

// EnabledCity は公開対象都市とその境界ボックスを表す。
type EnabledCity struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	MinLat  float64 `json:"minLat"`
	MinLon  float64 `json:"minLon"`
	MaxLat  float64 `json:"maxLat"`
	MaxLon  float64 `json:"maxLon"`
}

// CitySummary は都市一覧APIで返す要素。
type CitySummary struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Filter は公開対象都市の判定と一覧を提供する。
type Filter struct {
	cities []EnabledCity
}

// New は埋め込みデータからFilterを生成する。
func New() (*Filter, error) {
	var cities []EnabledCity
	if err := json.Unmarshal(enabledCitiesJSON, &cities); err != nil {
		return nil, fmt.Errorf("failed to parse enabled cities data: %w", err)
	}
	return &Filter{cities: cities}, nil
}

// IsEnabled は座標がいずれかの公開対象都市の境界ボックス内にあるかを返す。
// 境界上の座標は内側として扱う。
func (f *Filter) IsEnabled(lat, lng float64) bool {
	for _, c := range f.cities {
		if lat >= c.MinLat && lat <= c.MaxLat && lng >= c.MinLon && lng <= c.MaxLon {
			return true
		}
	}
	return false
}

// List は公開対象都市の一覧を返す。
func (f *Filter) List() []CitySummary {
	summaries := make([]CitySummary, 0, len(f.cities))
	for _, c := range f.cities {
		summaries = append(summaries, CitySummary{City: c.City, Country: c.Country})
	}
	return summaries
}
