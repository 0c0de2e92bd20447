package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hitoshi/rediscover/internal/model"
)

// GeoServiceInterface は位置特定ハンドラーが必要とするサービスインターフェース。
type GeoServiceInterface interface {
	// Locate は座標の住所を解決する。必要ならリバースジオコーディングを行う。
	Locate(ctx context.Context, lat, lng float64) (*model.Location, error)
	// GetByGeohash は解決済みの位置レコードを返す。未解決の場合はnilを返す。
	GetByGeohash(ctx context.Context, gh string) (*model.Location, error)
}

// CityFilterInterface は公開対象都市の判定インターフェース。
type CityFilterInterface interface {
	IsEnabled(lat, lng float64) bool
}

// LocateHandler は位置特定のHTTPハンドラー。
type LocateHandler struct {
	geoService GeoServiceInterface
	cityFilter CityFilterInterface
}

// NewLocateHandler はLocateHandlerを生成する。
func NewLocateHandler(geoService GeoServiceInterface, cityFilter CityFilterInterface) *LocateHandler {
	return &LocateHandler{
		geoService: geoService,
		cityFilter: cityFilter,
	}
}

// locationResponse は位置特定APIのレスポンス。
type locationResponse struct {
	Geohash      string  `json:"geohash"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Country      string  `json:"country"`
	City         string  `json:"city"`
	Locality     string  `json:"locality"`
	Neighborhood string  `json:"neighborhood"`
	Street       string  `json:"street"`
}

// Locate は座標の住所を解決する。
// GET /v1/locate?lat=35.6595&lng=139.7005
func (h *LocateHandler) Locate(w http.ResponseWriter, r *http.Request) {
	lat, lng, ok := parseCoordinates(w, r)
	if !ok {
		return
	}

	if !h.cityFilter.IsEnabled(lat, lng) {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewCityNotEnabledError())
		return
	}

	location, err := h.geoService.Locate(r.Context(), lat, lng)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLocationResponse(location))
}

// parseCoordinates はクエリパラメータから座標を取り出して検証する。
// 不正な場合はエラーレスポンスを書き込みfalseを返す。
func parseCoordinates(w http.ResponseWriter, r *http.Request) (lat, lng float64, ok bool) {
	var err error

	lat, err = strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		writeInvalidRequest(w, "latは-90から90の数値で指定してください。")
		return 0, 0, false
	}

	lng, err = strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		writeInvalidRequest(w, "lngは-180から180の数値で指定してください。")
		return 0, 0, false
	}

	return lat, lng, true
}

// toLocationResponse はmodel.LocationからAPIレスポンスに変換する。
func toLocationResponse(location *model.Location) locationResponse {
	return locationResponse{
		Geohash:      location.Geohash,
		Latitude:     location.Latitude,
		Longitude:    location.Longitude,
		Country:      location.Country,
		City:         location.City,
		Locality:     location.Locality,
		Neighborhood: location.Neighborhood,
		Street:       location.Street,
	}
}
