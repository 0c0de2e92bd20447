package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/rediscover/internal/model"
)

// NarrativeServiceInterface はナラティブハンドラーが必要とするサービスインターフェース。
type NarrativeServiceInterface interface {
	GetInfo(ctx context.Context, location *model.Location) (*model.LocationInfo, error)
}

// LocationInfoHandler は観光ナラティブのHTTPハンドラー。
type LocationInfoHandler struct {
	geoService       GeoServiceInterface
	narrativeService NarrativeServiceInterface
}

// NewLocationInfoHandler はLocationInfoHandlerを生成する。
func NewLocationInfoHandler(geoService GeoServiceInterface, narrativeService NarrativeServiceInterface) *LocationInfoHandler {
	return &LocationInfoHandler{
		geoService:       geoService,
		narrativeService: narrativeService,
	}
}

// locationInfoResponse はナラティブAPIのレスポンス。
type locationInfoResponse struct {
	Geohash      string   `json:"geohash"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	History      string   `json:"history"`
	Culture      string   `json:"culture"`
	Attractions  []string `json:"attractions"`
	Climate      string   `json:"climate"`
	Demographics string   `json:"demographics"`
	Economy      string   `json:"economy"`
}

// GetInfo は解決済みの位置のナラティブを返す。
// GET /v1/location/info?geohash=xn76ur
func (h *LocationInfoHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	gh := r.URL.Query().Get("geohash")
	if gh == "" {
		writeInvalidRequest(w, "geohashは必須です。")
		return
	}

	location, err := h.geoService.GetByGeohash(r.Context(), gh)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if location == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewLocationNotFoundError(gh))
		return
	}

	info, err := h.narrativeService.GetInfo(r.Context(), location)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, locationInfoResponse{
		Geohash:      info.Geohash,
		Name:         info.Name,
		Description:  info.Description,
		History:      info.History,
		Culture:      info.Culture,
		Attractions:  info.Attractions,
		Climate:      info.Climate,
		Demographics: info.Demographics,
		Economy:      info.Economy,
	})
}
