package handler

import (
	"net/http"

	"github.com/hitoshi/rediscover/internal/cityfilter"
)

// CityListerInterface は公開対象都市の一覧を返すインターフェース。
type CityListerInterface interface {
	List() []cityfilter.CitySummary
}

// CitiesHandler は公開対象都市一覧のHTTPハンドラー。
type CitiesHandler struct {
	lister CityListerInterface
}

// NewCitiesHandler はCitiesHandlerを生成する。
func NewCitiesHandler(lister CityListerInterface) *CitiesHandler {
	return &CitiesHandler{lister: lister}
}

// citiesResponse は都市一覧APIのレスポンス。
type citiesResponse struct {
	Cities []cityfilter.CitySummary `json:"cities"`
}

// List は公開対象都市の一覧を返す。
// GET /v1/cities
func (h *CitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, citiesResponse{Cities: h.lister.List()})
}
