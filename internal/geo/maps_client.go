// Package geo は座標からの位置特定機能を提供する。
// Google Maps Geocoding APIの呼び出しとgeohash単位の結果キャッシュを含む。
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// defaultMapsEndpoint はGoogle Maps Geocoding APIのエンドポイント。
const defaultMapsEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// Address はリバースジオコーディング結果の住所要素。
type Address struct {
	Country      string
	City         string
	Locality     string
	Neighborhood string
	Street       string
}

// ReverseGeocoder は座標から住所を取得するインターフェース。
type ReverseGeocoder interface {
	// ReverseGeocode は座標の住所要素を取得する。
	// 該当する結果がない場合はnilを返す。
	ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error)
}

// MapsClient はGoogle Maps Geocoding APIのクライアント。
type MapsClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiKey     string
	endpoint   string // テスト用にエンドポイントを差し替え可能
}

// NewMapsClient はMapsClientの新しいインスタンスを生成する。
func NewMapsClient(httpClient *http.Client, logger *slog.Logger, apiKey string) *MapsClient {
	return &MapsClient{
		httpClient: httpClient,
		logger:     logger,
		apiKey:     apiKey,
		endpoint:   defaultMapsEndpoint,
	}
}

// geocodeResponse はGeocoding APIのレスポンス。
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []struct {
			LongName  string   `json:"long_name"`
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

// ReverseGeocode は座標の住所要素を取得する。
// ステータスZERO_RESULTSの場合はnilを返す（エラーにしない）。
func (c *MapsClient) ReverseGeocode(ctx context.Context, lat, lng float64) (*Address, error) {
	reqURL, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("エンドポイントURLのパースに失敗しました: %w", err)
	}

	q := reqURL.Query()
	q.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("key", c.apiKey)
	q.Set("language", "en")
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Geocoding APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Geocoding APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("Geocoding APIがステータス %d を返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	var result geocodeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	switch result.Status {
	case "OK":
		// 続行
	case "ZERO_RESULTS":
		return nil, nil
	default:
		c.logger.Error("Geocoding APIがエラーを返しました",
			slog.String("api_status", result.Status),
		)
		return nil, fmt.Errorf("Geocoding APIのステータスが不正です: %s", result.Status)
	}

	if len(result.Results) == 0 {
		return nil, nil
	}

	return parseAddress(&result), nil
}

// parseAddress は先頭の結果からaddress_componentsを住所要素に振り分ける。
// 同じtypeが複数の結果に現れた場合は最初に見つかった値を採用する。
func parseAddress(resp *geocodeResponse) *Address {
	addr := &Address{}
	for _, component := range resp.Results[0].AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "country":
				if addr.Country == "" {
					addr.Country = component.LongName
				}
			case "locality":
				if addr.City == "" {
					addr.City = component.LongName
				}
			case "sublocality", "sublocality_level_1":
				if addr.Locality == "" {
					addr.Locality = component.LongName
				}
			case "neighborhood":
				if addr.Neighborhood == "" {
					addr.Neighborhood = component.LongName
				}
			case "route":
				if addr.Street == "" {
					addr.Street = component.LongName
				}
			}
		}
	}
	return addr
}

// compile-time interface check
var _ ReverseGeocoder = (*MapsClient)(nil)
