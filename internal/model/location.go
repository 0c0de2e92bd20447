package model

import "time"

// Location はリバースジオコーディング結果のキャッシュレコードを表す。
// geohash（精度6）を主キーとして、座標と住所要素を保持する。
type Location struct {
	Geohash      string
	Latitude     float64
	Longitude    float64
	Country      string
	City         string
	Locality     string
	Neighborhood string
	Street       string
	CreatedAt    time.Time
}

// LocationInfo はAI生成の観光ナラティブを表す。
// geohashごとに1件生成し、以後はキャッシュとして配信する。
type LocationInfo struct {
	Geohash      string
	Name         string
	Description  string
	History      string
	Culture      string
	Attractions  []string
	Climate      string
	Demographics string
	Economy      string
	CreatedAt    time.Time
}

// WaitlistEntry はサービス公開待ちリストへの登録を表す。
type WaitlistEntry struct {
	Email     string
	CreatedAt time.Time
}
