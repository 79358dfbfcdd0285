package models

// HistoryLimit число станций в истории прослушивания.
const HistoryLimit = 6

// Station радиостанция из каталога radio-browser. Поля Color и Atmosphere
// заполняет клиент, они сохраняются вместе с избранным.
type Station struct {
	StationUUID string `json:"stationuuid"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	URLResolved string `json:"url_resolved"`
	Favicon     string `json:"favicon"`
	Tags        string `json:"tags"`
	Country     string `json:"country"`
	CountryCode string `json:"countrycode,omitempty"`
	Bitrate     int    `json:"bitrate"`
	Votes       int    `json:"votes,omitempty"`
	Color       string `json:"color,omitempty"`
	Atmosphere  string `json:"atmosphere,omitempty"`
}

// Country страна каталога с количеством станций.
type Country struct {
	Name         string `json:"name"`
	ISO3166      string `json:"iso_3166_1"`
	StationCount int    `json:"stationcount"`
}

// StationQuery параметры поиска станций.
type StationQuery struct {
	Tag         string
	CountryCode string
	Name        string
}

// PushRecent ставит station в начало истории, убирая её прежнюю запись,
// и обрезает историю до limit станций. Исходный срез не изменяется.
func PushRecent(history []Station, station Station, limit int) []Station {
	out := make([]Station, 0, min(len(history)+1, max(limit, 1)))
	out = append(out, station)
	for _, st := range history {
		if len(out) >= limit {
			break
		}
		if st.StationUUID != station.StationUUID {
			out = append(out, st)
		}
	}
	return out
}
