package remote

// catalogPage is one page of the remote catalog API. Next is an absolute
// URL and empty on the last page.
type catalogPage struct {
	Version         string        `json:"version"`
	DefaultLanguage string        `json:"default_language"`
	Tracks          []remoteTrack `json:"tracks"`
	Next            string        `json:"next"`
}

type remoteTrack struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Artists    []remoteArtist `json:"artists"`
	Album      remoteAlbum    `json:"album"`
	PlayURL    string         `json:"play_url"`
	Popularity int            `json:"popularity"`
	DurationMs int            `json:"duration_ms"`
	Language   string         `json:"language"`
	Emotion    string         `json:"emotion"`
}

type remoteArtist struct {
	Name string `json:"name"`
}

type remoteAlbum struct {
	Name   string        `json:"name"`
	Images []remoteImage `json:"images"`
}

type remoteImage struct {
	URL string `json:"url"`
}
