package models

// Metadata search shapes returned by the server's TMDB proxy endpoints.

// MediaType tags a search candidate with its content category. The tool
// only organizes TV series; candidates of other types are filtered out
// client-side after a search returns.
type MediaType string

const (
	MediaTV    MediaType = "tv"
	MediaMovie MediaType = "movie"
)

// SeriesCandidate is one possible metadata match returned by a search,
// prior to the user confirming which one is correct.
type SeriesCandidate struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"original_name,omitempty"`
	MediaType    MediaType `json:"media_type,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitempty"`
	SeasonCount  int       `json:"number_of_seasons,omitempty"`
	EpisodeCount int       `json:"number_of_episodes,omitempty"`
}

// SearchResponse is the result of a candidate search. EffectiveQuery is set
// when the server's fuzzy fallback substituted a simplified term for the
// one the user typed.
type SearchResponse struct {
	Query          string            `json:"query"`
	TotalResults   int               `json:"total_results"`
	Results        []SeriesCandidate `json:"results"`
	EffectiveQuery string            `json:"effective_query,omitempty"`
}

// Episode is one episode within a season.
type Episode struct {
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview,omitempty"`
	AirDate       string  `json:"air_date,omitempty"`
	VoteAverage   float64 `json:"vote_average,omitempty"`
}

// Season is one season of a series with its episode list.
type Season struct {
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview,omitempty"`
	AirDate      string    `json:"air_date,omitempty"`
	EpisodeCount int       `json:"episode_count,omitempty"`
	Episodes     []Episode `json:"episodes,omitempty"`
}

// Series is the complete detail for one series, fetched on demand and
// scoped to the lifetime of a single wizard session.
type Series struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	OriginalName string   `json:"original_name,omitempty"`
	Overview     string   `json:"overview,omitempty"`
	FirstAirDate string   `json:"first_air_date,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	SeasonCount  int      `json:"number_of_seasons,omitempty"`
	EpisodeCount int      `json:"number_of_episodes,omitempty"`
	Seasons      []Season `json:"seasons"`
}

// SeasonByNumber returns the season with the given number, or nil.
func (s *Series) SeasonByNumber(n int) *Season {
	for i := range s.Seasons {
		if s.Seasons[i].SeasonNumber == n {
			return &s.Seasons[i]
		}
	}
	return nil
}
