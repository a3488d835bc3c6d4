package plex

// Wire formats of the Plex Media Server JSON API. Only the fields the
// recommender reads are declared.

type identityResponse struct {
	MediaContainer struct {
		MachineIdentifier string `json:"machineIdentifier"`
		Version           string `json:"version"`
	} `json:"MediaContainer"`
}

type sectionsResponse struct {
	MediaContainer struct {
		Directory []directory `json:"Directory"`
	} `json:"MediaContainer"`
}

type directory struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

type metadataResponse struct {
	MediaContainer struct {
		Size     int        `json:"size"`
		Metadata []metadata `json:"Metadata"`
	} `json:"MediaContainer"`
}

type metadata struct {
	RatingKey       string   `json:"ratingKey"`
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	Index           int      `json:"index"`
	Studio          string   `json:"studio"`
	ContentRating   string   `json:"contentRating"`
	Rating          *float64 `json:"rating"`
	UserRating      *float64 `json:"userRating"`
	ViewCount       int      `json:"viewCount"`
	LeafCount       int      `json:"leafCount"`
	ViewedLeafCount int      `json:"viewedLeafCount"`

	Role       []tag `json:"Role"`
	Genre      []tag `json:"Genre"`
	Writer     []tag `json:"Writer"`
	Director   []tag `json:"Director"`
	Country    []tag `json:"Country"`
	Collection []tag `json:"Collection"`
}

type tag struct {
	Tag  string `json:"tag"`
	Role string `json:"role"`
}

type playlistsResponse struct {
	MediaContainer struct {
		Metadata []playlist `json:"Metadata"`
	} `json:"MediaContainer"`
}

type playlist struct {
	RatingKey string `json:"ratingKey"`
	Title     string `json:"title"`
}
