package pokemontcg

// Wire types for the api.pokemontcg.io/v2 response envelopes. Only the
// fields the sync engine consumes are mapped.

type Set struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Series       string            `json:"series"`
	PrintedTotal int               `json:"printedTotal"`
	Total        int               `json:"total"`
	Legalities   map[string]string `json:"legalities"`
	PtcgoCode    string            `json:"ptcgoCode"`
	ReleaseDate  string            `json:"releaseDate"`
	UpdatedAt    string            `json:"updatedAt"`
	Images       SetImages         `json:"images"`
}

type SetImages struct {
	Symbol string `json:"symbol"`
	Logo   string `json:"logo"`
}

type Card struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Supertype              string     `json:"supertype"`
	Subtypes               []string   `json:"subtypes"`
	HP                     string     `json:"hp"`
	Types                  []string   `json:"types"`
	Number                 string     `json:"number"`
	Artist                 string     `json:"artist"`
	Rarity                 string     `json:"rarity"`
	NationalPokedexNumbers []int      `json:"nationalPokedexNumbers"`
	Images                 CardImages `json:"images"`
	Set                    CardSet    `json:"set"`
	TCGPlayer              *TCGPlayer `json:"tcgplayer"`
}

type CardImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// CardSet is the set stub embedded in a card payload.
type CardSet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TCGPlayer struct {
	URL       string            `json:"url"`
	UpdatedAt string            `json:"updatedAt"`
	Prices    map[string]Prices `json:"prices"`
}

type Prices struct {
	Low       float64 `json:"low"`
	Mid       float64 `json:"mid"`
	High      float64 `json:"high"`
	Market    float64 `json:"market"`
	DirectLow float64 `json:"directLow"`
}

type SetList struct {
	Data       []Set `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Count      int   `json:"count"`
	TotalCount int   `json:"totalCount"`
}

type CardList struct {
	Data       []Card `json:"data"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Count      int    `json:"count"`
	TotalCount int    `json:"totalCount"`
}

type setResponse struct {
	Data Set `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}
