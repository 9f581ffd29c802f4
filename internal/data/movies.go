package data

type Genre struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

type Director struct {
	Name      string `json:"Name"`
	Bio       string `json:"Bio"`
	BirthYear string `json:"birthYear,omitempty"`
	DeathYear string `json:"deathYear,omitempty"`
}

// Movie is read-only for the API. Records are seeded outside of it.
type Movie struct {
	ID          string   `json:"_id"`
	Title       string   `json:"Title"`
	Description string   `json:"Description"`
	Genre       Genre    `json:"Genre"`
	Director    Director `json:"Director"`
	ImagePath   string   `json:"ImagePath,omitempty"`
	Featured    bool     `json:"Featured"`
}
