package index

// Posting records one term's occurrences within a single document.
// Positions, when tracked, is strictly increasing and has length TF.
type Posting struct {
	DocID     string `json:"doc_id"`
	TF        int    `json:"tf"`
	Positions []int  `json:"positions,omitempty"`
}

// PostingsList is every posting for one term, sorted ascending by DocID so
// callers can merge and intersect lists with a single comparator.
type PostingsList struct {
	Term     string    `json:"term"`
	DF       int       `json:"df"`
	Postings []Posting `json:"postings"`
}

// Stats summarises the index.
type Stats struct {
	DocCount int `json:"doc_count"`
}
