package server

// ingestRequest is the JSON body of POST /documents.
type ingestRequest struct {
	Documents []documentPayload `json:"documents"`
	Options   *ingestOptions    `json:"options,omitempty"`
}

type documentPayload struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type ingestOptions struct {
	OnDuplicate string `json:"onDuplicate"`
}

const (
	onDuplicateReplace = "replace"
	onDuplicateSkip    = "skip"
)

// ingestFailure reports one rejected document within a batch.
type ingestFailure struct {
	Index   int    `json:"index"`
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ingestResponse struct {
	Ingested int             `json:"ingested"`
	Failed   int             `json:"failed"`
	Failures []ingestFailure `json:"failures"`
}

// searchRequest is the JSON body of POST /search. TopK is a pointer so an
// absent field defaults while an explicit zero is rejected.
type searchRequest struct {
	Query string       `json:"query"`
	TopK  *int         `json:"topK,omitempty"`
	Mode  string       `json:"mode,omitempty"`
	Page  *pageRequest `json:"page,omitempty"`
}

type pageRequest struct {
	Cursor string `json:"cursor"`
}

const (
	modeFulltext = "fulltext"
	modePrefix   = "prefix"
)

type searchResult struct {
	ID         string         `json:"id"`
	Score      float64        `json:"score"`
	Highlights []string       `json:"highlights"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type pageInfo struct {
	NextCursor *string `json:"nextCursor"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
	Page    pageInfo       `json:"page"`
	TookMs  int64          `json:"tookMs"`
}
