package dto

// PageMeta describes the page returned by list endpoints.
type PageMeta struct {
	Limit  int  `json:"limit"`
	Offset int  `json:"offset"`
	Total  *int `json:"total,omitempty"`
}
