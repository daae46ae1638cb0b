package model

// PageInfo is the pagination metadata returned alongside a page of characters.
type PageInfo struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNext      bool `json:"hasNext"`
	HasPrev      bool `json:"hasPrev"`
}

// CollectionPage is the GET /collection response body.
type CollectionPage struct {
	Results []Character `json:"results"`
	Info    PageInfo    `json:"info"`
}

// ExternalInfo mirrors the pagination block of the public character API.
type ExternalInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// ExternalPage is a page of characters from the public character API.
type ExternalPage struct {
	Info    ExternalInfo `json:"info"`
	Results []Character  `json:"results"`
}
