package search

import "codeberg.org/hhbot/vectorstore/internal/search"

type Response struct {
	Results []search.Hit `json:"results"`
}
