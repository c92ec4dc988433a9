package server

import (
	"encoding/json"

	"github.com/roach88/stringsvc/internal/filter"
	"github.com/roach88/stringsvc/internal/ir"
)

// createRequest is the POST /strings body. Value stays raw so a missing
// or null field (400) can be told apart from a non-string one (422).
type createRequest struct {
	Value json.RawMessage `json:"value"`
}

// listResponse is returned by GET /strings.
type listResponse struct {
	Data           []ir.Record `json:"data"`
	Count          int         `json:"count"`
	FiltersApplied filter.Set  `json:"filters_applied"`
}

// naturalLanguageResponse is returned by GET /strings/filter-by-natural-language.
type naturalLanguageResponse struct {
	Data             []ir.Record      `json:"data"`
	Count            int              `json:"count"`
	InterpretedQuery interpretedQuery `json:"interpreted_query"`
}

type interpretedQuery struct {
	Original      string     `json:"original"`
	ParsedFilters filter.Set `json:"parsed_filters"`
}

// healthResponse is returned by GET /healthz.
type healthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}
