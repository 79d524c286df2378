package pagination

import (
	"strconv"

	apperrors "codeberg.org/hhbot/vectorstore/internal/errors"
)

// Params holds pagination parameters from request
type Params struct {
	Limit  int
	Offset int
}

// Meta holds pagination metadata for response
type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func NewMeta(params Params, total int) Meta {
	return Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+params.Limit < total,
	}
}

// clamps limit into (0, maxLimit] and offset to >= 0
func DefaultParams(limit, offset, defaultLimit, maxLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Parse reads limit and offset query values; empty values take the defaults
func Parse(limit, offset string, defaultLimit, maxLimit int) (Params, error) {
	l, err := atoi("limit", limit)
	if err != nil {
		return Params{}, err
	}

	o, err := atoi("offset", offset)
	if err != nil {
		return Params{}, err
	}

	return DefaultParams(l, o, defaultLimit, maxLimit), nil
}

func atoi(field, value string) (int, error) {
	if value == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, apperrors.Validation(field, "must be an integer, got %q", value)
	}

	return n, nil
}
