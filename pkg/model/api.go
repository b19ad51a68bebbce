package model

import "time"

// Envelope status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Page sizes for simulation listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Response wraps every JSON body the server writes. A rejected or failed
// simulation carries both Data (the recorded run) and Error.
type Response struct {
	Status     string      `json:"status"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error"`
}

// NewResponse builds an envelope stamped with the current time. Status
// follows apiErr.
func NewResponse(reqID string, data any, pg *Pagination, apiErr *APIError) Response {
	status := StatusOK
	if apiErr != nil {
		status = StatusError
	}
	return Response{
		Status:     status,
		RequestID:  reqID,
		Timestamp:  time.Now().UTC(),
		Data:       data,
		Pagination: pg,
		Error:      apiErr,
	}
}

// Pagination describes one page of a simulation listing.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewPagination builds the pagination block for a page fetched with opts.
func NewPagination(total int, opts ListOptions) *Pagination {
	return &Pagination{
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: opts.Offset+opts.Limit < total,
	}
}

// ListOptions selects a page of recorded simulations, newest first.
type ListOptions struct {
	Limit  int
	Offset int
	State  string // COMPLETED, REJECTED or FAILED; empty for all
	Name   string // exact match; empty for all
}

// DefaultListOptions returns the first page at the default size.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: DefaultPageSize}
}

// Clamp brings Limit into 1..MaxPageSize (non-positive means the default)
// and Offset to at least 0.
func (o *ListOptions) Clamp() {
	switch {
	case o.Limit <= 0:
		o.Limit = DefaultPageSize
	case o.Limit > MaxPageSize:
		o.Limit = MaxPageSize
	}
	o.Offset = max(o.Offset, 0)
}
