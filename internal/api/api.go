// Package api holds the wire types of the table catalog endpoint and an HTTP
// client for it.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ReadPath is the catalog list endpoint consumed by the table picker.
const ReadPath = "/bigquerytablemodelview/api/read"

// ModelView is the model view name reported in read responses.
const ModelView = "BigQueryTableModelView"

// Database is one catalog record as returned by the read endpoint.
type Database struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	ProjectID   string `json:"project_id,omitempty"`
	DatasetName string `json:"dataset_name,omitempty"`
	TableName   string `json:"table_name,omitempty"`
	Description string `json:"description,omitempty"`
	IsFeatured  bool   `json:"is_featured,omitempty"`
	Offset      int    `json:"offset,omitempty"`
	ChangedOn   string `json:"changed_on,omitempty"`
}

// ReadResponse is the body of GET /bigquerytablemodelview/api/read.
type ReadResponse struct {
	Result        []Database        `json:"result"`
	Count         int               `json:"count"`
	Pks           []ID              `json:"pks,omitempty"`
	Page          int               `json:"page"`
	PageSize      int               `json:"page_size"`
	OrderColumns  []string          `json:"order_columns,omitempty"`
	ListColumns   []string          `json:"list_columns,omitempty"`
	LabelColumns  map[string]string `json:"label_columns,omitempty"`
	ModelViewName string            `json:"modelview_name,omitempty"`
}

// ItemResponse is the body of the get, create and update endpoints.
type ItemResponse struct {
	Message string    `json:"message,omitempty"`
	Pk      ID        `json:"pk,omitempty"`
	Result  *Database `json:"result,omitempty"`
}

// ErrorResponse is the body returned with a non-2xx status.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ID is a record identifier. It decodes from a JSON number or string and is
// always carried as a string so option values compare without conversions.
type ID string

// UnmarshalJSON accepts 42, "42" and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("api: id must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers and anything else as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }

// DecodeRead parses a read response body.
func DecodeRead(raw []byte) (ReadResponse, error) {
	var resp ReadResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ReadResponse{}, fmt.Errorf("api: decode read response: %w", err)
	}
	return resp, nil
}
