package shared

import (
	"encoding/json"
	"strconv"
)

const (
	MsgInserted = "Record inserted successfully"
	MsgUpdated  = "Record updated successfully"
	MsgDeleted  = "Record deleted successfully"
	MsgNotFound = "record not found"
)

// NULL is how an absent column value is rendered on the wire.
const NULL = "NULL"

type NameRequest struct {
	Name string `json:"name"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// RecordView is a row keyed by column name. Every value travels as a
// string, ids included: {"id":"1","name":"alice"}.
type RecordView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IDInt parses the id back for client-side use.
func (v RecordView) IDInt() (int64, error) {
	return strconv.ParseInt(v.ID, 10, 64)
}

func DecodeRecords(b []byte) ([]RecordView, error) {
	var out []RecordView
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
