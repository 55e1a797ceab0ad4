package http

import (
	"encoding/json"
	"net/http"
)

const (
	statusSuccess = "success"
	statusFail    = "fail"
)

// Pagination is the page descriptor attached to list responses.
// TotalPages is ceil(total / limit).
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) *Pagination {
	p := &Pagination{Page: page, Limit: limit}
	if limit > 0 {
		p.TotalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return p
}

// Response is the uniform envelope every endpoint returns.
type Response struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Total      *int64      `json:"total,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeSuccess(w http.ResponseWriter, code int, data interface{}) {
	writeJSON(w, code, Response{Status: statusSuccess, Data: data})
}

func writeSuccessList(w http.ResponseWriter, data interface{}, total int64, pagination *Pagination) {
	writeJSON(w, http.StatusOK, Response{
		Status:     statusSuccess,
		Data:       data,
		Total:      &total,
		Pagination: pagination,
	})
}

func writeFail(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Response{Status: statusFail, Message: message})
}
