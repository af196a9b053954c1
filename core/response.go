package core

import (
	"encoding/json"
	"net/http"
)

const (
	// oks for non precomputed, dynamic responses
	CodeOkAuthentication  = "ok_authentication"
	CodeOkRegistered      = "ok_registered"
	CodeOkCodeSent        = "ok_code_sent"
	CodeOkProfile         = "ok_profile"
	CodeOkCreated         = "ok_created"
	CodeOkUpdated         = "ok_updated"
	CodeOkList            = "ok_list"
	CodeOkFound           = "ok_found"
	CodeOkTrending        = "ok_trending"
	CodeOkChatReply       = "ok_chat_reply"
	CodeOkUploaded        = "ok_uploaded"
)

type jsonResponse struct {
	status int
	body   []byte
}

// JsonBasic contains the basic response fields. All responses must have them.
type JsonBasic struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JsonWithData is used for structured JSON responses with data.
type JsonWithData struct {
	JsonBasic
	Data interface{} `json:"data,omitempty"`
}

// ListMeta carries pagination info alongside list payloads.
type ListMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// JsonList is the envelope for paginated collections.
type JsonList struct {
	JsonBasic
	Data interface{} `json:"data"`
	Meta ListMeta    `json:"meta"`
}

// writeJsonWithData writes a structured JSON response with the provided data.
func writeJsonWithData(w http.ResponseWriter, resp JsonWithData) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}

// writeJsonList writes a paginated collection response.
func writeJsonList(w http.ResponseWriter, code, message string, data interface{}, meta ListMeta) {
	if meta.Limit > 0 {
		meta.TotalPages = (meta.Total + meta.Limit - 1) / meta.Limit
	}
	resp := JsonList{
		JsonBasic: JsonBasic{
			Status:  http.StatusOK,
			Code:    code,
			Message: message,
		},
		Data: data,
		Meta: meta,
	}
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.Status)
	json.NewEncoder(w).Encode(resp)
}

// writeJsonOk writes a precomputed success response.
func writeJsonOk(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

// writeJsonError writes a precomputed JSON error response.
func writeJsonError(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}
