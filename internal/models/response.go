package models

// Envelope wraps every /api response
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// NoData is sent as data on error responses.
var NoData = []any{}
