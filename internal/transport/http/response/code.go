package response

import "net/http"

// Codes mirror HTTP status semantics; the JSON body carries the same value.
const (
	CodeOK             = 0
	CodeBadRequest     = http.StatusBadRequest
	CodeUnauthorized   = http.StatusUnauthorized
	CodeForbidden      = http.StatusForbidden
	CodeNotFound       = http.StatusNotFound
	CodeTooLarge       = http.StatusRequestEntityTooLarge
	CodeUnprocessable  = http.StatusUnprocessableEntity
	CodeServerError    = http.StatusInternalServerError
	CodeUnavailable    = http.StatusServiceUnavailable
	CodeGatewayTimeout = http.StatusGatewayTimeout
)

var CodeMsgMap = map[int]string{
	CodeOK:             "OK",
	CodeBadRequest:     "Bad Request",
	CodeUnauthorized:   "Unauthorized",
	CodeForbidden:      "Forbidden",
	CodeNotFound:       "Not Found",
	CodeTooLarge:       "Request Entity Too Large",
	CodeUnprocessable:  "Unprocessable Entity",
	CodeServerError:    "Internal Server Error",
	CodeUnavailable:    "Service Unavailable",
	CodeGatewayTimeout: "Gateway Timeout",
}
