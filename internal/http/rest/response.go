package rest

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/bwise1/complaint_portal/util"
	"github.com/bwise1/complaint_portal/util/tracing"
)

type ServerResponse struct {
	Message    string      `json:"message"`
	Status     string      `json:"status"`
	StatusCode int         `json:"-"`
	Data       interface{} `json:"data,omitempty"`
}

func respondWithError(err error, message, status string, tc *tracing.Context) *ServerResponse {
	if tc != nil {
		log.Printf("[API]: %s | %s | %s: %v", tc.RequestID, status, message, err)
	} else {
		log.Printf("[API]: %s | %s: %v", status, message, err)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
	}
}

func respondWithData(message, status string, data interface{}) *ServerResponse {
	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       data,
	}
}

func writeErrorResponse(w http.ResponseWriter, err error, status, message string) {
	log.Printf("[API]: %s: %s: %v", status, message, err)

	resp := ServerResponse{Message: message, Status: status}
	body, marshalErr := json.Marshal(resp)
	if marshalErr != nil {
		http.Error(w, message, util.StatusCode(status))
		return
	}
	writeJSONResponse(w, body, util.StatusCode(status))
}

func writeJSONResponse(w http.ResponseWriter, body []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write(body); err != nil {
		log.Println("[API]: unable to write response:", err)
	}
}
