package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/tokencap/gateway/internal/gatewayerr"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, kind gatewayerr.Kind, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(kind.Status())
	if err := json.NewEncoder(w).Encode(errorEnvelope{Error: errorBody{
		Type:    string(kind),
		Message: message,
		Details: details,
	}}); err != nil {
		log.Printf("[pipeline] write error response: %v", err)
	}
}

func writeGatewayErr(w http.ResponseWriter, err error) {
	if ge, ok := gatewayerr.As(err); ok {
		writeError(w, ge.Kind, ge.Message, nil)
		return
	}
	writeError(w, gatewayerr.Internal, err.Error(), nil)
}
