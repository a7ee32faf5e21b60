package util

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

type errorBody struct {
	Err string `json:"error"`
}

type successBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeBody(w http.ResponseWriter, statusCode int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, http.StatusText(http.StatusInternalServerError))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func WriteJson(w http.ResponseWriter, res interface{}) {
	writeBody(w, http.StatusOK, res)
}

func WriteSuccess(w http.ResponseWriter, message string) {
	writeBody(w, http.StatusOK, &successBody{Success: true, Message: message})
}

func WriteError(w http.ResponseWriter, statusCode int, errorMessage string) {
	writeBody(w, statusCode, &errorBody{Err: errorMessage})
}

func WriteStatus(w http.ResponseWriter, statusCode int) {
	WriteError(w, statusCode, http.StatusText(statusCode))
}

func WriteUnauthorized(w http.ResponseWriter) {
	WriteStatus(w, http.StatusUnauthorized)
}

func WriteNotFound(w http.ResponseWriter) {
	WriteStatus(w, http.StatusNotFound)
}

func WriteInternalServerError(w http.ResponseWriter) {
	WriteStatus(w, http.StatusInternalServerError)
}

func GetUrlQueryParam(r *http.Request, key string) string {
	keys, ok := r.URL.Query()[key]

	if !ok || len(keys[0]) < 1 {
		return ""
	}

	return keys[0]
}
