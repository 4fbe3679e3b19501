package http

import (
	"log"
	"net/http"

	"grocery/internal/domain/item"
)

// StatusFor maps an error kind to the HTTP status for reads, PUT and DELETE.
func StatusFor(kind item.Kind) int {
	switch kind {
	case item.KindNone:
		return http.StatusOK
	case item.KindNotFound:
		return http.StatusNotFound
	case item.KindValidation:
		return http.StatusBadRequest
	case item.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CreateStatusFor is StatusFor for POST /items: a rejected insert is a bad
// request whatever its cause.
func CreateStatusFor(kind item.Kind) int {
	if kind == item.KindNone {
		return http.StatusCreated
	}
	return http.StatusBadRequest
}

// writeItemError writes a plain-text error for err. Validation messages are
// returned to the client; storage details only reach the log.
func writeItemError(w http.ResponseWriter, err error, action string) {
	writeItemErrorStatus(w, err, action, StatusFor)
}

func writeItemErrorStatus(w http.ResponseWriter, err error, action string, statusFor func(item.Kind) int) {
	kind := item.KindOf(err)
	status := statusFor(kind)

	switch kind {
	case item.KindNotFound:
		http.Error(w, "Item not found", status)
	case item.KindValidation:
		http.Error(w, err.Error(), status)
	case item.KindConflict:
		log.Printf("Conflict trying to %s: %v", action, err)
		http.Error(w, "Conflicting update, please retry", status)
	default:
		log.Printf("Error trying to %s: %v", action, err)
		http.Error(w, "Failed to "+action, status)
	}
}
