package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/example/retail-backoffice/internal/command"
	"github.com/example/retail-backoffice/internal/domain/catalog"
	"github.com/example/retail-backoffice/internal/domain/inventory"
	"github.com/example/retail-backoffice/internal/domain/order"
	"github.com/example/retail-backoffice/internal/email"
	"github.com/example/retail-backoffice/internal/infrastructure/store"
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{catalog.ErrInvalidName, http.StatusBadRequest},
	{catalog.ErrInvalidPrice, http.StatusBadRequest},
	{catalog.ErrInvalidStatus, http.StatusBadRequest},
	{inventory.ErrInvalidQuantity, http.StatusBadRequest},
	{inventory.ErrInvalidMode, http.StatusBadRequest},
	{inventory.ErrInvalidThreshold, http.StatusBadRequest},
	{order.ErrEmptyOrder, http.StatusBadRequest},
	{order.ErrInvalidLineItem, http.StatusBadRequest},
	{order.ErrInvalidStatus, http.StatusBadRequest},
	{order.ErrInvalidChannel, http.StatusBadRequest},

	{email.ErrNoRecipient, http.StatusUnprocessableEntity},

	{catalog.ErrProductExists, http.StatusConflict},
	{order.ErrOrderExists, http.StatusConflict},
	{order.ErrInvalidTransition, http.StatusConflict},

	{store.ErrStorageUnavailable, http.StatusServiceUnavailable},
	{context.DeadlineExceeded, http.StatusServiceUnavailable},
}

// statusFor maps a domain error to an HTTP status
func statusFor(err error) int {
	if command.IsNotFound(err) {
		return http.StatusNotFound
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func respondDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	respondJSONError(w, msg, status)
}
