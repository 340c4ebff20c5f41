// Package service exposes the REST API layer: thin gin handlers over the
// ledger, authenticator and store. Handlers validate input, map domain
// error kinds to HTTP statuses and shape the response envelope; all domain
// logic lives below.
package service

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/looper12349/SpendWise/internal/auth"
	"github.com/looper12349/SpendWise/internal/calculator"
	"github.com/looper12349/SpendWise/internal/ledger"
	"github.com/looper12349/SpendWise/internal/storage"
)

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// failErr maps a domain error kind to its HTTP status. Authorization and
// not-found are distinct on purpose: a non-member probing a wallet ID gets
// 403 without learning whether the wallet exists.
func failErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotAuthorized):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, ledger.ErrSplitNotFound),
		errors.Is(err, ledger.ErrShareNotFound),
		errors.Is(err, storage.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrAlreadyMember),
		errors.Is(err, calculator.ErrInvalidAmount),
		errors.Is(err, calculator.ErrEmptyMembers),
		errors.Is(err, calculator.ErrPayerNotMember),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrEmailExists):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrConcurrentModification):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, err.Error())
	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}
