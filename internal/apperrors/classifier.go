package apperrors

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ClassifyStorageError decides whether a storage error is worth retrying and
// names its kind for logs and metrics. Unknown errors are retryable.
func ClassifyStorageError(err error) (bool, string) {
	if err == nil {
		return false, ""
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return false, "json_decode_error"
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return false, "not_found"
	}
	if errors.Is(err, context.Canceled) {
		return false, "context_canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true, "timeout"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505":
			return false, "duplicate_key"
		case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"):
			// data exception / integrity violation
			return false, "constraint_violation"
		case pgErr.Code == "40001", pgErr.Code == "40P01":
			return true, "serialization_failure"
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return true, "db_connection_error"
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true, "network_timeout"
		}
		return true, "network_error"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true, "network_error"
	}

	msg := err.Error()
	if strings.Contains(msg, "duplicate key") {
		return false, "duplicate_key"
	}
	if strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") {
		return true, "db_connection_error"
	}

	return true, "unknown_error"
}

// ShouldRetry checks a retry count against the limit.
func ShouldRetry(retryCount, maxRetries int64, retryable bool) bool {
	if !retryable {
		return false
	}
	return retryCount <= maxRetries
}
