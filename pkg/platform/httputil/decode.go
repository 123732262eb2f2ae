package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "pincheck/pkg/domain-errors"
	"pincheck/pkg/requestcontext"
)

// DecodeJSON decodes the request body into T. On failure it writes a 400
// response and returns false.
//
//	req, ok := httputil.DecodeJSON[validateRequest](w, r, h.logger)
//	if !ok {
//	    return
//	}
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := r.Context()
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	return &req, true
}
