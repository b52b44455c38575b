package http

import (
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"

	perr "reviewpipe/internal/platform/errors"
	"reviewpipe/internal/platform/validate"
)

// maxBody bounds request bodies on the ops surface
const maxBody = 1 << 20

// ParseJSON decodes an optional JSON body into T, rejects unknown fields and validates it
// An empty body yields the zero T (then validated)
func ParseJSON[T any](r *stdhttp.Request) (T, error) {
	var zero, dst T
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil && !errors.Is(err, io.EOF) {
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}
	if err := validate.Struct(dst); err != nil {
		return zero, err
	}
	return dst, nil
}
