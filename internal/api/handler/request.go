package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/openshelf/library-system/internal/api/wire"
	"github.com/openshelf/library-system/internal/core/domain"
)

type statusResponse struct {
	Status string `json:"status"`
}

func statusOK(status string) *wire.Response {
	return wire.JSON(http.StatusOK, statusResponse{Status: status})
}

// listOK renders items as a JSON array; a nil slice renders as [].
func listOK[T any](items []T) *wire.Response {
	if items == nil {
		items = []T{}
	}
	return wire.JSON(http.StatusOK, items)
}

func requireBody(req *wire.Request) error {
	if len(strings.TrimSpace(string(req.Body))) == 0 {
		return domain.ErrMissingBody
	}
	return nil
}

// decodeJSON reads the request body as a sanitized JSON object. The declared
// content type is not checked.
func decodeJSON(req *wire.Request) (wire.Fields, error) {
	if err := requireBody(req); err != nil {
		return nil, err
	}
	f, err := wire.DecodeJSON(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedBody, err)
	}
	return f, nil
}

// mediaType returns the Content-Type value without parameters.
func mediaType(req *wire.Request) string {
	ct, _, _ := strings.Cut(req.Header("Content-Type"), ";")
	return strings.TrimSpace(ct)
}

// queryInt parses the first query value under key as a base-10 integer.
func queryInt(req *wire.Request, key string) (int64, bool) {
	raw, ok := req.Query.Get(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
