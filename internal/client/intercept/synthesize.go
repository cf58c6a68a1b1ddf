package intercept

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/readkeeper/internal/client/models"
	"github.com/dmitrijs2005/readkeeper/internal/common"
)

// Values of the X-Offline-Source header.
const (
	SourceLocal       = "local"
	SourceCache       = "cache"
	SourcePlaceholder = "placeholder"
)

const (
	OfflineErrorKind    = "offline"
	OfflineErrorMessage = "You are offline. Only downloaded items are available."
)

// NewResponse builds a complete in-memory response for req.
func NewResponse(req *http.Request, status int, header http.Header, body []byte) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Length", strconv.Itoa(len(body)))
	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func jsonResponse(req *http.Request, status int, v any, source string) (*http.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	if source != "" {
		h.Set(common.OfflineSourceHeader, source)
	}
	return NewResponse(req, status, h, body), nil
}

// SynthesizeItem answers an item request from a stored item.
func SynthesizeItem(req *http.Request, item *models.Item) (*http.Response, error) {
	return jsonResponse(req, http.StatusOK, item, SourceLocal)
}

// SynthesizeOwners answers a directory request from stored owner summaries.
func SynthesizeOwners(req *http.Request, owners []models.OwnerSummary) (*http.Response, error) {
	return jsonResponse(req, http.StatusOK, owners, SourceLocal)
}

// SynthesizeOffline is the fixed 503 answer when nothing local matches.
func SynthesizeOffline(req *http.Request) *http.Response {
	resp, _ := jsonResponse(req, http.StatusServiceUnavailable,
		models.OfflineError{Error: OfflineErrorKind, Message: OfflineErrorMessage}, "")
	return resp
}

// SynthesizeCached rebuilds a response stored in a cache.
func SynthesizeCached(req *http.Request, c *models.CachedResponse, source string) *http.Response {
	h := c.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	if source != "" {
		h.Set(common.OfflineSourceHeader, source)
	}
	return NewResponse(req, c.Status, h, c.Body)
}
