// Package classify talks to the external image classification service and
// records classification audit rows.
package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Classifier submits an image and returns the service's verdict as opaque
// JSON. The payload shape belongs to the classifier service and is stored
// and returned verbatim.
type Classifier interface {
	Classify(ctx context.Context, filename string, image io.Reader) (json.RawMessage, error)
}

// RemoteClassifier posts images to an HTTP classification endpoint as
// multipart form data.
type RemoteClassifier struct {
	endpoint string
	client   *http.Client
}

func NewRemoteClassifier(endpoint string) *RemoteClassifier {
	return &RemoteClassifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *RemoteClassifier) Classify(ctx context.Context, filename string, image io.Reader) (json.RawMessage, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier responded with status %d", resp.StatusCode)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("classifier returned invalid JSON")
	}

	return json.RawMessage(data), nil
}
