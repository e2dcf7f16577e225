package pushrepo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ParkSiYeol3/LastDance-sub000/util/httpx"
)

// Repo forwards a notification to the hosted push gateway. Delivery is best
// effort; the dispatcher decides what to do with a failure.
type Repo interface {
	Send(token, title, body string) error
}

type httpRepo struct {
	url    string
	client *http.Client
}

func NewHTTP(gatewayURL string) Repo {
	return &httpRepo{url: gatewayURL, client: httpx.Client()}
}

func (r *httpRepo) Send(token, title, body string) error {
	payload := map[string]any{
		"to":    token,
		"sound": "default",
		"title": title,
		"body":  body,
	}
	b, _ := json.Marshal(payload)

	httpReq, err := http.NewRequest(http.MethodPost, r.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway: %s", resp.Status)
	}

	var out struct {
		Errors []any `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if len(out.Errors) > 0 {
		return fmt.Errorf("push gateway rejected: %v", out.Errors)
	}
	return nil
}
