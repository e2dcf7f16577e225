package striperepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ParkSiYeol3/LastDance-sub000/util/httpx"
)

const apiBase = "https://api.stripe.com/v1"

type httpRepo struct {
	apiKey string
	client *http.Client
}

func NewHTTP(apiKey string) Repo { return &httpRepo{apiKey: apiKey, client: httpx.Client()} }

func (r *httpRepo) CreateIntent(req CreateIntentReq) (*CreateIntentResp, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", req.Currency)
	form.Set("payment_method_types[]", "card")
	form.Set("metadata[userId]", strconv.FormatInt(req.UserID, 10))
	form.Set("metadata[rentalItemId]", strconv.FormatInt(req.RentalItemID, 10))

	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := r.post("/payment_intents", form, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("stripe: empty intent id")
	}
	return &CreateIntentResp{IntentID: out.ID, ClientSecret: out.ClientSecret}, nil
}

func (r *httpRepo) RetrieveIntent(intentID string) (*IntentStatus, error) {
	httpReq, err := http.NewRequest(http.MethodGet, apiBase+"/payment_intents/"+url.PathEscape(intentID), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stripe retrieve intent failed: %s", resp.Status)
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &IntentStatus{IntentID: out.ID, Status: out.Status}, nil
}

func (r *httpRepo) CreateRefund(intentID string) (*RefundResp, error) {
	form := url.Values{}
	form.Set("payment_intent", intentID)

	var out struct {
		ID string `json:"id"`
	}
	if err := r.post("/refunds", form, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("stripe: empty refund id")
	}
	return &RefundResp{RefundID: out.ID}, nil
}

func (r *httpRepo) post(path string, form url.Values, out any) error {
	httpReq, err := http.NewRequest(http.MethodPost, apiBase+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("stripe %s failed: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
