package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/splitledger/splitledger/internal/metrics"
	"github.com/splitledger/splitledger/internal/service"
	"github.com/splitledger/splitledger/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	srv := New(service.NewLedgerService(store), service.NewGroupService(store), metrics.New())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON posts the body (or GETs when body is nil) and decodes the
// response into out when the status matches.
func doJSON(t *testing.T, method, url string, body any, wantStatus int, out any) {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		t.Fatalf("%s %s: status %d, want %d (%v)", method, url, resp.StatusCode, wantStatus, errBody)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func createUser(t *testing.T, ts *httptest.Server, name string) string {
	t.Helper()
	var user struct {
		ID string `json:"id"`
	}
	doJSON(t, http.MethodPost, ts.URL+"/users", map[string]string{"name": name}, http.StatusCreated, &user)
	return user.ID
}

func createGroup(t *testing.T, ts *httptest.Server, name string, memberIDs []string) string {
	t.Helper()
	var group struct {
		ID string `json:"id"`
	}
	doJSON(t, http.MethodPost, ts.URL+"/groups", map[string]any{
		"name": name, "member_ids": memberIDs,
	}, http.StatusCreated, &group)
	return group.ID
}

func TestExpenseBalanceSettleFlow(t *testing.T) {
	ts := setupTestServer(t)

	a := createUser(t, ts, "A")
	b := createUser(t, ts, "B")
	c := createUser(t, ts, "C")
	groupID := createGroup(t, ts, "trip", []string{a, b, c})

	var expense struct {
		ID     string `json:"id"`
		Amount string `json:"amount"`
		Shares []struct {
			UserID string `json:"user_id"`
			Amount string `json:"amount"`
		} `json:"shares"`
	}
	doJSON(t, http.MethodPost, ts.URL+"/groups/"+groupID+"/expenses", map[string]any{
		"description": "hotel",
		"amount":      "90.00",
		"split_type":  "equal",
		"paid_by":     []map[string]string{{"user_id": a, "amount": "90.00"}},
		"users":       []string{a, b, c},
	}, http.StatusCreated, &expense)

	if expense.Amount != "90.00" || len(expense.Shares) != 3 {
		t.Fatalf("expense = %+v", expense)
	}

	var balances []struct {
		UserID string `json:"user_id"`
		Net    string `json:"net"`
	}
	doJSON(t, http.MethodGet, ts.URL+"/groups/"+groupID+"/expenses/balances", nil, http.StatusOK, &balances)

	nets := map[string]string{}
	for _, bal := range balances {
		nets[bal.UserID] = bal.Net
	}
	if nets[a] != "60.00" || nets[b] != "-30.00" || nets[c] != "-30.00" {
		t.Fatalf("balances = %v", nets)
	}

	doJSON(t, http.MethodPost, ts.URL+"/groups/"+groupID+"/settle", map[string]string{
		"payer_id": b, "payee_id": a, "amount": "30.00",
	}, http.StatusOK, &balances)

	var simplified struct {
		Settlements []struct {
			PayerID   string `json:"payer_id"`
			PayeeID   string `json:"payee_id"`
			Amount    string `json:"amount"`
			Generated bool   `json:"generated"`
		} `json:"settlements"`
		Balances []struct {
			UserID string `json:"user_id"`
			Net    string `json:"net"`
		} `json:"balances"`
	}
	doJSON(t, http.MethodPost, ts.URL+"/groups/"+groupID+"/simplify", nil, http.StatusOK, &simplified)

	if len(simplified.Settlements) != 1 {
		t.Fatalf("simplify settlements = %+v, want 1", simplified.Settlements)
	}
	st := simplified.Settlements[0]
	if st.PayerID != c || st.PayeeID != a || st.Amount != "30.00" || !st.Generated {
		t.Errorf("settlement = %+v, want C→A 30.00 generated", st)
	}
	for _, bal := range simplified.Balances {
		if bal.Net != "0.00" {
			t.Errorf("net(%s) = %s after simplify, want 0.00", bal.UserID, bal.Net)
		}
	}

	var settlements []struct {
		ID string `json:"id"`
	}
	doJSON(t, http.MethodGet, ts.URL+"/groups/"+groupID+"/settlements", nil, http.StatusOK, &settlements)
	if len(settlements) != 2 {
		t.Errorf("got %d settlements, want 2", len(settlements))
	}
}

func TestErrorStatusCodes(t *testing.T) {
	ts := setupTestServer(t)

	a := createUser(t, ts, "A")
	b := createUser(t, ts, "B")
	groupID := createGroup(t, ts, "flat", []string{a, b})

	// Unknown group -> 404.
	doJSON(t, http.MethodGet, ts.URL+"/groups/nope/expenses/balances", nil, http.StatusNotFound, nil)

	// Bad payer sum -> 400.
	doJSON(t, http.MethodPost, ts.URL+"/groups/"+groupID+"/expenses", map[string]any{
		"amount":     "100.00",
		"split_type": "equal",
		"paid_by":    []map[string]string{{"user_id": a, "amount": "99.99"}},
		"users":      []string{a, b},
	}, http.StatusBadRequest, nil)

	// Unknown split type -> 400.
	doJSON(t, http.MethodPost, ts.URL+"/groups/"+groupID+"/expenses", map[string]any{
		"amount":     "100.00",
		"split_type": "weighted",
		"paid_by":    []map[string]string{{"user_id": a, "amount": "100.00"}},
	}, http.StatusBadRequest, nil)

	// Malformed amount -> 400.
	doJSON(t, http.MethodPost, ts.URL+"/groups/"+groupID+"/expenses", map[string]any{
		"amount":     "100.123",
		"split_type": "equal",
		"paid_by":    []map[string]string{{"user_id": a, "amount": "100.123"}},
		"users":      []string{a, b},
	}, http.StatusBadRequest, nil)

	// Settlement by a payer who owes nothing -> 400.
	doJSON(t, http.MethodPost, ts.URL+"/groups/"+groupID+"/settle", map[string]string{
		"payer_id": a, "payee_id": b, "amount": "10.00",
	}, http.StatusBadRequest, nil)
}

func TestPercentageExpenseOverHTTP(t *testing.T) {
	ts := setupTestServer(t)

	a := createUser(t, ts, "A")
	b := createUser(t, ts, "B")
	groupID := createGroup(t, ts, "duo", []string{a, b})

	doJSON(t, http.MethodPost, ts.URL+"/groups/"+groupID+"/expenses", map[string]any{
		"amount":     "200.00",
		"split_type": "percentage",
		"paid_by":    []map[string]string{{"user_id": a, "amount": "200.00"}},
		"percentages": map[string]string{
			a: "60.00",
			b: "40.00",
		},
	}, http.StatusCreated, nil)

	var balances []struct {
		UserID string `json:"user_id"`
		Net    string `json:"net"`
	}
	doJSON(t, http.MethodGet, ts.URL+"/groups/"+groupID+"/expenses/balances", nil, http.StatusOK, &balances)

	nets := map[string]string{}
	for _, bal := range balances {
		nets[bal.UserID] = bal.Net
	}
	if nets[a] != "80.00" || nets[b] != "-80.00" {
		t.Fatalf("balances = %v, want A 80.00, B -80.00", nets)
	}
}

func TestHealthz(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestMetricsExposed(t *testing.T) {
	ts := setupTestServer(t)

	a := createUser(t, ts, "A")
	groupID := createGroup(t, ts, "solo", []string{a})
	doJSON(t, http.MethodPost, ts.URL+"/groups/"+groupID+"/expenses", map[string]any{
		"amount":     "10.00",
		"split_type": "equal",
		"paid_by":    []map[string]string{{"user_id": a, "amount": "10.00"}},
		"users":      []string{a},
	}, http.StatusCreated, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	const want = "splitledger_expenses_created_total 1"
	if !bytes.Contains(buf.Bytes(), []byte(want)) {
		t.Errorf("metrics output missing %q", want)
	}
}
