package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifeflow/bloodlink/core/aggregate"
	"github.com/lifeflow/bloodlink/core/collect"
	"github.com/lifeflow/bloodlink/core/dispatch"
	"github.com/lifeflow/bloodlink/core/geo"
	"github.com/lifeflow/bloodlink/core/model"
	"github.com/lifeflow/bloodlink/infra/sms"
	"github.com/lifeflow/bloodlink/infra/store/memory"
)

const testLinkBase = "http://localhost:8080"

type env struct {
	srv    *httptest.Server
	sender *sms.MockSender
	legacy *memory.LegacyStore
}

func newEnv(t *testing.T, donors []model.Donor) env {
	t.Helper()
	reg := memory.NewRegistry(donors)
	reqs := memory.NewRequestStore()
	toks := memory.NewTokenStore()
	resps := memory.NewResponseStore()
	legacy := memory.NewLegacyStore(nil)
	sender := sms.NewMockSender()

	d, err := dispatch.New(reg, toks, sender, nil, nil, nil, testLinkBase)
	require.NoError(t, err)
	c, err := collect.New(toks, reqs, reg, resps, nil)
	require.NoError(t, err)
	a, err := aggregate.New(reqs, geo.NewRanker(geo.Point{Lat: 28.6139, Lng: 77.2090}), nil,
		aggregate.NewStructuredSource(resps, reg), aggregate.NewLegacySource(legacy, reg))
	require.NoError(t, err)

	h := New(reqs, d, c, a, nil, nil, "secret")
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return env{srv: srv, sender: sender, legacy: legacy}
}

func (e env) do(t *testing.T, method, path, body string, authed bool) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != "" {
		req, err = http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	} else {
		req, err = http.NewRequest(method, e.srv.URL+path, nil)
	}
	require.NoError(t, err)
	if authed {
		req.Header.Set("Authorization", "Bearer secret")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// tokenFor extracts the response token from the message sent to phone.
func (e env) tokenFor(t *testing.T, phone string) string {
	t.Helper()
	msg, ok := e.sender.Messages[phone]
	require.True(t, ok, "no message sent to %s", phone)
	i := strings.LastIndex(msg, "/respond/")
	require.GreaterOrEqual(t, i, 0, "no link in %q", msg)
	return msg[i+len("/respond/"):]
}

var testDonors = []model.Donor{
	{ID: "d1", Name: "Jane Doe", Phone: "111", BloodGroup: "B-"},
	{ID: "d2", Name: "Ravi Kumar", Phone: "222", BloodGroup: "O-"},
	{ID: "d3", Name: "Ana Park", Phone: "333", BloodGroup: "A+"},
}

func TestCreateRequestDispatchesToCompatibleDonors(t *testing.T) {
	e := newEnv(t, testDonors)
	resp := e.do(t, http.MethodPost, "/api/requests",
		`{"hospital_id":"h1","blood_group":"B-","quantity":2,"urgency":"high"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[createRequestResponse](t, resp)
	assert.NotEmpty(t, created.RequestID)
	assert.Equal(t, 2, created.SMSStatus.TotalDonors)
	assert.Equal(t, 2, created.SMSStatus.Delivered)
	assert.Equal(t, model.BloodGroup("B-"), created.SMSStatus.BloodGroup)
	assert.Len(t, e.sender.Messages, 2)
	assert.Contains(t, e.sender.Messages, "111")
	assert.Contains(t, e.sender.Messages, "222")
}

func TestCreateRequestValidation(t *testing.T) {
	e := newEnv(t, testDonors)
	for _, body := range []string{
		`{"blood_group":"","quantity":0}`,
		`{"blood_group":"Z+","quantity":1}`,
		`not json`,
	} {
		resp := e.do(t, http.MethodPost, "/api/requests", body, true)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		resp.Body.Close()
	}
}

func TestAuthRequired(t *testing.T) {
	e := newEnv(t, testDonors)
	for _, path := range []string{"/api/requests", "/api/locations"} {
		resp := e.do(t, http.MethodGet, path, "", false)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestResolveAndSubmitViaToken(t *testing.T) {
	e := newEnv(t, testDonors)
	resp := e.do(t, http.MethodPost, "/api/requests",
		`{"hospital_id":"h1","blood_group":"O-","quantity":1,"urgency":"high"}`, true)
	created := decode[createRequestResponse](t, resp)
	token := e.tokenFor(t, "222")

	// Public resolve shows request and donor without consuming the token.
	res := e.do(t, http.MethodGet, "/api/respond/"+token, "", false)
	require.Equal(t, http.StatusOK, res.StatusCode)
	resolution := decode[collect.Resolution](t, res)
	assert.Equal(t, created.RequestID, resolution.Request.ID)
	assert.Equal(t, "d2", resolution.Donor.ID)

	// Submit.
	res = e.do(t, http.MethodPost, "/api/respond/"+token,
		`{"latitude":28.62,"longitude":77.21,"address":"Connaught Place"}`, false)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	submitted := decode[model.LocationResponse](t, res)
	assert.Equal(t, "d2", submitted.DonorID)
	assert.True(t, submitted.IsAvailable)

	// Second submission: same message for used and unknown tokens.
	res = e.do(t, http.MethodPost, "/api/respond/"+token, `{}`, false)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	errBody := decode[map[string]string](t, res)
	assert.Equal(t, "invalid or expired link", errBody["error"])

	res = e.do(t, http.MethodGet, "/api/respond/doesnotexist", "", false)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	errBody = decode[map[string]string](t, res)
	assert.Equal(t, "invalid or expired link", errBody["error"])
}

func TestListResponsesFilters(t *testing.T) {
	e := newEnv(t, testDonors)
	resp := e.do(t, http.MethodPost, "/api/requests",
		`{"hospital_id":"h1","blood_group":"B-","quantity":1,"urgency":"high"}`, true)
	created := decode[createRequestResponse](t, resp)

	// A legacy record predating the request.
	e.legacy.Add(model.LegacyLocation{
		UserName: "jane doe", MobileNumber: "111",
		Latitude: 28.65, Longitude: 77.25,
		Timestamp: time.Now().Add(-time.Hour),
	})

	token := e.tokenFor(t, "222")
	res := e.do(t, http.MethodPost, "/api/respond/"+token, `{"latitude":28.62,"longitude":77.21}`, false)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	res.Body.Close()

	base := fmt.Sprintf("/api/requests/%s/responses", created.RequestID)

	res = e.do(t, http.MethodGet, base+"?time_filter=after-request", "", true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	view := decode[aggregate.View](t, res)
	require.Len(t, view.Responses, 1)
	assert.Equal(t, aggregate.SourceStructured, view.Responses[0].Source)

	res = e.do(t, http.MethodGet, base+"?time_filter=all", "", true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	view = decode[aggregate.View](t, res)
	require.Len(t, view.Responses, 2)
	assert.Equal(t, 1, view.Summary.Invalid)
	assert.Equal(t, 1, view.Summary.Legacy)
	// Legacy record resolved to the registered donor.
	assert.Equal(t, "d1", view.Responses[1].DonorID)
	assert.Equal(t, model.BloodGroup("B-"), view.Responses[1].BloodGroup)

	res = e.do(t, http.MethodGet, base+"?time_filter=bogus", "", true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()

	res = e.do(t, http.MethodGet, base+"?time_filter=recent&max_age_hours=-1", "", true)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res.Body.Close()
}

func TestListResponsesUnknownRequest(t *testing.T) {
	e := newEnv(t, testDonors)
	res := e.do(t, http.MethodGet, "/api/requests/nope/responses", "", true)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res.Body.Close()
}

func TestListLocations(t *testing.T) {
	e := newEnv(t, testDonors)
	e.legacy.Add(model.LegacyLocation{
		UserName: "Unknown Person", MobileNumber: "999",
		Latitude: 28.60, Longitude: 77.20, Timestamp: time.Now(),
	})
	res := e.do(t, http.MethodGet, "/api/locations", "", true)
	require.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[map[string][]aggregate.Entry](t, res)
	entries := body["locations"]
	require.Len(t, entries, 1)
	assert.Equal(t, model.GroupUnknown, entries[0].BloodGroup)
	assert.NotZero(t, entries[0].DistanceKm)
}
