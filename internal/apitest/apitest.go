// Package apitest serves the user API the demo reads from, for tests. It
// answers the same api query values as the real endpoint.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/u-haru/charsetdemo"
)

// Users is the sample payload: two users with kanji names.
var Users = []map[string]string{
	{"name": "田中"},
	{"name": "佐藤"},
}

// UsersJSON is Users as the endpoint writes it.
const UsersJSON = `[{"name":"田中"},{"name":"佐藤"}]`

// API is an http.Handler for /api.
type API struct {
	Users []map[string]string
	// Status, when non-zero, is returned for every request with an empty body.
	Status int
	// Body, when set, is sent as the Shift_JIS payload verbatim.
	Body []byte
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if a.Status != 0 {
		w.WriteHeader(a.Status)
		return
	}
	js, err := json.Marshal(a.Users)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	switch r.URL.Query().Get("api") {
	case "users-sjis":
		a.writeSJIS(w, js, "application/json; charset=Shift_JIS")
	case "users-sjis-no-header":
		a.writeSJIS(w, js, "application/json")
	case "users-sjis-wrong-header":
		a.writeSJIS(w, js, "application/json; charset=UTF-8")
	default:
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		w.Write(js)
	}
}

func (a *API) writeSJIS(w http.ResponseWriter, js []byte, contentType string) {
	body := a.Body
	if body == nil {
		var err error
		if body, err = charsetdemo.Encode(string(js), charsetdemo.ShiftJIS); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(body)
}

// NewServer starts an httptest server for a. Close it when done.
func NewServer(a *API) *httptest.Server {
	mux := http.NewServeMux()
	mux.Handle("/api", a)
	return httptest.NewServer(mux)
}
