package testsupport

import (
	"net/http"
	"net/http/httptest"
)

// FeedBody is served by NewFeedServer at /feed.
const FeedBody = `[
  {"id": 9001, "text": "Read the quarterly report", "done": false, "createdAt": 1600000000000},
  {"id": 9002, "text": "Book the team offsite", "done": true, "createdAt": 1500000000000, "updatedAt": 1500000500000}
]`

// NewFeedServer serves a task feed for tests:
//
//	/feed    a JSON array of two tasks
//	/empty   an empty JSON array
//	/object  a JSON object
//	/down    a 500 response
func NewFeedServer() *httptest.Server {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
	mux.HandleFunc("/feed", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, FeedBody)
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	mux.HandleFunc("/object", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"todos": []}`)
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error": "down"}`)
	})
	return httptest.NewServer(mux)
}
