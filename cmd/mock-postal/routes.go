package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const slowDelay = 30 * time.Second

func newRouter(latency time.Duration) chi.Router {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "mock-postal"})
	})
	r.Get("/pincode/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []record{{Message: "Pincode is required", Status: "Error"}})
	})
	r.Get("/pincode/{code}", func(w http.ResponseWriter, r *http.Request) {
		wait(r, latency)
		handleLookup(w, r)
	})
	return r
}

func wait(r *http.Request, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-r.Context().Done():
	}
}

func handleLookup(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	switch code {
	case pincodeUnavailable:
		writeJSON(w, http.StatusServiceUnavailable, []record{{Message: "Service temporarily unavailable", Status: "Error"}})
		return
	case pincodeBadGateway:
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html><body><h1>502 Bad Gateway</h1></body></html>"))
		return
	case pincodeGarbage:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not json"))
		return
	case pincodeEmptyArray:
		writeJSON(w, http.StatusOK, []record{})
		return
	case pincodeSlow:
		wait(r, slowDelay)
	}

	offices, ok := fixtures[code]
	if !ok {
		writeJSON(w, http.StatusOK, []record{{Message: "No records found", Status: "Error"}})
		return
	}
	writeJSON(w, http.StatusOK, []record{{
		Message:    fmt.Sprintf("Number of pincode(s) found:%d", len(offices)),
		Status:     "Success",
		PostOffice: offices,
	}})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
