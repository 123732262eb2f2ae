package e2e

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"

	"pincheck/internal/pincode/client"
	"pincheck/internal/pincode/handler"
	"pincheck/internal/pincode/render"
	"pincheck/internal/pincode/service"
	"pincheck/internal/pincode/widget"
	"pincheck/pkg/platform/middleware/request"
)

type upstreamOffice struct {
	Name           string `json:"Name"`
	BranchType     string `json:"BranchType"`
	DeliveryStatus string `json:"DeliveryStatus"`
	District       string `json:"District"`
	State          string `json:"State"`
}

type upstreamRecord struct {
	Message    string           `json:"Message"`
	Status     string           `json:"Status"`
	PostOffice []upstreamOffice `json:"PostOffice"`
}

// upstream answers with the same fixtures and failure pincodes as cmd/mock-postal.
func upstream() http.Handler {
	r := chi.NewRouter()
	r.Get("/pincode/{code}", func(w http.ResponseWriter, r *http.Request) {
		switch code := chi.URLParam(r, "code"); code {
		case "560001":
			writeUpstream(w, http.StatusOK, upstreamRecord{
				Message: "Number of pincode(s) found:3",
				Status:  "Success",
				PostOffice: []upstreamOffice{
					{Name: "Bangalore G.P.O.", BranchType: "Head Post Office", DeliveryStatus: "Non-Delivery", District: "Bangalore", State: "Karnataka"},
					{Name: "Rajbhavan (Bangalore)", BranchType: "Sub Post Office", DeliveryStatus: "Delivery", District: "Bangalore", State: "Karnataka"},
					{Name: "Vidhana Soudha", BranchType: "Sub Post Office", DeliveryStatus: "Non-Delivery", District: "Bangalore", State: "Karnataka"},
				},
			})
		case "999503":
			writeUpstream(w, http.StatusServiceUnavailable, upstreamRecord{Message: "Service temporarily unavailable", Status: "Error"})
		case "999502":
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html><body><h1>502 Bad Gateway</h1></body></html>"))
		default:
			writeUpstream(w, http.StatusOK, upstreamRecord{Message: "No records found", Status: "Error"})
		}
	})
	return r
}

func writeUpstream(w http.ResponseWriter, status int, rec upstreamRecord) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode([]upstreamRecord{rec})
}

// startInProcess wires the widget routes against a local upstream and
// returns the base URL plus a stop function.
func startInProcess() (string, func()) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	postal := httptest.NewServer(upstream())

	svc := service.New(client.New(postal.URL+"/pincode/", 5*time.Second), service.WithLogger(log))
	widgets := widget.NewRegistry(svc, nil, widget.WithLogger(log))
	renderer, err := render.New()
	if err != nil {
		panic(err)
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	handler.New(svc, widgets, renderer, log).Register(r)
	app := httptest.NewServer(r)

	return app.URL, func() {
		app.Close()
		postal.Close()
	}
}
