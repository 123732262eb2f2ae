package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"pincheck/internal/pincode/client"
	"pincheck/internal/pincode/models"
	"pincheck/internal/pincode/render"
	"pincheck/internal/pincode/service"
	"pincheck/internal/pincode/widget"
	"pincheck/pkg/domain"
)

type stubPostal struct {
	mu      sync.Mutex
	calls   int
	results map[string]models.LookupResult
	fail    bool
}

func (s *stubPostal) Lookup(_ context.Context, pin domain.Pincode) (models.LookupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fail {
		return models.LookupResult{}, &client.TransportError{Category: client.ErrorUpstreamOutage, Message: "connection refused"}
	}
	if r, ok := s.results[pin.String()]; ok {
		return r, nil
	}
	return models.NewAPIError(pin.String(), "No records found for this pincode: "+pin.String()), nil
}

func (s *stubPostal) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type HandlerSuite struct {
	suite.Suite
	postal   *stubPostal
	registry *widget.Registry
	router   chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.postal = &stubPostal{results: map[string]models.LookupResult{
		"560001": models.NewSuccess("560001", []models.PostOffice{
			{Name: "Bangalore GPO", DeliveryStatus: "Non-Delivery"},
			{Name: "Rajbhavan", DeliveryStatus: "Delivery"},
		}),
	}}
	svc := service.New(s.postal, service.WithLogger(logger))
	s.registry = widget.NewRegistry(svc, nil, widget.WithLogger(logger))

	renderer, err := render.New()
	s.Require().NoError(err)

	s.router = chi.NewRouter()
	New(svc, s.registry, renderer, logger, WithSettleTimeout(2*time.Second)).Register(s.router)
}

func (s *HandlerSuite) do(method, target string, form url.Values, accept string) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decodeView(w *httptest.ResponseRecorder) widget.View {
	var view widget.View
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func (s *HandlerSuite) newWidget() string {
	w := s.do(http.MethodGet, "/", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	s.Require().Len(cookies, 1)
	s.Equal(DefaultCookieName, cookies[0].Name)
	s.True(cookies[0].HttpOnly)
	return cookies[0].Value
}

func (s *HandlerSuite) TestPageCreatesWidget() {
	id := s.newWidget()
	s.Equal(1, s.registry.Len())

	w := s.do(http.MethodGet, "/widgets/"+id, nil, "application/json")
	s.Equal(http.StatusOK, w.Code)
	s.Equal(widget.StateIdle, s.decodeView(w).State)
}

func (s *HandlerSuite) TestPageReusesWidgetFromCookie() {
	id := s.newWidget()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: id})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal(1, s.registry.Len())
	s.Contains(w.Body.String(), `data-widget-id="`+id+`"`)
}

func (s *HandlerSuite) TestInputReturnsValidation() {
	id := s.newWidget()

	w := s.do(http.MethodPost, "/widgets/"+id+"/input", url.Values{"pincode": {"56a"}}, "application/json")
	s.Equal(http.StatusOK, w.Code)
	view := s.decodeView(w)
	s.True(view.Invalid)
	s.Equal(domain.MsgDigitsOnly, view.ErrorMessage)

	w = s.do(http.MethodPost, "/widgets/"+id+"/input", url.Values{"pincode": {"56000"}}, "application/json")
	s.Equal(domain.MsgSixDigits, s.decodeView(w).ErrorMessage)

	w = s.do(http.MethodPost, "/widgets/"+id+"/input", url.Values{"pincode": {"560001"}}, "application/json")
	view = s.decodeView(w)
	s.False(view.Invalid)
	s.Equal(widget.StateValid, view.State)
}

func (s *HandlerSuite) TestSubmitInvalidNeverCallsUpstream() {
	id := s.newWidget()

	w := s.do(http.MethodPost, "/widgets/"+id+"/submit", url.Values{"pincode": {"12345"}}, "application/json")
	s.Equal(http.StatusOK, w.Code)
	view := s.decodeView(w)
	s.Equal(widget.StateInvalid, view.State)
	s.Equal(domain.MsgSixDigits, view.ErrorMessage)
	s.Equal(0, s.postal.callCount())
}

func (s *HandlerSuite) TestSubmitValidThenPoll() {
	id := s.newWidget()

	w := s.do(http.MethodPost, "/widgets/"+id+"/submit", url.Values{"pincode": {"560001"}}, "application/json")
	s.Equal(http.StatusAccepted, w.Code)
	view := s.decodeView(w)
	s.True(view.Loading)
	s.Empty(view.Input)

	s.Eventually(func() bool {
		return !s.decodeView(s.do(http.MethodGet, "/widgets/"+id, nil, "application/json")).Loading
	}, 2*time.Second, 10*time.Millisecond)

	view = s.decodeView(s.do(http.MethodGet, "/widgets/"+id, nil, "application/json"))
	s.Equal(widget.StateDisplayed, view.Outcome)
	s.Equal("Post Offices under pincode 560001 are Bangalore GPO, Rajbhavan.", view.Results)

	fragment := s.do(http.MethodGet, "/widgets/"+id, nil, "text/html")
	s.Contains(fragment.Header().Get("Content-Type"), "text/html")
	s.Contains(fragment.Body.String(), "Delivery available at Rajbhavan.")
}

func (s *HandlerSuite) TestPlainFormSubmitRendersSettledPage() {
	id := s.newWidget()

	w := s.do(http.MethodPost, "/widgets/"+id+"/submit", url.Values{"pincode": {"999999"}}, "text/html")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "No records found for this pincode: 999999")
	s.NotContains(w.Body.String(), widget.LoadingMessage)
}

func (s *HandlerSuite) TestUnknownWidget() {
	missing := domain.NewWidgetID().String()

	w := s.do(http.MethodGet, "/widgets/"+missing, nil, "application/json")
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/widgets/"+missing+"/submit", url.Values{"pincode": {"560001"}}, "")
	s.Equal(http.StatusSeeOther, w.Code)
	s.Equal("/", w.Header().Get("Location"))

	w = s.do(http.MethodGet, "/widgets/not-a-uuid", nil, "application/json")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestAPILookup() {
	s.Run("success", func() {
		w := s.do(http.MethodGet, "/api/v1/pincodes/560001", nil, "")
		s.Equal(http.StatusOK, w.Code)
		var result models.LookupResult
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
		s.Equal(models.KindSuccess, result.Kind)
		s.Equal([]string{"Rajbhavan"}, result.Deliverable)
	})

	s.Run("invalid", func() {
		w := s.do(http.MethodGet, "/api/v1/pincodes/56a001", nil, "")
		s.Equal(http.StatusBadRequest, w.Code)
		s.Contains(w.Body.String(), domain.MsgDigitsOnly)
	})

	s.Run("transport failure", func() {
		s.postal.fail = true
		defer func() { s.postal.fail = false }()

		w := s.do(http.MethodGet, "/api/v1/pincodes/110001", nil, "")
		s.Equal(http.StatusBadGateway, w.Code)
		s.Contains(w.Body.String(), models.TransportFailureMessage)
	})
}

func (s *HandlerSuite) TestAPIValidate() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pincodes/validate", strings.NewReader(`{"pincode":"1234"}`))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"is_valid":false,"message":"`+domain.MsgSixDigits+`"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/v1/pincodes/validate", strings.NewReader(`nope`))
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusBadRequest, w.Code)
}
