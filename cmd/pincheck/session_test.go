package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pincheck/internal/pincode/models"
	"pincheck/internal/pincode/validation"
	"pincheck/internal/pincode/widget"
	"pincheck/pkg/domain"
)

type fixedLookuper struct {
	results map[string]models.LookupResult
}

func (f fixedLookuper) Validate(raw string) models.ValidationResult {
	return validation.Validate(raw)
}

func (f fixedLookuper) LookupPincode(_ context.Context, pin domain.Pincode) models.LookupResult {
	if r, ok := f.results[pin.String()]; ok {
		return r
	}
	return models.NewAPIError(pin.String(), "No records found for this pincode: "+pin.String())
}

type scriptedPrompter struct {
	answers []string
}

func (p *scriptedPrompter) Ask(_ context.Context) (string, error) {
	if len(p.answers) == 0 {
		return "", errQuit
	}
	next := p.answers[0]
	p.answers = p.answers[1:]
	return next, nil
}

func newTestSession(out *bytes.Buffer) *session {
	lookuper := fixedLookuper{results: map[string]models.LookupResult{
		"560001": models.NewSuccess("560001", []models.PostOffice{
			{Name: "Bangalore G.P.O.", DeliveryStatus: models.DeliveryStatusDelivery, BranchType: "Head Post Office", District: "Bangalore", State: "Karnataka"},
			{Name: "Vidhana Soudha", DeliveryStatus: "Non-Delivery", BranchType: "Sub Post Office", District: "Bangalore", State: "Karnataka"},
		}),
	}}
	return &session{widget: widget.New(domain.NewWidgetID(), lookuper), out: out}
}

func TestSessionLookupSuccess(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out)

	v, err := s.lookup(context.Background(), "560001")
	require.NoError(t, err)
	assert.Equal(t, "Post Offices under pincode 560001 are Bangalore G.P.O., Vidhana Soudha.", v.Results)
	assert.Equal(t, "Delivery available at Bangalore G.P.O..", v.Delivery)
	assert.Empty(t, v.Input)
	assert.Contains(t, out.String(), widget.LoadingMessage)
}

func TestSessionLookupInvalidNeverLoads(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out)

	v, err := s.lookup(context.Background(), "05600")
	require.NoError(t, err)
	assert.True(t, v.Invalid)
	assert.False(t, v.Loading)
	assert.NotEmpty(t, v.ErrorMessage)
	assert.Empty(t, out.String())
}

func TestSessionRunPrintsEachOutcome(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out)

	err := s.run(context.Background(), &scriptedPrompter{answers: []string{"560001", "123456"}})
	require.NoError(t, err)

	printed := out.String()
	assert.Contains(t, printed, "Post Offices under pincode 560001 are")
	assert.Contains(t, printed, "Bangalore G.P.O.")
	assert.Contains(t, printed, "No records found for this pincode: 123456")
}

func TestSingleReportsFailure(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(&out)

	require.NoError(t, single(context.Background(), s, "560001"))
	require.Error(t, single(context.Background(), s, "123456"))
	require.Error(t, single(context.Background(), s, "abc"))
}

func TestValidatePincode(t *testing.T) {
	assert.NoError(t, validatePincode("110001"))
	assert.Error(t, validatePincode(""))
	assert.Error(t, validatePincode("11000a"))
}
