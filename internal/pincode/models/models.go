// Package models holds the values that flow between the validator, the lookup
// client and the widget: validation verdicts and lookup outcomes.
package models

import (
	"fmt"
	"strings"
	"time"
)

// ValidationResult is the verdict for one raw input value.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Message string `json:"message"`
}

// ResultKind tags the LookupResult variant.
type ResultKind string

const (
	KindSuccess        ResultKind = "success"
	KindAPIError       ResultKind = "api_error"
	KindTransportError ResultKind = "transport_error"
)

// TransportFailureMessage is shown when the upstream could not be reached or
// returned something unreadable.
const TransportFailureMessage = "Something went wrong. Please try again later."

// PostOffice is one entry of the upstream PostOffice array.
type PostOffice struct {
	Name           string `json:"name"`
	DeliveryStatus string `json:"delivery_status"`
	BranchType     string `json:"branch_type,omitempty"`
	District       string `json:"district,omitempty"`
	State          string `json:"state,omitempty"`
}

// DeliveryStatusDelivery marks post offices that offer mail delivery.
const DeliveryStatusDelivery = "Delivery"

// LookupResult is the outcome of one lookup.
//
// Kind selects the variant: Success carries PostOffices and Deliverable,
// the two error kinds carry Message.
type LookupResult struct {
	Kind        ResultKind   `json:"kind"`
	Pincode     string       `json:"pincode"`
	PostOffices []string     `json:"post_offices,omitempty"`
	Deliverable []string     `json:"deliverable,omitempty"`
	Offices     []PostOffice `json:"offices,omitempty"`
	Message     string       `json:"message,omitempty"`
	CheckedAt   time.Time    `json:"checked_at"`
}

// NewSuccess partitions offices into all names and the delivery subset,
// keeping upstream order in both.
func NewSuccess(pincode string, offices []PostOffice) LookupResult {
	names := make([]string, 0, len(offices))
	deliverable := make([]string, 0, len(offices))
	for _, o := range offices {
		names = append(names, o.Name)
		if o.DeliveryStatus == DeliveryStatusDelivery {
			deliverable = append(deliverable, o.Name)
		}
	}
	return LookupResult{
		Kind:        KindSuccess,
		Pincode:     pincode,
		PostOffices: names,
		Deliverable: deliverable,
		Offices:     offices,
		CheckedAt:   time.Now(),
	}
}

// NewAPIError builds the variant for an upstream rejection of a well-formed pincode.
func NewAPIError(pincode, message string) LookupResult {
	return LookupResult{Kind: KindAPIError, Pincode: pincode, Message: message, CheckedAt: time.Now()}
}

// NewTransportError builds the variant for network or decode failures.
func NewTransportError(pincode string) LookupResult {
	return LookupResult{
		Kind:      KindTransportError,
		Pincode:   pincode,
		Message:   TransportFailureMessage,
		CheckedAt: time.Now(),
	}
}

func (r LookupResult) IsSuccess() bool { return r.Kind == KindSuccess }

// Summary renders the sentence shown in the results area for a Success.
// It returns "" for the error variants and for an empty office list.
func (r LookupResult) Summary() string {
	if r.Kind != KindSuccess || len(r.PostOffices) == 0 {
		return ""
	}
	lead := fmt.Sprintf("Post Offices under pincode %s are", r.Pincode)
	if len(r.PostOffices) == 1 {
		lead = fmt.Sprintf("Post Office under pincode %s is", r.Pincode)
	}
	return fmt.Sprintf("%s %s.", lead, strings.Join(r.PostOffices, ", "))
}

// DeliverySummary lists the offices offering delivery, or "" when there are none.
func (r LookupResult) DeliverySummary() string {
	if r.Kind != KindSuccess || len(r.Deliverable) == 0 {
		return ""
	}
	return fmt.Sprintf("Delivery available at %s.", strings.Join(r.Deliverable, ", "))
}
