package widget

import (
	"pincheck/internal/pincode/models"
)

// LoadingMessage is shown in the status area while a lookup is in flight.
const LoadingMessage = "Loading..."

// Snapshot is the widget state a View is projected from.
type Snapshot struct {
	WidgetID   string
	State      State
	Input      string
	Validation models.ValidationResult
	Validated  bool
	Submitted  string
	Result     *models.LookupResult
	Outcome    State
	Pending    bool
	Sequence   uint64
}

// View is what the display surface shows: the input value plus the error
// message area, the status area and the results area.
type View struct {
	WidgetID     string              `json:"widget_id"`
	State        State               `json:"state"`
	Outcome      State               `json:"outcome,omitempty"`
	Input        string              `json:"input"`
	Invalid      bool                `json:"invalid"`
	ErrorMessage string              `json:"error_message"`
	Loading      bool                `json:"loading"`
	Status       string              `json:"status"`
	Results      string              `json:"results"`
	Delivery     string              `json:"delivery,omitempty"`
	PostOffices  []models.PostOffice `json:"post_offices,omitempty"`
	Pincode      string              `json:"pincode,omitempty"`
	Sequence     uint64              `json:"sequence"`
}

// Project maps a snapshot to a View. It has no side effects.
func Project(s Snapshot) View {
	v := View{
		WidgetID: s.WidgetID,
		State:    s.State,
		Outcome:  s.Outcome,
		Input:    s.Input,
		Pincode:  s.Submitted,
		Sequence: s.Sequence,
	}

	if s.Validated && !s.Validation.IsValid {
		v.Invalid = true
		v.ErrorMessage = s.Validation.Message
	}

	if s.State == StateLoading || s.Pending {
		v.Loading = true
		v.Status = LoadingMessage
		return v
	}

	if s.Result == nil {
		return v
	}
	switch s.Result.Kind {
	case models.KindSuccess:
		v.Results = s.Result.Summary()
		v.Delivery = s.Result.DeliverySummary()
		v.PostOffices = s.Result.Offices
	case models.KindAPIError, models.KindTransportError:
		v.Status = s.Result.Message
	}
	return v
}
