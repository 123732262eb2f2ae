// Package apidoc describes the JSON API as an OpenAPI 3 document.
package apidoc

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"pincheck/internal/pincode/models"
	"pincheck/pkg/domain"
)

const (
	schemaValidation = "ValidationResult"
	schemaPostOffice = "PostOffice"
	schemaLookup     = "LookupResult"
	schemaError      = "Error"
	schemaWidgetView = "WidgetView"
)

// Build returns the API description for the given server version.
func Build(version string) *openapi3.T {
	// Schemas that reference others are added after their targets.
	schemas := openapi3.Schemas{
		schemaValidation: validationSchema(),
		schemaPostOffice: postOfficeSchema(),
		schemaError:      errorSchema(),
	}
	schemas[schemaLookup] = lookupSchema(schemas)
	schemas[schemaWidgetView] = widgetViewSchema(schemas)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "pincheck",
			Version:     version,
			Description: "Validates Indian postal codes and lists the post offices that serve them.",
		},
		Paths:      &openapi3.Paths{},
		Components: &openapi3.Components{Schemas: schemas},
	}
	respond := func(op *openapi3.Operation, status int, description, schema string) {
		desc := description
		op.Responses.Set(fmt.Sprint(status), &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content: openapi3.Content{
					"application/json": &openapi3.MediaType{Schema: ref(schemas, schema)},
				},
			},
		})
	}

	lookup := &openapi3.Operation{
		OperationID: "lookupPincode",
		Summary:     "Look up the post offices for a pincode",
		Parameters: openapi3.Parameters{
			pathParam("pincode", pincodeSchema()),
		},
		Responses: &openapi3.Responses{},
	}
	respond(lookup, http.StatusOK, "Lookup outcome; upstream rejections are reported with kind api_error", schemaLookup)
	respond(lookup, http.StatusBadRequest, "The pincode failed validation", schemaError)
	respond(lookup, http.StatusBadGateway, "The postal API could not be reached; kind is transport_error", schemaLookup)
	doc.Paths.Set("/api/v1/pincodes/{pincode}", &openapi3.PathItem{Get: lookup})

	validate := &openapi3.Operation{
		OperationID: "validatePincode",
		Summary:     "Validate a raw pincode value",
		RequestBody: &openapi3.RequestBodyRef{
			Value: &openapi3.RequestBody{
				Required: true,
				Content: openapi3.Content{
					"application/json": &openapi3.MediaType{
						Schema: objectSchema(map[string]*openapi3.SchemaRef{
							"pincode": stringSchema(""),
						}, "pincode"),
					},
				},
			},
		},
		Responses: &openapi3.Responses{},
	}
	respond(validate, http.StatusOK, "Validation verdict", schemaValidation)
	respond(validate, http.StatusBadRequest, "The request body is not JSON", schemaError)
	doc.Paths.Set("/api/v1/pincodes/validate", &openapi3.PathItem{Post: validate})

	view := &openapi3.Operation{
		OperationID: "getWidget",
		Summary:     "Current view of a widget instance",
		Description: "Send Accept: application/json for this representation; otherwise the status and results areas are returned as HTML.",
		Parameters: openapi3.Parameters{
			pathParam("id", &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type:   &openapi3.Types{openapi3.TypeString},
				Format: "uuid",
			}}),
		},
		Responses: &openapi3.Responses{},
	}
	respond(view, http.StatusOK, "Widget view", schemaWidgetView)
	respond(view, http.StatusNotFound, "Unknown or evicted widget", schemaError)
	doc.Paths.Set("/widgets/{id}", &openapi3.PathItem{Get: view})

	return doc
}

// Handler serves doc as JSON, or as YAML when format=yaml is requested.
func Handler(doc *openapi3.T) (http.HandlerFunc, error) {
	asJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal openapi json: %w", err)
	}
	// Round-trip through JSON so the YAML keeps the OpenAPI field names.
	var generic map[string]any
	if err := json.Unmarshal(asJSON, &generic); err != nil {
		return nil, fmt.Errorf("decode openapi json: %w", err)
	}
	asYAML, err := yaml.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi yaml: %w", err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") == "yaml" {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(asYAML)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(asJSON)
	}, nil
}

func pathParam(name string, schema *openapi3.SchemaRef) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: &openapi3.Parameter{
		Name:     name,
		In:       openapi3.ParameterInPath,
		Required: true,
		Schema:   schema,
	}}
}

// ref points at a component schema and carries its resolved value.
func ref(schemas openapi3.Schemas, name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name, Value: schemas[name].Value}
}

func pincodeSchema() *openapi3.SchemaRef {
	s := stringSchema(fmt.Sprintf("%d ASCII digits", domain.PincodeLength))
	s.Value.Pattern = fmt.Sprintf("^[0-9]{%d}$", domain.PincodeLength)
	return s
}

func stringSchema(description string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:        &openapi3.Types{openapi3.TypeString},
		Description: description,
	}}
}

func stringArraySchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:  &openapi3.Types{openapi3.TypeArray},
		Items: stringSchema(""),
	}}
}

func boolSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{openapi3.TypeBoolean}}}
}

func objectSchema(props map[string]*openapi3.SchemaRef, required ...string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:       &openapi3.Types{openapi3.TypeObject},
		Properties: props,
		Required:   required,
	}}
}

func validationSchema() *openapi3.SchemaRef {
	return objectSchema(map[string]*openapi3.SchemaRef{
		"is_valid": boolSchema(),
		"message":  stringSchema("Empty when valid"),
	}, "is_valid", "message")
}

func postOfficeSchema() *openapi3.SchemaRef {
	return objectSchema(map[string]*openapi3.SchemaRef{
		"name":            stringSchema(""),
		"delivery_status": stringSchema(`"` + models.DeliveryStatusDelivery + `" for delivery offices`),
		"branch_type":     stringSchema(""),
		"district":        stringSchema(""),
		"state":           stringSchema(""),
	}, "name", "delivery_status")
}

func lookupSchema(schemas openapi3.Schemas) *openapi3.SchemaRef {
	kind := stringSchema("Result variant")
	kind.Value.Enum = []any{
		string(models.KindSuccess),
		string(models.KindAPIError),
		string(models.KindTransportError),
	}
	checkedAt := stringSchema("")
	checkedAt.Value.Format = "date-time"

	return objectSchema(map[string]*openapi3.SchemaRef{
		"kind":         kind,
		"pincode":      stringSchema(""),
		"post_offices": stringArraySchema(),
		"deliverable":  stringArraySchema(),
		"offices": {Value: &openapi3.Schema{
			Type:  &openapi3.Types{openapi3.TypeArray},
			Items: ref(schemas, schemaPostOffice),
		}},
		"message":    stringSchema("Set for api_error and transport_error"),
		"checked_at": checkedAt,
	}, "kind", "pincode")
}

func errorSchema() *openapi3.SchemaRef {
	return objectSchema(map[string]*openapi3.SchemaRef{
		"error":             stringSchema("Machine readable code"),
		"error_description": stringSchema(""),
	}, "error")
}

func widgetViewSchema(schemas openapi3.Schemas) *openapi3.SchemaRef {
	sequence := &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:   &openapi3.Types{openapi3.TypeInteger},
		Format: "int64",
	}}
	return objectSchema(map[string]*openapi3.SchemaRef{
		"widget_id":     stringSchema(""),
		"state":         stringSchema("idle, validating, invalid, valid, loading, displayed or failed"),
		"outcome":       stringSchema("State the last lookup settled in"),
		"input":         stringSchema(""),
		"invalid":       boolSchema(),
		"error_message": stringSchema(""),
		"loading":       boolSchema(),
		"status":        stringSchema(""),
		"results":       stringSchema(""),
		"delivery":      stringSchema(""),
		"post_offices": {Value: &openapi3.Schema{
			Type:  &openapi3.Types{openapi3.TypeArray},
			Items: ref(schemas, schemaPostOffice),
		}},
		"pincode":  stringSchema(""),
		"sequence": sequence,
	}, "widget_id", "state")
}
