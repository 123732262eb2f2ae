package e2e

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

var jsonHeaders = map[string]string{"Accept": "application/json"}

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Step(`^pincheck is running$`, tc.pincheckIsRunning)

	// Widget steps
	ctx.Step(`^I open the widget$`, tc.openWidget)
	ctx.Step(`^I type "([^"]*)"$`, tc.typeInput)
	ctx.Step(`^I submit "([^"]*)"$`, tc.submit)
	ctx.Step(`^I submit the form without scripts for "([^"]*)"$`, tc.submitPlainForm)
	ctx.Step(`^I wait for the lookup to finish$`, tc.waitForLookup)
	ctx.Step(`^I view widget "([^"]*)"$`, tc.viewWidget)

	// API steps
	ctx.Step(`^I look up pincode "([^"]*)"$`, tc.lookupPincode)
	ctx.Step(`^I validate "([^"]*)"$`, tc.validate)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, tc.responseStatusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, tc.responseFieldShouldEqual)
	ctx.Step(`^the response field "([^"]*)" should contain "([^"]*)"$`, tc.responseFieldShouldContain)
	ctx.Step(`^the response field "([^"]*)" should be empty$`, tc.responseFieldShouldBeEmpty)
	ctx.Step(`^the page should contain "([^"]*)"$`, tc.pageShouldContain)
}

func (tc *TestContext) pincheckIsRunning(ctx context.Context) error {
	if err := tc.GET("/", nil); err != nil {
		return err
	}
	if tc.GetLastResponseStatus() != 200 {
		return fmt.Errorf("pincheck not ready: status %d", tc.GetLastResponseStatus())
	}
	return nil
}

func (tc *TestContext) openWidget(ctx context.Context) error {
	if err := tc.GET("/", nil); err != nil {
		return err
	}
	tc.WidgetID = tc.widgetCookie()
	if tc.WidgetID == "" {
		return fmt.Errorf("no widget cookie in response")
	}
	return nil
}

func (tc *TestContext) typeInput(ctx context.Context, value string) error {
	return tc.POSTForm(tc.widgetPath("/input"), url.Values{"pincode": {value}}, jsonHeaders)
}

func (tc *TestContext) submit(ctx context.Context, value string) error {
	return tc.POSTForm(tc.widgetPath("/submit"), url.Values{"pincode": {value}}, jsonHeaders)
}

func (tc *TestContext) submitPlainForm(ctx context.Context, value string) error {
	return tc.POSTForm(tc.widgetPath("/submit"), url.Values{"pincode": {value}}, nil)
}

func (tc *TestContext) waitForLookup(ctx context.Context) error {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := tc.GET(tc.widgetPath(""), jsonHeaders); err != nil {
			return err
		}
		loading, err := tc.GetResponseField("loading")
		if err != nil {
			return err
		}
		if loading == false {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return fmt.Errorf("lookup still loading after 5s: %s", string(tc.LastResponseBody))
}

func (tc *TestContext) viewWidget(ctx context.Context, id string) error {
	return tc.GET("/widgets/"+id, jsonHeaders)
}

func (tc *TestContext) lookupPincode(ctx context.Context, pincode string) error {
	return tc.GET("/api/v1/pincodes/"+url.PathEscape(pincode), jsonHeaders)
}

func (tc *TestContext) validate(ctx context.Context, pincode string) error {
	return tc.POSTJSON("/api/v1/pincodes/validate", fmt.Sprintf(`{"pincode":%q}`, pincode))
}

func (tc *TestContext) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	actualStatus := tc.GetLastResponseStatus()
	if actualStatus != expectedStatus {
		return fmt.Errorf("expected status %d but got %d\nResponse: %s", expectedStatus, actualStatus, string(tc.LastResponseBody))
	}
	return nil
}

func (tc *TestContext) responseFieldShouldEqual(ctx context.Context, field, expected string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s to equal %q but got %q", field, expected, got)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldContain(ctx context.Context, field, expected string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); !strings.Contains(got, expected) {
		return fmt.Errorf("expected %s to contain %q but got %q", field, expected, got)
	}
	return nil
}

func (tc *TestContext) responseFieldShouldBeEmpty(ctx context.Context, field string) error {
	value, err := tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if value != "" {
		return fmt.Errorf("expected %s to be empty but got %v", field, value)
	}
	return nil
}

func (tc *TestContext) pageShouldContain(ctx context.Context, text string) error {
	if !strings.Contains(string(tc.LastResponseBody), text) {
		return fmt.Errorf("page does not contain %q", text)
	}
	return nil
}

func (tc *TestContext) widgetPath(suffix string) string {
	return "/widgets/" + tc.WidgetID + suffix
}
