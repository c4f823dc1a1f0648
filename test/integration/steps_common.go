package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/doodlesbykumbi/jobtracker/pkg/model"
	gormstore "github.com/doodlesbykumbi/jobtracker/pkg/server/store/gorm"
)

// StepsContext holds state shared between the steps of one scenario
type StepsContext struct {
	tc       *TestContext
	instance *ServerInstance

	response     *http.Response
	responseBody []byte

	access          string
	refresh         string
	previousRefresh string
	googleToken     string
	lastID          int64
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	return &StepsContext{tc: tc}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		if err := s.tc.Reset(); err != nil {
			return ctx, fmt.Errorf("failed to reset database: %w", err)
		}
		instance, err := StartServer(s.tc, DefaultServerConfig())
		if err != nil {
			return ctx, err
		}
		s.instance = instance
		return ctx, nil
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		if s.instance != nil {
			s.instance.Stop()
		}
		return ctx, nil
	})

	// Background steps
	sc.Step(`^a job tracker server is running$`, s.aJobTrackerServerIsRunning)
	sc.Step(`^a user "([^"]*)" with password "([^"]*)" exists$`, s.aUserExists)
	sc.Step(`^an admin "([^"]*)" with password "([^"]*)" exists$`, s.anAdminExists)

	// Authentication steps
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, s.iLogInAs)
	sc.Step(`^I am logged in as "([^"]*)" with password "([^"]*)"$`, s.iAmLoggedInAs)
	sc.Step(`^I refresh my token$`, s.iRefreshMyToken)
	sc.Step(`^I refresh with my previous refresh token$`, s.iRefreshWithMyPreviousRefreshToken)
	sc.Step(`^Google signs an ID token for "([^"]*)" with audience "([^"]*)"$`, s.googleSignsAnIDTokenFor)
	sc.Step(`^Google signs an ID token for "([^"]*)"$`, func(email string) error {
		return s.googleSignsAnIDTokenFor(email, FakeGoogleClientID)
	})
	sc.Step(`^I log in with Google at "([^"]*)"$`, s.iLogInWithGoogleAt)

	// Application steps
	sc.Step(`^I create an application with:$`, s.iCreateAnApplicationWith)
	sc.Step(`^"([^"]*)" has an application at "([^"]*)" with status "([^"]*)" applied (\d+) days ago$`, s.userHasAnApplication)
	sc.Step(`^I send a (GET|POST|PUT|PATCH|DELETE) request to "([^"]*)"$`, s.iSendARequestTo)
	sc.Step(`^I send a (GET|POST|PUT|PATCH|DELETE) request to "([^"]*)" with:$`, s.iSendARequestWith)

	// Response steps
	sc.Step(`^the response status should be (\d+)$`, s.theResponseStatusShouldBe)
	sc.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, s.theResponseFieldShouldBe)
	sc.Step(`^the response field "([^"]*)" should be null$`, s.theResponseFieldShouldBeNull)
	sc.Step(`^the response should contain (\d+) results?$`, s.theResponseShouldContainResults)
	sc.Step(`^the response should not contain "([^"]*)"$`, s.theResponseShouldNotContain)

	// Database steps
	sc.Step(`^the application should have (\d+) audit records?$`, s.theApplicationShouldHaveAuditRecords)
	sc.Step(`^there should be (\d+) audit records? in the database$`, s.thereShouldBeAuditRecords)
	sc.Step(`^user "([^"]*)" should exist$`, s.userShouldExist)
	sc.Step(`^no user "([^"]*)" should exist$`, s.noUserShouldExist)
}

func (s *StepsContext) aJobTrackerServerIsRunning() error {
	if s.instance == nil {
		return fmt.Errorf("server was not started")
	}
	return nil
}

func (s *StepsContext) createUser(username, password string, role model.Role) error {
	u := &model.User{
		Username:   username,
		Email:      username + "@example.com",
		Role:       role,
		IsActive:   true,
		DateJoined: time.Now(),
	}
	if err := u.SetPassword(password); err != nil {
		return err
	}
	return gormstore.NewUsersStore(s.tc.DB).CreateUser(context.Background(), u)
}

func (s *StepsContext) aUserExists(username, password string) error {
	return s.createUser(username, password, model.RoleUser)
}

func (s *StepsContext) anAdminExists(username, password string) error {
	return s.createUser(username, password, model.RoleAdmin)
}

// request sends a request to the scenario's server and keeps the response.
// {id} in path is replaced by the id of the last created application.
func (s *StepsContext) request(method, path, body, token string) error {
	path = strings.ReplaceAll(path, "{id}", strconv.FormatInt(s.lastID, 10))

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, s.instance.ServerURL+path, reader)
	if err != nil {
		return err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	s.response = resp
	s.responseBody, err = io.ReadAll(resp.Body)
	return err
}

func (s *StepsContext) keepPair() error {
	if s.response.StatusCode != http.StatusOK {
		return nil
	}
	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	if err := json.Unmarshal(s.responseBody, &pair); err != nil {
		return err
	}
	s.previousRefresh = s.refresh
	s.access, s.refresh = pair.Access, pair.Refresh
	return nil
}

func (s *StepsContext) iLogInAs(username, password string) error {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	if err := s.request("POST", "/api/token/", string(body), ""); err != nil {
		return err
	}
	return s.keepPair()
}

func (s *StepsContext) iAmLoggedInAs(username, password string) error {
	if err := s.iLogInAs(username, password); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with %d: %s", s.response.StatusCode, s.responseBody)
	}
	return nil
}

func (s *StepsContext) iRefreshMyToken() error {
	body, _ := json.Marshal(map[string]string{"refresh": s.refresh})
	if err := s.request("POST", "/api/token/refresh/", string(body), ""); err != nil {
		return err
	}
	return s.keepPair()
}

func (s *StepsContext) iRefreshWithMyPreviousRefreshToken() error {
	if s.previousRefresh == "" {
		return fmt.Errorf("no previous refresh token")
	}
	body, _ := json.Marshal(map[string]string{"refresh": s.previousRefresh})
	return s.request("POST", "/api/token/refresh/", string(body), "")
}

func (s *StepsContext) iCreateAnApplicationWith(doc *godog.DocString) error {
	if err := s.request("POST", "/applications/", doc.Content, s.access); err != nil {
		return err
	}
	if s.response.StatusCode != http.StatusCreated {
		return fmt.Errorf("expected 201 creating application, got %d: %s", s.response.StatusCode, s.responseBody)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(s.responseBody, &created); err != nil {
		return err
	}
	s.lastID = created.ID
	return nil
}

// userHasAnApplication inserts an application directly so its applied date
// can lie in the past.
func (s *StepsContext) userHasAnApplication(username, company, status string, daysAgo int) error {
	var u model.User
	if err := s.tc.DB.Where("username = ?", username).First(&u).Error; err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}
	st, err := model.PipelineStatusString(status)
	if err != nil {
		return err
	}
	applied := model.DateOf(time.Now().UTC().AddDate(0, 0, -daysAgo))
	app := &model.JobApplication{
		UserID:        u.ID,
		CompanyName:   company,
		Position:      "Engineer",
		AppliedDate:   &applied,
		CurrentStatus: st,
	}
	if err := s.tc.DB.Create(app).Error; err != nil {
		return err
	}
	s.lastID = app.ID
	return nil
}

func (s *StepsContext) iSendARequestTo(method, path string) error {
	return s.request(method, path, "", s.access)
}

func (s *StepsContext) iSendARequestWith(method, path string, doc *godog.DocString) error {
	return s.request(method, path, doc.Content, s.access)
}

func (s *StepsContext) theResponseStatusShouldBe(expected int) error {
	if s.response == nil {
		return fmt.Errorf("no response received")
	}
	if s.response.StatusCode != expected {
		return fmt.Errorf("expected status %d, got %d: %s", expected, s.response.StatusCode, s.responseBody)
	}
	return nil
}

// lookup walks a dotted path such as "results.0.company_name" through the
// decoded response body.
func (s *StepsContext) lookup(path string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(s.responseBody, &v); err != nil {
		return nil, fmt.Errorf("response is not JSON: %s", s.responseBody)
	}
	for _, part := range strings.Split(path, ".") {
		switch node := v.(type) {
		case map[string]interface{}:
			next, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found in %s", path, s.responseBody)
			}
			v = next
		case []interface{}:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("index %q out of range in %s", part, path)
			}
			v = node[i]
		default:
			return nil, fmt.Errorf("cannot descend into %q of %s", part, path)
		}
	}
	return v, nil
}

func (s *StepsContext) theResponseFieldShouldBe(path, expected string) error {
	v, err := s.lookup(path)
	if err != nil {
		return err
	}
	if actual := fmt.Sprint(v); actual != expected {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, actual)
	}
	return nil
}

func (s *StepsContext) theResponseFieldShouldBeNull(path string) error {
	v, err := s.lookup(path)
	if err != nil {
		return err
	}
	if v != nil {
		return fmt.Errorf("expected %s to be null, got %v", path, v)
	}
	return nil
}

func (s *StepsContext) theResponseShouldContainResults(expected int) error {
	v, err := s.lookup("results")
	if err != nil {
		return err
	}
	results, ok := v.([]interface{})
	if !ok {
		return fmt.Errorf("results is not a list")
	}
	if len(results) != expected {
		return fmt.Errorf("expected %d results, got %d: %s", expected, len(results), s.responseBody)
	}
	return nil
}

func (s *StepsContext) theResponseShouldNotContain(text string) error {
	if bytes.Contains(s.responseBody, []byte(text)) {
		return fmt.Errorf("response unexpectedly contains %q: %s", text, s.responseBody)
	}
	return nil
}

func (s *StepsContext) countAudits(where string, args ...interface{}) (int64, error) {
	var n int64
	err := s.tc.DB.Model(&model.ApplicationStatusAudit{}).Where(where, args...).Count(&n).Error
	return n, err
}

func (s *StepsContext) theApplicationShouldHaveAuditRecords(expected int) error {
	n, err := s.countAudits("application_id = ?", s.lastID)
	if err != nil {
		return err
	}
	if n != int64(expected) {
		return fmt.Errorf("expected %d audit records for application %d, got %d", expected, s.lastID, n)
	}
	return nil
}

func (s *StepsContext) thereShouldBeAuditRecords(expected int) error {
	n, err := s.countAudits("1 = 1")
	if err != nil {
		return err
	}
	if n != int64(expected) {
		return fmt.Errorf("expected %d audit records, got %d", expected, n)
	}
	return nil
}

func (s *StepsContext) countUsers(username string) (int64, error) {
	var n int64
	err := s.tc.DB.Model(&model.User{}).Where("username = ?", username).Count(&n).Error
	return n, err
}

func (s *StepsContext) userShouldExist(username string) error {
	n, err := s.countUsers(username)
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("expected user %q to exist", username)
	}
	return nil
}

func (s *StepsContext) noUserShouldExist(username string) error {
	n, err := s.countUsers(username)
	if err != nil {
		return err
	}
	if n != 0 {
		return fmt.Errorf("expected no user %q, found %d", username, n)
	}
	return nil
}
