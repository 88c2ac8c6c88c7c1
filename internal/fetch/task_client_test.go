package fetch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dqportal/internal/schema"
)

func testSchema() schema.Schema {
	return schema.Schema{
		VariableInfo: map[string]schema.Variable{
			"biological_sex": {
				Class: "C1",
				ValueMapping: &schema.ValueMapping{
					Terms: map[string]schema.Term{"male": {TargetClass: "C2"}},
				},
			},
			"age_at_diagnosis": {Class: "C3"},
		},
	}
}

func TestTaskClient_CollaborationDescriptives(t *testing.T) {
	polls := 0
	var createdTask taskRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/token/user":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
		case r.URL.Path == "/api/task" && r.Method == http.MethodPost:
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("Authorization = %q", got)
			}
			json.NewDecoder(r.Body).Decode(&createdTask)
			json.NewEncoder(w).Encode(map[string]int{"id": 7})
		case r.URL.Path == "/api/task/7/status":
			polls++
			status := "active"
			if polls > 1 {
				status = "completed"
			}
			json.NewEncoder(w).Encode(map[string]string{"status": status})
		case r.URL.Path == "/api/result":
			if got := r.URL.Query().Get("task_id"); got != "7" {
				t.Errorf("task_id = %q", got)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"result": `[{"organisation":"OrgA"}]`}},
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewTaskClient(Config{
		ServerURL:       server.URL,
		Username:        "portal",
		Password:        "secret",
		CollaborationID: 3,
		OrganisationID:  12,
		PollInterval:    time.Millisecond,
	}, testSchema())

	payload, err := client.CollaborationDescriptives(context.Background())
	if err != nil {
		t.Fatalf("CollaborationDescriptives() error = %v", err)
	}
	if string(payload) != `[{"organisation":"OrgA"}]` {
		t.Errorf("payload = %s", payload)
	}
	if polls < 2 {
		t.Errorf("polls = %d, want at least 2", polls)
	}
	if createdTask.CollaborationID != 3 {
		t.Errorf("CollaborationID = %d, want 3", createdTask.CollaborationID)
	}
	if len(createdTask.Organizations) != 1 || createdTask.Organizations[0]["id"] != 12 {
		t.Errorf("Organizations = %v", createdTask.Organizations)
	}
}

func TestTaskClient_StatisticsTaskInput(t *testing.T) {
	var createdTask taskRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/token/user":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
		case r.URL.Path == "/api/task":
			json.NewDecoder(r.Body).Decode(&createdTask)
			json.NewEncoder(w).Encode(map[string]int{"id": 1})
		case r.URL.Path == "/api/task/1/status":
			json.NewEncoder(w).Encode(map[string]string{"status": "completed"})
		case r.URL.Path == "/api/result":
			json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"result": `[]`}},
			})
		}
	}))
	defer server.Close()

	client := NewTaskClient(Config{ServerURL: server.URL, PollInterval: time.Millisecond}, testSchema())
	if _, err := client.DescriptiveStatistics(context.Background()); err != nil {
		t.Fatalf("DescriptiveStatistics() error = %v", err)
	}

	kwargs, ok := createdTask.Input["kwargs"].(map[string]any)
	if !ok {
		t.Fatalf("task input carried no kwargs: %v", createdTask.Input)
	}
	variables, ok := kwargs["variables_to_describe"].(map[string]any)
	if !ok {
		t.Fatalf("kwargs carried no variables_to_describe: %v", kwargs)
	}
	sex, _ := variables["biological_sex"].(map[string]any)
	if sex["datatype"] != "categorical" {
		t.Errorf("biological_sex datatype = %v, want categorical", sex["datatype"])
	}
	age, _ := variables["age_at_diagnosis"].(map[string]any)
	if age["datatype"] != "numerical" {
		t.Errorf("age_at_diagnosis datatype = %v, want numerical", age["datatype"])
	}
}

func TestTaskClient_AuthFailureServesPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewTaskClient(Config{ServerURL: server.URL}, testSchema())

	payload, err := client.CollaborationDescriptives(context.Background())
	if err != nil {
		t.Fatalf("CollaborationDescriptives() error = %v, want placeholder payload", err)
	}
	if !strings.Contains(string(payload), "Not available") {
		t.Errorf("payload = %s, want the Not available placeholder", payload)
	}

	payload, err = client.DescriptiveStatistics(context.Background())
	if err != nil {
		t.Fatalf("DescriptiveStatistics() error = %v, want placeholder payload", err)
	}
	if !strings.Contains(string(payload), "partial_results") {
		t.Errorf("payload = %s, want the empty partials placeholder", payload)
	}
}

func TestTaskClient_FailedTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/user":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
		case "/api/task":
			json.NewEncoder(w).Encode(map[string]int{"id": 2})
		case "/api/task/2/status":
			json.NewEncoder(w).Encode(map[string]string{"status": "crashed"})
		}
	}))
	defer server.Close()

	client := NewTaskClient(Config{ServerURL: server.URL, PollInterval: time.Millisecond}, testSchema())

	// A crashed task degrades to the placeholder like an auth failure.
	payload, err := client.CollaborationDescriptives(context.Background())
	if err != nil {
		t.Fatalf("CollaborationDescriptives() error = %v", err)
	}
	if !strings.Contains(string(payload), "Not available") {
		t.Errorf("payload = %s, want the Not available placeholder", payload)
	}
}
