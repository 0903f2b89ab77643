package internships_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/morganstate-cs/morganai/pkg/internships"
)

func TestGroupMeFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/groups/g42/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("token"); got != "tok" {
			t.Errorf("token = %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "100" {
			t.Errorf("limit = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":{"messages":[
			{"id":"10","text":"Summer internship at Acme","created_at":1700000000},
			{"id":"11","text":"","created_at":1700000100},
			{"id":"12","text":"Career fair Tuesday","created_at":1700000200}
		]}}`))
	}))
	defer srv.Close()

	g := internships.NewGroupMe("tok", "g42", internships.WithGroupMeBaseURL(srv.URL))
	msgs, err := g.Fetch(context.Background(), 100)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// The empty attachment-only message is dropped.
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].ID != "10" || msgs[0].Text != "Summer internship at Acme" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if got := msgs[0].CreatedAt.Unix(); got != 1700000000 {
		t.Errorf("created at = %d, want 1700000000", got)
	}
	if msgs[1].Source != "GroupMe" {
		t.Errorf("source = %q, want GroupMe", msgs[1].Source)
	}
}

func TestGroupMeFetchErrors(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		g := internships.NewGroupMe("", "")
		if _, err := g.Fetch(context.Background(), 10); !errors.Is(err, internships.ErrNotConfigured) {
			t.Errorf("err = %v, want ErrNotConfigured", err)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		g := internships.NewGroupMe("tok", "g42", internships.WithGroupMeBaseURL(srv.URL))
		if _, err := g.Fetch(context.Background(), 10); err == nil {
			t.Error("Fetch succeeded against a failing API")
		}
	})
}
