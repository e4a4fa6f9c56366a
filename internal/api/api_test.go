package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"TripBroker/internal/engine"
	"TripBroker/internal/model"
)

type fakeSource struct {
	status  engine.Status
	err     error
	history []bool
}

func (f *fakeSource) Snapshot(_ context.Context, history bool) (engine.Status, error) {
	f.history = append(f.history, history)
	return f.status, f.err
}

func newSource() *fakeSource {
	s := engine.Status{GameID: "g-1", Running: true, HotelMode: "normal"}
	for id := model.AuctionID(0); id < model.NumAuctions; id++ {
		s.Auctions = append(s.Auctions, engine.AuctionStatus{ID: id, Name: id.String()})
	}
	return &fakeSource{status: s}
}

func serve(t *testing.T, src StatusSource, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	NewRouter(src, nil).ServeHTTP(w, req)
	return w
}

func TestStatus(t *testing.T) {
	src := newSource()
	w := serve(t, src, "/api/v1/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d", w.Code)
	}
	var got engine.Status
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.GameID != "g-1" || !got.Running || len(got.Auctions) != model.NumAuctions {
		t.Errorf("body = %+v", got)
	}
	if len(src.history) != 1 || src.history[0] {
		t.Errorf("snapshot history flags = %v", src.history)
	}
}

func TestAuction(t *testing.T) {
	tests := []struct {
		path string
		code int
	}{
		{"/api/v1/auctions/12", http.StatusOK},
		{"/api/v1/auctions/28", http.StatusBadRequest},
		{"/api/v1/auctions/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			src := newSource()
			w := serve(t, src, tt.path)
			if w.Code != tt.code {
				t.Fatalf("status code = %d, want %d", w.Code, tt.code)
			}
			if tt.code != http.StatusOK {
				return
			}
			var got engine.AuctionStatus
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got.ID != 12 || !src.history[0] {
				t.Errorf("auction = %+v history = %v", got, src.history)
			}
		})
	}
}

func TestReportAndErrors(t *testing.T) {
	src := newSource()
	if w := serve(t, src, "/api/v1/report"); w.Code != http.StatusNotFound {
		t.Errorf("report before game end: %d", w.Code)
	}
	src.status.Report = &model.GameReport{GameID: "g-1"}
	if w := serve(t, src, "/api/v1/report"); w.Code != http.StatusOK {
		t.Errorf("report: %d", w.Code)
	}

	src.err = engine.ErrStopped
	if w := serve(t, src, "/api/v1/status"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("stopped agent: %d", w.Code)
	}
	src.err = context.DeadlineExceeded
	if w := serve(t, src, "/api/v1/status"); w.Code != http.StatusGatewayTimeout {
		t.Errorf("timed out snapshot: %d", w.Code)
	}
	if w := serve(t, src, "/health"); w.Code != http.StatusOK {
		t.Errorf("health: %d", w.Code)
	}
}
