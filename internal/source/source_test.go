package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/ibportal/internal/core"
	_ "github.com/JonMunkholm/ibportal/internal/core/tables"
)

func TestStatic_EveryRegisteredDatasetLoads(t *testing.T) {
	src := NewStatic()
	for _, table := range core.All() {
		t.Run(table.Info.Key, func(t *testing.T) {
			rows, err := src.Rows(context.Background(), table.Info.Dataset)
			if err != nil {
				t.Fatalf("Rows(%q): %v", table.Info.Dataset, err)
			}
			if len(rows) == 0 {
				t.Fatal("dataset is empty")
			}
			for _, col := range table.Columns {
				if _, ok := rows[0][col.Key]; !ok {
					t.Errorf("first row has no %q field", col.Key)
				}
			}
		})
	}
}

func TestStatic_NumbersStayExact(t *testing.T) {
	src := NewStaticFS(fstest.MapFS{
		"t.json": {Data: []byte(`[{"amount": 12345678901234567.25, "name": "x"}]`)},
	})
	rows, err := src.Rows(context.Background(), "t")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if got := core.Stringify(rows[0]["amount"]); got != "12345678901234567.25" {
		t.Errorf("amount = %q", got)
	}
}

func TestStatic_Errors(t *testing.T) {
	src := NewStaticFS(fstest.MapFS{
		"bad.json": {Data: []byte(`{not json`)},
	})
	tests := []struct {
		dataset  string
		wantCode string
	}{
		{"missing", "SRC004"},
		{"../etc/passwd", "SRC004"},
		{"bad", "SRC005"},
	}
	for _, tt := range tests {
		t.Run(tt.dataset, func(t *testing.T) {
			_, err := src.Rows(context.Background(), tt.dataset)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := core.MapError(err).Code; code != tt.wantCode {
				t.Errorf("code = %q, want %q (err: %v)", code, tt.wantCode, err)
			}
		})
	}
}

func newAPIServer(t *testing.T, status int, body any) (*httptest.Server, *http.Request) {
	t.Helper()
	var seen http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = *r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if s, ok := body.(string); ok {
			w.Write([]byte(s))
			return
		}
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestAPI_Success(t *testing.T) {
	srv, seen := newAPIServer(t, http.StatusOK, map[string]any{
		"success": true,
		"data":    []map[string]any{{"name": "Ann", "lots": 1.5}, {"name": "Bob", "lots": 2}},
	})
	api, err := NewAPI(srv.URL+"/v1/", "s3cret", 0)
	if err != nil {
		t.Fatalf("NewAPI: %v", err)
	}
	rows, err := api.Rows(context.Background(), "ib/commissions")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}

	if seen.URL.Path != "/v1/ib/commissions" {
		t.Errorf("path = %q", seen.URL.Path)
	}
	if got := seen.Header.Get("Authorization"); got != "Bearer s3cret" {
		t.Errorf("Authorization = %q", got)
	}
	got := []string{core.Stringify(rows[0]["lots"]), core.Stringify(rows[1]["name"])}
	if diff := cmp.Diff([]string{"1.5", "Bob"}, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestAPI_NoTokenSendsNoAuthorization(t *testing.T) {
	srv, seen := newAPIServer(t, http.StatusOK, map[string]any{"success": true, "data": nil})
	api, err := NewAPI(srv.URL, "", 0)
	if err != nil {
		t.Fatalf("NewAPI: %v", err)
	}
	rows, err := api.Rows(context.Background(), "admin/kyc")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
	if got := seen.Header.Get("Authorization"); got != "" {
		t.Errorf("Authorization = %q, want empty", got)
	}
}

func TestAPI_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     any
		wantCode string
		wantIs   error
	}{
		{"success false", http.StatusOK, map[string]any{"success": false, "message": "IB not linked"}, "SRC001", ErrBackendRejected},
		{"server error", http.StatusInternalServerError, "oops", "SRC001", ErrBackendRejected},
		{"not found", http.StatusNotFound, "", "SRC004", ErrDatasetNotFound},
		{"malformed", http.StatusOK, "[1,2", "SRC005", nil},
		{"data not rows", http.StatusOK, map[string]any{"success": true, "data": "nope"}, "SRC005", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newAPIServer(t, tt.status, tt.body)
			api, err := NewAPI(srv.URL, "", 0)
			if err != nil {
				t.Fatalf("NewAPI: %v", err)
			}
			_, err = api.Rows(context.Background(), "ib/clients")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("err = %v, want %v", err, tt.wantIs)
			}
			if code := core.MapError(err).Code; code != tt.wantCode {
				t.Errorf("code = %q, want %q (err: %v)", code, tt.wantCode, err)
			}
		})
	}
}

func TestAPI_RejectedMessageIsCarried(t *testing.T) {
	srv, _ := newAPIServer(t, http.StatusOK, map[string]any{"success": false, "message": "IB not linked"})
	api, _ := NewAPI(srv.URL, "", 0)
	_, err := api.Rows(context.Background(), "ib/clients")
	if err == nil || err.Error() != "backend rejected request: IB not linked" {
		t.Errorf("err = %v", err)
	}
}

func TestNewAPI_InvalidBase(t *testing.T) {
	if _, err := NewAPI("ftp://example.com", "", 0); err == nil {
		t.Error("expected error for non-http scheme")
	}
}

func TestOpen_Selection(t *testing.T) {
	src, err := Open(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()
	if src.Name() != "static" {
		t.Errorf("Name = %q, want static", src.Name())
	}

	src, err = Open(context.Background(), Options{APIBaseURL: "http://portal.invalid", DatabaseURL: "postgres://ignored"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer src.Close()
	if src.Name() != "api" {
		t.Errorf("Name = %q, want api", src.Name())
	}
}

func TestDatasetIdent(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"ib/commissions", `"ib"."commissions"`, false},
		{"accounts", `"accounts"`, false},
		{`we"ird`, `"we""ird"`, false},
		{"a/b/c", "", true},
		{"a/", "", true},
	}
	for _, tt := range tests {
		got, err := datasetIdent(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("datasetIdent(%q) = %q, %v", tt.in, got, err)
		}
	}
}

// TestPostgres_Rows runs against a live database when TEST_DATABASE_URL is set.
func TestPostgres_Rows(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pg, err := NewPostgres(ctx, Options{DatabaseURL: url})
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	defer pg.Close()

	rows, err := pg.Rows(ctx, "pg_catalog/pg_namespace")
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) == 0 {
		t.Error("pg_namespace returned no rows")
	}

	if _, err := pg.Rows(ctx, "no_such_table"); !errors.Is(err, ErrDatasetNotFound) {
		t.Errorf("missing table err = %v", err)
	}
}
