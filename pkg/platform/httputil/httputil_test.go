package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "civiclink/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if body["error_description"] != "invalid input" {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeConflict, "issue already claimed"))

		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
		}
	})

	t.Run("uncoded error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: connection refused"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}

func TestParsePage(t *testing.T) {
	cases := []struct {
		query string
		want  Page
	}{
		{"", Page{Page: 1, Limit: 20}},
		{"?page=3&limit=10", Page{Page: 3, Limit: 10}},
		{"?page=0&limit=500", Page{Page: 1, Limit: 100}},
		{"?page=abc&limit=-2", Page{Page: 1, Limit: 20}},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/issues"+tc.query, nil)
		if got := ParsePage(r); got != tc.want {
			t.Fatalf("ParsePage(%q) = %+v, want %+v", tc.query, got, tc.want)
		}
	}
	if off := (Page{Page: 3, Limit: 10}).Offset(); off != 20 {
		t.Fatalf("expected offset 20, got %d", off)
	}
}

// gridRef rejects anything but a two-element array with a coded error.
type gridRef [2]float64

func (g *gridRef) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) != 2 {
		return dErrors.New(dErrors.CodeValidation, "grid reference must be [x, y]")
	}
	copy(g[:], pair)
	return nil
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Ref gridRef `json:"ref"`
	}
	decode := func(body string) error {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var p payload
		return DecodeJSON(r, &p)
	}

	t.Run("field validation error passes through", func(t *testing.T) {
		err := decode(`{"ref": [1]}`)
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			t.Fatalf("expected validation_error, got %v", err)
		}
		if err.Error() != "grid reference must be [x, y]" {
			t.Fatalf("expected the field message, got %q", err.Error())
		}
	})

	t.Run("malformed json is a generic bad request", func(t *testing.T) {
		err := decode(`{"ref":`)
		if !dErrors.HasCode(err, dErrors.CodeBadRequest) {
			t.Fatalf("expected bad_request, got %v", err)
		}
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		err := decode(`{"ref": [1, 2], "extra": true}`)
		if !dErrors.HasCode(err, dErrors.CodeBadRequest) {
			t.Fatalf("expected bad_request, got %v", err)
		}
	})

	t.Run("valid body", func(t *testing.T) {
		if err := decode(`{"ref": [1, 2]}`); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestStatusForRateLimited(t *testing.T) {
	if got := StatusFor(dErrors.CodeRateLimited); got != http.StatusTooManyRequests {
		t.Fatalf("expected %d, got %d", http.StatusTooManyRequests, got)
	}
}
