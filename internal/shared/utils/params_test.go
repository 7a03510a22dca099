package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func filterContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParseIDFilter(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    IDFilter
		wantErr bool
	}{
		{name: "absent param is unset", query: "", want: IDFilter{Kind: IDFilterUnset}},
		{name: "None literal", query: "author_id=None", want: IDFilter{Kind: IDFilterNone}},
		{name: "Any literal", query: "author_id=Any", want: IDFilter{Kind: IDFilterAny}},
		{name: "numeric id", query: "author_id=42", want: IDFilter{Kind: IDFilterID, ID: 42}},
		{name: "lowercase none is not a literal", query: "author_id=none", wantErr: true},
		{name: "zero id rejected", query: "author_id=0", wantErr: true},
		{name: "garbage rejected", query: "author_id=abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDFilter(filterContext(t, tt.query), "author_id")
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseIDFilter(%q) expected error, got %+v", tt.query, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIDFilter(%q) error = %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("ParseIDFilter(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}
