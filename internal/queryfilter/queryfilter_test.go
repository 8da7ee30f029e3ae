package queryfilter

import (
	"testing"

	"gorm.io/gorm"

	"github.com/urbanatlas/urban-backend/internal/hierarchy"
)

func int64Ptr(v int64) *int64 { return &v }

func TestFilterActivation(t *testing.T) {
	typeID := int64(5)
	cases := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "eq_set", filter: Eq("type_id", &typeID), want: true},
		{name: "eq_nil", filter: Eq[int64]("type_id", nil), want: false},
		{name: "ilike_set", filter: ILike("name", "park"), want: true},
		{name: "ilike_empty", filter: ILike("name", ""), want: false},
		{name: "in_set", filter: In("id", []int64{1, 2}), want: true},
		{name: "in_empty", filter: In("id", []int64(nil)), want: false},
		{
			name:   "recursive_set",
			filter: Recursive("function_id", int64Ptr(3), hierarchy.TableSpec{Table: "urban_functions", IDColumn: "urban_function_id"}),
			want:   true,
		},
		{
			name:   "recursive_nil",
			filter: Recursive("function_id", nil, hierarchy.TableSpec{Table: "urban_functions", IDColumn: "urban_function_id"}),
			want:   false,
		},
		{name: "custom_set", filter: Custom(func(q *gorm.DB) *gorm.DB { return q }), want: true},
		{name: "custom_nil", filter: Custom(nil), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Active(); got != tc.want {
				t.Fatalf("Active(): want=%v got=%v", tc.want, got)
			}
		})
	}
}

func TestApplyWithoutActiveFiltersIsIdentity(t *testing.T) {
	// The query must pass through untouched: no filter may run, so even a
	// nil query is safe here.
	var query *gorm.DB

	got := Apply(query,
		Eq[int64]("type_id", nil),
		ILike("name", ""),
		In("id", []int64{}),
		Recursive("function_id", nil, hierarchy.TableSpec{Table: "t", IDColumn: "id"}),
	)
	if got != query {
		t.Fatalf("Apply with inactive filters must return the original query")
	}
}
