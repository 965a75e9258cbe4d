package semantic

import (
	"testing"

	"docindex/internal/apperr"
	"docindex/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	builderAdmin = model.UserContext{UserID: "A-1", OrganizationID: "A", Role: model.RoleAdmin}
	builderUser  = model.UserContext{UserID: "U", OrganizationID: "A", Role: model.RoleUser}
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name     string
		req      model.SemanticRequest
		user     model.UserContext
		want     []Condition
		wantKind *apperr.Kind
	}{
		{
			name: "non-admin with location gets org AND owner AND location",
			req:  model.SemanticRequest{Query: "housing repair rights", Location: "manchester"},
			user: builderUser,
			want: []Condition{
				{Field: FieldOrganizationID, Value: "A"},
				{Field: FieldOwnerUserID, Value: "U"},
				{Field: FieldLocation, Value: "manchester"},
			},
		},
		{
			name: "admin with no filters gets the lone tenant condition",
			req:  model.SemanticRequest{Query: "benefits"},
			user: builderAdmin,
			want: []Condition{{Field: FieldOrganizationID, Value: "A"}},
		},
		{
			name: "category appended after location",
			req:  model.SemanticRequest{Query: "debt", Location: "croydon", Category: "Legal"},
			user: builderAdmin,
			want: []Condition{
				{Field: FieldOrganizationID, Value: "A"},
				{Field: FieldLocation, Value: "croydon"},
				{Field: FieldCategory, Value: "Legal"},
			},
		},
		{
			name:     "blank query rejected",
			req:      model.SemanticRequest{Query: "   "},
			user:     builderUser,
			wantKind: kindPtr(apperr.KindValidation),
		},
		{
			name:     "max results above bound rejected",
			req:      model.SemanticRequest{Query: "q", MaxResults: 101},
			user:     builderUser,
			wantKind: kindPtr(apperr.KindValidation),
		},
		{
			name:     "incomplete context fails closed",
			req:      model.SemanticRequest{Query: "q"},
			user:     model.UserContext{UserID: "U"},
			wantKind: kindPtr(apperr.KindForbidden),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := BuildFilter(tt.req, tt.user)

			if tt.wantKind != nil {
				assert.True(t, apperr.Is(err, *tt.wantKind), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Conditions())
			// Tenant scope is always the first condition.
			assert.Equal(t, FieldOrganizationID, f.Conditions()[0].Field)
		})
	}
}

func TestFilterExpr(t *testing.T) {
	t.Run("single condition emitted directly", func(t *testing.T) {
		f, err := BuildFilter(model.SemanticRequest{Query: "q"}, builderAdmin)
		require.NoError(t, err)

		expr := f.Expr()
		cond, ok := expr.(Condition)
		require.True(t, ok, "expected bare condition, got %T", expr)
		assert.Equal(t, `organization_id=="A"`, cond.String())
	})

	t.Run("multiple conditions wrapped in an ordered conjunction", func(t *testing.T) {
		f, err := BuildFilter(model.SemanticRequest{Query: "housing repair rights", Location: "manchester"}, builderUser)
		require.NoError(t, err)

		expr := f.Expr()
		and, ok := expr.(And)
		require.True(t, ok, "expected conjunction, got %T", expr)
		assert.Equal(t, `AND(organization_id=="A", owner_user_id=="U", location=="manchester")`, and.String())
	})
}

func TestFilterWhere(t *testing.T) {
	f, err := BuildFilter(model.SemanticRequest{Query: "q", Location: "croydon"}, builderUser)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"organization_id": "A",
		"owner_user_id":   "U",
		"location":        "croydon",
	}, f.Where())

	assert.Nil(t, Filter{}.Where())
}

func TestEffectiveLimit(t *testing.T) {
	assert.Equal(t, model.DefaultSemanticResults, EffectiveLimit(model.SemanticRequest{}))
	assert.Equal(t, 20, EffectiveLimit(model.SemanticRequest{MaxResults: 20}))
}

func kindPtr(k apperr.Kind) *apperr.Kind { return &k }
