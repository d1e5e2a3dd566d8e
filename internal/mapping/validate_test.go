package mapping

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enricher/internal/diagnostic"
)

type testUser struct {
	Name  string
	Email string
}

type testItem struct {
	UserID   int
	UserName string
}

type testOrder struct {
	UserID    int
	UserName  string
	UserEmail string
	User      *testUser
	TagIDs    string
	TagNames  []string
	Items     []*testItem
	Extra     map[string]any
	Kind      string
	Label     string
}

func testTypes() map[string]reflect.Type {
	return map[string]reflect.Type{
		"order": reflect.TypeOf(testOrder{}),
		"item":  reflect.TypeOf(testItem{}),
	}
}

func codes(ds []diagnostic.Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Code)
	}

	return out
}

func TestValidate_ValidFile(t *testing.T) {
	f, err := Parse([]byte(ordersYAML))
	require.NoError(t, err)

	res := Validate(f, DefaultRegistries(nil), testTypes())
	assert.True(t, res.IsValid(), "unexpected errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)

	// without Go types only the syntax is checked
	res = Validate(f, DefaultRegistries(nil), nil)
	assert.True(t, res.IsValid())
}

func TestValidate_NilFile(t *testing.T) {
	res := Validate(nil, DefaultRegistries(nil), nil)
	assert.Equal(t, []string{"file_is_nil"}, codes(res.Errors))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantErr  string
		wantWarn string
	}{
		{
			name:    "duplicate type",
			yaml:    "types: [{name: order, assemble: [{namespace: users, props: Name}]}, {name: order}]",
			wantErr: "duplicate_type",
		},
		{
			name:    "empty type name",
			yaml:    "types: [{assemble: [{namespace: users}]}]",
			wantErr: "empty_type_name",
		},
		{
			name:     "empty type",
			yaml:     "types: [{name: order}]",
			wantWarn: "empty_type",
		},
		{
			name:    "unknown handler",
			yaml:    "types: [{name: order, assemble: [{key: UserID, namespace: users, handler: nope, props: Name:UserName}]}]",
			wantErr: "unknown_handler",
		},
		{
			name:    "unknown strategy",
			yaml:    "types: [{name: order, assemble: [{key: UserID, namespace: users, strategy: nope, props: Name:UserName}]}]",
			wantErr: "unknown_strategy",
		},
		{
			name:    "unknown key resolver",
			yaml:    "types: [{name: order, assemble: [{key: UserID, namespace: users, key_resolver: nope, props: Name:UserName}]}]",
			wantErr: "unknown_key_resolver",
		},
		{
			name:    "unknown key type",
			yaml:    "types: [{name: order, assemble: [{key: UserID, key_type: decimal, namespace: users, props: Name:UserName}]}]",
			wantErr: "unknown_key_type",
		},
		{
			name:    "unknown key field",
			yaml:    "types: [{name: order, assemble: [{key: Missing, namespace: users, props: Name:UserName}]}]",
			wantErr: "invalid_key",
		},
		{
			name:    "bad props",
			yaml:    "types: [{name: order, assemble: [{key: UserID, namespace: users, props: 'a:b:c'}]}]",
			wantErr: "invalid_props",
		},
		{
			name:    "unknown reference",
			yaml:    "types: [{name: order, assemble: [{key: UserID, namespace: users, props: Name:Nope}]}]",
			wantErr: "invalid_reference",
		},
		{
			name:    "unknown self-mapping source",
			yaml:    "types: [{name: order, assemble: [{props: Nope:Label}]}]",
			wantErr: "invalid_source",
		},
		{
			name:     "no props",
			yaml:     "types: [{name: order, assemble: [{key: UserID, namespace: users}]}]",
			wantWarn: "no_props",
		},
		{
			name:    "duplicate operation",
			yaml:    "types: [{name: order, assemble: [{key: UserID, namespace: users, props: Name:UserName}, {key: UserID, namespace: users, props: Email:UserEmail}]}]",
			wantErr: "duplicate_operation",
		},
		{
			name:    "bad condition",
			yaml:    "types: [{name: order, assemble: [{key: UserID, namespace: users, props: Name:UserName, condition: {kind: maybe, property: UserID}}]}]",
			wantErr: "invalid_condition",
		},
		{
			name:    "unknown nested type",
			yaml:    "types: [{name: order, disassemble: [{key: Items, type: nope}]}]",
			wantErr: "unknown_nested_type",
		},
		{
			name:    "unknown nested key",
			yaml:    "types: [{name: order, disassemble: [{key: Things, type: item}]}, {name: item, assemble: [{key: UserID, namespace: users, props: Name:UserName}]}]",
			wantErr: "invalid_key",
		},
		{
			name:    "unknown disassemble handler",
			yaml:    "types: [{name: order, disassemble: [{key: Items, handler: nope}]}]",
			wantErr: "unknown_handler",
		},
		{
			name:     "type property ignored",
			yaml:     "types: [{name: order, disassemble: [{key: Items, type: item, type_property: Kind}]}, {name: item, assemble: [{key: UserID, namespace: users, props: Name:UserName}]}]",
			wantWarn: "type_property_ignored",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)

			res := Validate(f, DefaultRegistries(nil), testTypes())

			if tt.wantErr != "" {
				assert.Contains(t, codes(res.Errors), tt.wantErr)
			} else {
				assert.Empty(t, res.Errors)
			}

			if tt.wantWarn != "" {
				assert.Contains(t, codes(res.Warnings), tt.wantWarn)
			}
		})
	}
}

func TestValidatePathAgainstType(t *testing.T) {
	orderType := reflect.TypeOf(testOrder{})

	tests := []struct {
		path    string
		wantErr bool
	}{
		{path: "UserID"},
		{path: "user_name"},
		{path: "User.Name"},
		{path: "Extra.anything.below"},
		{path: "User.Missing", wantErr: true},
		{path: "UserID.Value", wantErr: true},
		{path: "Nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := validatePathAgainstType(tt.path, orderType)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_SuggestsNames(t *testing.T) {
	f, err := Parse([]byte(`
types:
  - name: order
    assemble:
      - key: UserID
        namespace: users
        handler: one_to_onw
        props: Name:UserName
    disassemble:
      - key: Items
        type: items
  - name: item
`))
	require.NoError(t, err)

	res := Validate(f, DefaultRegistries(nil), nil)
	require.Len(t, res.Errors, 2)

	assert.Contains(t, res.Errors[0].Message, `did you mean "one_to_one"?`)
	assert.Contains(t, res.Errors[1].Message, `did you mean "item"?`)
}
