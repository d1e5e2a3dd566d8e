package mapping

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"enricher/internal/handler"
	"enricher/internal/keys"
	"enricher/internal/strategy"
)

const ordersYAML = `
types:
  - name: order
    assemble:
      - key: UserID
        key_type: int
        namespace: users
        121:
          Name: UserName
          Email: UserEmail
        props: ":User"
        groups: basic
        sort: 2
        condition:
          kind: not_zero
          property: UserID
      - id: tags
        key: TagIDs
        key_resolver: separable
        key_description: ";"
        namespace: tags
        handler: many_to_many
        strategy: overwrite
        props: [Name:TagNames]
        groups: [basic, detail]
    disassemble:
      - key: Items
        type: item
  - name: item
    assemble:
      - key: UserID
        namespace: users
        props: Name:UserName
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(ordersYAML))
	require.NoError(t, err)
	require.NotNil(t, f)

	assert.Equal(t, "1", f.Version)
	assert.Equal(t, []string{"order", "item"}, f.TypeNames())

	order := f.Type("order")
	require.NotNil(t, order)
	require.Len(t, order.Assemble, 2)
	require.Len(t, order.Disassemble, 1)

	// 121 shorthand is expanded in front of props, sorted by source
	user := order.Assemble[0]
	assert.Equal(t, StringOrArray{"Email:UserEmail", "Name:UserName", ":User"}, user.Props)
	assert.Nil(t, user.OneToOne)
	assert.Equal(t, StringOrArray{"basic"}, user.Groups)
	assert.Equal(t, 2, user.Sort)
	require.NotNil(t, user.Condition)
	assert.Equal(t, ConditionNotZero, user.Condition.Kind)

	// defaults
	assert.Equal(t, handler.Default, user.Handler)
	assert.Equal(t, strategy.Default, user.Strategy)
	assert.Equal(t, keys.Default, user.KeyResolver)
	assert.Equal(t, handler.NameReflect, order.Disassemble[0].Handler)

	tags := order.Assemble[1]
	assert.Equal(t, "tags", tags.ID)
	assert.Equal(t, keys.NameSeparable, tags.KeyResolver)
	assert.Equal(t, ";", tags.KeyDescription)
	assert.Equal(t, handler.NameManyToMany, tags.Handler)
	assert.Equal(t, strategy.NameOverwrite, tags.Strategy)
	assert.Equal(t, StringOrArray{"basic", "detail"}, tags.Groups)

	assert.Nil(t, f.Type("missing"))
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("types: [name: {"))
	assert.Error(t, err)

	_, err = Parse([]byte("types:\n  - name: x\n    assemble:\n      - props: {a: b}\n"))
	assert.Error(t, err)
}

func TestWriteAndLoadFile(t *testing.T) {
	f, err := Parse([]byte(ordersYAML))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ops.yaml")
	require.NoError(t, WriteFile(f, path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, f, loaded)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStringOrArray_MarshalYAML(t *testing.T) {
	v, err := StringOrArray{"a"}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "a", v)

	v, err = StringOrArray{"a", "b"}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v)

}

func TestStringOrArray_UnmarshalYAML(t *testing.T) {
	var v struct {
		One  StringOrArray `yaml:"one"`
		Many StringOrArray `yaml:"many"`
		None StringOrArray `yaml:"none"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("one: a\nmany: [a, b]\nnone: ''\n"), &v))
	assert.Equal(t, StringOrArray{"a"}, v.One)
	assert.Equal(t, StringOrArray{"a", "b"}, v.Many)
	assert.Empty(t, v.None)

	assert.Error(t, yaml.Unmarshal([]byte("one: {a: b}\n"), &v))
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		path    string
		want    []string
		wantErr bool
	}{
		{path: "Name", want: []string{"Name"}},
		{path: "Address.Street", want: []string{"Address", "Street"}},
		{path: "user_name", want: []string{"user_name"}},
		{path: "order.user-id", want: []string{"order", "user-id"}},
		{path: "", wantErr: true},
		{path: "a..b", wantErr: true},
		{path: "1abc", wantErr: true},
		{path: "Items[]", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			fp, err := ParsePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, fp.Segments)
			assert.Equal(t, tt.path, fp.String())
		})
	}
}

func TestResolveKeyType(t *testing.T) {
	type custom struct{ A int }

	types := map[string]reflect.Type{"custom": reflect.TypeOf(custom{})}

	tests := []struct {
		name string
		want reflect.Type
		ok   bool
	}{
		{name: "", want: nil, ok: true},
		{name: "int", want: reflect.TypeFor[int](), ok: true},
		{name: "Long", want: reflect.TypeFor[int64](), ok: true},
		{name: "string", want: reflect.TypeFor[string](), ok: true},
		{name: "custom", want: reflect.TypeOf(custom{}), ok: true},
		{name: "decimal", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveKeyType(tt.name, types)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
