package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	entschema "kv-shepherd.io/adminseed/ent/schema"
	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
)

func mustRaw(t *testing.T, doc any) bson.Raw {
	t.Helper()
	b, err := bson.Marshal(doc)
	require.NoError(t, err)
	return bson.Raw(b)
}

func TestFromJSONSchema(t *testing.T) {
	raw := mustRaw(t, bson.D{
		{Key: "bsonType", Value: "object"},
		{Key: "required", Value: bson.A{"email", "firstname", "department"}},
		{Key: "properties", Value: bson.D{
			{Key: "email", Value: bson.D{{Key: "bsonType", Value: "string"}}},
			{Key: "firstname", Value: bson.D{{Key: "bsonType", Value: "string"}}},
			{Key: "age", Value: bson.D{{Key: "bsonType", Value: bson.A{"int", "long"}}}},
			{Key: "bio", Value: bson.D{{Key: "type", Value: "string"}}},
		}},
	})

	paths, err := FromJSONSchema(raw).Paths()
	require.NoError(t, err)
	require.Equal(t, []Path{
		{Name: "email", Type: "string", Required: true},
		{Name: "firstname", Type: "string", Required: true},
		{Name: "age", Type: "int|long"},
		{Name: "bio", Type: "string"},
		{Name: "department", Required: true},
	}, paths)
}

func TestFromJSONSchema_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  bson.D
	}{
		{"required not array", bson.D{{Key: "required", Value: "email"}}},
		{"required entry not string", bson.D{{Key: "required", Value: bson.A{"email", 3}}}},
		{"properties not document", bson.D{{Key: "properties", Value: bson.A{"email"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSONSchema(mustRaw(t, tt.doc)).Paths()
			require.Error(t, err)
		})
	}

	_, err := FromJSONSchema(bson.Raw{0x01, 0x02}).Paths()
	require.Error(t, err, "truncated document must fail validation")
}

func TestParseYAML(t *testing.T) {
	desc, err := ParseYAML([]byte(`
fields:
  - name: email
    type: string
    required: true
  - name: department
    validators:
      - type: required
        message: department is mandatory
  - name: bio
`))
	require.NoError(t, err)

	paths, err := desc.Paths()
	require.NoError(t, err)
	require.Len(t, paths, 3)
	require.True(t, paths[0].IsRequired())
	require.True(t, paths[1].IsRequired())
	require.False(t, paths[1].Required, "department is required only through its validator")
	require.False(t, paths[2].IsRequired())
}

func TestParseYAML_Errors(t *testing.T) {
	_, err := ParseYAML([]byte("fields: [unterminated"))
	require.Error(t, err)

	_, err = ParseYAML([]byte("other: 1\n"))
	require.Error(t, err)
}

func TestFileProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fields:\n  - name: email\n    required: true\n"), 0o600))

	desc, err := FileProvider{Path: path}.Describe(context.Background())
	require.NoError(t, err)
	paths, err := desc.Paths()
	require.NoError(t, err)
	require.Equal(t, []Path{{Name: "email", Required: true}}, paths)

	_, err = FileProvider{Path: filepath.Join(t.TempDir(), "missing.yaml")}.Describe(context.Background())
	require.Error(t, err)
}

func TestFromEnt_UserSchema(t *testing.T) {
	paths, err := FromEnt(entschema.User{}).Paths()
	require.NoError(t, err)

	byName := make(map[string]Path, len(paths))
	var order []string
	for _, p := range paths {
		byName[p.Name] = p
		order = append(order, p.Name)
	}

	require.Equal(t, []string{
		"createdAt", "updatedAt",
		"email", "firstname", "lastname", "mobile", "password", "role",
		"passwordResetToken", "passwordResetExpires",
	}, order)

	for _, name := range []string{"email", "firstname", "lastname", "mobile", "password"} {
		require.True(t, byName[name].Required, name)
	}
	for _, name := range []string{"createdAt", "updatedAt", "role", "passwordResetToken", "passwordResetExpires"} {
		require.False(t, byName[name].Required, name)
	}
	require.Equal(t, "string", byName["email"].Type)
}

func TestFromEnt_WalkedWithDefaultExclusions(t *testing.T) {
	var required []string
	for f, err := range Enumerate(FromEnt(entschema.User{}), DefaultExclusions()) {
		require.NoError(t, err)
		if f.IsRequired {
			required = append(required, f.Name)
		}
	}
	require.Equal(t, []string{"email", "firstname", "lastname", "mobile", "password"}, required)
}

func TestFirstAvailable(t *testing.T) {
	ctx := context.Background()
	none := ProviderFunc(func(context.Context) (Description, error) { return nil, apperrors.ErrNoSchema })
	fail := ProviderFunc(func(context.Context) (Description, error) { return nil, errors.New("network down") })
	static := Fixed(Static{{Name: "email", Required: true}})

	desc, err := FirstAvailable(zap.NewNop(),
		NamedProvider{Name: "live", Provider: none},
		NamedProvider{Name: "ent", Provider: static},
	).Describe(ctx)
	require.NoError(t, err)
	paths, _ := desc.Paths()
	require.Equal(t, "email", paths[0].Name)

	_, err = FirstAvailable(zap.NewNop(),
		NamedProvider{Name: "live", Provider: fail},
		NamedProvider{Name: "ent", Provider: static},
	).Describe(ctx)
	require.EqualError(t, err, "network down")

	_, err = FirstAvailable(zap.NewNop(), NamedProvider{Name: "live", Provider: none}).Describe(ctx)
	require.ErrorIs(t, err, apperrors.ErrNoSchema)
}
