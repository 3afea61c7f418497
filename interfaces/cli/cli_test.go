package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/infrastructure/config"
	"recipebook/infrastructure/di"
	"recipebook/infrastructure/messaging"
	"recipebook/infrastructure/persistence/memory"
	"recipebook/pkg/auth"
	"recipebook/pkg/observability"
)

const testSecret = "open-sesame"

type cliFixture struct {
	t        *testing.T
	factory  AppFactory
	built    int
	released int
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()

	cfg := &config.Config{Environment: "test", AdminSecret: testSecret}
	logger := zap.NewNop()
	store := memory.NewStore()
	collector := observability.NewCollector("test")
	tracer := observability.NewTracer("test", false)

	normalizer := di.ProvideNormalizer(store, logger)
	orphans := di.ProvideOrphanDetector(store, logger)
	catalog := di.ProvideCatalog(store)
	importer := di.ProvideImporter(normalizer, store, logger)
	notifier := messaging.NewChangeNotifier(messaging.NoopPublisher{}, logger)

	commandBus, err := di.ProvideCommandBus(cfg, store, normalizer, orphans, importer,
		auth.NewSharedSecretAuthorizer(testSecret), di.NewInMemoryCache(), notifier, tracer, collector, logger)
	require.NoError(t, err)
	queryBus, err := di.ProvideQueryBus(cfg, catalog, di.ProvideSuggester(catalog), orphans, di.NewInMemoryCache(), tracer, collector)
	require.NoError(t, err)

	f := &cliFixture{t: t}
	f.factory = func(ctx context.Context) (*App, func(), error) {
		f.built++
		return &App{CommandBus: commandBus, QueryBus: queryBus, AdminSecret: testSecret}, func() { f.released++ }, nil
	}
	return f
}

func (f *cliFixture) run(args ...string) (string, error) {
	f.t.Helper()
	var out bytes.Buffer
	err := Execute(context.Background(), f.factory, args, &out)
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const ingredientsJSONL = `{"item":"Egg","proteinPer100g":13}
{"item":"Saffron"}
`

const recipesYAML = `- title: Omelette
  instructions: Whisk and fry.
  ingredients:
    - item: Egg
      quantity:
        amount: 3
        unit: each
    - item: Salt
`

const pairingsJSON = `[{"name":"Breakfast","recipeTitles":["Omelette","Pancakes"]}]`

func (f *cliFixture) importSeed() string {
	f.t.Helper()
	out, err := f.run("import",
		"--ingredients", writeFile(f.t, "ingredients.jsonl", ingredientsJSONL),
		"--recipes", writeFile(f.t, "recipes.yaml", recipesYAML),
		"--pairings", writeFile(f.t, "pairings.json", pairingsJSON),
	)
	require.NoError(f.t, err)
	return out
}

func TestImport(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)

	// Act
	out := f.importSeed()

	// Assert
	assert.Equal(t, "imported 2 ingredients, 1 recipes, 1 pairings (0 skipped)\n", out)
	assert.Equal(t, 1, f.built)
	assert.Equal(t, 1, f.released)
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    func(t *testing.T) []string
		wantErr string
	}{
		{
			name:    "no seed file",
			args:    func(t *testing.T) []string { return []string{"import"} },
			wantErr: "at least one of the flags",
		},
		{
			name: "unknown extension",
			args: func(t *testing.T) []string {
				return []string{"import", "--recipes", writeFile(t, "recipes.csv", "title\n")}
			},
			wantErr: "unsupported seed file extension",
		},
		{
			name: "malformed line",
			args: func(t *testing.T) []string {
				return []string{"import", "--ingredients", writeFile(t, "ingredients.jsonl", "{\"item\":\"Egg\"}\nnot json\n")}
			},
			wantErr: "line 2",
		},
		{
			name: "wrong secret",
			args: func(t *testing.T) []string {
				return []string{"import", "--secret", "guess", "--ingredients", writeFile(t, "ingredients.jsonl", ingredientsJSONL)}
			},
			wantErr: "not authorized",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCLIFixture(t)

			_, err := f.run(tt.args(t)...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, f.built, f.released)
		})
	}
}

func TestUnused(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)
	f.importSeed()

	// Act
	out, err := f.run("unused", "ingredients", "--format", "json")

	// Assert
	require.NoError(t, err)
	var unused []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &unused))
	require.Len(t, unused, 1)
	assert.Equal(t, "Saffron", unused[0]["name"])

	out, err = f.run("unused", "ingredients", "--delete")
	require.NoError(t, err)
	assert.Equal(t, "deleted 1 unused ingredients\n", out)

	out, err = f.run("unused", "ingredients")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnused_UnknownKind(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run("unused", "spices")

	require.Error(t, err)
}

func TestClear(t *testing.T) {
	// Arrange
	f := newCLIFixture(t)
	f.importSeed()

	// Act
	_, refused := f.run("clear")
	out, err := f.run("clear", "--yes", "--format", "json")

	// Assert
	require.Error(t, refused)
	assert.Contains(t, refused.Error(), "--yes")

	require.NoError(t, err)
	var counts map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	assert.Equal(t, 1, counts["pairings"])
	assert.Equal(t, 1, counts["recipes"])
	assert.Equal(t, 3, counts["ingredients"])
	assert.Equal(t, 0, counts["forms"])
	assert.Equal(t, 1, counts["units"])

	out, err = f.run("unused", "units")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestInvalidFormat(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run("unused", "units", "--format", "xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Zero(t, f.built)
}
