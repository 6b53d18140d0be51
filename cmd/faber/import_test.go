package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/faber/introspect"
)

func TestResolveDriver(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		driver  string
		dsn     string
		want    string
		wantErr bool
	}{
		{name: "explicit driver", driver: "postgres", dsn: "host=localhost", want: introspect.Postgres},
		{name: "explicit alias", driver: "sqlite3", dsn: "app.db", want: introspect.SQLite},
		{name: "postgres scheme", dsn: "postgres://u:p@localhost:5432/app", want: introspect.Postgres},
		{name: "postgresql scheme", dsn: "postgresql://u@localhost/app", want: introspect.Postgres},
		{name: "mysql scheme", dsn: "mysql://u@localhost/app", want: introspect.MySQL},
		{name: "sqlite file prefix", dsn: "file:app.db?mode=ro", want: introspect.SQLite},
		{name: "sqlite memory", dsn: ":memory:", want: introspect.SQLite},
		{name: "bare mysql dsn", dsn: "u:p@tcp(localhost:3306)/app", wantErr: true},
		{name: "unknown scheme", dsn: "redis://localhost", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := resolveDriver(tt.driver, tt.dsn)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportCommandRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile("schema.yaml", []byte("tables: []\n"), 0o644))

	_, err := execute(t, "import", "--dsn", "postgres://u@localhost/app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestImportCommandRequiresDSN(t *testing.T) {
	_, err := execute(t, "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn")
}
