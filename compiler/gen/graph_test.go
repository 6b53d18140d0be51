package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/faber/schema"
)

// nopDialect is the smallest possible dialect, used where tests only need
// a valid configuration.
type nopDialect struct{}

func (nopDialect) Name() string { return "nop" }

func (nopDialect) GenModel(t *Table) (*Artifact, error) {
	return &Artifact{Kind: KindModel, Path: "models/" + t.Naming.Model, Body: []byte(t.Naming.Model)}, nil
}

func testConfig(t *testing.T, opts ...Option) *Config {
	t.Helper()
	base := []Option{WithDialect(nopDialect{}), WithSink(NewMemSink())}
	c, err := NewConfig(append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewGraph(t *testing.T) {
	doc := &schema.Document{
		Tables: []*schema.Table{
			{
				Name: "users",
				Columns: []*schema.Column{
					{Name: "name", Type: schema.TypeString},
					{Name: "email", Type: schema.TypeString, Unique: true},
				},
				Timestamps: true,
			},
			{
				Name: "posts",
				Columns: []*schema.Column{
					{Name: "title", Type: schema.TypeString},
					{
						Name: "user_id", Type: schema.TypeInteger,
						Foreign: &schema.ForeignKey{Table: "users", Column: "id", OnDelete: "cascade"},
					},
				},
				Timestamps: true,
			},
		},
	}
	g, err := NewGraph(testConfig(t), doc)
	require.NoError(t, err)
	require.Len(t, g.Tables, 2)
	assert.Empty(t, g.Failures)

	users, posts := g.Tables[0], g.Tables[1]
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, "User", users.Naming.Model)
	assert.Equal(t, "UserController", users.Naming.Controller)
	assert.Equal(t, []string{"name", "email"}, users.Fillable)
	assert.Empty(t, users.Warnings)

	assert.Equal(t, []string{"title", "user_id"}, posts.Fillable)
	require.Len(t, posts.BelongsTo, 1)
	rel := posts.BelongsTo[0]
	assert.Equal(t, "users", rel.Table)
	assert.Equal(t, "User", rel.Model)
	assert.Equal(t, "user", rel.Method)
	assert.Equal(t, "user_id", rel.Column)

	require.Len(t, users.HasMany, 1)
	inv := users.HasMany[0]
	assert.Equal(t, "posts", inv.Table)
	assert.Equal(t, "Post", inv.Model)
	assert.Equal(t, "posts", inv.Method)
	assert.Equal(t, "user_id", inv.Column)

	assert.Same(t, users, g.Table("users"))
	assert.Nil(t, g.Table("missing"))
}

func TestNewGraphMissingTableName(t *testing.T) {
	doc := &schema.Document{
		Tables: []*schema.Table{
			{Name: "  "},
			{Name: "users", Columns: []*schema.Column{{Name: "name", Type: schema.TypeString}}},
		},
	}
	g, err := NewGraph(testConfig(t), doc)
	require.NoError(t, err)
	require.Len(t, g.Failures, 1)
	assert.Contains(t, g.Failures[0].Error(), "missing table name")
	require.Len(t, g.Tables, 1, "the bad table aborts only itself")
	assert.Equal(t, "users", g.Tables[0].Name)
}

func TestNewGraphNilDocument(t *testing.T) {
	_, err := NewGraph(testConfig(t), nil)
	require.Error(t, err)
	assert.True(t, IsSchemaError(err))
}

func TestDuplicateColumnDropped(t *testing.T) {
	doc := &schema.Document{
		Tables: []*schema.Table{{
			Name: "users",
			Columns: []*schema.Column{
				{Name: "email", Type: schema.TypeString, Unique: true},
				{Name: "email", Type: schema.TypeText},
			},
		}},
	}
	g, err := NewGraph(testConfig(t), doc)
	require.NoError(t, err)
	users := g.Tables[0]
	require.Len(t, users.Columns, 1)
	assert.Equal(t, schema.TypeString, users.Columns[0].Type, "first declaration wins")
	require.Len(t, users.Warnings, 1)
	assert.Contains(t, users.Warnings[0], `duplicate column "email"`)
}

func TestForeignKeyForwardReference(t *testing.T) {
	orders := &schema.Table{
		Name: "orders",
		Columns: []*schema.Column{
			{Name: "customer_id", Type: schema.TypeInteger, Foreign: &schema.ForeignKey{Table: "customers"}},
		},
	}
	customers := &schema.Table{
		Name:    "customers",
		Columns: []*schema.Column{{Name: "name", Type: schema.TypeString}},
	}

	forward, err := NewGraph(testConfig(t), &schema.Document{Tables: []*schema.Table{orders, customers}})
	require.NoError(t, err)
	backward, err := NewGraph(testConfig(t), &schema.Document{Tables: []*schema.Table{customers, orders}})
	require.NoError(t, err)

	for _, g := range []*Graph{forward, backward} {
		o := g.Table("orders")
		require.NotNil(t, o)
		require.Len(t, o.BelongsTo, 1)
		assert.Equal(t, "customers", o.BelongsTo[0].Table)
		assert.Equal(t, "id", o.Columns[0].Foreign.Column, "target column defaults to id")

		c := g.Table("customers")
		require.Len(t, c.HasMany, 1)
		assert.Equal(t, "orders", c.HasMany[0].Table)
	}
}

func TestForeignKeyWithoutTargetDropped(t *testing.T) {
	doc := &schema.Document{
		Tables: []*schema.Table{{
			Name: "orders",
			Columns: []*schema.Column{
				{Name: "customer_id", Type: schema.TypeInteger, Foreign: &schema.ForeignKey{OnDelete: "cascade"}},
			},
		}},
	}
	g, err := NewGraph(testConfig(t), doc)
	require.NoError(t, err)
	orders := g.Tables[0]
	assert.Nil(t, orders.Columns[0].Foreign)
	assert.Empty(t, orders.BelongsTo)
	assert.Empty(t, orders.Warnings, "dropping a targetless constraint is silent")
}

func TestFillableExcludesReservedAndIdentity(t *testing.T) {
	doc := &schema.Document{
		Tables: []*schema.Table{{
			Name: "events",
			Columns: []*schema.Column{
				{Name: "id", Type: schema.TypeID},
				{Name: "name", Type: schema.TypeString},
				{Name: "created_at", Type: schema.TypeTimestamp},
				{Name: "deleted_at", Type: schema.TypeTimestamp},
			},
		}},
	}
	g, err := NewGraph(testConfig(t), doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, g.Tables[0].Fillable)
}

func TestNamingNormalization(t *testing.T) {
	doc := &schema.Document{
		Tables: []*schema.Table{{
			Name:    "BlogPosts",
			Columns: []*schema.Column{{Name: "Title", Type: schema.TypeString}},
		}},
	}
	g, err := NewGraph(testConfig(t), doc)
	require.NoError(t, err)
	bp := g.Tables[0]
	assert.Equal(t, "blog_posts", bp.Name)
	assert.Equal(t, "BlogPost", bp.Naming.Model)
	assert.Equal(t, "title", bp.Columns[0].Name)
}

func TestStandaloneDeclarations(t *testing.T) {
	doc := &schema.Document{
		Models:      []*schema.Model{{Name: "Report"}},
		Controllers: []*schema.Controller{{Name: "HealthController"}},
		Views:       []*schema.View{{Name: "dashboard"}},
	}
	g, err := NewGraph(testConfig(t), doc)
	require.NoError(t, err)
	assert.Empty(t, g.Tables)
	require.Len(t, g.Models, 1)
	assert.Equal(t, "Report", g.Models[0].Name)
	require.Len(t, g.Controllers, 1)
	require.Len(t, g.Views, 1)
}
