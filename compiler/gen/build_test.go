package gen

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/faber/schema"
)

const fakeStamp = "2006_01_02_150405"

// fakeDialect is a text dialect exercising every generator capability.
type fakeDialect struct {
	failModel map[string]error
}

func newFakeDialect() *fakeDialect { return &fakeDialect{} }

func (*fakeDialect) Name() string { return "fake" }

func (*fakeDialect) MigrationsDir() string { return "migrations" }

func (*fakeDialect) GenMigration(t *Table, at time.Time) ([]*Artifact, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "create table %s\n", t.Name)
	for _, s := range t.Plan.Steps {
		switch s.Op {
		case OpIncrements:
			fmt.Fprintf(&b, "  increments %s\n", s.Column)
		case OpEnum:
			fmt.Fprintf(&b, "  enum %s [%s]\n", s.Column, strings.Join(s.Values, ","))
		case OpDecimal:
			fmt.Fprintf(&b, "  %s %s(%d,%d)\n", s.Type, s.Column, s.Length, s.Scale)
		case OpTimestamps:
			b.WriteString("  timestamps\n")
		case OpSoftDeletes:
			b.WriteString("  soft_deletes\n")
		case OpForeign:
			fmt.Fprintf(&b, "  foreign %s references %s.%s", s.Column, s.Foreign.Table, s.Foreign.Column)
			if s.Foreign.OnDelete != "" {
				fmt.Fprintf(&b, " on_delete %s", s.Foreign.OnDelete)
			}
			b.WriteString("\n")
		default:
			fmt.Fprintf(&b, "  %s %s\n", s.Type, s.Column)
		}
	}
	name := fmt.Sprintf("%s_create_%s_table.txt", at.Format(fakeStamp), t.Name)
	return []*Artifact{{Kind: KindMigration, Path: "migrations/" + name, Body: []byte(b.String())}}, nil
}

func (*fakeDialect) IsMigrationFor(name string, t *Table) bool {
	return strings.HasSuffix(name, "_create_"+t.Name+"_table.txt")
}

func (*fakeDialect) MigrationTime(name string) (time.Time, bool) {
	if len(name) < len(fakeStamp) {
		return time.Time{}, false
	}
	at, err := time.Parse(fakeStamp, name[:len(fakeStamp)])
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

func (d *fakeDialect) GenModel(t *Table) (*Artifact, error) {
	if err := d.failModel[t.Name]; err != nil {
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "model %s\nfillable: %s\n", t.Naming.Model, strings.Join(t.Fillable, ", "))
	for _, r := range t.BelongsTo {
		fmt.Fprintf(&b, "belongs_to %s (%s)\n", r.Method, r.Model)
	}
	for _, r := range t.HasMany {
		fmt.Fprintf(&b, "has_many %s (%s)\n", r.Method, r.Model)
	}
	return &Artifact{Kind: KindModel, Path: "models/" + t.Naming.Model + ".txt", Body: []byte(b.String())}, nil
}

func (*fakeDialect) GenController(t *Table, api bool) (*Artifact, error) {
	body := fmt.Sprintf("controller %s for %s (api=%v)\n", t.Naming.Controller, t.Name, api)
	return &Artifact{Kind: KindController, Path: "controllers/" + t.Naming.Controller + ".txt", Body: []byte(body)}, nil
}

func (*fakeDialect) GenViews(t *Table) ([]*Artifact, error) {
	out := make([]*Artifact, 0, len(t.Views))
	for _, slot := range t.Views {
		out = append(out, &Artifact{
			Kind: KindView,
			Path: fmt.Sprintf("views/%s/%s.txt", t.Name, slot),
			Body: fmt.Appendf(nil, "view %s/%s\n", t.Name, slot),
		})
	}
	return out, nil
}

func (*fakeDialect) GenFactory(t *Table) (*Artifact, error) {
	return &Artifact{
		Kind: KindFactory,
		Path: "factories/" + t.Naming.Model + "Factory.txt",
		Body: []byte("factory " + t.Naming.Model + "\n"),
	}, nil
}

func (*fakeDialect) Registry(api bool) RegistrySpec {
	p := "routes.txt"
	if api {
		p = "api-routes.txt"
	}
	return RegistrySpec{
		Path:     p,
		Begin:    "# <resources>",
		End:      "# </resources>",
		Skeleton: []byte("# routes\n# <resources>\n# </resources>\n"),
	}
}

func (*fakeDialect) GenRoute(t *Table, api bool) string {
	if api {
		return fmt.Sprintf("api-resource %s %s;", t.Naming.RouteResource, t.Naming.Controller)
	}
	return fmt.Sprintf("resource %s %s;", t.Naming.RouteResource, t.Naming.Controller)
}

func (*fakeDialect) GenStandaloneModel(t *Table, m *schema.Model) (*Artifact, error) {
	body := fmt.Sprintf("standalone model %s\nfillable: %s\n", t.Naming.Model, strings.Join(t.Fillable, ", "))
	return &Artifact{Kind: KindModel, Path: "models/" + t.Naming.Model + ".txt", Body: []byte(body)}, nil
}

func (*fakeDialect) GenStandaloneController(t *Table, c *schema.Controller, api bool) (*Artifact, error) {
	body := fmt.Sprintf("standalone controller %s (resource=%v, api=%v)\n", c.Name, c.Resource, api)
	return &Artifact{Kind: KindController, Path: "controllers/" + c.Name + ".txt", Body: []byte(body)}, nil
}

func (*fakeDialect) GenStandaloneView(v *schema.View) (*Artifact, error) {
	return &Artifact{Kind: KindView, Path: "views/" + v.Name + ".txt", Body: []byte("view " + v.Name + "\n")}, nil
}

// failSink fails every write to one path.
type failSink struct {
	*MemSink
	fail string
}

func (s *failSink) Write(path string, body []byte) error {
	if path == s.fail {
		return NewWriteError(path, errors.New("permission denied"))
	}
	return s.MemSink.Write(path, body)
}

func scenarioDoc() *schema.Document {
	return &schema.Document{
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
}

var buildBase = time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

func atBase(at time.Time) Option {
	return WithNow(func() time.Time { return at })
}

func TestGenerateScenario(t *testing.T) {
	sink := NewMemSink()
	rep, err := Generate(scenarioDoc(), WithDialect(newFakeDialect()), WithSink(sink), atBase(buildBase))
	require.NoError(t, err)
	require.False(t, rep.Failed(), "failures: %v", rep.Failures)
	assert.Equal(t, 2, rep.Tables)
	assert.Empty(t, rep.Warnings)
	assert.Empty(t, rep.Skipped)
	require.Len(t, rep.Written, 7)

	// Migrations carry strictly increasing keys in processing order.
	migrations, err := sink.List("migrations")
	require.NoError(t, err)
	require.Equal(t, []string{
		"2025_11_03_120000_create_users_table.txt",
		"2025_11_03_120001_create_posts_table.txt",
	}, migrations)

	posts, err := sink.Read("migrations/2025_11_03_120001_create_posts_table.txt")
	require.NoError(t, err)
	assert.Contains(t, string(posts), "foreign user_id references users.id on_delete cascade")
	assert.Contains(t, string(posts), "timestamps")

	user, err := sink.Read("models/User.txt")
	require.NoError(t, err)
	assert.Contains(t, string(user), "fillable: name, email")
	assert.Contains(t, string(user), "has_many posts (Post)")

	post, err := sink.Read("models/Post.txt")
	require.NoError(t, err)
	assert.Contains(t, string(post), "fillable: title, user_id")
	assert.Contains(t, string(post), "belongs_to user (User)")

	assert.True(t, sink.Exists("controllers/UserController.txt"))
	assert.True(t, sink.Exists("controllers/PostController.txt"))

	routes, err := sink.Read("routes.txt")
	require.NoError(t, err)
	got := string(routes)
	assert.True(t, strings.HasPrefix(got, "# routes\n"), "skeleton header preserved")
	assert.Contains(t, got, "resource users UserController;")
	assert.Contains(t, got, "resource posts PostController;")
	assert.Less(t, strings.Index(got, "resource users"), strings.Index(got, "resource posts"))

	// The manifest feature is on by default and records every artifact.
	m, err := LoadManifest(sink)
	require.NoError(t, err)
	assert.Equal(t, rep.RunID, m.RunID)
	assert.Len(t, m.Artifacts, 7)
}

func TestBuildSecondRunSkipsByDefault(t *testing.T) {
	sink := NewMemSink()
	_, err := Generate(scenarioDoc(), WithDialect(newFakeDialect()), WithSink(sink), atBase(buildBase))
	require.NoError(t, err)

	rep, err := Generate(scenarioDoc(), WithDialect(newFakeDialect()), WithSink(sink), atBase(buildBase.Add(time.Hour)))
	require.NoError(t, err)
	assert.Empty(t, rep.Written, "default answers decline every overwrite")
	assert.Len(t, rep.Skipped, 7, "six artifacts plus the unchanged registry")
	assert.False(t, rep.Failed())
}

func TestBuildForceRegeneratesInPlace(t *testing.T) {
	sink := NewMemSink()
	_, err := Generate(scenarioDoc(), WithDialect(newFakeDialect()), WithSink(sink), atBase(buildBase))
	require.NoError(t, err)

	sc := &script{}
	rep, err := Generate(scenarioDoc(),
		WithDialect(newFakeDialect()), WithSink(sink), WithPrompter(sc),
		WithForce(true), atBase(buildBase.Add(time.Hour)))
	require.NoError(t, err)
	assert.Zero(t, sc.asked, "force mode never prompts")
	assert.Len(t, rep.Written, 7)

	// Existing migrations are rewritten under their original keys; the run
	// one hour later must not stack new files.
	migrations, err := sink.List("migrations")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2025_11_03_120000_create_users_table.txt",
		"2025_11_03_120001_create_posts_table.txt",
	}, migrations)

	routes, err := sink.Read("routes.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(routes), "resource users UserController;"))
}

func TestBuildSkipAllBoundsPrompts(t *testing.T) {
	sink := NewMemSink()
	_, err := Generate(scenarioDoc(), WithDialect(newFakeDialect()), WithSink(sink), atBase(buildBase))
	require.NoError(t, err)

	sc := &script{answers: []string{"skip-all"}}
	rep, err := Generate(scenarioDoc(),
		WithDialect(newFakeDialect()), WithSink(sink), WithPrompter(sc), atBase(buildBase))
	require.NoError(t, err)
	assert.Equal(t, 1, sc.asked, "a blanket answer ends all prompting for the run")
	assert.Empty(t, rep.Written)
	assert.Len(t, rep.Skipped, 7)
}

func TestBuildExternalSkipAll(t *testing.T) {
	sink := NewMemSink()
	_, err := Generate(scenarioDoc(), WithDialect(newFakeDialect()), WithSink(sink), atBase(buildBase))
	require.NoError(t, err)

	sc := &script{}
	rep, err := Generate(scenarioDoc(),
		WithDialect(newFakeDialect()), WithSink(sink), WithPrompter(sc), WithSkipAll(true),
		atBase(buildBase.Add(time.Hour)))
	require.NoError(t, err)
	assert.Zero(t, sc.asked, "an externally latched blanket never prompts")
	assert.Empty(t, rep.Written)
	assert.Len(t, rep.Skipped, 7)
}

func TestBuildMigrationReuse(t *testing.T) {
	sink := NewMemSink()
	existing := "migrations/2020_01_01_000000_create_users_table.txt"
	require.NoError(t, sink.Write(existing, []byte("old content")))

	doc := &schema.Document{Tables: scenarioDoc().Tables[:1]}
	rep, err := Generate(doc,
		WithDialect(newFakeDialect()), WithSink(sink), WithForce(true), atBase(buildBase))
	require.NoError(t, err)
	require.False(t, rep.Failed())

	names, err := sink.List("migrations")
	require.NoError(t, err)
	assert.Equal(t, []string{"2020_01_01_000000_create_users_table.txt"}, names,
		"regeneration targets the existing file instead of adding a second one")

	body, err := sink.Read(existing)
	require.NoError(t, err)
	assert.Contains(t, string(body), "create table users")
}

func TestBuildDuplicateTableConfirm(t *testing.T) {
	doc := scenarioDoc()
	doc.Tables = append(doc.Tables, doc.Tables[0])

	t.Run("declined by default", func(t *testing.T) {
		rep, err := Generate(doc, WithDialect(newFakeDialect()), WithSink(NewMemSink()), atBase(buildBase))
		require.NoError(t, err)
		assert.Equal(t, 2, rep.Tables, "second users entry is not reprocessed")
	})

	t.Run("force reprocesses", func(t *testing.T) {
		rep, err := Generate(doc,
			WithDialect(newFakeDialect()), WithSink(NewMemSink()), WithForce(true), atBase(buildBase))
		require.NoError(t, err)
		assert.Equal(t, 3, rep.Tables)
	})
}

func TestBuildControllerCollision(t *testing.T) {
	doc := func() *schema.Document {
		d := &schema.Document{Tables: scenarioDoc().Tables[:1]}
		d.Controllers = []*schema.Controller{{Name: "UserController"}}
		return d
	}

	t.Run("derived", func(t *testing.T) {
		sink := NewMemSink()
		rep, err := Generate(doc(),
			WithDialect(newFakeDialect()), WithSink(sink),
			WithCollision(CollisionDerived), atBase(buildBase))
		require.NoError(t, err)
		require.False(t, rep.Failed())

		body, err := sink.Read("controllers/UserController.txt")
		require.NoError(t, err)
		assert.Contains(t, string(body), "controller UserController for users", "table-derived body wins")
		routes, err := sink.Read("routes.txt")
		require.NoError(t, err)
		assert.Contains(t, string(routes), "resource users UserController;")
	})

	t.Run("declared", func(t *testing.T) {
		sink := NewMemSink()
		rep, err := Generate(doc(),
			WithDialect(newFakeDialect()), WithSink(sink),
			WithCollision(CollisionDeclared), atBase(buildBase))
		require.NoError(t, err)
		require.False(t, rep.Failed())

		body, err := sink.Read("controllers/UserController.txt")
		require.NoError(t, err)
		assert.Contains(t, string(body), "standalone controller UserController")
		// A plain declared controller registers no resource route.
		assert.False(t, sink.Exists("routes.txt"))
	})

	t.Run("asked", func(t *testing.T) {
		sink := NewMemSink()
		sc := &script{answers: []string{"declared"}}
		_, err := Generate(doc(),
			WithDialect(newFakeDialect()), WithSink(sink), WithPrompter(sc), atBase(buildBase))
		require.NoError(t, err)
		assert.Equal(t, 1, sc.asked)
		body, err := sink.Read("controllers/UserController.txt")
		require.NoError(t, err)
		assert.Contains(t, string(body), "standalone controller UserController")
	})
}

func TestBuildPerTableFailure(t *testing.T) {
	sink := NewMemSink()
	d := newFakeDialect()
	d.failModel = map[string]error{"posts": NewEmitError("posts", KindModel, "boom", nil)}

	rep, err := Generate(scenarioDoc(), WithDialect(d), WithSink(sink), atBase(buildBase))
	require.NoError(t, err)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "posts", rep.Failures[0].Table)
	assert.True(t, IsEmitError(rep.Failures[0].Err))

	// users completed in full; posts stopped at the failing model.
	assert.True(t, sink.Exists("models/User.txt"))
	assert.True(t, sink.Exists("controllers/UserController.txt"))
	assert.True(t, sink.Exists("migrations/2025_11_03_120001_create_posts_table.txt"),
		"artifacts before the failure stand")
	assert.False(t, sink.Exists("models/Post.txt"))
	assert.False(t, sink.Exists("controllers/PostController.txt"))

	routes, err := sink.Read("routes.txt")
	require.NoError(t, err)
	assert.Contains(t, string(routes), "resource users")
	assert.NotContains(t, string(routes), "resource posts")
}

func TestBuildWriteFailureSiblingsProceed(t *testing.T) {
	sink := &failSink{MemSink: NewMemSink(), fail: "models/User.txt"}
	doc := &schema.Document{Tables: scenarioDoc().Tables[:1]}

	rep, err := Generate(doc, WithDialect(newFakeDialect()), WithSink(sink), atBase(buildBase))
	require.NoError(t, err)
	require.Len(t, rep.Failures, 1)
	assert.True(t, IsWriteError(rep.Failures[0].Err))

	assert.False(t, sink.Exists("models/User.txt"))
	assert.True(t, sink.Exists("controllers/UserController.txt"), "siblings still proceed")
	routes, err := sink.Read("routes.txt")
	require.NoError(t, err)
	assert.Contains(t, string(routes), "resource users")
}

func TestBuildAPIMode(t *testing.T) {
	sink := NewMemSink()
	rep, err := Generate(scenarioDoc(),
		WithDialect(newFakeDialect()), WithSink(sink),
		WithFeatures(FeatureAPI), atBase(buildBase))
	require.NoError(t, err)
	require.False(t, rep.Failed())

	body, err := sink.Read("controllers/UserController.txt")
	require.NoError(t, err)
	assert.Contains(t, string(body), "api=true")

	assert.False(t, sink.Exists("routes.txt"))
	routes, err := sink.Read("api-routes.txt")
	require.NoError(t, err)
	assert.Contains(t, string(routes), "api-resource users UserController;")
}

func TestBuildFactoryFeature(t *testing.T) {
	sink := NewMemSink()
	_, err := Generate(scenarioDoc(),
		WithDialect(newFakeDialect()), WithSink(sink),
		WithFeatures(FeatureFactory), atBase(buildBase))
	require.NoError(t, err)
	assert.True(t, sink.Exists("factories/UserFactory.txt"))
	assert.True(t, sink.Exists("factories/PostFactory.txt"))
}

func TestBuildViews(t *testing.T) {
	doc := &schema.Document{Tables: []*schema.Table{{
		Name:    "posts",
		Columns: []*schema.Column{{Name: "title", Type: schema.TypeString}},
		Views:   []string{"index", "create", "edit", "show"},
	}}}
	sink := NewMemSink()
	_, err := Generate(doc, WithDialect(newFakeDialect()), WithSink(sink), atBase(buildBase))
	require.NoError(t, err)
	for _, slot := range []string{"index", "create", "edit", "show"} {
		assert.True(t, sink.Exists("views/posts/"+slot+".txt"), slot)
	}
}

func TestBuildViewsSkippedInAPIMode(t *testing.T) {
	doc := &schema.Document{Tables: []*schema.Table{{
		Name:    "posts",
		Columns: []*schema.Column{{Name: "title", Type: schema.TypeString}},
		Views:   []string{"index", "show"},
	}}}
	sink := NewMemSink()
	rep, err := Generate(doc,
		WithDialect(newFakeDialect()), WithSink(sink),
		WithFeatures(FeatureAPI), atBase(buildBase))
	require.NoError(t, err)
	require.False(t, rep.Failed())
	assert.False(t, sink.Exists("views/posts/index.txt"))
	assert.False(t, sink.Exists("views/posts/show.txt"))
}

func TestBuildStandaloneDeclarations(t *testing.T) {
	doc := &schema.Document{
		Models:      []*schema.Model{{Name: "Report", Fillable: []string{"title", "body"}}},
		Controllers: []*schema.Controller{{Name: "HealthController", Resource: true}},
		Views:       []*schema.View{{Name: "dashboard"}},
	}
	sink := NewMemSink()
	rep, err := Generate(doc, WithDialect(newFakeDialect()), WithSink(sink), atBase(buildBase))
	require.NoError(t, err)
	require.False(t, rep.Failed())
	assert.Zero(t, rep.Tables)

	body, err := sink.Read("models/Report.txt")
	require.NoError(t, err)
	assert.Contains(t, string(body), "fillable: title, body")
	assert.True(t, sink.Exists("controllers/HealthController.txt"))
	assert.True(t, sink.Exists("views/dashboard.txt"))

	routes, err := sink.Read("routes.txt")
	require.NoError(t, err)
	assert.Contains(t, string(routes), "resource healths HealthController;")
}

func TestBuildScope(t *testing.T) {
	sink := NewMemSink()
	rep, err := Generate(scenarioDoc(),
		WithDialect(newFakeDialect()), WithSink(sink),
		WithScope("apps/admin"), atBase(buildBase))
	require.NoError(t, err)
	require.False(t, rep.Failed())

	assert.True(t, sink.Exists("apps/admin/models/User.txt"))
	assert.True(t, sink.Exists("apps/admin/routes.txt"))
	assert.False(t, sink.Exists("models/User.txt"))
	assert.True(t, sink.Exists(ManifestPath), "the manifest itself stays unscoped")
}

func TestGenerateConfigError(t *testing.T) {
	_, err := Generate(scenarioDoc(), WithSink(NewMemSink()))
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}
