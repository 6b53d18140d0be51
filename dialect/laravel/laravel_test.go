package laravel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/schema"
)

var base = time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

func blogDoc() *schema.Document {
	return &schema.Document{
		Tables: []*schema.Table{
			{
				Name: "users",
				Columns: []*schema.Column{
					{Name: "id", Type: schema.TypeID},
					{Name: "name", Type: schema.TypeString, Length: schema.Length{Precision: 100}},
					{Name: "email", Type: schema.TypeString, Unique: true},
					{Name: "age", Type: schema.TypeTinyInteger, Nullable: true},
				},
				Timestamps: true,
			},
			{
				Name: "posts",
				Columns: []*schema.Column{
					{Name: "id", Type: schema.TypeID},
					{Name: "title", Type: schema.TypeString},
					{Name: "body", Type: schema.TypeText},
					{Name: "published", Type: schema.TypeBoolean, Default: false},
					{
						Name: "user_id", Type: schema.TypeUnsignedInt,
						Foreign: &schema.ForeignKey{Table: "users", Column: "id", OnDelete: "cascade"},
					},
				},
				Timestamps:  true,
				SoftDeletes: true,
				Views:       []string{"index", "create", "edit", "show"},
			},
		},
	}
}

func compile(t *testing.T, doc *schema.Document) *gen.Graph {
	t.Helper()
	g, err := gen.NewGraph(&gen.Config{Dialect: New(), Sink: gen.NewMemSink()}, doc)
	require.NoError(t, err)
	require.Empty(t, g.Failures)
	return g
}

func table(t *testing.T, name string) *gen.Table {
	t.Helper()
	tbl := compile(t, blogDoc()).Table(name)
	require.NotNil(t, tbl)
	return tbl
}

func TestGenMigration(t *testing.T) {
	l := New()
	artifacts, err := l.GenMigration(table(t, "posts"), base)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	a := artifacts[0]
	assert.Equal(t, gen.KindMigration, a.Kind)
	assert.Equal(t, "database/migrations/2025_11_03_120000_create_posts_table.php", a.Path)

	body := string(a.Body)
	assert.Contains(t, body, "Schema::create('posts', function (Blueprint $table) {")
	assert.Contains(t, body, "Schema::dropIfExists('posts');")
	for _, line := range []string{
		"$table->id();",
		"$table->string('title');",
		"$table->text('body');",
		"$table->boolean('published')->default(false);",
		"$table->unsignedInteger('user_id');",
		"$table->timestamps();",
		"$table->softDeletes();",
		"$table->foreign('user_id')->references('id')->on('users')->onDelete('cascade');",
	} {
		assert.Contains(t, body, line)
	}
	// Constraints trail the column declarations.
	assert.Less(t, strings.Index(body, "$table->softDeletes();"), strings.Index(body, "$table->foreign("))
}

func TestGenMigrationModifiers(t *testing.T) {
	doc := &schema.Document{Tables: []*schema.Table{{
		Name: "products",
		Columns: []*schema.Column{
			{Name: "sku", Type: schema.TypeChar, Length: schema.Length{Precision: 12}, Unique: true, Index: true, Comment: "it's keyed"},
			{Name: "price", Type: schema.TypeDecimal, Length: schema.Length{Precision: 10, Scale: 2}},
			{Name: "rating", Type: schema.TypeFloat, Scale: 1},
			{Name: "status", Type: schema.TypeEnum, Values: []string{"draft", "published"}, Default: "draft"},
			{Name: "note", Type: "citext"},
		},
	}}}
	artifacts, err := New().GenMigration(compile(t, doc).Table("products"), base)
	require.NoError(t, err)

	body := string(artifacts[0].Body)
	assert.Contains(t, body, `$table->char('sku', 12)->unique()->index()->comment('it\'s keyed');`)
	assert.Contains(t, body, "$table->decimal('price', 10, 2);")
	assert.Contains(t, body, "$table->float('rating', 8, 1);")
	assert.Contains(t, body, "$table->enum('status', ['draft', 'published'])->default('draft');")
	// Tags outside the known set become Blueprint calls verbatim.
	assert.Contains(t, body, "$table->citext('note');")
}

func TestMigrationKeyRoundTrip(t *testing.T) {
	l := New()
	posts := table(t, "posts")
	name := "2025_11_03_120000_create_posts_table.php"

	assert.True(t, l.IsMigrationFor(name, posts))
	assert.False(t, l.IsMigrationFor(name, table(t, "users")))

	at, ok := l.MigrationTime(name)
	require.True(t, ok)
	assert.Equal(t, base, at)

	_, ok = l.MigrationTime("not_a_migration.php")
	assert.False(t, ok)
}

func TestGenModel(t *testing.T) {
	l := New()

	user, err := l.GenModel(table(t, "users"))
	require.NoError(t, err)
	assert.Equal(t, "app/Models/User.php", user.Path)
	body := string(user.Body)
	assert.Contains(t, body, "class User extends Model")
	assert.Contains(t, body, "use HasFactory;")
	assert.NotContains(t, body, "SoftDeletes")
	assert.Contains(t, body, "'name',")
	assert.Contains(t, body, "'email',")
	assert.NotContains(t, body, "'id',", "identity columns are not fillable")
	assert.Contains(t, body, "public function posts()")
	assert.Contains(t, body, "return $this->hasMany(Post::class, 'user_id');")

	post, err := l.GenModel(table(t, "posts"))
	require.NoError(t, err)
	body = string(post.Body)
	assert.Contains(t, body, "use Illuminate\\Database\\Eloquent\\SoftDeletes;")
	assert.Contains(t, body, "use SoftDeletes;")
	assert.Contains(t, body, "public function user()")
	assert.Contains(t, body, "return $this->belongsTo(User::class, 'user_id');")
}

func TestGenController(t *testing.T) {
	l := New()
	posts := table(t, "posts")

	web, err := l.GenController(posts, false)
	require.NoError(t, err)
	assert.Equal(t, "app/Http/Controllers/PostController.php", web.Path)
	body := string(web.Body)
	assert.Contains(t, body, "class PostController extends Controller")
	assert.Contains(t, body, "$posts = Post::latest()->paginate(15);")
	assert.Contains(t, body, "return view('posts.index', compact('posts'));")
	assert.Contains(t, body, "'title' => 'required|string|max:255',")
	assert.Contains(t, body, "'user_id' => 'required|integer|exists:users,id',")

	api, err := l.GenController(posts, true)
	require.NoError(t, err)
	body = string(api.Body)
	assert.Contains(t, body, "return response()->json($post, 201);")
	assert.NotContains(t, body, "view(")
}

func TestGenViews(t *testing.T) {
	l := New()
	artifacts, err := l.GenViews(table(t, "posts"))
	require.NoError(t, err)
	require.Len(t, artifacts, 5)

	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		paths[i] = a.Path
		assert.Equal(t, gen.KindView, a.Kind)
	}
	assert.Equal(t, []string{
		"resources/views/posts/index.blade.php",
		"resources/views/posts/create.blade.php",
		"resources/views/posts/edit.blade.php",
		"resources/views/posts/show.blade.php",
		"resources/views/posts/_form.blade.php",
	}, paths)

	index := string(artifacts[0].Body)
	assert.Contains(t, index, "@extends('layouts.app')")
	assert.Contains(t, index, "<h1>Posts</h1>")
	assert.Contains(t, index, "@foreach ($posts as $post)")
	assert.Contains(t, index, "{{ $post->title }}")

	create := string(artifacts[1].Body)
	assert.Contains(t, create, "route('posts.store')")
	assert.Contains(t, create, "@include('posts._form')")

	form := string(artifacts[4].Body)
	assert.Contains(t, form, `<label for="title">Title</label>`)
	assert.Contains(t, form, "old('title', $post->title ?? '')")
}

func TestGenViewsFormOnDemand(t *testing.T) {
	doc := blogDoc()
	doc.Tables[1].Views = []string{"index", "show"}
	artifacts, err := New().GenViews(compile(t, doc).Table("posts"))
	require.NoError(t, err)
	require.Len(t, artifacts, 2, "no form slots, no partial")
}

func TestGenViewsUnknownSlot(t *testing.T) {
	doc := blogDoc()
	doc.Tables[1].Views = []string{"index", "weird"}
	_, err := New().GenViews(compile(t, doc).Table("posts"))
	require.Error(t, err)
	assert.ErrorIs(t, err, gen.ErrStubMissing)
}

func TestGenFactory(t *testing.T) {
	l := New()

	user, err := l.GenFactory(table(t, "users"))
	require.NoError(t, err)
	assert.Equal(t, "database/factories/UserFactory.php", user.Path)
	body := string(user.Body)
	assert.Contains(t, body, "class UserFactory extends Factory")
	assert.Contains(t, body, "'name' => fake()->name(),")
	assert.Contains(t, body, "'email' => fake()->unique()->safeEmail(),")
	assert.Contains(t, body, "'age' => fake()->numberBetween(1, 1000),")

	post, err := l.GenFactory(table(t, "posts"))
	require.NoError(t, err)
	body = string(post.Body)
	assert.Contains(t, body, "'title' => fake()->sentence(3),")
	assert.Contains(t, body, "'body' => fake()->paragraph(),")
	assert.Contains(t, body, "'published' => fake()->boolean(),")
	assert.Contains(t, body, `'user_id' => \App\Models\User::factory(),`)
}

func TestRegistry(t *testing.T) {
	l := New()

	web := l.Registry(false)
	assert.Equal(t, "routes/web.php", web.Path)
	assert.Equal(t, "// <faber:resources>", web.Begin)
	assert.Equal(t, "// </faber:resources>", web.End)
	assert.Contains(t, string(web.Skeleton), "use Illuminate\\Support\\Facades\\Route;")
	assert.Contains(t, string(web.Skeleton), web.Begin)
	assert.Contains(t, string(web.Skeleton), web.End)

	api := l.Registry(true)
	assert.Equal(t, "routes/api.php", api.Path)
}

func TestGenRoute(t *testing.T) {
	l := New()
	posts := table(t, "posts")
	assert.Equal(t,
		`Route::resource('posts', \App\Http\Controllers\PostController::class);`,
		l.GenRoute(posts, false))
	assert.Equal(t,
		`Route::apiResource('posts', \App\Http\Controllers\PostController::class);`,
		l.GenRoute(posts, true))
}

func TestGenStandalone(t *testing.T) {
	l := New()

	tbl := &gen.Table{Name: "tags", Naming: gen.DeriveNaming("tags"), Fillable: []string{"name", "slug"}}
	model, err := l.GenStandaloneModel(tbl, &schema.Model{Name: "Tag"})
	require.NoError(t, err)
	assert.Equal(t, "app/Models/Tag.php", model.Path)
	assert.Contains(t, string(model.Body), "class Tag extends Model")
	assert.Contains(t, string(model.Body), "'slug',")

	health := &gen.Table{Name: "healths", Naming: gen.DeriveNaming("healths")}
	health.Naming.Controller = "HealthController"
	plain, err := l.GenStandaloneController(health, &schema.Controller{Name: "HealthController"}, false)
	require.NoError(t, err)
	assert.Equal(t, "app/Http/Controllers/HealthController.php", plain.Path)
	assert.Contains(t, string(plain.Body), "class HealthController extends Controller")
	assert.NotContains(t, string(plain.Body), "public function index", "non-resource controllers are empty")

	view, err := l.GenStandaloneView(&schema.View{Name: "dashboard", For: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "resources/views/admin/dashboard.blade.php", view.Path)
	assert.Contains(t, string(view.Body), "<h1>Dashboard</h1>")
}

func TestWithStubDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.stub"), []byte("custom [[ .Naming.Model ]]\n"), 0644))

	l := New(WithStubDir(dir))
	users := table(t, "users")

	model, err := l.GenModel(users)
	require.NoError(t, err)
	assert.Equal(t, "custom User\n", string(model.Body))

	// Stubs absent from the override directory keep their embedded copies.
	factory, err := l.GenFactory(users)
	require.NoError(t, err)
	assert.Contains(t, string(factory.Body), "class UserFactory extends Factory")
}

func TestStubParseError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.stub"), []byte("[[ .Naming.Model\n"), 0644))

	_, err := New(WithStubDir(dir)).GenModel(table(t, "users"))
	require.Error(t, err)
	assert.True(t, gen.IsStubError(err))
}

func TestRules(t *testing.T) {
	rules := Rules(table(t, "users"))
	byColumn := make(map[string]string, len(rules))
	for _, r := range rules {
		byColumn[r.Column] = r.Rule
	}
	assert.Equal(t, "required|string|max:100", byColumn["name"])
	assert.Equal(t, "required|email|unique:users,email", byColumn["email"])
	assert.Equal(t, "nullable|integer", byColumn["age"])
}

func TestEndToEnd(t *testing.T) {
	sink := gen.NewMemSink()
	rep, err := gen.Generate(blogDoc(),
		gen.WithDialect(New()),
		gen.WithSink(sink),
		gen.WithFeatures(gen.FeatureFactory),
		gen.WithNow(func() time.Time { return base }),
	)
	require.NoError(t, err)
	require.False(t, rep.Failed(), "failures: %v", rep.Failures)

	for _, path := range []string{
		"database/migrations/2025_11_03_120000_create_users_table.php",
		"database/migrations/2025_11_03_120001_create_posts_table.php",
		"app/Models/User.php",
		"app/Models/Post.php",
		"app/Http/Controllers/UserController.php",
		"app/Http/Controllers/PostController.php",
		"resources/views/posts/index.blade.php",
		"resources/views/posts/show.blade.php",
		"database/factories/UserFactory.php",
		"database/factories/PostFactory.php",
		"routes/web.php",
	} {
		assert.True(t, sink.Exists(path), path)
	}
	// Users requested no views.
	assert.False(t, sink.Exists("resources/views/users/index.blade.php"))

	routes, err := sink.Read("routes/web.php")
	require.NoError(t, err)
	got := string(routes)
	assert.Contains(t, got, `Route::resource('users', \App\Http\Controllers\UserController::class);`)
	assert.Contains(t, got, `Route::resource('posts', \App\Http\Controllers\PostController::class);`)
	assert.Less(t, strings.Index(got, "<?php"), strings.Index(got, "Route::resource"))
}
