package golang

import (
	"fmt"
	"path"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/schema"
)

// GenViews renders one html/template file per requested slot. Each file
// defines a single template named "<resource>/<slot>", so the application
// can parse the whole tree into one template set without collisions.
func (g *Golang) GenViews(t *gen.Table) ([]*gen.Artifact, error) {
	out := make([]*gen.Artifact, 0, len(t.Views))
	for _, slot := range t.Views {
		body, err := viewBody(t, slot)
		if err != nil {
			return nil, err
		}
		out = append(out, &gen.Artifact{
			Kind: gen.KindView,
			Path: path.Join(templatesDir, t.Naming.RouteResource, slot+".html.tmpl"),
			Body: body,
		})
	}
	return out, nil
}

func viewBody(t *gen.Table, slot string) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "{{define %q}}\n", t.Naming.RouteResource+"/"+slot)
	switch slot {
	case "index":
		indexView(&b, t)
	case "show":
		showView(&b, t)
	case "create":
		formView(&b, t, false)
	case "edit":
		formView(&b, t, true)
	default:
		return nil, gen.NewStubError("golang", "view."+slot, gen.ErrStubMissing)
	}
	b.WriteString("{{end}}\n")
	return []byte(b.String()), nil
}

// indexView lists the collection in a table. The data value carries the
// collection under its plural Pascal name (e.g. .Posts).
func indexView(b *strings.Builder, t *gen.Table) {
	n := t.Naming
	base := "/" + n.RouteResource
	id, linked := identityField(t)
	fmt.Fprintf(b, "<h1>%s</h1>\n\n", gen.Label(n.RouteResource))
	fmt.Fprintf(b, "<a href=%q>New %s</a>\n\n", base+"/create", gen.Label(n.Variable))
	b.WriteString("<table>\n  <thead>\n    <tr>\n")
	for _, col := range t.Fillable {
		fmt.Fprintf(b, "      <th>%s</th>\n", gen.Label(col))
	}
	if linked {
		b.WriteString("      <th></th>\n")
	}
	b.WriteString("    </tr>\n  </thead>\n  <tbody>\n")
	fmt.Fprintf(b, "    {{range .%s}}\n    <tr>\n", gen.Pascal(n.Collection))
	for _, col := range t.Fillable {
		fmt.Fprintf(b, "      <td>{{.%s}}</td>\n", gen.Pascal(col))
	}
	if linked {
		fmt.Fprintf(b, "      <td><a href=\"%s/{{.%s}}\">View</a></td>\n", base, id)
	}
	b.WriteString("    </tr>\n    {{end}}\n  </tbody>\n</table>\n")
}

// showView renders one record as a definition list. The data value carries
// the record under its model name (e.g. .Post).
func showView(b *strings.Builder, t *gen.Table) {
	n := t.Naming
	fmt.Fprintf(b, "<h1>%s</h1>\n\n<dl>\n", gen.Label(n.Variable))
	for _, col := range t.Fillable {
		fmt.Fprintf(b, "  <dt>%s</dt>\n  <dd>{{.%s.%s}}</dd>\n", gen.Label(col), n.Model, gen.Pascal(col))
	}
	b.WriteString("</dl>\n\n")
	if id, ok := identityField(t); ok {
		fmt.Fprintf(b, "<a href=\"/%s/{{.%s.%s}}/edit\">Edit</a>\n", n.RouteResource, n.Model, id)
	}
	fmt.Fprintf(b, "<a href=%q>Back</a>\n", "/"+n.RouteResource)
}

// formView renders the create or edit form. Edit forms post to the record
// URL with a _method override field and prefill the current values.
func formView(b *strings.Builder, t *gen.Table, edit bool) {
	n := t.Naming
	base := "/" + n.RouteResource
	action := base
	if edit {
		if id, ok := identityField(t); ok {
			action = fmt.Sprintf("%s/{{.%s.%s}}", base, n.Model, id)
		}
		fmt.Fprintf(b, "<h1>Edit %s</h1>\n\n", gen.Label(n.Variable))
	} else {
		fmt.Fprintf(b, "<h1>New %s</h1>\n\n", gen.Label(n.Variable))
	}
	fmt.Fprintf(b, "<form method=\"post\" action=\"%s\">\n", action)
	if edit {
		b.WriteString("  <input type=\"hidden\" name=\"_method\" value=\"PUT\">\n")
	}
	for _, col := range t.Fillable {
		formField(b, t, col, edit)
	}
	b.WriteString("\n  <button type=\"submit\">Save</button>\n")
	fmt.Fprintf(b, "  <a href=%q>Cancel</a>\n</form>\n", base)
}

func formField(b *strings.Builder, t *gen.Table, col string, edit bool) {
	n := t.Naming
	value := fmt.Sprintf("{{.%s.%s}}", n.Model, gen.Pascal(col))
	fmt.Fprintf(b, "\n  <label for=%q>%s</label>\n", col, gen.Label(col))
	c := t.Column(col)
	switch {
	case c != nil && isText(c.Type):
		if edit {
			fmt.Fprintf(b, "  <textarea name=%q id=%q>%s</textarea>\n", col, col, value)
		} else {
			fmt.Fprintf(b, "  <textarea name=%q id=%q></textarea>\n", col, col)
		}
	case c != nil && c.Type == schema.TypeBoolean:
		checked := ""
		if edit {
			checked = fmt.Sprintf("{{if .%s.%s}} checked{{end}}", n.Model, gen.Pascal(col))
		}
		fmt.Fprintf(b, "  <input type=\"checkbox\" name=%q id=%q%s>\n", col, col, checked)
	default:
		if edit {
			fmt.Fprintf(b, "  <input type=%q name=%q id=%q value=\"%s\">\n", inputType(c, col), col, col, value)
		} else {
			fmt.Fprintf(b, "  <input type=%q name=%q id=%q>\n", inputType(c, col), col, col)
		}
	}
}

func isText(t schema.Type) bool {
	return t == schema.TypeText || t == schema.TypeMediumText || t == schema.TypeLongText
}

// inputType picks the HTML input type for a column. Name conventions win
// over the declared type, matching how the factory seeds values.
func inputType(c *schema.Column, name string) string {
	switch name {
	case "email":
		return "email"
	case "password":
		return "password"
	}
	if c == nil {
		return "text"
	}
	switch {
	case c.Type.Numeric() || c.Type.Fractional():
		return "number"
	case c.Type == schema.TypeDate:
		return "date"
	case c.Type == schema.TypeDateTime, c.Type == schema.TypeTimestamp:
		return "datetime-local"
	case c.Type == schema.TypeTime:
		return "time"
	}
	return "text"
}

// GenStandaloneModel renders a model declared without a table. Declared
// fillable names become string fields; the schema carries no types for
// them.
func (g *Golang) GenStandaloneModel(t *gen.Table, _ *schema.Model) (*gen.Artifact, error) {
	n := t.Naming
	f := jen.NewFile("model")
	f.HeaderComment(genHeader)
	f.Commentf("%s is the %s data model.", n.Model, n.Table)
	f.Type().Id(n.Model).StructFunc(func(s *jen.Group) {
		for _, col := range t.Fillable {
			s.Id(gen.Pascal(col)).String().Tag(map[string]string{"db": col, "json": col})
		}
	})
	f.Line()
	f.Comment("TableName returns the table the model maps to.")
	f.Func().Params(jen.Id(n.Model)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(t.Name)),
	)
	return render(gen.KindModel, "", path.Join(modelDir, gen.Snake(n.Model)+".go"), f)
}

// GenStandaloneController renders a declared controller. Resource
// controllers carry the full action set; anything else is an empty shell
// the application extends.
func (g *Golang) GenStandaloneController(t *gen.Table, c *schema.Controller, api bool) (*gen.Artifact, error) {
	if c.Resource {
		a, err := g.GenController(t, api)
		if err != nil {
			return nil, err
		}
		a.Path = path.Join(handlerDir, gen.Snake(c.Name)+".go")
		return a, nil
	}
	f := jen.NewFile("handler")
	f.HeaderComment(genHeader)
	f.ImportName(chiPkg, "chi")
	f.Commentf("%s handles requests outside the generated resource set.", c.Name)
	f.Type().Id(c.Name).Struct()
	f.Line()
	f.Comment("Mount attaches the handler's routes to r.")
	f.Func().Params(jen.Id("h").Op("*").Id(c.Name)).Id("Mount").Params(
		jen.Id("r").Qual(chiPkg, "Router"),
	).Block()
	return render(gen.KindController, "", path.Join(handlerDir, gen.Snake(c.Name)+".go"), f)
}

// GenStandaloneView renders a view declared without a table.
func (g *Golang) GenStandaloneView(v *schema.View) (*gen.Artifact, error) {
	name := v.Name
	if v.For != "" {
		name = v.For + "/" + v.Name
	}
	body := fmt.Sprintf("{{define %q}}\n<h1>%s</h1>\n{{end}}\n", name, gen.Label(v.Name))
	return &gen.Artifact{
		Kind: gen.KindView,
		Path: path.Join(templatesDir, v.For, v.Name+".html.tmpl"),
		Body: []byte(body),
	}, nil
}
