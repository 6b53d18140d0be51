package golang

import (
	"path"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/faber/compiler/gen"
)

// GenController renders the HTTP handler for t: a storage interface, the
// handler type, a chi Mount method and the five resource actions. Bodies
// encode JSON in both modes; the api flag moves the mount under /api.
func (g *Golang) GenController(t *gen.Table, api bool) (*gen.Artifact, error) {
	n := t.Naming
	modelPkg := g.module + "/" + modelDir
	store := n.Model + "Store"
	base := "/" + n.RouteResource
	if api {
		base = "/api/" + n.RouteResource
	}

	f := jen.NewFile("handler")
	f.HeaderComment(genHeader)
	f.ImportName(chiPkg, "chi")
	f.ImportName(modelPkg, "model")

	f.Commentf("%s is the persistence surface %s depends on.", store, n.Controller)
	f.Type().Id(store).Interface(
		jen.Id("List").Params(jen.Qual("context", "Context")).Params(jen.Index().Qual(modelPkg, n.Model), jen.Error()),
		jen.Id("Get").Params(jen.Qual("context", "Context"), jen.Int64()).Params(jen.Qual(modelPkg, n.Model), jen.Error()),
		jen.Id("Create").Params(jen.Qual("context", "Context"), jen.Op("*").Qual(modelPkg, n.Model)).Error(),
		jen.Id("Update").Params(jen.Qual("context", "Context"), jen.Op("*").Qual(modelPkg, n.Model)).Error(),
		jen.Id("Delete").Params(jen.Qual("context", "Context"), jen.Int64()).Error(),
	)

	f.Commentf("%s serves the %s resource.", n.Controller, n.RouteResource)
	f.Type().Id(n.Controller).Struct(
		jen.Id("Store").Id(store),
	)

	f.Commentf("Mount registers the %s routes on r.", n.RouteResource)
	f.Func().Params(receiver(n.Controller)).Id("Mount").Params(jen.Id("r").Qual(chiPkg, "Router")).Block(
		jen.Id("r").Dot("Route").Call(jen.Lit(base), jen.Func().Params(jen.Id("r").Qual(chiPkg, "Router")).Block(
			jen.Id("r").Dot("Get").Call(jen.Lit("/"), jen.Id("h").Dot("Index")),
			jen.Id("r").Dot("Post").Call(jen.Lit("/"), jen.Id("h").Dot("Create")),
			jen.Id("r").Dot("Get").Call(jen.Lit("/{id}"), jen.Id("h").Dot("Show")),
			jen.Id("r").Dot("Put").Call(jen.Lit("/{id}"), jen.Id("h").Dot("Update")),
			jen.Id("r").Dot("Delete").Call(jen.Lit("/{id}"), jen.Id("h").Dot("Delete")),
		)),
	)

	index := []jen.Code{
		jen.List(jen.Id(n.Collection), jen.Err()).Op(":=").Id("h").Dot("Store").Dot("List").Call(ctx()),
		failWith("StatusInternalServerError"),
	}
	index = append(index, respond("StatusOK", jen.Id(n.Collection))...)
	f.Commentf("Index lists the %s collection.", n.RouteResource)
	handlerFunc(f, n.Controller, "Index", index)

	create := []jen.Code{
		jen.Var().Id(n.Variable).Qual(modelPkg, n.Model),
		decodeBody(n.Variable),
		storeCall("Create", jen.Op("&").Id(n.Variable)),
	}
	create = append(create, respond("StatusCreated", jen.Id(n.Variable))...)
	f.Commentf("Create stores a new %s from the request body.", n.Variable)
	handlerFunc(f, n.Controller, "Create", create)

	show := parseID()
	show = append(show,
		jen.List(jen.Id(n.Variable), jen.Err()).Op(":=").Id("h").Dot("Store").Dot("Get").Call(ctx(), jen.Id("id")),
		failWith("StatusNotFound"),
	)
	show = append(show, respond("StatusOK", jen.Id(n.Variable))...)
	f.Commentf("Show returns one %s by id.", n.Variable)
	handlerFunc(f, n.Controller, "Show", show)

	update := parseID()
	update = append(update,
		jen.Var().Id(n.Variable).Qual(modelPkg, n.Model),
		decodeBody(n.Variable),
	)
	if field, ok := identityField(t); ok {
		update = append(update, jen.Id(n.Variable).Dot(field).Op("=").Id("id"))
	}
	update = append(update, storeCall("Update", jen.Op("&").Id(n.Variable)))
	update = append(update, respond("StatusOK", jen.Id(n.Variable))...)
	f.Commentf("Update replaces one %s from the request body.", n.Variable)
	handlerFunc(f, n.Controller, "Update", update)

	del := parseID()
	del = append(del,
		storeCall("Delete", jen.Id("id")),
		jen.Id("w").Dot("WriteHeader").Call(jen.Qual("net/http", "StatusNoContent")),
	)
	f.Commentf("Delete removes one %s by id.", n.Variable)
	handlerFunc(f, n.Controller, "Delete", del)

	p := path.Join(handlerDir, gen.Snake(t.Naming.Model)+".go")
	return render(gen.KindController, t.Name, p, f)
}

func receiver(ctrl string) jen.Code {
	return jen.Id("h").Op("*").Id(ctrl)
}

func handlerFunc(f *jen.File, ctrl, name string, body []jen.Code) {
	f.Func().Params(receiver(ctrl)).Id(name).Params(
		jen.Id("w").Qual("net/http", "ResponseWriter"),
		jen.Id("r").Op("*").Qual("net/http", "Request"),
	).Block(body...)
}

func ctx() jen.Code {
	return jen.Id("r").Dot("Context").Call()
}

func httpError(msg jen.Code, status string) jen.Code {
	return jen.Qual("net/http", "Error").Call(jen.Id("w"), msg, jen.Qual("net/http", status))
}

// failWith guards the preceding two-value store call.
func failWith(status string) jen.Code {
	return jen.If(jen.Err().Op("!=").Nil()).Block(
		httpError(jen.Err().Dot("Error").Call(), status),
		jen.Return(),
	)
}

// storeCall invokes a single-error store method and fails the request with
// a 500 when it errors.
func storeCall(method string, arg jen.Code) jen.Code {
	return jen.If(
		jen.Err().Op(":=").Id("h").Dot("Store").Dot(method).Call(ctx(), arg),
		jen.Err().Op("!=").Nil(),
	).Block(
		httpError(jen.Err().Dot("Error").Call(), "StatusInternalServerError"),
		jen.Return(),
	)
}

func parseID() []jen.Code {
	return []jen.Code{
		jen.List(jen.Id("id"), jen.Err()).Op(":=").Qual("strconv", "ParseInt").Call(
			jen.Qual(chiPkg, "URLParam").Call(jen.Id("r"), jen.Lit("id")), jen.Lit(10), jen.Lit(64),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			httpError(jen.Lit("invalid id"), "StatusBadRequest"),
			jen.Return(),
		),
	}
}

func decodeBody(variable string) jen.Code {
	return jen.If(
		jen.Err().Op(":=").Qual("encoding/json", "NewDecoder").Call(jen.Id("r").Dot("Body")).
			Dot("Decode").Call(jen.Op("&").Id(variable)),
		jen.Err().Op("!=").Nil(),
	).Block(
		httpError(jen.Err().Dot("Error").Call(), "StatusBadRequest"),
		jen.Return(),
	)
}

func respond(status string, value jen.Code) []jen.Code {
	return []jen.Code{
		jen.Id("w").Dot("Header").Call().Dot("Set").Call(jen.Lit("Content-Type"), jen.Lit("application/json")),
		jen.Id("w").Dot("WriteHeader").Call(jen.Qual("net/http", status)),
		jen.Qual("encoding/json", "NewEncoder").Call(jen.Id("w")).Dot("Encode").Call(value),
	}
}
