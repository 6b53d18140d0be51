package golang

import (
	"path"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/faber/compiler/gen"
	"github.com/syssam/faber/schema"
)

// GenModel renders the model struct for t, one exported field per column
// plus the timestamp columns the table directives imply.
func (g *Golang) GenModel(t *gen.Table) (*gen.Artifact, error) {
	f := jen.NewFile("model")
	f.HeaderComment(genHeader)

	f.Commentf("%s is the data model backed by the %s table.", t.Naming.Model, t.Name)
	f.Type().Id(t.Naming.Model).Struct(modelFields(t)...)

	f.Commentf("TableName returns the table %s maps to.", t.Naming.Model)
	f.Func().Params(jen.Id(t.Naming.Model)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(t.Name)),
	)

	p := path.Join(modelDir, gen.Snake(t.Naming.Model)+".go")
	return render(gen.KindModel, t.Name, p, f)
}

func modelFields(t *gen.Table) []jen.Code {
	fields := make([]jen.Code, 0, len(t.Columns)+3)
	for _, c := range t.Columns {
		fields = append(fields, modelField(c))
	}
	if t.Timestamps {
		fields = append(fields,
			jen.Id("CreatedAt").Qual("time", "Time").Tag(fieldTags("created_at", false)),
			jen.Id("UpdatedAt").Qual("time", "Time").Tag(fieldTags("updated_at", false)),
		)
	}
	if t.SoftDeletes {
		fields = append(fields,
			jen.Id("DeletedAt").Op("*").Qual("time", "Time").Tag(fieldTags("deleted_at", true)),
		)
	}
	return fields
}

func modelField(c *schema.Column) jen.Code {
	f := jen.Id(gen.Pascal(c.Name))
	if c.Nullable {
		f.Op("*")
	}
	return fieldType(f, c).Tag(fieldTags(c.Name, c.Nullable))
}

// fieldType appends the Go type for a column tag. Tags outside the known
// set degrade to string, mirroring the schema compiler's fallback.
func fieldType(f *jen.Statement, c *schema.Column) *jen.Statement {
	switch {
	case c.Type.Identity():
		return f.Int64()
	case c.Type == schema.TypeBoolean:
		return f.Bool()
	case c.Type == schema.TypeTinyInteger:
		return f.Int8()
	case c.Type == schema.TypeSmallInteger:
		return f.Int16()
	case c.Type == schema.TypeBigInteger:
		return f.Int64()
	case c.Type == schema.TypeUnsignedInt:
		return f.Uint()
	case c.Type.Numeric():
		return f.Int()
	case c.Type.Fractional():
		return f.Float64()
	case c.Type.Temporal():
		return f.Qual("time", "Time")
	case c.Type == schema.TypeJSON:
		return f.Qual("encoding/json", "RawMessage")
	case c.Type == schema.TypeUUID:
		return f.Qual("github.com/google/uuid", "UUID")
	case c.Type == schema.TypeBinary:
		return f.Index().Byte()
	}
	return f.String()
}

func fieldTags(column string, omitempty bool) map[string]string {
	j := column
	if omitempty {
		j += ",omitempty"
	}
	return map[string]string{"db": column, "json": j}
}
