package schema

// Type tags a column with its declared kind. The set below covers the
// tags the shipped dialects understand; any other string is passed through
// to the dialect untouched, so documents may use target-specific types the
// engine has no opinion about.
type Type string

const (
	TypeID            Type = "id"
	TypeIncrements    Type = "increments"
	TypeBigIncrements Type = "bigIncrements"
	TypeString        Type = "string"
	TypeChar          Type = "char"
	TypeText          Type = "text"
	TypeMediumText    Type = "mediumText"
	TypeLongText      Type = "longText"
	TypeInteger       Type = "integer"
	TypeTinyInteger   Type = "tinyInteger"
	TypeSmallInteger  Type = "smallInteger"
	TypeBigInteger    Type = "bigInteger"
	TypeUnsignedInt   Type = "unsignedInteger"
	TypeBoolean       Type = "boolean"
	TypeDate          Type = "date"
	TypeDateTime      Type = "dateTime"
	TypeTime          Type = "time"
	TypeTimestamp     Type = "timestamp"
	TypeDecimal       Type = "decimal"
	TypeFloat         Type = "float"
	TypeDouble        Type = "double"
	TypeEnum          Type = "enum"
	TypeJSON          Type = "json"
	TypeUUID          Type = "uuid"
	TypeBinary        Type = "binary"
)

var knownTypes = map[Type]bool{
	TypeID: true, TypeIncrements: true, TypeBigIncrements: true,
	TypeString: true, TypeChar: true, TypeText: true, TypeMediumText: true,
	TypeLongText: true, TypeInteger: true, TypeTinyInteger: true,
	TypeSmallInteger: true, TypeBigInteger: true, TypeUnsignedInt: true,
	TypeBoolean: true, TypeDate: true, TypeDateTime: true, TypeTime: true,
	TypeTimestamp: true, TypeDecimal: true, TypeFloat: true,
	TypeDouble: true, TypeEnum: true, TypeJSON: true, TypeUUID: true,
	TypeBinary: true,
}

// Known reports whether the tag belongs to the recognized set.
func (t Type) Known() bool { return knownTypes[t] }

// Identity reports whether the tag declares an auto-increment primary key.
func (t Type) Identity() bool {
	return t == TypeID || t == TypeIncrements || t == TypeBigIncrements
}

// Numeric reports whether the tag declares an integer-like column.
func (t Type) Numeric() bool {
	switch t {
	case TypeInteger, TypeTinyInteger, TypeSmallInteger, TypeBigInteger, TypeUnsignedInt:
		return true
	}
	return false
}

// Fractional reports whether the tag declares a column whose length may
// carry a precision and a scale.
func (t Type) Fractional() bool {
	return t == TypeDecimal || t == TypeFloat || t == TypeDouble
}

// Temporal reports whether the tag declares a date or time column.
func (t Type) Temporal() bool {
	switch t {
	case TypeDate, TypeDateTime, TypeTime, TypeTimestamp:
		return true
	}
	return false
}

// Sized reports whether the tag accepts a plain length argument.
func (t Type) Sized() bool {
	return t == TypeString || t == TypeChar
}

// reserved column names never appear in fillable/assignable derivations.
var reserved = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"deleted_at": true,
}

// Reserved reports whether the column name is managed by the engine and
// therefore excluded from assignable-field lists.
func Reserved(name string) bool { return reserved[name] }
