package gen

// Naming is the single source of truth for every name derived from a table.
// It is computed once per table and consumed by all emitters, so a model
// named Post always pairs with PostController and the route segment posts.
type Naming struct {
	// Table is the canonical (snake_case) table name, as declared.
	Table string
	// Model is the singular, StudlyCase data-model name.
	Model string
	// Controller is the request-handler class name.
	Controller string
	// RouteResource is the plural, snake_case route segment.
	RouteResource string
	// Variable is the singular, camelCase identifier used inside emitted
	// code (e.g. loop variables in views).
	Variable string
	// Collection is the plural, camelCase identifier used for lists of
	// models (e.g. the variable a controller hands to an index view).
	Collection string
	// Receiver is a short identifier for the model, used by dialects that
	// emit languages with explicit receivers.
	Receiver string
}

// DeriveNaming computes the naming bundle for a declared table name. The
// derivation is deterministic: equal inputs always produce equal bundles.
func DeriveNaming(name string) Naming {
	table := snake(name)
	model := pascal(singular(table))
	resource := plural(table)
	return Naming{
		Table:         table,
		Model:         model,
		Controller:    model + "Controller",
		RouteResource: resource,
		Variable:      camel(singular(table)),
		Collection:    camel(resource),
		Receiver:      receiver(model),
	}
}
