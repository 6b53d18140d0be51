package schema

// Document is the top-level schema container: an ordered sequence of table
// declarations plus optional standalone artifacts not backed by a table.
// Order is preserved from the source; the engine processes tables in
// document order.
type Document struct {
	Tables      []*Table      `yaml:"tables"`
	Models      []*Model      `yaml:"models,omitempty"`
	Controllers []*Controller `yaml:"controllers,omitempty"`
	Views       []*View       `yaml:"views,omitempty"`
}

// Table returns the table with the given name, or nil.
func (d *Document) Table(name string) *Table {
	for _, t := range d.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// Model is a standalone data-model declaration. Table and Fillable are
// optional; when empty they are derived from the model name.
type Model struct {
	Name     string   `yaml:"name"`
	Table    string   `yaml:"table,omitempty"`
	Fillable []string `yaml:"fillable,omitempty"`
}

// Controller is a standalone request-handler declaration. Resource reports
// whether the controller should carry the full resource action set; a
// non-resource controller is generated empty.
type Controller struct {
	Name     string `yaml:"name"`
	Model    string `yaml:"model,omitempty"`
	Resource bool   `yaml:"resource,omitempty"`
}

// View is a standalone view declaration. For names the directory the view
// belongs to; empty means the registry root.
type View struct {
	Name string `yaml:"name"`
	For  string `yaml:"for,omitempty"`
}
