// Package emit renders the schema graph into entity classes, fluent
// configuration classes and a context file. It consumes the tables and
// relationships read-only; everything it needs is in the graph.
package emit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"entgen/internal/core"
	"entgen/internal/logging"
)

// Options configures the emitter.
type Options struct {
	Namespace       string
	OutputDir       string
	ContextName     string
	Pluralize       bool
	DataAnnotations bool

	// UseUniqueConstraintDetection routes one-to-one detection for
	// emitted foreign-key configurations through the same unique-index
	// predicate the analyzer uses. Off by default: the legacy behavior
	// never detected unique constraints here.
	UseUniqueConstraintDetection bool
}

// Emitter writes the generated source tree.
type Emitter struct {
	opts Options
	log  *logging.Logger

	entity  *template.Template
	config  *template.Template
	context *template.Template
}

// New creates an emitter. A nil logger discards diagnostics.
func New(opts Options, log *logging.Logger) *Emitter {
	if log == nil {
		log = logging.NewNop()
	}
	if opts.ContextName == "" {
		opts.ContextName = "AppDbContext"
	}
	return &Emitter{
		opts:    opts,
		log:     log,
		entity:  template.Must(template.New("entity").Parse(entityTemplate)),
		config:  template.Must(template.New("configuration").Parse(configurationTemplate)),
		context: template.Must(template.New("context").Parse(contextTemplate)),
	}
}

// Emit writes Entities/<Name>.cs and Configurations/<Name>Configuration.cs
// per table plus the context file under the output directory.
func (e *Emitter) Emit(tables []*core.Table, rels []*core.Relationship) error {
	for _, sub := range []string{"Entities", "Configurations"} {
		if err := os.MkdirAll(filepath.Join(e.opts.OutputDir, sub), 0o755); err != nil {
			return &core.CodeGenerationError{Err: fmt.Errorf("failed to create output directory: %w", err)}
		}
	}

	for _, t := range tables {
		name := EntityName(t.TableName)
		if err := e.render(e.entity, filepath.Join(e.opts.OutputDir, "Entities", name+".cs"), e.entityModel(t, rels)); err != nil {
			return &core.CodeGenerationError{Table: t.TableName, Err: err}
		}
		if err := e.render(e.config, filepath.Join(e.opts.OutputDir, "Configurations", name+"Configuration.cs"), e.configModel(t)); err != nil {
			return &core.CodeGenerationError{Table: t.TableName, Err: err}
		}
		e.log.Infof("Generated entity %s", name)
	}

	if err := e.render(e.context, filepath.Join(e.opts.OutputDir, e.opts.ContextName+".cs"), e.contextModel(tables)); err != nil {
		return &core.CodeGenerationError{Err: err}
	}
	e.log.Infof("Generated context %s", e.opts.ContextName)
	return nil
}

func (e *Emitter) render(t *template.Template, path string, data any) error {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

type propertyModel struct {
	Name        string
	Type        string
	Annotations []string
}

type collectionModel struct {
	Name        string
	ElementType string
}

type referenceModel struct {
	Name string
	Type string
}

type entityModel struct {
	Namespace       string
	DataAnnotations bool
	ClassName       string
	TableName       string
	SchemaName      string
	Properties      []propertyModel
	Collections     []collectionModel
	References      []referenceModel
}

func (e *Emitter) entityModel(t *core.Table, rels []*core.Relationship) entityModel {
	m := entityModel{
		Namespace:       e.opts.Namespace,
		DataAnnotations: e.opts.DataAnnotations,
		ClassName:       EntityName(t.TableName),
		TableName:       t.TableName,
		SchemaName:      t.SchemaName,
	}

	for _, c := range t.Columns {
		p := propertyModel{Name: PascalCase(c.Name), Type: propertyType(c)}
		if e.opts.DataAnnotations {
			if c.IsPrimaryKey {
				p.Annotations = append(p.Annotations, "[Key]")
			}
			if !c.Nullable && !valueTypes[p.Type] {
				p.Annotations = append(p.Annotations, "[Required]")
			}
			if c.MaxLength != nil && *c.MaxLength > 0 && p.Type == core.TypeString {
				p.Annotations = append(p.Annotations, fmt.Sprintf("[MaxLength(%d)]", *c.MaxLength))
			}
		}
		m.Properties = append(m.Properties, p)
	}

	m.Collections, m.References = e.navigations(t, rels)
	return m
}

// navigations derives navigation properties for one entity from the
// relationship list. The principal side of a one-to-many gets a
// collection, the dependent a reference; one-to-one yields a reference
// on both ends; many-to-many gives the endpoint a collection of the
// junction entity and the junction a reference back.
func (e *Emitter) navigations(t *core.Table, rels []*core.Relationship) ([]collectionModel, []referenceModel) {
	var collections []collectionModel
	var references []referenceModel

	collectionName := func(entity string) string {
		if e.opts.Pluralize {
			return Pluralize(entity)
		}
		return entity
	}

	for _, rel := range rels {
		switch rel.Kind {
		case core.OneToMany:
			if strings.EqualFold(rel.SourceTable, t.TableName) {
				dep := EntityName(rel.TargetTable)
				collections = append(collections, collectionModel{Name: collectionName(dep), ElementType: dep})
			}
			if strings.EqualFold(rel.TargetTable, t.TableName) {
				principal := EntityName(rel.SourceTable)
				references = append(references, referenceModel{Name: principal, Type: principal})
			}
		case core.OneToOne:
			if strings.EqualFold(rel.SourceTable, t.TableName) {
				principal := EntityName(rel.TargetTable)
				references = append(references, referenceModel{Name: principal, Type: principal})
			}
			if strings.EqualFold(rel.TargetTable, t.TableName) {
				dep := EntityName(rel.SourceTable)
				references = append(references, referenceModel{Name: dep, Type: dep})
			}
		case core.ManyToMany:
			if strings.EqualFold(rel.SourceTable, t.TableName) {
				junction := EntityName(rel.TargetTable)
				collections = append(collections, collectionModel{Name: collectionName(junction), ElementType: junction})
			}
			if strings.EqualFold(rel.TargetTable, t.TableName) {
				endpoint := EntityName(rel.SourceTable)
				references = append(references, referenceModel{Name: endpoint, Type: endpoint})
			}
		}
	}
	return dedupeCollections(collections), dedupeReferences(references)
}

func dedupeCollections(in []collectionModel) []collectionModel {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, c := range in {
		if !seen[c.Name] {
			seen[c.Name] = true
			out = append(out, c)
		}
	}
	return out
}

func dedupeReferences(in []referenceModel) []referenceModel {
	seen := make(map[string]bool, len(in))
	out := in[:0:0]
	for _, r := range in {
		if !seen[r.Name] {
			seen[r.Name] = true
			out = append(out, r)
		}
	}
	return out
}

type configModel struct {
	Namespace  string
	ClassName  string
	Statements []string
}

func (e *Emitter) configModel(t *core.Table) configModel {
	m := configModel{
		Namespace: e.opts.Namespace,
		ClassName: EntityName(t.TableName),
	}
	m.Statements = append(m.Statements, fmt.Sprintf("builder.ToTable(%q%s);", t.TableName, schemaArg(t.SchemaName)))

	if pk := t.PrimaryKeyColumns(); len(pk) > 0 {
		m.Statements = append(m.Statements, fmt.Sprintf("builder.HasKey(%s);", lambda(columnNames(pk))))
	}

	for _, c := range t.Columns {
		m.Statements = append(m.Statements, propertyStatement(c))
	}

	for _, idx := range t.UniqueNonPrimaryIndexes() {
		var names []string
		for _, ic := range idx.KeyColumns() {
			names = append(names, ic.ColumnName)
		}
		m.Statements = append(m.Statements,
			fmt.Sprintf("builder.HasIndex(%s).IsUnique().HasDatabaseName(%q);", lambda(names), idx.Name))
	}

	for _, fk := range t.ForeignKeys {
		m.Statements = append(m.Statements, e.foreignKeyStatement(t, fk))
	}
	return m
}

func schemaArg(schema string) string {
	if schema == "" {
		return ""
	}
	return fmt.Sprintf(", %q", schema)
}

func columnNames(cols []*core.Column) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	return names
}

// lambda renders "e => e.Prop" or "e => new { e.A, e.B }".
func lambda(columns []string) string {
	props := make([]string, 0, len(columns))
	for _, c := range columns {
		props = append(props, "e."+PascalCase(c))
	}
	if len(props) == 1 {
		return "e => " + props[0]
	}
	return "e => new { " + strings.Join(props, ", ") + " }"
}

func propertyStatement(c *core.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "builder.Property(e => e.%s).HasColumnName(%q)", PascalCase(c.Name), c.Name)
	if !c.Nullable {
		b.WriteString(".IsRequired()")
	}
	if c.MaxLength != nil && *c.MaxLength > 0 {
		fmt.Fprintf(&b, ".HasMaxLength(%d)", *c.MaxLength)
	}
	if c.Precision != nil && c.Scale != nil {
		fmt.Fprintf(&b, ".HasPrecision(%d, %d)", *c.Precision, *c.Scale)
	}
	if c.IsIdentity {
		b.WriteString(".ValueGeneratedOnAdd()")
	}
	if c.IsRowVersion {
		b.WriteString(".IsRowVersion()")
	}
	if c.IsComputed && c.ComputedExpression != "" {
		fmt.Fprintf(&b, ".HasComputedColumnSql(%q)", c.ComputedExpression)
	} else if c.DefaultValue != nil {
		fmt.Fprintf(&b, ".HasDefaultValueSql(%q)", *c.DefaultValue)
	}
	if c.Comment != "" {
		fmt.Fprintf(&b, ".HasComment(%q)", c.Comment)
	}
	b.WriteString(";")
	return b.String()
}

// foreignKeyStatement renders the relationship configuration for one
// foreign key. One-to-one is only emitted when the unique-constraint
// knob routes through the analyzer's predicate; the legacy path always
// produced the many side.
func (e *Emitter) foreignKeyStatement(t *core.Table, fk *core.ForeignKey) string {
	principal := EntityName(fk.PrimaryTable)
	dependent := EntityName(t.TableName)

	collection := dependent
	if e.opts.Pluralize {
		collection = Pluralize(dependent)
	}
	inverse := fmt.Sprintf(".WithMany(p => p.%s)", collection)
	if e.opts.UseUniqueConstraintDetection && e.hasUniqueConstraint(t, fk) {
		inverse = fmt.Sprintf(".WithOne(p => p.%s)", dependent)
	}

	return fmt.Sprintf("builder.HasOne(d => d.%s)%s.HasForeignKey(%s).OnDelete(DeleteBehavior.%s).HasConstraintName(%q);",
		principal, inverse, lambda(fk.ForeignKeyColumns()), deleteBehavior(fk.DeleteRule), fk.Name)
}

// hasUniqueConstraint is the knob-controlled predicate: with detection
// enabled it mirrors the analyzer's unique-index test, otherwise it
// reports false.
func (e *Emitter) hasUniqueConstraint(t *core.Table, fk *core.ForeignKey) bool {
	if !e.opts.UseUniqueConstraintDetection {
		return false
	}
	cols := fk.ForeignKeyColumns()
	for _, idx := range t.UniqueNonPrimaryIndexes() {
		if idx.CoversExactly(cols) {
			return true
		}
	}
	return false
}

type contextEntity struct {
	ClassName string
	SetName   string
}

type contextModel struct {
	Namespace   string
	ContextName string
	Entities    []contextEntity
}

func (e *Emitter) contextModel(tables []*core.Table) contextModel {
	m := contextModel{Namespace: e.opts.Namespace, ContextName: e.opts.ContextName}
	for _, t := range tables {
		name := EntityName(t.TableName)
		set := name
		if e.opts.Pluralize {
			set = Pluralize(name)
		}
		m.Entities = append(m.Entities, contextEntity{ClassName: name, SetName: set})
	}
	return m
}
