package emit

import (
	"os"
	"path/filepath"
	"testing"

	"entgen/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func orderTables() ([]*core.Table, []*core.Relationship) {
	order := &core.Table{
		SchemaName: "dbo",
		TableName:  "Order",
		Columns: []*core.Column{
			{Name: "Id", Type: core.TypeInt, Ordinal: 1, IsPrimaryKey: true, IsIdentity: true},
			{Name: "Reference", Type: core.TypeString, RawType: "nvarchar", Ordinal: 2, MaxLength: int64Ptr(40)},
			{Name: "Total", Type: core.TypeDecimal, Ordinal: 3, Precision: intPtr(18), Scale: intPtr(2)},
			{Name: "PlacedOn", Type: core.TypeDateTime, Ordinal: 4, Nullable: true},
		},
		Indexes: []*core.Index{
			{Name: "PK_Order", IsUnique: true, IsPrimaryKey: true,
				Columns: []core.IndexColumn{{ColumnName: "Id", KeyOrdinal: 1}}},
			{Name: "UX_Order_Reference", IsUnique: true,
				Columns: []core.IndexColumn{{ColumnName: "Reference", KeyOrdinal: 1}}},
		},
	}
	detail := &core.Table{
		SchemaName: "dbo",
		TableName:  "OrderDetail",
		Columns: []*core.Column{
			{Name: "OrderId", Type: core.TypeInt, Ordinal: 1, IsPrimaryKey: true},
			{Name: "ProductId", Type: core.TypeInt, Ordinal: 2, IsPrimaryKey: true},
			{Name: "Quantity", Type: core.TypeInt, Ordinal: 3},
		},
		ForeignKeys: []*core.ForeignKey{{
			Name:         "FK_OrderDetail_Order",
			PrimaryTable: "Order",
			ColumnPairs:  []core.ColumnPair{{ForeignKeyColumn: "OrderId", PrimaryKeyColumn: "Id"}},
			DeleteRule:   core.RuleCascade,
			UpdateRule:   core.RuleNoAction,
			IsEnabled:    true,
		}},
	}
	rels := []*core.Relationship{{
		Kind:        core.OneToMany,
		SourceTable: "Order",
		TargetTable: "OrderDetail",
		ForeignKeyColumns: []core.ForeignKeyInfo{
			{ForeignKeyColumn: "OrderId", PrimaryKeyColumn: "Id", DeleteRule: core.RuleCascade, UpdateRule: core.RuleNoAction},
		},
	}}
	return []*core.Table{order, detail}, rels
}

func TestEmitFileLayout(t *testing.T) {
	dir := t.TempDir()
	tables, rels := orderTables()

	e := New(Options{
		Namespace:       "Shop.Data",
		OutputDir:       dir,
		Pluralize:       true,
		DataAnnotations: true,
	}, nil)
	require.NoError(t, e.Emit(tables, rels))

	for _, want := range []string{
		filepath.Join("Entities", "Order.cs"),
		filepath.Join("Entities", "OrderDetail.cs"),
		filepath.Join("Configurations", "OrderConfiguration.cs"),
		filepath.Join("Configurations", "OrderDetailConfiguration.cs"),
		"AppDbContext.cs",
	} {
		_, err := os.Stat(filepath.Join(dir, want))
		assert.NoError(t, err, want)
	}
}

func TestEmitEntityContent(t *testing.T) {
	dir := t.TempDir()
	tables, rels := orderTables()

	e := New(Options{Namespace: "Shop.Data", OutputDir: dir, Pluralize: true, DataAnnotations: true}, nil)
	require.NoError(t, e.Emit(tables, rels))

	entity := readFile(t, filepath.Join(dir, "Entities", "Order.cs"))
	assert.Contains(t, entity, "namespace Shop.Data.Entities")
	assert.Contains(t, entity, "public partial class Order")
	assert.Contains(t, entity, `[Table("Order", Schema = "dbo")]`)
	assert.Contains(t, entity, "[Key]")
	assert.Contains(t, entity, "[MaxLength(40)]")
	assert.Contains(t, entity, "public int Id { get; set; }")
	assert.Contains(t, entity, "public DateTime? PlacedOn { get; set; }")
	assert.Contains(t, entity, "public virtual ICollection<OrderDetail> OrderDetails { get; set; }")

	dependent := readFile(t, filepath.Join(dir, "Entities", "OrderDetail.cs"))
	assert.Contains(t, dependent, "public virtual Order Order { get; set; }")
}

func TestEmitConfigurationContent(t *testing.T) {
	dir := t.TempDir()
	tables, rels := orderTables()

	e := New(Options{Namespace: "Shop.Data", OutputDir: dir, Pluralize: true}, nil)
	require.NoError(t, e.Emit(tables, rels))

	conf := readFile(t, filepath.Join(dir, "Configurations", "OrderConfiguration.cs"))
	assert.Contains(t, conf, `builder.ToTable("Order", "dbo");`)
	assert.Contains(t, conf, "builder.HasKey(e => e.Id);")
	assert.Contains(t, conf, ".HasPrecision(18, 2)")
	assert.Contains(t, conf, ".ValueGeneratedOnAdd()")
	assert.Contains(t, conf, `builder.HasIndex(e => e.Reference).IsUnique().HasDatabaseName("UX_Order_Reference");`)

	detail := readFile(t, filepath.Join(dir, "Configurations", "OrderDetailConfiguration.cs"))
	assert.Contains(t, detail, "builder.HasKey(e => new { e.OrderId, e.ProductId });")
	assert.Contains(t, detail, "builder.HasOne(d => d.Order).WithMany(p => p.OrderDetails)")
	assert.Contains(t, detail, "OnDelete(DeleteBehavior.Cascade)")
	assert.Contains(t, detail, `HasConstraintName("FK_OrderDetail_Order")`)
}

func TestEmitContextContent(t *testing.T) {
	dir := t.TempDir()
	tables, rels := orderTables()

	e := New(Options{Namespace: "Shop.Data", OutputDir: dir, Pluralize: true, ContextName: "ShopContext"}, nil)
	require.NoError(t, e.Emit(tables, rels))

	ctx := readFile(t, filepath.Join(dir, "ShopContext.cs"))
	assert.Contains(t, ctx, "public partial class ShopContext : DbContext")
	assert.Contains(t, ctx, "public virtual DbSet<Order> Orders { get; set; }")
	assert.Contains(t, ctx, "public virtual DbSet<OrderDetail> OrderDetails { get; set; }")
	assert.Contains(t, ctx, "modelBuilder.ApplyConfiguration(new OrderConfiguration());")
}

func TestEmitUniqueConstraintKnob(t *testing.T) {
	profile := &core.Table{
		TableName: "UserProfile",
		Columns: []*core.Column{
			{Name: "ProfileId", Type: core.TypeInt, Ordinal: 1, IsPrimaryKey: true},
			{Name: "UserId", Type: core.TypeInt, Ordinal: 2},
		},
		Indexes: []*core.Index{{
			Name: "UX_UserProfile_UserId", IsUnique: true,
			Columns: []core.IndexColumn{{ColumnName: "UserId", KeyOrdinal: 1}},
		}},
		ForeignKeys: []*core.ForeignKey{{
			Name:         "FK_UserProfile_User",
			PrimaryTable: "User",
			ColumnPairs:  []core.ColumnPair{{ForeignKeyColumn: "UserId", PrimaryKeyColumn: "Id"}},
			IsEnabled:    true,
		}},
	}

	t.Run("off preserves the legacy many side", func(t *testing.T) {
		dir := t.TempDir()
		e := New(Options{Namespace: "Shop.Data", OutputDir: dir, Pluralize: true}, nil)
		require.NoError(t, e.Emit([]*core.Table{profile}, nil))

		conf := readFile(t, filepath.Join(dir, "Configurations", "UserProfileConfiguration.cs"))
		assert.Contains(t, conf, ".WithMany(p => p.UserProfiles)")
	})

	t.Run("on routes through the unique-index predicate", func(t *testing.T) {
		dir := t.TempDir()
		e := New(Options{Namespace: "Shop.Data", OutputDir: dir, Pluralize: true, UseUniqueConstraintDetection: true}, nil)
		require.NoError(t, e.Emit([]*core.Table{profile}, nil))

		conf := readFile(t, filepath.Join(dir, "Configurations", "UserProfileConfiguration.cs"))
		assert.Contains(t, conf, ".WithOne(p => p.UserProfile)")
	})
}

func TestEmitNoPluralize(t *testing.T) {
	dir := t.TempDir()
	tables, rels := orderTables()

	e := New(Options{Namespace: "Shop.Data", OutputDir: dir, Pluralize: false}, nil)
	require.NoError(t, e.Emit(tables, rels))

	ctx := readFile(t, filepath.Join(dir, "AppDbContext.cs"))
	assert.Contains(t, ctx, "public virtual DbSet<Order> Order { get; set; }")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
