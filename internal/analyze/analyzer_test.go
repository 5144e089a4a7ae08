package analyze

import (
	"testing"

	"entgen/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pkTable(name string) *core.Table {
	return &core.Table{
		TableName: name,
		Columns:   []*core.Column{{Name: "Id", Type: core.TypeInt, Ordinal: 1, IsPrimaryKey: true}},
		Indexes: []*core.Index{{
			Name: "PK_" + name, IsUnique: true, IsPrimaryKey: true,
			Columns: []core.IndexColumn{{ColumnName: "Id", KeyOrdinal: 1}},
		}},
	}
}

func enabledFK(name, primaryTable string, pairs ...core.ColumnPair) *core.ForeignKey {
	return &core.ForeignKey{
		Name:         name,
		PrimaryTable: primaryTable,
		ColumnPairs:  pairs,
		DeleteRule:   core.RuleCascade,
		UpdateRule:   core.RuleNoAction,
		IsEnabled:    true,
	}
}

// studentCourse builds the canonical junction: both primary-key
// columns are foreign keys into Student and Course.
func studentCourse() *core.Table {
	return &core.Table{
		TableName: "StudentCourse",
		Columns: []*core.Column{
			{Name: "StudentId", Type: core.TypeInt, Ordinal: 1, IsPrimaryKey: true},
			{Name: "CourseId", Type: core.TypeInt, Ordinal: 2, IsPrimaryKey: true},
			{Name: "EnrolledOn", Type: core.TypeDateTime, Ordinal: 3},
		},
		ForeignKeys: []*core.ForeignKey{
			enabledFK("FK_StudentCourse_Student", "Student", core.ColumnPair{ForeignKeyColumn: "StudentId", PrimaryKeyColumn: "Id"}),
			enabledFK("FK_StudentCourse_Course", "Course", core.ColumnPair{ForeignKeyColumn: "CourseId", PrimaryKeyColumn: "Id"}),
		},
	}
}

func TestAnalyzeManyToManyJunction(t *testing.T) {
	a := New(nil)

	rel, err := a.AnalyzeRelationship(studentCourse(), pkTable("Course"))
	require.NoError(t, err)

	assert.Equal(t, core.ManyToMany, rel.Kind)
	assert.Equal(t, "Course", rel.SourceTable)
	assert.Equal(t, "StudentCourse", rel.TargetTable)

	require.NotNil(t, rel.Junction)
	assert.Equal(t, "StudentCourse", rel.Junction.TableName)
	assert.Contains(t, rel.Junction.SourceKeyColumns, "StudentId")
	assert.Contains(t, rel.Junction.SourceKeyColumns, "CourseId")
	assert.Equal(t, []string{"EnrolledOn"}, rel.Junction.AdditionalColumns)
}

func TestAnalyzeOneToOneViaUniqueIndex(t *testing.T) {
	profile := &core.Table{
		TableName: "UserProfile",
		Columns: []*core.Column{
			{Name: "ProfileId", Type: core.TypeInt, Ordinal: 1, IsPrimaryKey: true},
			{Name: "UserId", Type: core.TypeInt, Ordinal: 2},
			{Name: "Biography", Type: core.TypeString, Ordinal: 3, Nullable: true},
		},
		Indexes: []*core.Index{{
			Name: "UX_UserProfile_UserId", IsUnique: true,
			Columns: []core.IndexColumn{{ColumnName: "UserId", KeyOrdinal: 1}},
		}},
		ForeignKeys: []*core.ForeignKey{
			enabledFK("FK_UserProfile_User", "User", core.ColumnPair{ForeignKeyColumn: "UserId", PrimaryKeyColumn: "Id"}),
		},
	}

	a := New(nil)
	rel, err := a.AnalyzeRelationship(profile, pkTable("User"))
	require.NoError(t, err)

	assert.Equal(t, core.OneToOne, rel.Kind)
	assert.Equal(t, "UserProfile", rel.SourceTable)
	assert.Equal(t, "User", rel.TargetTable)
	require.Len(t, rel.ForeignKeyColumns, 1)
	assert.Equal(t, "UserId", rel.ForeignKeyColumns[0].ForeignKeyColumn)
	assert.Equal(t, "Id", rel.ForeignKeyColumns[0].PrimaryKeyColumn)
	assert.Nil(t, rel.Junction)
}

// A composite primary key alone does not make a junction: OrderDetail
// references only one table, so it is the many side of a one-to-many.
func TestAnalyzeCompositePKNonJunction(t *testing.T) {
	detail := &core.Table{
		TableName: "OrderDetail",
		Columns: []*core.Column{
			{Name: "OrderId", Type: core.TypeInt, Ordinal: 1, IsPrimaryKey: true},
			{Name: "ProductId", Type: core.TypeInt, Ordinal: 2, IsPrimaryKey: true},
			{Name: "Quantity", Type: core.TypeInt, Ordinal: 3},
		},
		ForeignKeys: []*core.ForeignKey{
			enabledFK("FK_OrderDetail_Order", "Order", core.ColumnPair{ForeignKeyColumn: "OrderId", PrimaryKeyColumn: "Id"}),
		},
	}

	a := New(nil)
	rel, err := a.AnalyzeRelationship(detail, pkTable("Order"))
	require.NoError(t, err)

	assert.Equal(t, core.OneToMany, rel.Kind)
	assert.Equal(t, "Order", rel.SourceTable, "the principal is the one side")
	assert.Equal(t, "OrderDetail", rel.TargetTable)
	require.Len(t, rel.ForeignKeyColumns, 1)
	assert.Equal(t, "OrderId", rel.ForeignKeyColumns[0].ForeignKeyColumn)
	assert.Equal(t, "Id", rel.ForeignKeyColumns[0].PrimaryKeyColumn)
}

func TestAnalyzeCompositeForeignKeyCarriesAllPairs(t *testing.T) {
	line := &core.Table{
		TableName: "OrderLine",
		Columns: []*core.Column{
			{Name: "Id", Type: core.TypeInt, Ordinal: 1, IsPrimaryKey: true},
			{Name: "OrderId", Type: core.TypeInt, Ordinal: 2},
			{Name: "OrderVersion", Type: core.TypeInt, Ordinal: 3},
		},
		ForeignKeys: []*core.ForeignKey{
			enabledFK("FK_OrderLine_Order", "Order",
				core.ColumnPair{ForeignKeyColumn: "OrderId", PrimaryKeyColumn: "Id"},
				core.ColumnPair{ForeignKeyColumn: "OrderVersion", PrimaryKeyColumn: "Version"},
			),
		},
	}

	a := New(nil)
	rel, err := a.AnalyzeRelationship(line, pkTable("Order"))
	require.NoError(t, err)

	assert.Equal(t, core.OneToMany, rel.Kind)
	require.Len(t, rel.ForeignKeyColumns, 2)
	assert.Equal(t, "OrderVersion", rel.ForeignKeyColumns[1].ForeignKeyColumn)
	assert.Equal(t, core.RuleCascade, rel.ForeignKeyColumns[0].DeleteRule)
	assert.Equal(t, core.RuleNoAction, rel.ForeignKeyColumns[0].UpdateRule)
}

func TestAnalyzeNoForeignKeyIsUnknown(t *testing.T) {
	a := New(nil)

	rel, err := a.AnalyzeRelationship(pkTable("Order"), pkTable("Customer"))
	require.NoError(t, err)
	assert.Equal(t, core.Unknown, rel.Kind)
}

func TestAnalyzeDisabledForeignKeyIgnored(t *testing.T) {
	detail := &core.Table{
		TableName: "OrderDetail",
		Columns:   []*core.Column{{Name: "OrderId", Type: core.TypeInt, Ordinal: 1}},
		ForeignKeys: []*core.ForeignKey{{
			Name:         "FK_OrderDetail_Order",
			PrimaryTable: "Order",
			ColumnPairs:  []core.ColumnPair{{ForeignKeyColumn: "OrderId", PrimaryKeyColumn: "Id"}},
			IsEnabled:    false,
		}},
	}

	a := New(nil)
	rel, err := a.AnalyzeRelationship(detail, pkTable("Order"))
	require.NoError(t, err)
	assert.Equal(t, core.Unknown, rel.Kind)
}

func TestAnalyzeStructurallyInvalidForeignKeyIgnored(t *testing.T) {
	detail := &core.Table{
		TableName: "OrderDetail",
		Columns:   []*core.Column{{Name: "OrderId", Type: core.TypeInt, Ordinal: 1}},
		ForeignKeys: []*core.ForeignKey{{
			Name:         "FK_Broken",
			PrimaryTable: "Order",
			ColumnPairs:  []core.ColumnPair{{ForeignKeyColumn: "", PrimaryKeyColumn: "Id"}},
			IsEnabled:    true,
		}},
	}

	a := New(nil)
	rel, err := a.AnalyzeRelationship(detail, pkTable("Order"))
	require.NoError(t, err)
	assert.Equal(t, core.Unknown, rel.Kind)
}

func TestAnalyzeNilInputs(t *testing.T) {
	a := New(nil)

	_, err := a.AnalyzeRelationship(nil, pkTable("Order"))
	assert.Error(t, err)

	_, err = a.AnalyzeRelationship(pkTable("Order"), nil)
	assert.Error(t, err)

	_, err = a.AnalyzeRelationship(&core.Table{}, pkTable("Order"))
	assert.Error(t, err, "unnamed tables are invalid")
}

// The analyzer is a pure function of its inputs.
func TestAnalyzeIsDeterministic(t *testing.T) {
	a := New(nil)
	course := pkTable("Course")

	first, err := a.AnalyzeRelationship(studentCourse(), course)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := a.AnalyzeRelationship(studentCourse(), course)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAnalyzeSchema(t *testing.T) {
	student := pkTable("Student")
	course := pkTable("Course")
	junction := studentCourse()

	a := New(nil)
	rels := a.AnalyzeSchema([]*core.Table{student, course, junction})

	// Unknown pairs are filtered; only the junction rows classify.
	require.Len(t, rels, 2)
	for _, rel := range rels {
		assert.Equal(t, core.ManyToMany, rel.Kind)
		assert.Equal(t, "StudentCourse", rel.TargetTable)
	}
}
