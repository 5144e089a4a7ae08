package introspect

import (
	"testing"

	"entgen/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileTable(indexes ...*core.Index) *core.Table {
	return &core.Table{
		TableName: "UserProfile",
		Columns: []*core.Column{
			{Name: "ProfileId", Ordinal: 1, IsPrimaryKey: true},
			{Name: "UserId", Ordinal: 2},
		},
		Indexes: indexes,
		ForeignKeys: []*core.ForeignKey{{
			Name:         "FK_UserProfile_User",
			PrimaryTable: "User",
			ColumnPairs:  []core.ColumnPair{{ForeignKeyColumn: "UserId", PrimaryKeyColumn: "Id"}},
			IsEnabled:    true,
		}},
	}
}

func TestMarkOneToOneHints(t *testing.T) {
	t.Run("fk covered by unique index gets the marker", func(t *testing.T) {
		table := profileTable(&core.Index{
			Name:     "UX_UserProfile_UserId",
			IsUnique: true,
			Columns:  []core.IndexColumn{{ColumnName: "UserId", KeyOrdinal: 1}},
		})

		MarkOneToOneHints([]*core.Table{table})
		assert.Equal(t, OneToOneHint, table.ForeignKeys[0].Comment)
	})

	t.Run("primary key index does not count", func(t *testing.T) {
		table := profileTable(&core.Index{
			Name:         "PK_UserProfile",
			IsUnique:     true,
			IsPrimaryKey: true,
			Columns:      []core.IndexColumn{{ColumnName: "UserId", KeyOrdinal: 1}},
		})

		MarkOneToOneHints([]*core.Table{table})
		assert.Empty(t, table.ForeignKeys[0].Comment)
	})

	t.Run("wider unique index does not count", func(t *testing.T) {
		table := profileTable(&core.Index{
			Name:     "UX_UserProfile_UserId_ProfileId",
			IsUnique: true,
			Columns: []core.IndexColumn{
				{ColumnName: "UserId", KeyOrdinal: 1},
				{ColumnName: "ProfileId", KeyOrdinal: 2},
			},
		})

		MarkOneToOneHints([]*core.Table{table})
		assert.Empty(t, table.ForeignKeys[0].Comment)
	})

	t.Run("composite fk is not annotated", func(t *testing.T) {
		table := profileTable(&core.Index{
			Name:     "UX_UserProfile_UserId",
			IsUnique: true,
			Columns:  []core.IndexColumn{{ColumnName: "UserId", KeyOrdinal: 1}},
		})
		table.ForeignKeys[0].ColumnPairs = append(table.ForeignKeys[0].ColumnPairs,
			core.ColumnPair{ForeignKeyColumn: "TenantId", PrimaryKeyColumn: "TenantId"})

		MarkOneToOneHints([]*core.Table{table})
		assert.Empty(t, table.ForeignKeys[0].Comment)
	})

	t.Run("existing comment is preserved", func(t *testing.T) {
		table := profileTable(&core.Index{
			Name:     "UX_UserProfile_UserId",
			IsUnique: true,
			Columns:  []core.IndexColumn{{ColumnName: "UserId", KeyOrdinal: 1}},
		})
		table.ForeignKeys[0].Comment = "user link"

		MarkOneToOneHints([]*core.Table{table})
		assert.Equal(t, "user link"+OneToOneHint, table.ForeignKeys[0].Comment)
	})
}

func TestDropSkipped(t *testing.T) {
	a := &core.Table{TableName: "A"}
	b := &core.Table{TableName: "B"}
	c := &core.Table{TableName: "C"}
	b.MarkSkipped()

	got := DropSkipped([]*core.Table{a, b, c})
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].TableName)
	assert.Equal(t, "C", got[1].TableName)
}
