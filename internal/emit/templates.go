package emit

// The emitted sources follow the shape reverse-engineering scaffolders
// produce: one entity class per table, one fluent configuration class
// per table, and a context that wires them together.

const entityTemplate = `using System;
using System.Collections.Generic;
{{- if .DataAnnotations}}
using System.ComponentModel.DataAnnotations;
using System.ComponentModel.DataAnnotations.Schema;
{{- end}}

namespace {{.Namespace}}.Entities
{
{{- if .DataAnnotations}}
    [Table("{{.TableName}}"{{if .SchemaName}}, Schema = "{{.SchemaName}}"{{end}})]
{{- end}}
    public partial class {{.ClassName}}
    {
{{- range .Properties}}
{{- range .Annotations}}
        {{.}}
{{- end}}
        public {{.Type}} {{.Name}} { get; set; }
{{- end}}
{{- range .Collections}}

        public virtual ICollection<{{.ElementType}}> {{.Name}} { get; set; } = new List<{{.ElementType}}>();
{{- end}}
{{- range .References}}

        public virtual {{.Type}} {{.Name}} { get; set; }
{{- end}}
    }
}
`

const configurationTemplate = `using Microsoft.EntityFrameworkCore;
using Microsoft.EntityFrameworkCore.Metadata.Builders;
using {{.Namespace}}.Entities;

namespace {{.Namespace}}.Configurations
{
    public partial class {{.ClassName}}Configuration : IEntityTypeConfiguration<{{.ClassName}}>
    {
        public void Configure(EntityTypeBuilder<{{.ClassName}}> builder)
        {
{{- range .Statements}}
            {{.}}
{{- end}}
        }
    }
}
`

const contextTemplate = `using Microsoft.EntityFrameworkCore;
using {{.Namespace}}.Entities;
using {{.Namespace}}.Configurations;

namespace {{.Namespace}}
{
    public partial class {{.ContextName}} : DbContext
    {
        public {{.ContextName}}(DbContextOptions<{{.ContextName}}> options)
            : base(options)
        {
        }
{{range .Entities}}
        public virtual DbSet<{{.ClassName}}> {{.SetName}} { get; set; }
{{- end}}

        protected override void OnModelCreating(ModelBuilder modelBuilder)
        {
{{- range .Entities}}
            modelBuilder.ApplyConfiguration(new {{.ClassName}}Configuration());
{{- end}}

            OnModelCreatingPartial(modelBuilder);
        }

        partial void OnModelCreatingPartial(ModelBuilder modelBuilder);
    }
}
`
