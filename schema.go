package prefs

// SchemaFormat names the layout of a SchemaDocument.
type SchemaFormat string

const (
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	SchemaFormatOpenAPI     SchemaFormat = "openapi"
)

// SchemaDocument is the output of a SchemaGenerator.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// FieldDescriptor describes one persisted property and its default value.
type FieldDescriptor struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default"`
}

// SchemaGenerator renders the persisted properties into a schema document.
type SchemaGenerator interface {
	Generate(fields []FieldDescriptor) (SchemaDocument, error)
}

// DefaultSchemaGenerator returns the built-in descriptor-based schema generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return descriptorGenerator{}
}

type descriptorGenerator struct{}

func (descriptorGenerator) Generate(fields []FieldDescriptor) (SchemaDocument, error) {
	if fields == nil {
		fields = []FieldDescriptor{}
	}
	return SchemaDocument{
		Format:   SchemaFormatDescriptors,
		Document: fields,
	}, nil
}

// Schema describes the persisted document using the configured generator.
// Defaults come from a fresh value, not the live settings.
func (p *Prefs[S]) Schema() (SchemaDocument, error) {
	return p.SchemaWith(p.schemaGenerator())
}

// SchemaWith describes the persisted document using generator.
func (p *Prefs[S]) SchemaWith(generator SchemaGenerator) (SchemaDocument, error) {
	if generator == nil {
		generator = DefaultSchemaGenerator()
	}
	return generator.Generate(p.fieldDescriptors())
}

func (p *Prefs[S]) fieldDescriptors() []FieldDescriptor {
	var defaults S
	p.applyDefaults(&defaults)

	props := p.schema.Supported()
	fields := make([]FieldDescriptor, 0, len(props))
	for _, prop := range props {
		fields = append(fields, FieldDescriptor{
			Name:    prop.Name,
			Type:    prop.Kind.String(),
			Default: prop.Get(&defaults).Interface(),
		})
	}
	return fields
}
