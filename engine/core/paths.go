package deeprag

// YAML directory structure constants
// These constants define the paths to all YAML configuration files
// ensuring consistency across the application.
const (
	// YamlBaseDir is the root directory for all YAML configuration files
	YamlBaseDir = "yaml"

	// TemplatesDir contains network template files
	TemplatesDir = "yaml/templates"

	// ConfigDir contains shared configuration documents
	ConfigDir = "yaml/config"

	// GroupTemplateFile is the default network template used for both leaf
	// and group network builds
	GroupTemplateFile = "yaml/templates/group_template.yaml"

	// CommonDefsFile is the shared definitions document holding the
	// delegation boilerplate fragments
	CommonDefsFile = "yaml/config/common_defs.yaml"
)
