package deeprag

import (
	"fmt"
)

// Placeholder keys consumed by the network template. Scalar keys carry
// per-build values; the delegation boilerplate keys come from the shared
// common defs document.
const (
	PlaceholderGroupName            = "group_name"
	PlaceholderGroupDescription     = "group_description"
	PlaceholderStructureDescription = "structure_description"
	PlaceholderContentAgentName     = "content_agent_name"
	PlaceholderFileContent          = "file_content"
)

// NetworkAssembler builds concrete network specifications from the shared
// template: leaf networks with one content agent per file, and group
// networks whose sub-agents are already-deployed external networks.
type NetworkAssembler struct {
	template *NetworkTemplate
	defs     *CommonDefs
	loader   TextLoader
}

// NewNetworkAssembler wires the assembler's collaborators. The template and
// defs are shared read-only across all builds.
func NewNetworkAssembler(template *NetworkTemplate, defs *CommonDefs, loader TextLoader) *NetworkAssembler {
	return &NetworkAssembler{
		template: template,
		defs:     defs,
		loader:   loader,
	}
}

// BuildLeafNetwork creates the network spec for one analyzed group. The
// template's trailing content-node template is stamped once per file
// binding, and the front-man is rebuilt to delegate to exactly those
// content agents, in binding order. structureDescription describes the
// parent structure the group belongs to.
func (na *NetworkAssembler) BuildLeafNetwork(descriptor *GroupDescriptor, structureDescription string) (*NetworkSpec, error) {
	if err := descriptor.Validate(); err != nil {
		return nil, fmt.Errorf("cannot build leaf network: %w", err)
	}

	spec := na.template.Clone()
	spec.Name = descriptor.Name

	// The last item in the tools list of the template is the template for a
	// content node. Pop it before stamping.
	contentTemplate := spec.Tools[len(spec.Tools)-1]
	spec.Tools = spec.Tools[:len(spec.Tools)-1]

	contentAgents := make([]string, 0, len(descriptor.Files))
	for _, binding := range descriptor.Files {
		contentNode, err := na.buildContentNode(contentTemplate, binding)
		if err != nil {
			return nil, err
		}
		spec.Tools = append(spec.Tools, contentNode)
		contentAgents = append(contentAgents, binding.Agent)
	}

	frontMan, err := na.buildFrontMan(spec.FrontMan(), descriptor, structureDescription, contentAgents)
	if err != nil {
		return nil, err
	}
	spec.Tools[TemplateFrontManIndex] = frontMan

	return spec, nil
}

// BuildGroupNetwork creates a network whose front-man delegates to
// already-deployed networks at the given external addresses, in the order
// given. The content-node template is discarded; groups carry no inline
// content.
func (na *NetworkAssembler) BuildGroupNetwork(descriptor *GroupDescriptor, structureDescription string, childAddresses []string) (*NetworkSpec, error) {
	if descriptor.Name == "" {
		return nil, fmt.Errorf("cannot build group network: descriptor is missing a name")
	}
	if len(childAddresses) == 0 {
		return nil, fmt.Errorf("cannot build group network %q with no child addresses", descriptor.Name)
	}

	spec := na.template.Clone()
	spec.Name = descriptor.Name

	// We don't need the content node, we are using external networks for those.
	spec.Tools = spec.Tools[:len(spec.Tools)-1]

	frontMan, err := na.buildFrontMan(spec.FrontMan(), descriptor, structureDescription, childAddresses)
	if err != nil {
		return nil, err
	}
	spec.Tools[TemplateFrontManIndex] = frontMan

	return spec, nil
}

// buildContentNode stamps the content-node template for a single file.
func (na *NetworkAssembler) buildContentNode(contentTemplate ToolSpec, binding ContentBinding) (ToolSpec, error) {
	content, err := na.loader.ReadText(binding.File)
	if err != nil {
		return nil, fmt.Errorf("content agent %q: %w", binding.Agent, err)
	}

	filter, err := na.defs.FilterWith(map[string]string{
		PlaceholderContentAgentName: binding.Agent,
		PlaceholderFileContent:      content,
	})
	if err != nil {
		return nil, err
	}

	node := filter.Filter(map[string]any(contentTemplate)).(map[string]any)
	return ToolSpec(node), nil
}

// buildFrontMan substitutes the group identity into the template front-man
// and points its delegation list at the given sub-agents.
func (na *NetworkAssembler) buildFrontMan(templateFrontMan ToolSpec, descriptor *GroupDescriptor, structureDescription string, subAgents []string) (ToolSpec, error) {
	filter, err := na.defs.FilterWith(map[string]string{
		PlaceholderGroupName:            descriptor.Name,
		PlaceholderGroupDescription:     descriptor.Description,
		PlaceholderStructureDescription: structureDescription,
	})
	if err != nil {
		return nil, err
	}

	node := filter.Filter(map[string]any(templateFrontMan)).(map[string]any)
	frontMan := ToolSpec(node)
	frontMan.SetSubAgents(subAgents)
	return frontMan, nil
}
