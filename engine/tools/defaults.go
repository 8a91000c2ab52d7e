package tools

import (
	deeprag "deeprag/engine/core"
)

// RegisterDefaults installs the shipped tool set into a registry. Callers
// with their own analysis collaborator register it afterwards, either over
// the default name or under a new name bound through the tools mapping.
func RegisterDefaults(registry *Registry, deployer *deeprag.GroupDeployer, loader deeprag.TextLoader) {
	registry.Register(NewNameAnalyzerTool())
	registry.Register(NewTxtLoaderTool(loader))
	registry.Register(NewCreateNetworkTool(deployer))
	registry.Register(NewCoarseGroupingTool(registry, deployer))
	registry.Register(NewCreateOneGroupNetworkTool(registry, deployer))
}
