package tools

import (
	"context"
	"fmt"

	deeprag "deeprag/engine/core"
)

// CreateOneGroupNetworkTool is the alternate pipeline entry for callers
// whose files are already partitioned externally: the whole file list is
// treated as a single group. Analysis, network creation and the final
// deployment summary work exactly as in the coarse grouping pipeline.
type CreateOneGroupNetworkTool struct {
	registry *Registry
	deployer *deeprag.GroupDeployer
}

func NewCreateOneGroupNetworkTool(registry *Registry, deployer *deeprag.GroupDeployer) *CreateOneGroupNetworkTool {
	return &CreateOneGroupNetworkTool{registry: registry, deployer: deployer}
}

func (t *CreateOneGroupNetworkTool) Name() string {
	return "create_one_group_network"
}

func (t *CreateOneGroupNetworkTool) Invoke(ctx context.Context, args map[string]any, sly *deeprag.SideChannel) (string, error) {
	basis, err := basisFromArgs(args)
	if err != nil {
		return "", err
	}
	if len(basis.FileList) == 0 {
		return "", fmt.Errorf("no files to process")
	}

	groups := []deeprag.FileGroup{deeprag.FileGroup(basis.FileList)}
	return runPipeline(ctx, t.registry, t.deployer, args, sly, groups, basis)
}
