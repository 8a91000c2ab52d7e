package tools

import (
	"context"
	"fmt"

	deeprag "deeprag/engine/core"
)

const (
	defaultAnalyzeToolName = "name_analyzer"
	defaultCreateToolName  = "create_network"
)

// CoarseGroupingTool is the pipeline front door: it partitions the file
// list into groups, fans the two-stage pipeline out across them, deploys
// the aggregate entry network and reports where it answers. Reservations
// and grouping documents land in the side channel; the returned text is
// the one-line deployment summary.
type CoarseGroupingTool struct {
	registry *Registry
	deployer *deeprag.GroupDeployer
}

func NewCoarseGroupingTool(registry *Registry, deployer *deeprag.GroupDeployer) *CoarseGroupingTool {
	return &CoarseGroupingTool{registry: registry, deployer: deployer}
}

func (t *CoarseGroupingTool) Name() string {
	return "coarse_grouping"
}

func (t *CoarseGroupingTool) Invoke(ctx context.Context, args map[string]any, sly *deeprag.SideChannel) (string, error) {
	basis, err := basisFromArgs(args)
	if err != nil {
		return "", err
	}

	maxGroupSize := deeprag.ToInt(args["max_group_size"], deeprag.DefaultMaxGroupSize)
	groups, err := deeprag.PartitionFiles(basis.FileList, maxGroupSize)
	if err != nil {
		return "", err
	}
	if len(groups) == 0 {
		return "", fmt.Errorf("no files to process")
	}

	return runPipeline(ctx, t.registry, t.deployer, args, sly, groups, basis)
}

// basisFromArgs extracts the analysis basis shared by every group. When
// file_list is absent the files directory is scanned for .txt entries.
func basisFromArgs(args map[string]any) (deeprag.AnalyzeArgs, error) {
	basis := deeprag.AnalyzeArgs{
		FileList:            deeprag.ToStringSlice(args["file_list"], nil),
		FilesDirectory:      deeprag.ToString(args["files_directory"], ""),
		UserDescription:     deeprag.ToString(args["user_description"], ""),
		GroupingConstraints: deeprag.ToString(args["grouping_constraints"], ""),
	}

	if len(basis.FileList) == 0 {
		if basis.FilesDirectory == "" {
			return basis, fmt.Errorf("either file_list or files_directory is required")
		}
		files, err := deeprag.ListTextFiles(basis.FilesDirectory)
		if err != nil {
			return basis, fmt.Errorf("failed to scan %q: %w", basis.FilesDirectory, err)
		}
		basis.FileList = files
	}
	return basis, nil
}

// runPipeline fans the analyze/create stages out over the groups, deploys
// the aggregate network and records everything in the side channel.
func runPipeline(ctx context.Context, registry *Registry, deployer *deeprag.GroupDeployer, args map[string]any, sly *deeprag.SideChannel, groups []deeprag.FileGroup, basis deeprag.AnalyzeArgs) (string, error) {
	bindings := deeprag.ToStringMap(args["tools"])
	analyzeName := bindings["analyze_group"]
	if analyzeName == "" {
		analyzeName = defaultAnalyzeToolName
	}
	createName := bindings["create_network"]
	if createName == "" {
		createName = defaultCreateToolName
	}

	analyzeTool, err := registry.Get(analyzeName)
	if err != nil {
		return "", err
	}
	createTool, err := registry.Get(createName)
	if err != nil {
		return "", err
	}

	if sly == nil {
		sly = deeprag.NewSideChannel()
	}
	sly.InitGroupResults(len(groups))

	coordinator := deeprag.NewFanoutCoordinator(
		&toolAnalyzer{tool: analyzeTool, sly: sly},
		&toolCreator{tool: createTool, sly: sly},
	)
	results, err := coordinator.ProcessAll(ctx, groups, basis)
	if err != nil {
		return "", err
	}

	aggregate, err := deployer.DeployAggregate(ctx, results, basis)
	if err != nil {
		return "", err
	}

	docs := make([]deeprag.GroupingDocument, 0, len(results))
	for i := range results {
		docs = append(docs, results[i].Descriptor)
	}
	sly.Set(deeprag.SideChannelGrouping, docs)
	sly.Set(deeprag.SideChannelReservations, aggregate.Reservations)

	return deeprag.FormatDeploymentOutput(&aggregate.EntryPoint), nil
}

// toolAnalyzer adapts a registered tool to the GroupAnalyzer boundary; the
// tool's text output must be a grouping document in JSON.
type toolAnalyzer struct {
	tool Tool
	sly  *deeprag.SideChannel
}

func (a *toolAnalyzer) AnalyzeGroup(ctx context.Context, args deeprag.AnalyzeArgs) (*deeprag.GroupingDocument, error) {
	out, err := a.tool.Invoke(ctx, map[string]any{
		"file_list":            []string(args.FileList),
		"files_directory":      args.FilesDirectory,
		"user_description":     args.UserDescription,
		"grouping_constraints": args.GroupingConstraints,
	}, a.sly)
	if err != nil {
		return nil, err
	}
	return deeprag.ParseGroupingDocument([]byte(out))
}

// toolCreator adapts a registered tool to the NetworkCreator boundary; the
// tool reports through the side channel's group slot, not its text output.
type toolCreator struct {
	tool Tool
	sly  *deeprag.SideChannel
}

func (c *toolCreator) CreateGroupNetworks(ctx context.Context, groupNumber int, doc *deeprag.GroupingDocument) (*deeprag.GroupingResult, error) {
	if _, err := c.tool.Invoke(ctx, map[string]any{
		"group_number": groupNumber,
		"grouping":     doc,
	}, c.sly); err != nil {
		return nil, err
	}

	result := c.sly.GroupResult(groupNumber)
	if result == nil {
		return nil, fmt.Errorf("tool %q left group %d's result slot empty", c.tool.Name(), groupNumber)
	}
	return result, nil
}
