package deeprag

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// AnalyzeArgs are the basis parameters shared by every analysis call, plus
// the per-group file list.
type AnalyzeArgs struct {
	FileList            []string
	FilesDirectory      string
	UserDescription     string
	GroupingConstraints string
}

// GroupAnalyzer is the interface boundary to the analysis collaborator that
// classifies and describes one group of files.
type GroupAnalyzer interface {
	AnalyzeGroup(ctx context.Context, args AnalyzeArgs) (*GroupingDocument, error)
}

// NetworkCreator turns one analyzed group into deployed networks. The
// canonical implementation is GroupDeployer; the tool layer can rebind it
// to a different registered tool.
type NetworkCreator interface {
	CreateGroupNetworks(ctx context.Context, groupNumber int, doc *GroupingDocument) (*GroupingResult, error)
}

// GroupingResult is the outcome of one group's pipeline: the analysis
// document, the reservations for all of the group's networks, and the
// group's own entry-point network. EntryPoint is also kept last in
// Reservations so the merged list's tail is always the entry points in
// group order.
type GroupingResult struct {
	Descriptor   GroupingDocument `json:"descriptor" yaml:"descriptor"`
	Reservations []Reservation    `json:"reservations" yaml:"reservations"`
	EntryPoint   Reservation      `json:"entryPoint" yaml:"entryPoint"`
}

// validate catches malformed results before aggregation rather than
// defaulting silently.
func (r *GroupingResult) validate(groupNumber int) error {
	if len(r.Reservations) == 0 {
		return fmt.Errorf("group %d produced no reservations", groupNumber)
	}
	last := r.Reservations[len(r.Reservations)-1]
	if last.ID != r.EntryPoint.ID {
		return fmt.Errorf("group %d entry point %s is not last in its reservation list", groupNumber, r.EntryPoint.ID)
	}
	return nil
}

// FanoutCoordinator drives the two-stage pipeline (analyze, then create
// networks) concurrently across all file groups.
type FanoutCoordinator struct {
	analyzer GroupAnalyzer
	creator  NetworkCreator
}

// NewFanoutCoordinator wires the coordinator's two collaborators.
func NewFanoutCoordinator(analyzer GroupAnalyzer, creator NetworkCreator) *FanoutCoordinator {
	return &FanoutCoordinator{analyzer: analyzer, creator: creator}
}

// ProcessAll runs every group's pipeline concurrently, one task per group
// with no concurrency cap. Results land in a slice pre-sized with one slot
// per group; each task writes only its own slot, so no locking is needed.
// The first error is reported after all tasks have joined; siblings already
// in flight run to completion and their external leases are not rolled
// back.
func (fc *FanoutCoordinator) ProcessAll(ctx context.Context, groups []FileGroup, basis AnalyzeArgs) ([]GroupingResult, error) {
	results := make([]GroupingResult, len(groups))

	var tasks errgroup.Group
	InfoLog("[FANOUT] Processing %d file groups", len(groups))
	for groupNumber, group := range groups {
		groupNumber, group := groupNumber, group
		tasks.Go(func() error {
			result, err := fc.processGroup(ctx, groupNumber, group, basis)
			if err != nil {
				return fmt.Errorf("group %d: %w", groupNumber, err)
			}
			results[groupNumber] = *result
			return nil
		})
	}

	if err := tasks.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (fc *FanoutCoordinator) processGroup(ctx context.Context, groupNumber int, group FileGroup, basis AnalyzeArgs) (*GroupingResult, error) {
	args := basis
	args.FileList = group

	DebugLog("[FANOUT] Analyzing group %d (%d files)", groupNumber, len(group))
	doc, err := fc.analyzer.AnalyzeGroup(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	result, err := fc.creator.CreateGroupNetworks(ctx, groupNumber, doc)
	if err != nil {
		return nil, fmt.Errorf("network creation failed: %w", err)
	}
	if err := result.validate(groupNumber); err != nil {
		return nil, err
	}
	return result, nil
}

// MergeReservations builds the single ordered reservation list from all
// group results: first every group's leaf reservations in group order, then
// every group's entry point in group order. The merged list's last element
// is therefore always the last group's entry point.
func MergeReservations(results []GroupingResult) ([]Reservation, error) {
	var merged []Reservation
	for groupNumber := range results {
		if err := results[groupNumber].validate(groupNumber); err != nil {
			return nil, err
		}
		reservations := results[groupNumber].Reservations
		merged = append(merged, reservations[:len(reservations)-1]...)
	}
	for groupNumber := range results {
		merged = append(merged, results[groupNumber].EntryPoint)
	}
	return merged, nil
}

// FormatDeploymentOutput renders the final user-visible sentence for the
// overall entry point.
func FormatDeploymentOutput(entry *Reservation) string {
	return fmt.Sprintf("The entry-point network %s is deployed at %s and will remain available for %.0f more seconds.",
		entry.ID, entry.Address, entry.RemainingSeconds())
}
