package deeprag

import (
	"context"
	"fmt"
	"strings"
)

// GroupDeployer is the canonical NetworkCreator: it assembles one leaf
// network per descriptor with files, leases an identifier for each network,
// builds the group's own entry network over the deployed leaf addresses and
// commits everything as one confirmed batch.
type GroupDeployer struct {
	assembler       *NetworkAssembler
	reservationist  Reservationist
	lifetimeSeconds float64
}

// NewGroupDeployer wires the deployer. lifetimeSeconds is the lease length
// requested for every network it creates.
func NewGroupDeployer(assembler *NetworkAssembler, reservationist Reservationist, lifetimeSeconds float64) (*GroupDeployer, error) {
	if lifetimeSeconds <= 0 {
		return nil, fmt.Errorf("lease lifetime must be positive, got %f", lifetimeSeconds)
	}
	return &GroupDeployer{
		assembler:       assembler,
		reservationist:  reservationist,
		lifetimeSeconds: lifetimeSeconds,
	}, nil
}

// CreateGroupNetworks implements NetworkCreator for one analyzed group.
func (gd *GroupDeployer) CreateGroupNetworks(ctx context.Context, groupNumber int, doc *GroupingDocument) (*GroupingResult, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var batch []Deployment
	var leafAddresses []string
	for i := range doc.Groups {
		descriptor := &doc.Groups[i]
		spec, err := gd.assembler.BuildLeafNetwork(descriptor, doc.Description)
		if err != nil {
			return nil, err
		}

		reservation, err := gd.reservationist.Reserve(ctx, gd.lifetimeSeconds, descriptor.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve leaf network %q: %w", descriptor.Name, err)
		}
		batch = append(batch, Deployment{Reservation: reservation, Spec: spec})
		leafAddresses = append(leafAddresses, reservation.Address)
	}

	entryName := doc.Name
	if entryName == "" {
		entryName = fmt.Sprintf("group_%d", groupNumber)
	}
	entryDescriptor := &GroupDescriptor{Name: entryName, Description: doc.Description}
	entrySpec, err := gd.assembler.BuildGroupNetwork(entryDescriptor, doc.Description, leafAddresses)
	if err != nil {
		return nil, err
	}
	entry, err := gd.reservationist.Reserve(ctx, gd.lifetimeSeconds, entryName)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve entry network %q: %w", entryName, err)
	}
	batch = append(batch, Deployment{Reservation: entry, Spec: entrySpec})

	if err := gd.deployConfirmed(ctx, batch); err != nil {
		return nil, err
	}

	reservations := make([]Reservation, 0, len(batch))
	for _, deployment := range batch {
		reservations = append(reservations, *deployment.Reservation)
	}
	InfoLog("[DEPLOY] Group %d: %d leaf networks behind entry point %s", groupNumber, len(leafAddresses), entry.ID)

	return &GroupingResult{
		Descriptor:   *doc,
		Reservations: reservations,
		EntryPoint:   reservations[len(reservations)-1],
	}, nil
}

// DeployAggregate finishes the fan-in: for a single group the group's own
// entry point is promoted to serve as the overall root; for more it builds
// and deploys one aggregating network whose sub-agents are every group's
// entry point, in group order.
func (gd *GroupDeployer) DeployAggregate(ctx context.Context, results []GroupingResult, basis AnalyzeArgs) (*AggregateResult, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no group results to aggregate")
	}

	if len(results) == 1 {
		// Degenerate path: no aggregation front-man.
		return &AggregateResult{
			Reservations: results[0].Reservations,
			EntryPoint:   results[0].EntryPoint,
		}, nil
	}

	merged, err := MergeReservations(results)
	if err != nil {
		return nil, err
	}

	entryAddresses := make([]string, 0, len(results))
	var groupDescriptions []string
	for i := range results {
		entryAddresses = append(entryAddresses, results[i].EntryPoint.Address)
		groupDescriptions = append(groupDescriptions, results[i].Descriptor.Description)
	}

	description := basis.UserDescription
	if description == "" {
		description = "A collection of document groups."
	}
	rootDescriptor := &GroupDescriptor{Name: "document_collection", Description: description}
	rootSpec, err := gd.assembler.BuildGroupNetwork(rootDescriptor, strings.Join(groupDescriptions, " "), entryAddresses)
	if err != nil {
		return nil, err
	}

	root, err := gd.reservationist.Reserve(ctx, gd.lifetimeSeconds, rootDescriptor.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve aggregating network: %w", err)
	}
	if err := gd.deployConfirmed(ctx, []Deployment{{Reservation: root, Spec: rootSpec}}); err != nil {
		return nil, err
	}

	merged = append(merged, *root)
	return &AggregateResult{
		Reservations: merged,
		EntryPoint:   *root,
	}, nil
}

func (gd *GroupDeployer) deployConfirmed(ctx context.Context, batch []Deployment) error {
	confirmation, err := gd.reservationist.Deploy(ctx, batch, true)
	if err != nil {
		return fmt.Errorf("deployment failed: %w", err)
	}
	if confirmation != nil {
		if err := confirmation.Wait(ctx); err != nil {
			return fmt.Errorf("deployment confirmation failed: %w", err)
		}
	}
	return nil
}

// AggregateResult is the final outcome of a full pipeline run: every
// reservation made, plus the one network a caller should talk to.
type AggregateResult struct {
	Reservations []Reservation `json:"reservations" yaml:"reservations"`
	EntryPoint   Reservation   `json:"entryPoint" yaml:"entryPoint"`
}
