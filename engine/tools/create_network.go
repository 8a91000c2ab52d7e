package tools

import (
	"context"
	"encoding/json"
	"fmt"

	deeprag "deeprag/engine/core"
)

// CreateNetworkTool turns one analyzed group into deployed networks. The
// resulting reservations go into the caller's side-channel slot for the
// group; the returned text is a short human-readable confirmation only.
type CreateNetworkTool struct {
	deployer *deeprag.GroupDeployer
}

func NewCreateNetworkTool(deployer *deeprag.GroupDeployer) *CreateNetworkTool {
	return &CreateNetworkTool{deployer: deployer}
}

func (t *CreateNetworkTool) Name() string {
	return "create_network"
}

func (t *CreateNetworkTool) Invoke(ctx context.Context, args map[string]any, sly *deeprag.SideChannel) (string, error) {
	groupNumber := deeprag.ToInt(args["group_number"], -1)
	if groupNumber < 0 {
		return "", fmt.Errorf("create network needs a non-negative group_number")
	}

	doc, err := parseGroupingArg(args["grouping"])
	if err != nil {
		return "", err
	}

	result, err := t.deployer.CreateGroupNetworks(ctx, groupNumber, doc)
	if err != nil {
		return "", err
	}

	if sly != nil {
		if err := sly.SetGroupResult(groupNumber, result); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("Created %d networks for group %d; entry point %s at %s.",
		len(result.Reservations), groupNumber, result.EntryPoint.ID, result.EntryPoint.Address), nil
}

// parseGroupingArg accepts the grouping document in whichever shape the
// caller holds it: an already-parsed document, raw JSON text, or a decoded
// JSON object.
func parseGroupingArg(value any) (*deeprag.GroupingDocument, error) {
	switch v := value.(type) {
	case *deeprag.GroupingDocument:
		if err := v.Validate(); err != nil {
			return nil, err
		}
		return v, nil
	case deeprag.GroupingDocument:
		if err := v.Validate(); err != nil {
			return nil, err
		}
		return &v, nil
	case string:
		return deeprag.ParseGroupingDocument([]byte(v))
	case []byte:
		return deeprag.ParseGroupingDocument(v)
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to re-encode grouping argument: %w", err)
		}
		return deeprag.ParseGroupingDocument(data)
	case nil:
		return nil, fmt.Errorf("create network needs a grouping argument")
	default:
		return nil, fmt.Errorf("unsupported grouping argument type %T", value)
	}
}
