package orchestrator

import (
	"sort"

	"github.com/cloudwego/eino/schema"

	"github.com/mentatproj/mentat/internal/apiserver/service/mcp"
	"github.com/mentatproj/mentat/pkg/logger"
)

// toolSet is the per-query snapshot: the tool descriptors offered to the
// model and the name-to-server routing table. Tool names colliding
// across servers resolve first-wins, in sorted server order, and the
// collision is logged.
type toolSet struct {
	infos   []*schema.ToolInfo
	routing map[string]string // tool name -> server name
	byName  map[string]mcp.ToolDescriptor
}

func newToolSet(tools map[string][]mcp.ToolDescriptor) *toolSet {
	servers := make([]string, 0, len(tools))
	for name := range tools {
		servers = append(servers, name)
	}
	sort.Strings(servers)

	ts := &toolSet{
		routing: make(map[string]string),
		byName:  make(map[string]mcp.ToolDescriptor),
	}

	for _, server := range servers {
		for _, desc := range tools[server] {
			if owner, taken := ts.routing[desc.Name]; taken {
				logger.Warn("[Orchestrator] tool %q from server %q shadowed by server %q", desc.Name, server, owner)
				continue
			}
			ts.routing[desc.Name] = server
			ts.byName[desc.Name] = desc
			ts.infos = append(ts.infos, toToolInfo(desc))
		}
	}

	return ts
}

func (ts *toolSet) empty() bool {
	return len(ts.infos) == 0
}

// toToolInfo converts a tool descriptor into the Eino tool schema the
// model binds to.
func toToolInfo(desc mcp.ToolDescriptor) *schema.ToolInfo {
	return &schema.ToolInfo{
		Name:        desc.Name,
		Desc:        desc.Description,
		ParamsOneOf: schema.NewParamsOneOfByParams(paramsFromSchema(desc.InputSchema)),
	}
}

// paramsFromSchema maps a JSON-schema object into Eino parameter infos.
func paramsFromSchema(inputSchema map[string]any) map[string]*schema.ParameterInfo {
	params := make(map[string]*schema.ParameterInfo)
	if inputSchema == nil {
		return params
	}

	required := make(map[string]bool)
	if reqList, ok := inputSchema["required"].([]any); ok {
		for _, r := range reqList {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}

	props, ok := inputSchema["properties"].(map[string]any)
	if !ok {
		return params
	}

	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		params[name] = parameterInfo(prop, required[name])
	}

	return params
}

func parameterInfo(prop map[string]any, required bool) *schema.ParameterInfo {
	info := &schema.ParameterInfo{
		Type:     schema.String,
		Required: required,
	}

	if desc, ok := prop["description"].(string); ok {
		info.Desc = desc
	}

	typeName, _ := prop["type"].(string)
	info.Type = toSchemaDataType(typeName)

	switch info.Type {
	case schema.Object:
		if nested, ok := prop["properties"].(map[string]any); ok {
			sub := make(map[string]*schema.ParameterInfo, len(nested))
			nestedRequired := make(map[string]bool)
			if reqList, ok := prop["required"].([]any); ok {
				for _, r := range reqList {
					if name, ok := r.(string); ok {
						nestedRequired[name] = true
					}
				}
			}
			for name, rawSub := range nested {
				if subProp, ok := rawSub.(map[string]any); ok {
					sub[name] = parameterInfo(subProp, nestedRequired[name])
				}
			}
			info.SubParams = sub
		}
	case schema.Array:
		if items, ok := prop["items"].(map[string]any); ok {
			info.ElemInfo = parameterInfo(items, false)
		} else {
			info.ElemInfo = &schema.ParameterInfo{Type: schema.String}
		}
	}

	if enum, ok := prop["enum"].([]any); ok && info.Type == schema.String {
		values := make([]string, 0, len(enum))
		for _, e := range enum {
			if s, ok := e.(string); ok {
				values = append(values, s)
			}
		}
		info.Enum = values
	}

	return info
}

func toSchemaDataType(t string) schema.DataType {
	switch t {
	case "string":
		return schema.String
	case "number":
		return schema.Number
	case "integer":
		return schema.Integer
	case "boolean":
		return schema.Boolean
	case "object":
		return schema.Object
	case "array":
		return schema.Array
	default:
		return schema.String
	}
}
