package mcpserver

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/revbridge/ghidramcp/internal/bridge"
)

// Fallbacks matching the remote plugin's documented defaults.
const (
	defaultListLimit           = 100
	defaultBSimMaxMatches      = 10
	defaultSimilarityThreshold = 0.7
	defaultConfidenceThreshold = 0.0
)

// textResult wraps a blob result as MCP text content. Failures travel inside
// the text, never as a handler error.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}
}

// linesResult joins a line-sequence result into one text content block.
func linesResult(lines []string) *mcp.CallToolResult {
	return textResult(strings.Join(lines, "\n"))
}

type listArgs struct {
	Offset int    `json:"offset,omitempty" jsonschema:"pagination offset, defaults to 0"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of entries to return, defaults to 100"`
	Filter string `json:"filter,omitempty" jsonschema:"optional substring filter"`
}

func (a listArgs) limitOrDefault() int {
	if a.Limit == 0 {
		return defaultListLimit
	}
	return a.Limit
}

type noArgs struct{}

type searchArgs struct {
	Query  string `json:"query" jsonschema:"substring to match against function names"`
	Offset int    `json:"offset,omitempty" jsonschema:"pagination offset, defaults to 0"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of entries to return, defaults to 100"`
}

type addressArgs struct {
	Address string `json:"address" jsonschema:"address in hex format, e.g. 0x401000"`
}

type nameArgs struct {
	Name string `json:"name" jsonschema:"function name as shown in the listing"`
}

type renameFunctionArgs struct {
	OldName string `json:"old_name" jsonschema:"current function name"`
	NewName string `json:"new_name" jsonschema:"new function name"`
}

type renameByAddressArgs struct {
	FunctionAddress string `json:"function_address" jsonschema:"address of the function in hex format"`
	NewName         string `json:"new_name" jsonschema:"new function name"`
}

type renameDataArgs struct {
	Address string `json:"address" jsonschema:"address of the data label in hex format"`
	NewName string `json:"new_name" jsonschema:"new label name"`
}

type commentArgs struct {
	Address string `json:"address" jsonschema:"address in hex format"`
	Comment string `json:"comment" jsonschema:"comment text"`
}

type prototypeArgs struct {
	FunctionAddress string `json:"function_address" jsonschema:"address of the function in hex format"`
	Prototype       string `json:"prototype" jsonschema:"full prototype, e.g. 'int main(int argc, char **argv)'"`
}

type variableTypeArgs struct {
	FunctionAddress string `json:"function_address" jsonschema:"address of the function in hex format"`
	VariableName    string `json:"variable_name" jsonschema:"local variable name"`
	NewType         string `json:"new_type" jsonschema:"new variable type, e.g. 'char *'"`
}

type bsimDatabaseArgs struct {
	DatabasePath string `json:"database_path" jsonschema:"path to the BSim signature database"`
}

type bsimQueryArgs struct {
	FunctionAddress     string   `json:"function_address" jsonschema:"address of the function to match, in hex format"`
	MaxMatches          int      `json:"max_matches,omitempty" jsonschema:"maximum matches to return, defaults to 10"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty" jsonschema:"minimum similarity, defaults to 0.7"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty" jsonschema:"minimum confidence, defaults to 0.0"`
	MaxSimilarity       *float64 `json:"max_similarity,omitempty" jsonschema:"optional upper similarity bound"`
	MaxConfidence       *float64 `json:"max_confidence,omitempty" jsonschema:"optional upper confidence bound"`
	Offset              *int     `json:"offset,omitempty" jsonschema:"pagination offset, defaults to 0"`
	Limit               *int     `json:"limit,omitempty" jsonschema:"pagination limit, defaults to 100"`
}

type bsimQueryAllArgs struct {
	MaxMatchesPerFunction int      `json:"max_matches_per_function,omitempty" jsonschema:"maximum matches per function, defaults to 10"`
	SimilarityThreshold   *float64 `json:"similarity_threshold,omitempty" jsonschema:"minimum similarity, defaults to 0.7"`
	ConfidenceThreshold   *float64 `json:"confidence_threshold,omitempty" jsonschema:"minimum confidence, defaults to 0.0"`
	MaxSimilarity         *float64 `json:"max_similarity,omitempty" jsonschema:"optional upper similarity bound"`
	MaxConfidence         *float64 `json:"max_confidence,omitempty" jsonschema:"optional upper confidence bound"`
	Offset                *int     `json:"offset,omitempty" jsonschema:"pagination offset, defaults to 0"`
	Limit                 *int     `json:"limit,omitempty" jsonschema:"pagination limit, defaults to 100"`
}

type bsimMatchArgs struct {
	ExecutablePath  string `json:"executable_path" jsonschema:"executable path as reported in the match results"`
	FunctionName    string `json:"function_name" jsonschema:"matched function name"`
	FunctionAddress string `json:"function_address" jsonschema:"matched function address"`
}

func orDefault(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func queryOptions(maxSim, maxConf *float64, offset, limit *int) bridge.BSimQueryOptions {
	return bridge.BSimQueryOptions{
		MaxSimilarity: maxSim,
		MaxConfidence: maxConf,
		Offset:        offset,
		Limit:         limit,
	}
}

// addListTool registers one paginated listing tool.
func (s *Server) addListTool(name, description string, op func(ctx context.Context, offset, limit int, filter string) []string) {
	addToolTo(s, &mcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *mcp.CallToolRequest, args listArgs) (*mcp.CallToolResult, any, error) {
			return linesResult(op(ctx, args.Offset, args.limitOrDefault(), args.Filter)), nil, nil
		})
}

// addToolTo registers a tool and records its name.
func addToolTo[In any](s *Server, tool *mcp.Tool, h func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, any, error)) {
	mcp.AddTool(s.mcp, tool, h)
	s.toolNames = append(s.toolNames, tool.Name)
}

// registerTools wires every bridge operation into the MCP catalog.
func (s *Server) registerTools() {
	b := s.bridge

	s.addListTool("list_methods", "List all function names in the program with pagination.", b.ListMethods)
	s.addListTool("list_classes", "List all namespace/class names in the program with pagination.", b.ListClasses)
	s.addListTool("list_segments", "List all memory segments in the program with pagination.", b.ListSegments)
	s.addListTool("list_imports", "List imported symbols in the program with pagination.", b.ListImports)
	s.addListTool("list_exports", "List exported functions/symbols with pagination.", b.ListExports)
	s.addListTool("list_namespaces", "List all non-global namespaces in the program with pagination.", b.ListNamespaces)
	s.addListTool("list_data_items", "List defined data labels and their values with pagination.", b.ListDataItems)
	s.addListTool("list_strings", "List defined strings in the program, with an optional filter.", b.ListStrings)

	addToolTo(s, &mcp.Tool{Name: "list_functions", Description: "List all functions in the database with their addresses."},
		func(ctx context.Context, _ *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
			return linesResult(b.ListFunctions(ctx)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "search_functions_by_name", Description: "Search for functions whose name contains the given substring."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args searchArgs) (*mcp.CallToolResult, any, error) {
			limit := args.Limit
			if limit == 0 {
				limit = defaultListLimit
			}
			return linesResult(b.SearchFunctionsByName(ctx, args.Query, args.Offset, limit)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "get_function_by_address", Description: "Get details about the function at the given address."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args addressArgs) (*mcp.CallToolResult, any, error) {
			return linesResult(b.GetFunctionByAddress(ctx, args.Address)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "get_current_address", Description: "Get the address currently selected in the Ghidra GUI."},
		func(ctx context.Context, _ *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
			return linesResult(b.GetCurrentAddress(ctx)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "get_current_function", Description: "Get the function currently selected in the Ghidra GUI."},
		func(ctx context.Context, _ *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
			return linesResult(b.GetCurrentFunction(ctx)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "decompile_function", Description: "Decompile a function by name and return the C source."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args nameArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.DecompileFunction(ctx, args.Name)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "decompile_function_by_address", Description: "Decompile the function at the given address."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args addressArgs) (*mcp.CallToolResult, any, error) {
			return linesResult(b.DecompileFunctionByAddress(ctx, args.Address)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "disassemble_function", Description: "Get the assembly listing of the function at the given address."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args addressArgs) (*mcp.CallToolResult, any, error) {
			return linesResult(b.DisassembleFunction(ctx, args.Address)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "rename_function", Description: "Rename a function identified by its current name."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args renameFunctionArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.RenameFunction(ctx, args.OldName, args.NewName)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "rename_function_by_address", Description: "Rename the function at the given address."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args renameByAddressArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.RenameFunctionByAddress(ctx, args.FunctionAddress, args.NewName)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "rename_data", Description: "Rename the data label at the given address."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args renameDataArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.RenameData(ctx, args.Address, args.NewName)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "set_decompiler_comment", Description: "Set a comment in the decompiler pseudocode view at the given address."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args commentArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.SetDecompilerComment(ctx, args.Address, args.Comment)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "set_disassembly_comment", Description: "Set a comment in the disassembly listing at the given address."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args commentArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.SetDisassemblyComment(ctx, args.Address, args.Comment)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "set_function_prototype", Description: "Replace the prototype of the function at the given address."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args prototypeArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.SetFunctionPrototype(ctx, args.FunctionAddress, args.Prototype)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "set_local_variable_type", Description: "Change the type of a local variable inside a function."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args variableTypeArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.SetLocalVariableType(ctx, args.FunctionAddress, args.VariableName, args.NewType)), nil, nil
		})

	s.registerBSimTools()
}

// registerBSimTools wires the BSim similarity-matching subsystem.
func (s *Server) registerBSimTools() {
	b := s.bridge

	addToolTo(s, &mcp.Tool{Name: "bsim_select_database", Description: "Connect to a BSim function-similarity database."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args bsimDatabaseArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.BSimSelectDatabase(ctx, args.DatabasePath)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "bsim_status", Description: "Report the current BSim database connection status."},
		func(ctx context.Context, _ *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.BSimStatus(ctx)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "bsim_query_function", Description: "Find similar functions for one function address in the connected BSim database."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args bsimQueryArgs) (*mcp.CallToolResult, any, error) {
			maxMatches := args.MaxMatches
			if maxMatches == 0 {
				maxMatches = defaultBSimMaxMatches
			}
			result := b.BSimQueryFunction(ctx, args.FunctionAddress, maxMatches,
				orDefault(args.SimilarityThreshold, defaultSimilarityThreshold),
				orDefault(args.ConfidenceThreshold, defaultConfidenceThreshold),
				queryOptions(args.MaxSimilarity, args.MaxConfidence, args.Offset, args.Limit))
			return textResult(result), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "bsim_query_all_functions", Description: "Find similar functions for every function in the program."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args bsimQueryAllArgs) (*mcp.CallToolResult, any, error) {
			perFunction := args.MaxMatchesPerFunction
			if perFunction == 0 {
				perFunction = defaultBSimMaxMatches
			}
			result := b.BSimQueryAllFunctions(ctx, perFunction,
				orDefault(args.SimilarityThreshold, defaultSimilarityThreshold),
				orDefault(args.ConfidenceThreshold, defaultConfidenceThreshold),
				queryOptions(args.MaxSimilarity, args.MaxConfidence, args.Offset, args.Limit))
			return textResult(result), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "bsim_get_match_disassembly", Description: "Get the disassembly of a BSim match in another executable."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args bsimMatchArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.BSimGetMatchDisassembly(ctx, args.ExecutablePath, args.FunctionName, args.FunctionAddress)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "bsim_get_match_decompile", Description: "Get the decompilation of a BSim match in another executable."},
		func(ctx context.Context, _ *mcp.CallToolRequest, args bsimMatchArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.BSimGetMatchDecompile(ctx, args.ExecutablePath, args.FunctionName, args.FunctionAddress)), nil, nil
		})

	addToolTo(s, &mcp.Tool{Name: "bsim_disconnect", Description: "Disconnect from the current BSim database."},
		func(ctx context.Context, _ *mcp.CallToolRequest, _ noArgs) (*mcp.CallToolResult, any, error) {
			return textResult(b.BSimDisconnect(ctx)), nil, nil
		})
}
