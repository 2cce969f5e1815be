// Package bridge maps each remote Ghidra capability onto the two transport
// primitives. Every method is pure parameter marshaling: build a parameter
// map, call the transport, reshape the result. No retries, no caching, no
// validation beyond what the remote contract requires.
//
// The wire contract is asymmetric on purpose: GET query parameters carry
// literal numerics (offset=10&limit=50) while POST bodies are stringified by
// the wrapper before submission. The remote server depends on this shape, so
// it is preserved here even though it looks inconsistent.
package bridge

import (
	"context"
	"strconv"
	"strings"

	"github.com/revbridge/ghidramcp/internal/ghidra"
)

// Bridge exposes the Ghidra plugin's capabilities as Go methods.
type Bridge struct {
	client *ghidra.Client
}

// New creates a Bridge over the given transport client.
func New(client *ghidra.Client) *Bridge {
	return &Bridge{client: client}
}

// pageParams builds the pagination parameter map shared by all list
// operations. The filter key is added only when a filter is actually given;
// an absent filter must not appear as an empty string.
func pageParams(offset, limit int, filter string) map[string]string {
	params := map[string]string{
		"offset": strconv.Itoa(offset),
		"limit":  strconv.Itoa(limit),
	}
	if filter != "" {
		params["filter"] = filter
	}
	return params
}

// list is the common body of every paginated listing operation.
func (b *Bridge) list(ctx context.Context, endpoint string, offset, limit int, filter string) []string {
	return b.client.FetchLines(ctx, endpoint, pageParams(offset, limit, filter))
}

// ListMethods lists function/method names in the current program.
func (b *Bridge) ListMethods(ctx context.Context, offset, limit int, filter string) []string {
	return b.list(ctx, "methods", offset, limit, filter)
}

// ListClasses lists namespace/class names in the current program.
func (b *Bridge) ListClasses(ctx context.Context, offset, limit int, filter string) []string {
	return b.list(ctx, "classes", offset, limit, filter)
}

// ListSegments lists memory segments.
func (b *Bridge) ListSegments(ctx context.Context, offset, limit int, filter string) []string {
	return b.list(ctx, "segments", offset, limit, filter)
}

// ListImports lists imported symbols.
func (b *Bridge) ListImports(ctx context.Context, offset, limit int, filter string) []string {
	return b.list(ctx, "imports", offset, limit, filter)
}

// ListExports lists exported functions and entry points.
func (b *Bridge) ListExports(ctx context.Context, offset, limit int, filter string) []string {
	return b.list(ctx, "exports", offset, limit, filter)
}

// ListNamespaces lists non-global namespaces.
func (b *Bridge) ListNamespaces(ctx context.Context, offset, limit int, filter string) []string {
	return b.list(ctx, "namespaces", offset, limit, filter)
}

// ListDataItems lists defined data labels and their values.
func (b *Bridge) ListDataItems(ctx context.Context, offset, limit int, filter string) []string {
	return b.list(ctx, "data", offset, limit, filter)
}

// ListStrings lists defined strings, optionally filtered by substring.
func (b *Bridge) ListStrings(ctx context.Context, offset, limit int, filter string) []string {
	return b.list(ctx, "strings", offset, limit, filter)
}

// ListFunctions lists every function with its address.
func (b *Bridge) ListFunctions(ctx context.Context) []string {
	return b.client.FetchLines(ctx, "list_functions", nil)
}

// SearchFunctionsByName searches functions whose name contains query.
// An empty or whitespace-only query is rejected locally; no request is sent.
func (b *Bridge) SearchFunctionsByName(ctx context.Context, query string, offset, limit int) []string {
	if strings.TrimSpace(query) == "" {
		return []string{"Error: query string is required"}
	}
	params := pageParams(offset, limit, "")
	params["query"] = query
	return b.client.FetchLines(ctx, "searchFunctions", params)
}

// GetFunctionByAddress returns details of the function at the given address.
func (b *Bridge) GetFunctionByAddress(ctx context.Context, address string) []string {
	return b.client.FetchLines(ctx, "get_function_by_address", map[string]string{"address": address})
}

// GetCurrentAddress returns the address currently selected in the Ghidra GUI.
func (b *Bridge) GetCurrentAddress(ctx context.Context) []string {
	return b.client.FetchLines(ctx, "get_current_address", nil)
}

// GetCurrentFunction returns the function currently selected in the Ghidra GUI.
func (b *Bridge) GetCurrentFunction(ctx context.Context) []string {
	return b.client.FetchLines(ctx, "get_current_function", nil)
}

// DecompileFunction decompiles a function by name. The name travels as the
// literal POST body, not as a form field.
func (b *Bridge) DecompileFunction(ctx context.Context, name string) string {
	return b.client.SubmitPayload(ctx, "decompile", name)
}

// DecompileFunctionByAddress decompiles the function at the given address.
func (b *Bridge) DecompileFunctionByAddress(ctx context.Context, address string) []string {
	return b.client.FetchLines(ctx, "decompile_function", map[string]string{"address": address})
}

// DisassembleFunction returns the disassembly listing for the function at
// the given address, one "address: instruction ; comment" entry per line.
func (b *Bridge) DisassembleFunction(ctx context.Context, address string) []string {
	return b.client.FetchLines(ctx, "disassemble_function", map[string]string{"address": address})
}

// RenameFunction renames a function identified by its current name.
func (b *Bridge) RenameFunction(ctx context.Context, oldName, newName string) string {
	return b.client.SubmitPayload(ctx, "renameFunction", map[string]string{
		"oldName": oldName,
		"newName": newName,
	})
}

// RenameFunctionByAddress renames the function at the given address.
func (b *Bridge) RenameFunctionByAddress(ctx context.Context, functionAddress, newName string) string {
	return b.client.SubmitPayload(ctx, "rename_function_by_address", map[string]string{
		"function_address": functionAddress,
		"new_name":         newName,
	})
}

// RenameData renames the data label at the given address.
func (b *Bridge) RenameData(ctx context.Context, address, newName string) string {
	return b.client.SubmitPayload(ctx, "renameData", map[string]string{
		"address": address,
		"newName": newName,
	})
}

// SetDecompilerComment attaches a comment to the decompiler view at address.
func (b *Bridge) SetDecompilerComment(ctx context.Context, address, comment string) string {
	return b.client.SubmitPayload(ctx, "set_decompiler_comment", map[string]string{
		"address": address,
		"comment": comment,
	})
}

// SetDisassemblyComment attaches a comment to the disassembly view at address.
func (b *Bridge) SetDisassemblyComment(ctx context.Context, address, comment string) string {
	return b.client.SubmitPayload(ctx, "set_disassembly_comment", map[string]string{
		"address": address,
		"comment": comment,
	})
}

// SetFunctionPrototype replaces the prototype of the function at the address.
func (b *Bridge) SetFunctionPrototype(ctx context.Context, functionAddress, prototype string) string {
	return b.client.SubmitPayload(ctx, "set_function_prototype", map[string]string{
		"function_address": functionAddress,
		"prototype":        prototype,
	})
}

// SetLocalVariableType retypes a local variable inside a function.
func (b *Bridge) SetLocalVariableType(ctx context.Context, functionAddress, variableName, newType string) string {
	return b.client.SubmitPayload(ctx, "set_local_variable_type", map[string]string{
		"function_address": functionAddress,
		"variable_name":    variableName,
		"new_type":         newType,
	})
}
