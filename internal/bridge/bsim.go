package bridge

import (
	"context"
	"strconv"
	"strings"
)

// BSim similarity-matching subsystem. All numeric fields travel stringified
// in the POST body; the server parses them back. Optional upper-bound filters
// are written only when the caller explicitly supplied them — absence must
// not introduce placeholder keys.

// Default pagination for BSim queries when the caller leaves it unset.
const (
	bsimDefaultOffset = 0
	bsimDefaultLimit  = 100
)

// BSimQueryOptions carries the optional parts of a BSim query. Pointer
// fields distinguish "not supplied" from an explicit zero.
type BSimQueryOptions struct {
	MaxSimilarity *float64
	MaxConfidence *float64
	Offset        *int
	Limit         *int
}

// apply writes the optional fields into a query body, filling pagination
// with the defaults when unset.
func (o BSimQueryOptions) apply(data map[string]string) {
	if o.MaxSimilarity != nil {
		data["max_similarity"] = formatFloat(*o.MaxSimilarity)
	}
	if o.MaxConfidence != nil {
		data["max_confidence"] = formatFloat(*o.MaxConfidence)
	}
	offset, limit := bsimDefaultOffset, bsimDefaultLimit
	if o.Offset != nil {
		offset = *o.Offset
	}
	if o.Limit != nil {
		limit = *o.Limit
	}
	data["offset"] = strconv.Itoa(offset)
	data["limit"] = strconv.Itoa(limit)
}

// formatFloat renders a float the way the BSim endpoint expects: shortest
// decimal form, but integral values keep one decimal place ("0.0", not "0").
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// BSimSelectDatabase connects the plugin to a BSim signature database.
func (b *Bridge) BSimSelectDatabase(ctx context.Context, databasePath string) string {
	return b.client.SubmitPayload(ctx, "bsim/select_database", map[string]string{
		"database_path": databasePath,
	})
}

// BSimStatus reports the current BSim connection state. The multi-line
// response is joined back into a single newline-delimited string.
func (b *Bridge) BSimStatus(ctx context.Context) string {
	return strings.Join(b.client.FetchLines(ctx, "bsim/status", nil), "\n")
}

// BSimQueryFunction queries the BSim database for matches of one function.
func (b *Bridge) BSimQueryFunction(ctx context.Context, functionAddress string, maxMatches int, similarityThreshold, confidenceThreshold float64, opts BSimQueryOptions) string {
	data := map[string]string{
		"function_address":     functionAddress,
		"max_matches":          strconv.Itoa(maxMatches),
		"similarity_threshold": formatFloat(similarityThreshold),
		"confidence_threshold": formatFloat(confidenceThreshold),
	}
	opts.apply(data)
	return b.client.SubmitPayload(ctx, "bsim/query_function", data)
}

// BSimQueryAllFunctions queries the BSim database for matches of every
// function in the program. Same shape as BSimQueryFunction but keyed by a
// per-function match cap instead of a function address.
func (b *Bridge) BSimQueryAllFunctions(ctx context.Context, maxMatchesPerFunction int, similarityThreshold, confidenceThreshold float64, opts BSimQueryOptions) string {
	data := map[string]string{
		"max_matches_per_function": strconv.Itoa(maxMatchesPerFunction),
		"similarity_threshold":     formatFloat(similarityThreshold),
		"confidence_threshold":     formatFloat(confidenceThreshold),
	}
	opts.apply(data)
	return b.client.SubmitPayload(ctx, "bsim/query_all_functions", data)
}

// BSimGetMatchDisassembly fetches the disassembly of a matched function in
// another executable. Fields are forwarded verbatim.
func (b *Bridge) BSimGetMatchDisassembly(ctx context.Context, executablePath, functionName, functionAddress string) string {
	return b.client.SubmitPayload(ctx, "bsim/get_match_disassembly", map[string]string{
		"executable_path":  executablePath,
		"function_name":    functionName,
		"function_address": functionAddress,
	})
}

// BSimGetMatchDecompile fetches the decompilation of a matched function in
// another executable.
func (b *Bridge) BSimGetMatchDecompile(ctx context.Context, executablePath, functionName, functionAddress string) string {
	return b.client.SubmitPayload(ctx, "bsim/get_match_decompile", map[string]string{
		"executable_path":  executablePath,
		"function_name":    functionName,
		"function_address": functionAddress,
	})
}

// BSimDisconnect closes the current BSim database connection.
func (b *Bridge) BSimDisconnect(ctx context.Context) string {
	return b.client.SubmitPayload(ctx, "bsim/disconnect", map[string]string{})
}
