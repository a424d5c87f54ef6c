package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unowned-ai/geonote/pkg/notes"
)

// stringArg returns the named argument and whether it was supplied as a string.
func stringArg(request mcp.CallToolRequest, name string) (string, bool) {
	v, ok := request.Params.Arguments[name].(string)
	return v, ok
}

// floatArg accepts JSON numbers and numeric strings.
func floatArg(request mcp.CallToolRequest, name string) (*float64, error) {
	raw, ok := request.Params.Arguments[name]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case float64:
		return &v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("'%s' must be a number", name)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("'%s' must be a number", name)
	}
}

// idArg reads a required, positive, whole-number note id.
func idArg(request mcp.CallToolRequest) (int64, error) {
	f, err := floatArg(request, "id")
	if err != nil {
		return 0, err
	}
	if f == nil {
		return 0, fmt.Errorf("'id' parameter is required")
	}
	if *f <= 0 || *f != math.Trunc(*f) {
		return 0, fmt.Errorf("'id' must be a positive whole number")
	}
	return int64(*f), nil
}

// locationArgs reads latitude, longitude and accuracy. Coordinates come in pairs.
func locationArgs(request mcp.CallToolRequest) (lat, lon *float64, accuracy *float32, err error) {
	if lat, err = floatArg(request, "latitude"); err != nil {
		return nil, nil, nil, err
	}
	if lon, err = floatArg(request, "longitude"); err != nil {
		return nil, nil, nil, err
	}
	if (lat == nil) != (lon == nil) {
		return nil, nil, nil, fmt.Errorf("'latitude' and 'longitude' must be given together")
	}
	acc, err := floatArg(request, "accuracy")
	if err != nil {
		return nil, nil, nil, err
	}
	if acc != nil {
		a := float32(*acc)
		accuracy = &a
	}
	return lat, lon, accuracy, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// activeSnapshot takes the first emission of the live list and detaches.
func activeSnapshot(ctx context.Context, repo *notes.Repository) ([]notes.Note, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	select {
	case snapshot, ok := <-stream:
		if !ok {
			return nil, fmt.Errorf("notes stream closed")
		}
		return snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
