package plan

import (
	"fmt"
	"io"
	"os"
	"strings"
)

var stdin io.Reader = os.Stdin

// Resolve loads a plan from a file path, or from stdin when input is "-".
func Resolve(input string) (QueryResult, error) {
	data, err := readInput(input)
	if err != nil {
		return QueryResult{}, err
	}

	switch detectType(data, input) {
	case "json":
		return ParseJSONPlan(data)
	case "text":
		return QueryResult{}, fmt.Errorf(`text format not supported - use JSON format:

EXPLAIN (ANALYZE, BUFFERS, FORMAT JSON) <your query>

Then provide the complete JSON output.`)
	default:
		return QueryResult{}, &MalformedInputError{Reason: "input is not an EXPLAIN JSON document"}
	}
}

func readInput(input string) ([]byte, error) {
	if input == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	return data, nil
}

func detectType(data []byte, filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return "json"
	}
	if strings.HasSuffix(filename, ".txt") {
		return "text"
	}

	trimmed := strings.TrimSpace(string(data))

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return "json"
	}

	if strings.Contains(trimmed, "(cost=") {
		return "text"
	}

	return "unknown"
}
