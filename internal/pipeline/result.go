package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats supported by the CLI and batch surfaces.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML, FormatCSV}

// IsValidFormat reports whether format names a supported output format.
func IsValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// FormatResult renders a DecodeResult in the requested format.
func FormatResult(res *DecodeResult, format string) (string, error) {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal result: %w", err)
		}
		return string(b) + "\n", nil
	case FormatYAML:
		b, err := yaml.Marshal(res)
		if err != nil {
			return "", fmt.Errorf("marshal result: %w", err)
		}
		return string(b), nil
	case FormatCSV:
		return formatResultCSV(res)
	default:
		return formatResultText(res), nil
	}
}

func formatResultText(res *DecodeResult) string {
	var sb strings.Builder
	payload := res.Text
	if res.Binary {
		payload = fmt.Sprintf("<binary, %d bytes>", len(res.Payload))
	}
	box := res.Box()
	fmt.Fprintf(&sb, "%s: %s\n", res.Family, payload)
	fmt.Fprintf(&sb, "  via: %s variant, %s engine (%.1fms)\n",
		res.Variant, res.Engine, float64(res.Elapsed.Microseconds())/1000)
	fmt.Fprintf(&sb, "  bounds: (%.0f,%.0f)-(%.0f,%.0f)\n", box.MinX, box.MinY, box.MaxX, box.MaxY)
	return sb.String()
}

func formatResultCSV(res *DecodeResult) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	rows := [][]string{
		{"family", "text", "binary", "variant", "engine", "min_x", "min_y", "max_x", "max_y"},
		csvRow(res),
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return sb.String(), nil
}

func csvRow(res *DecodeResult) []string {
	box := res.Box()
	return []string{
		string(res.Family),
		res.Text,
		fmt.Sprintf("%t", res.Binary),
		res.Variant,
		res.Engine,
		fmt.Sprintf("%.0f", box.MinX),
		fmt.Sprintf("%.0f", box.MinY),
		fmt.Sprintf("%.0f", box.MaxX),
		fmt.Sprintf("%.0f", box.MaxY),
	}
}
