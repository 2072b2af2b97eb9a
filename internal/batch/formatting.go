package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/symscan/internal/pipeline"
)

// FormatResult renders a batch result in the configured output format.
func FormatResult(res *Result, format string) (string, error) {
	switch format {
	case pipeline.FormatJSON:
		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal batch result: %w", err)
		}
		return string(b) + "\n", nil
	case pipeline.FormatYAML:
		b, err := yaml.Marshal(res)
		if err != nil {
			return "", fmt.Errorf("marshal batch result: %w", err)
		}
		return string(b), nil
	case pipeline.FormatCSV:
		return formatCSV(res)
	default:
		return formatText(res), nil
	}
}

// WriteResult writes the formatted batch result to the output file, or
// to stdout when no file is configured.
func WriteResult(res *Result, config *Config) error {
	out, err := FormatResult(res, config.Format)
	if err != nil {
		return err
	}
	if config.OutputFile == "" {
		_, err = fmt.Print(out)
		return err
	}
	return os.WriteFile(config.OutputFile, []byte(out), 0o600)
}

func formatText(res *Result) string {
	var sb strings.Builder
	for _, fr := range res.Files {
		if fr.Result != nil {
			payload := fr.Result.Text
			if fr.Result.Binary {
				payload = fmt.Sprintf("<binary, %d bytes>", len(fr.Result.Payload))
			}
			fmt.Fprintf(&sb, "%s: %s: %s\n", fr.Path, fr.Result.Family, payload)
		} else {
			fmt.Fprintf(&sb, "%s: %s\n", fr.Path, fr.Error)
		}
	}
	fmt.Fprintf(&sb, "\n%d found, %d without symbols, %d errored in %.1fs (%d workers)\n",
		res.Found, res.NotFound, res.Errored, res.Duration.Seconds(), res.WorkerCount)
	return sb.String()
}

func formatCSV(res *Result) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"path", "family", "text", "binary", "variant", "engine", "error"}); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	for _, fr := range res.Files {
		row := []string{fr.Path, "", "", "", "", "", fr.Error}
		if fr.Result != nil {
			row = []string{
				fr.Path,
				string(fr.Result.Family),
				fr.Result.Text,
				fmt.Sprintf("%t", fr.Result.Binary),
				fr.Result.Variant,
				fr.Result.Engine,
				"",
			}
		}
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
