package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"deadline-notify/internal/domain/entity"
	"deadline-notify/internal/usecase/alert"
	"deadline-notify/internal/usecase/compact"
)

// entriesFile is the preview input. JSON is accepted as well, since it is valid YAML.
type entriesFile struct {
	Section string       `yaml:"section"`
	Entries []entryInput `yaml:"entries"`
}

type entryInput struct {
	Title    string `yaml:"title"`
	URL      string `yaml:"url"`
	Deadline string `yaml:"deadline"`
}

// PreviewResult is one compacted date group.
type PreviewResult struct {
	Date       string `json:"date" yaml:"date"`
	Message    string `json:"message" yaml:"message"`
	Mode       string `json:"mode" yaml:"mode"`
	Entries    int    `json:"entries" yaml:"entries"`
	Rows       int    `json:"rows" yaml:"rows"`
	MergedRows int    `json:"merged_rows" yaml:"merged_rows"`
	Omitted    bool   `json:"omitted" yaml:"omitted"`
	Length     int    `json:"length" yaml:"length"`
	Fits       bool   `json:"fits" yaml:"fits"`
}

type previewOptions struct {
	file       string
	section    string
	suffix     string
	timezone   string
	maxDisplay int
	budget     int
	floor      int
	days       []int
	now        string
}

func previewCmd(outputFmt *string) *cobra.Command {
	defaults := compact.DefaultOptions()
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show how entries would be compacted into messages",
		Long: `Group the entries of a YAML or JSON file by deadline date and print the
message each group would produce, with compaction statistics.

The file looks like:

  section: アソビストア 締切間近
  entries:
    - title: Item A
      url: https://example.com/a
      deadline: "2025-01-10T23:59:00+09:00"
    - title: Item B
      url: https://example.com/b
      deadline: "2025-01-10"

Examples:
  # Preview with the Discord budget
  deadlinectl preview -f entries.yaml

  # Squeeze into 300 characters and only keep entries due today or tomorrow
  deadlinectl preview -f entries.yaml --budget 300 --days 0,1 --now 2025-01-10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(*outputFmt); err != nil {
				return err
			}
			results, err := runPreview(opts)
			if err != nil {
				return err
			}
			if *outputFmt == "text" {
				printPreview(cmd.OutOrStdout(), results)
				return nil
			}
			return printStructured(cmd.OutOrStdout(), *outputFmt, results)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "filename", "f", "", "Entries file, YAML or JSON (required)")
	cmd.Flags().StringVar(&opts.section, "section", "", "Section title (default: the file's section)")
	cmd.Flags().StringVar(&opts.suffix, "suffix", defaults.OmittedSuffix, "Line appended when rows are omitted")
	cmd.Flags().StringVar(&opts.timezone, "timezone", "Asia/Tokyo", "Timezone for bare dates")
	cmd.Flags().IntVar(&opts.maxDisplay, "max-display", defaults.MaxDisplay, "Initial row cap per message")
	cmd.Flags().IntVar(&opts.budget, "budget", defaults.Budget, "Message length limit in characters")
	cmd.Flags().IntVar(&opts.floor, "floor", defaults.Floor, "Row count below which rows are never dropped")
	cmd.Flags().IntSliceVar(&opts.days, "days", nil, "Only keep entries due this many days after --now")
	cmd.Flags().StringVar(&opts.now, "now", "", "Reference time for --days, RFC 3339 or YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("filename")

	return cmd
}

func runPreview(opts *previewOptions) ([]PreviewResult, error) {
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid --timezone: %w", err)
	}

	// #nosec G304 -- path comes from the operator
	data, err := os.ReadFile(opts.file)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	file, err := parseEntriesFile(data)
	if err != nil {
		return nil, err
	}
	entries, err := file.toEntries(loc)
	if err != nil {
		return nil, err
	}

	if len(opts.days) > 0 {
		now, err := parseNow(opts.now, loc)
		if err != nil {
			return nil, err
		}
		entries = alert.Filter(entries, alert.NewOffsets(opts.days...), now)
	}

	section := opts.section
	if section == "" {
		section = file.Section
	}
	compactOpts := compact.DefaultOptions()
	compactOpts.OmittedSuffix = opts.suffix
	compactOpts.MaxDisplay = opts.maxDisplay
	compactOpts.Budget = opts.budget
	compactOpts.Floor = opts.floor

	budget := opts.budget
	if budget <= 0 {
		budget = compact.DefaultBudget
	}

	groups := alert.Group(entries)
	results := make([]PreviewResult, 0, len(groups))
	for _, g := range groups {
		r := compact.CompactDetailed(section, g.Entries, compactOpts)
		results = append(results, PreviewResult{
			Date:       g.Date.String(),
			Message:    r.Message,
			Mode:       string(r.Mode),
			Entries:    r.Entries,
			Rows:       r.Rows,
			MergedRows: r.MergedRows,
			Omitted:    r.Omitted,
			Length:     r.Length,
			Fits:       compact.Fits(r.Message, budget),
		})
	}
	return results, nil
}

func parseEntriesFile(data []byte) (entriesFile, error) {
	var file entriesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return entriesFile{}, fmt.Errorf("failed to parse entries: %w", err)
	}
	return file, nil
}

func (f entriesFile) toEntries(loc *time.Location) ([]entity.DeadlineEntry, error) {
	entries := make([]entity.DeadlineEntry, 0, len(f.Entries))
	for i, in := range f.Entries {
		deadline, err := parseDeadline(in.Deadline, loc)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i+1, in.Title, err)
		}
		entries = append(entries, entity.DeadlineEntry{
			Title:    in.Title,
			URL:      in.URL,
			Deadline: deadline,
		})
	}
	return entries, nil
}

// parseDeadline reads RFC 3339, or a bare date as 23:59 on that day in loc.
// An RFC 3339 value keeps its own offset, so its calendar date is the one written.
func parseDeadline(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q: use RFC 3339 or YYYY-MM-DD", value)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, loc), nil
}

func printPreview(w io.Writer, results []PreviewResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no entries")
		return
	}
	for _, r := range results {
		fmt.Fprintln(w, r.Message)
		fmt.Fprintf(w, "-- %s mode=%s entries=%d rows=%d merged_rows=%d length=%d fits=%t\n\n",
			r.Date, r.Mode, r.Entries, r.Rows, r.MergedRows, r.Length, r.Fits)
	}
}
