package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/baditaflorin/l"
	"github.com/urfave/cli/v3"

	"github.com/muhammadawaislaal/go_lab_analysis/pkg/labreport"
	"github.com/muhammadawaislaal/go_lab_analysis/pkg/reference"
)

func main() {
	app := &cli.Command{
		Name:  "labscan",
		Usage: "Extract and grade lab values from report text",
		Commands: []*cli.Command{
			cmdScan,
			cmdReference,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

var cmdScan = &cli.Command{
	Name:    "scan",
	Aliases: []string{"analyze"},
	Usage:   "Analyze a lab report and print graded results",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "read the report from a file (- for stdin)",
		},
		&cli.StringFlag{
			Name:    "text",
			Aliases: []string{"t"},
			Usage:   "report text passed inline",
		},
		&cli.StringFlag{
			Name:    "reference",
			Sources: cli.EnvVars("LAB_REFERENCE_FILE"),
			Usage:   "YAML reference table (empty = built-in catalog)",
		},
		&cli.StringFlag{
			Name:  "age",
			Usage: "patient age in years",
		},
		&cli.StringFlag{
			Name:  "gender",
			Usage: "patient gender (male or female)",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: "text",
			Usage: "output format: text, json or markdown",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "log engine activity to stderr",
		},
	},
	Action: runScan,
}

var cmdReference = &cli.Command{
	Name:  "reference",
	Usage: "Inspect the reference table",
	Commands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List the tests the engine recognizes",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "reference",
					Sources: cli.EnvVars("LAB_REFERENCE_FILE"),
					Usage:   "YAML reference table (empty = built-in catalog)",
				},
				&cli.StringFlag{
					Name:  "format",
					Value: "text",
					Usage: "output format: text or json",
				},
			},
			Action: runReferenceList,
		},
	},
}

func runScan(ctx context.Context, cmd *cli.Command) error {
	opts := []labreport.AnalyzerOption{
		labreport.WithFastNormalizer(),
	}

	if cmd.Bool("verbose") {
		logger, err := createStderrLogger()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Close()
		opts = append(opts, labreport.WithLogger(logger))
	} else {
		opts = append(opts, labreport.WithQuietLogging())
	}

	if path := cmd.String("reference"); path != "" {
		table, err := reference.Load(path)
		if err != nil {
			return err
		}
		opts = append(opts, labreport.WithTable(table))
	}

	analyzer, err := labreport.New(opts...)
	if err != nil {
		return err
	}

	patient, err := buildPatient(cmd)
	if err != nil {
		return err
	}

	report, err := analyzeInput(ctx, cmd, analyzer, patient)
	if err != nil {
		return err
	}

	switch format := cmd.String("format"); format {
	case "text":
		printReport(os.Stdout, report)
		return nil
	case "json":
		return printReportJSON(os.Stdout, report)
	case "markdown":
		fmt.Fprintln(os.Stdout, analyzer.RenderMarkdown(report))
		return nil
	default:
		return fmt.Errorf("unrecognized format %q (want text, json or markdown)", format)
	}
}

func runReferenceList(ctx context.Context, cmd *cli.Command) error {
	table := reference.Default()
	if path := cmd.String("reference"); path != "" {
		var err error
		table, err = reference.Load(path)
		if err != nil {
			return err
		}
	}

	switch format := cmd.String("format"); format {
	case "text":
		printTable(os.Stdout, table)
		return nil
	case "json":
		return printTableJSON(os.Stdout, table)
	default:
		return fmt.Errorf("unrecognized format %q (want text or json)", format)
	}
}

// analyzeInput runs the analyzer over inline text, a file or stdin. Files
// and stdin go through the streaming path so report size stays unbounded.
func analyzeInput(ctx context.Context, cmd *cli.Command, analyzer *labreport.Analyzer, patient *labreport.Patient) (labreport.Report, error) {
	if text := cmd.String("text"); text != "" {
		return analyzer.Analyze(ctx, text, patient), nil
	}

	path := cmd.String("file")
	if path == "" {
		return labreport.Report{}, fmt.Errorf("either --text or --file is required")
	}
	if path == "-" {
		return analyzer.AnalyzeReader(ctx, os.Stdin, patient)
	}

	file, err := os.Open(path)
	if err != nil {
		return labreport.Report{}, fmt.Errorf("failed to open report: %w", err)
	}
	defer file.Close()

	return analyzer.AnalyzeReader(ctx, file, patient)
}

// buildPatient assembles patient demographics from the age and gender flags.
// Returns nil when neither flag is set.
func buildPatient(cmd *cli.Command) (*labreport.Patient, error) {
	ageText := strings.TrimSpace(cmd.String("age"))
	genderText := strings.TrimSpace(cmd.String("gender"))
	if ageText == "" && genderText == "" {
		return nil, nil
	}

	patient := &labreport.Patient{Gender: labreport.GenderUnisex}

	if ageText != "" {
		age, err := strconv.Atoi(ageText)
		if err != nil || age < 0 {
			return nil, fmt.Errorf("invalid age %q", ageText)
		}
		patient.Age = &age
	}

	switch strings.ToLower(genderText) {
	case "":
	case "male", "m":
		patient.Gender = labreport.GenderMale
	case "female", "f":
		patient.Gender = labreport.GenderFemale
	default:
		return nil, fmt.Errorf("unrecognized gender %q (want male or female)", genderText)
	}

	return patient, nil
}

func printReport(w io.Writer, report labreport.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST\tVALUE\tUNIT\tREFERENCE\tSTATUS")
	for _, res := range report.Results {
		unit := res.Record.Unit
		interval := "-"
		if res.Range != nil {
			interval = fmt.Sprintf("%s-%s", num(res.Range.Low), num(res.Range.High))
			if unit == "" {
				unit = res.Range.Unit
			}
		}
		status := string(res.Status)
		if res.Status == labreport.StatusLow || res.Status == labreport.StatusHigh {
			status = fmt.Sprintf("%s (%+g)", res.Status, res.Deviation)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			res.Record.TestName, num(res.Record.Value), unit, interval, status)
	}
	tw.Flush()

	summary := report.Summary
	fmt.Fprintf(w, "\n%d tests: %d normal, %d abnormal, %d unrecognized\n",
		summary.Total, summary.Normal, summary.Abnormal, summary.Unknown)
	fmt.Fprintf(w, "Urgency: %s\n", summary.Urgency)
	for _, flag := range summary.Flags {
		fmt.Fprintf(w, "  [%s] %s\n", flag.Severity, flag.Message)
	}
}

func printReportJSON(w io.Writer, report labreport.Report) error {
	view := reportView{
		ReportID:    report.ID.String(),
		GeneratedAt: report.GeneratedAt.Format(time.RFC3339),
		Results:     make([]resultView, len(report.Results)),
		Summary: summaryView{
			Total:    report.Summary.Total,
			Normal:   report.Summary.Normal,
			Abnormal: report.Summary.Abnormal,
			Unknown:  report.Summary.Unknown,
			Urgency:  string(report.Summary.Urgency),
		},
	}
	for _, flag := range report.Summary.Flags {
		view.Summary.Flags = append(view.Summary.Flags, flagView{
			Test:     flag.TestName,
			Severity: string(flag.Severity),
			Message:  flag.Message,
		})
	}
	for i, res := range report.Results {
		view.Results[i] = resultView{
			Test:          res.Record.TestName,
			Value:         res.Record.Value,
			Unit:          res.Record.Unit,
			Status:        string(res.Status),
			Deviation:     res.Deviation,
			WithinOptimal: res.WithinOptimal,
			UnitMismatch:  res.UnitMismatch,
		}
		if res.Range != nil {
			view.Results[i].Range = &rangeView{
				Low:    res.Range.Low,
				High:   res.Range.High,
				Unit:   res.Range.Unit,
				Age:    string(res.Range.AgeRange),
				Gender: string(res.Range.Gender),
			}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func printTable(w io.Writer, table *reference.Table) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEST\tUNIT\tCATEGORY\tRANGE\tALIASES")
	for _, entry := range table.Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s-%s\t%s\n",
			entry.Name, entry.Unit, entry.Category,
			num(entry.Low), num(entry.High),
			strings.Join(entry.Aliases, ", "))
	}
	tw.Flush()
}

func printTableJSON(w io.Writer, table *reference.Table) error {
	entries := table.Entries()
	views := make([]entryView, len(entries))
	for i, entry := range entries {
		views[i] = entryView{
			Name:     entry.Name,
			Aliases:  entry.Aliases,
			Unit:     entry.Unit,
			Category: string(entry.Category),
			Low:      entry.Low,
			High:     entry.High,
			Bands:    len(entry.Bands),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// createStderrLogger builds a logger that keeps stdout free for results
func createStderrLogger() (l.Logger, error) {
	return l.NewStandardFactory().CreateLogger(l.Config{
		Output:      os.Stderr,
		JsonFormat:  false,
		AsyncWrite:  true,
		BufferSize:  1024 * 1024,      // 1MB buffer
		MaxFileSize: 10 * 1024 * 1024, // 10MB max file size
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     true,
	})
}

// JSON output shapes

type reportView struct {
	ReportID    string       `json:"report_id"`
	GeneratedAt string       `json:"generated_at"`
	Results     []resultView `json:"results"`
	Summary     summaryView  `json:"summary"`
}

type resultView struct {
	Test          string     `json:"test"`
	Value         float64    `json:"value"`
	Unit          string     `json:"unit,omitempty"`
	Status        string     `json:"status"`
	Range         *rangeView `json:"range,omitempty"`
	Deviation     float64    `json:"deviation"`
	WithinOptimal *bool      `json:"within_optimal,omitempty"`
	UnitMismatch  bool       `json:"unit_mismatch,omitempty"`
}

type rangeView struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Unit   string  `json:"unit,omitempty"`
	Age    string  `json:"age_range"`
	Gender string  `json:"gender"`
}

type summaryView struct {
	Total    int        `json:"total"`
	Normal   int        `json:"normal"`
	Abnormal int        `json:"abnormal"`
	Unknown  int        `json:"unknown"`
	Urgency  string     `json:"urgency"`
	Flags    []flagView `json:"flags,omitempty"`
}

type flagView struct {
	Test     string `json:"test"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type entryView struct {
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Category string   `json:"category"`
	Low      float64  `json:"low"`
	High     float64  `json:"high"`
	Bands    int      `json:"bands,omitempty"`
}
