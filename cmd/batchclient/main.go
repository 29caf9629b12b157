package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"FitPull/internal/domain/models"
	xhttp "FitPull/pkg/http"
)

var (
	serverURL  string
	symbolFile string
	symbols    []string
	deferred   bool
	outFile    string
	timeout    time.Duration
)

// rootCmd is the base command for the batch training client.
var rootCmd = &cobra.Command{
	Use:   "batchclient",
	Short: "Submit training batches and inspect results",
	Long: `batchclient talks to the training service: it submits symbol batches
(inline or deferred), polls deferred jobs, and fetches the latest
stored parameters for a symbol.`,
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Submit a training batch",
	Long: `Submit a batch of symbols for training. Symbols come from --symbols or
from a CSV file with a "symbol" column. With --defer the service
acknowledges immediately and the batch runs in the background.

Example usage:
  batchclient train --symbols AAPL,MSFT
  batchclient train --file symbols.csv --defer`,
	RunE: runTrain,
}

var resultsCmd = &cobra.Command{
	Use:   "results <symbol>",
	Short: "Fetch the latest stored parameters for a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runResults,
}

var jobCmd = &cobra.Command{
	Use:   "job <id>",
	Short: "Show the record of a deferred batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runJob,
}

func init() {
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(jobCmd)

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Training service base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Request timeout")

	trainCmd.Flags().StringVar(&symbolFile, "file", "", "CSV file with a symbol column")
	trainCmd.Flags().StringSliceVar(&symbols, "symbols", nil, "Comma-separated symbol list")
	trainCmd.Flags().BoolVar(&deferred, "defer", false, "Queue the batch instead of waiting for it")
	trainCmd.Flags().StringVar(&outFile, "out", "model_parameters.json", "File for the symbol-keyed results of a sync batch (empty to skip)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// envelope matches the service's response wrapper.
type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func runTrain(cmd *cobra.Command, args []string) error {
	list := symbols
	if symbolFile != "" {
		fromFile, err := readSymbolsCSV(symbolFile)
		if err != nil {
			return err
		}
		list = append(list, fromFile...)
	}
	if len(list) == 0 {
		return fmt.Errorf("no symbols given: use --symbols or --file")
	}

	path := "/api/train/sync"
	if deferred {
		path = "/api/train/batch"
	}

	var env envelope
	if err := post(path, map[string]interface{}{"symbols": list}, &env); err != nil {
		return err
	}

	if !deferred && outFile != "" {
		var resp models.TrainSyncResponse
		if err := json.Unmarshal(env.Data, &resp); err != nil {
			return fmt.Errorf("decode results: %w", err)
		}
		if err := writeResultsFile(outFile, resp.Results); err != nil {
			return err
		}
		fmt.Printf("wrote %d records to %s\n", len(resp.Results), outFile)
	}
	return printData(env)
}

// writeResultsFile writes sync results as one JSON object keyed by symbol,
// the layout downstream schedulers consume.
func writeResultsFile(path string, results []models.SymbolMetrics) error {
	keyed := make(map[string]models.NormalizedMetrics, len(results))
	for _, r := range results {
		keyed[r.Symbol] = r.NormalizedMetrics
	}
	b, err := json.MarshalIndent(keyed, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	return nil
}

func runResults(cmd *cobra.Command, args []string) error {
	var env envelope
	if err := get("/api/results/"+args[0], &env); err != nil {
		return err
	}
	return printData(env)
}

func runJob(cmd *cobra.Command, args []string) error {
	var env envelope
	if err := get("/api/jobs/"+args[0], &env); err != nil {
		return err
	}
	return printData(env)
}

func post(path string, body interface{}, dest interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := xhttp.NewClient(xhttp.WithTimeout(timeout))
	return client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     serverURL + path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}, dest)
}

func get(path string, dest interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := xhttp.NewClient(xhttp.WithTimeout(timeout))
	return client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    serverURL + path,
	}, dest)
}

func printData(env envelope) error {
	var pretty interface{}
	if err := json.Unmarshal(env.Data, &pretty); err != nil {
		fmt.Println(string(env.Data))
		return nil
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// readSymbolsCSV reads the symbol column of a CSV file. Header is required.
func readSymbolsCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("csv has no symbol column")
	}

	var out []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		s := strings.TrimSpace(rec[col])
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
