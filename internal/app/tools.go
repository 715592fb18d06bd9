package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/your-org/docrouter/internal/config"
	"github.com/your-org/docrouter/internal/route"
	"github.com/your-org/docrouter/pkg/intake"
)

// RouteFile routes a single agent result read from a JSON file.
func RouteFile(cfg config.Config, path string, out io.Writer) error {
	app, err := Build(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(context.Background()) }()

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read agent result: %w", err)
	}
	var agentResult intake.Result
	if err := json.Unmarshal(raw, &agentResult); err != nil {
		return fmt.Errorf("parse agent result: %w", err)
	}

	result := app.Router.Route(context.Background(), agentResult)
	printRouteResult(out, result)
	return nil
}

// BatchFile routes a JSON array of agent results and prints a per-item report.
func BatchFile(cfg config.Config, path string, out io.Writer) error {
	app, err := Build(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(context.Background()) }()

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}
	var agentResults []intake.Result
	if err := json.Unmarshal(raw, &agentResults); err != nil {
		return fmt.Errorf("parse batch file: %w", err)
	}

	batch := app.Router.ProcessBatch(context.Background(), agentResults)
	_, _ = fmt.Fprintf(out, "routed %d item(s) from %s: %s (%d ok, %d failed)\n",
		batch.Total, path, batch.Status, batch.Successful, batch.Failed)
	for _, entry := range batch.Actions {
		if entry.Status == "error" {
			_, _ = fmt.Fprintf(out, "- item %d: error=%s\n", entry.ItemIndex, entry.Error)
			continue
		}
		_, _ = fmt.Fprintf(out, "- item %d: %s actions=%d\n", entry.ItemIndex, entry.Result.Status, len(entry.Result.ActionsTaken))
	}
	if batch.Status == route.BatchFailed {
		return fmt.Errorf("batch completed with %d failed item(s)", batch.Failed)
	}
	return nil
}

// ValidateFile runs the schema validator over a JSON document or file path
// and prints what it found, without dispatching any action.
func ValidateFile(cfg config.Config, path string, out io.Writer) error {
	app, err := Build(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(context.Background()) }()

	result := app.Validator.Validate(path)
	printAgentResult(out, result)
	if !result.IsValid() {
		return fmt.Errorf("document has %d anomal(ies)", len(result.Anomalies))
	}
	return nil
}

// EmailFile analyzes an email file and routes the resulting suggestion.
func EmailFile(cfg config.Config, path string, out io.Writer) error {
	app, err := Build(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(context.Background()) }()

	result := app.Email.Process(path)
	printAgentResult(out, result)
	routed := app.Router.Route(context.Background(), result)
	printRouteResult(out, routed)
	return nil
}

func printAgentResult(out io.Writer, result intake.Result) {
	_, _ = fmt.Fprintf(out, "status=%s format=%s tracking_id=%s\n", result.Status, result.Format, result.TrackingID)
	for _, anomaly := range result.Anomalies {
		_, _ = fmt.Fprintf(out, "- anomaly: %s\n", anomaly)
	}
	if s := result.SuggestedAction; s != nil {
		_, _ = fmt.Fprintf(out, "suggested: %s -> %s (%s priority) endpoint=%s\n", s.Action, s.Target, s.Priority, s.Endpoint)
	}
}

func printRouteResult(out io.Writer, result route.Result) {
	_, _ = fmt.Fprintf(out, "routing status=%s actions=%d\n", result.Status, len(result.ActionsTaken))
	for _, outcome := range result.ActionsTaken {
		_, _ = fmt.Fprintf(out, "- %s via %s: %s after %d attempt(s)\n",
			outcome.ActionType, outcome.Endpoint, outcome.Status, outcome.Attempts)
	}
}
