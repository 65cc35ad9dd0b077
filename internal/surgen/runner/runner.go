package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vaibhaw-/surgen/internal/surgen/config"
	"github.com/vaibhaw-/surgen/internal/surgen/dataset"
	"github.com/vaibhaw-/surgen/internal/surgen/generate"
	"github.com/vaibhaw-/surgen/internal/surgen/logger"
	"github.com/vaibhaw-/surgen/internal/surgen/verify"
)

type RunSummary struct {
	RunID         string `json:"run_id"`
	Timestamp     string `json:"timestamp"`
	Phase         string `json:"phase"`
	Output        string `json:"output,omitempty"`
	Input         string `json:"input,omitempty"`
	Records       int    `json:"records"`
	FirstProtocol string `json:"first_protocol,omitempty"`
	LastProtocol  string `json:"last_protocol,omitempty"`
	Violations    int    `json:"violations,omitempty"`
}

func outputName(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}

// RunGenerate streams the whole surgeries document for ds into out.
func RunGenerate(ctx context.Context, cfg *config.Config, ds dataset.Dataset, out io.Writer) (RunSummary, error) {
	log := logger.L()

	g, err := generate.New(ds)
	if err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		RunID:  uuid.NewString(),
		Phase:  "generate",
		Output: outputName(cfg.Output.Path),
	}

	sw := generate.NewSQLWriter(out)
	n, err := g.Generate(ctx, func(r generate.Record) error {
		if summary.FirstProtocol == "" {
			summary.FirstProtocol = r.ProtocolNumber
		}
		summary.LastProtocol = r.ProtocolNumber
		return sw.Write(r)
	})
	if err != nil {
		return summary, fmt.Errorf("generate surgeries: %w", err)
	}
	if err := sw.Close(); err != nil {
		return summary, err
	}
	summary.Records = n
	summary.Timestamp = time.Now().UTC().Format(time.RFC3339)

	log.Infow("surgeries generated",
		"run_id", summary.RunID,
		"records", n,
		"first_protocol", summary.FirstProtocol,
		"last_protocol", summary.LastProtocol,
		"output", summary.Output,
	)

	if err := appendRunLog(cfg.Logging.RunLog, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// RunVerify parses a generated document from in and checks it against ds.
// A document with violations yields a non-nil error that wraps all of them.
func RunVerify(ctx context.Context, cfg *config.Config, ds dataset.Dataset, in io.Reader, inputName string) (verify.Report, error) {
	log := logger.L()
	if err := ctx.Err(); err != nil {
		return verify.Report{}, err
	}

	doc, err := verify.Parse(in)
	if err != nil {
		return verify.Report{}, fmt.Errorf("parse %s: %w", inputName, err)
	}

	rep, checkErr := verify.Check(doc, ds)
	if checkErr != nil && rep.Violations == 0 {
		return rep, checkErr
	}

	summary := RunSummary{
		RunID:         uuid.NewString(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Phase:         "verify",
		Input:         inputName,
		Records:       rep.Rows,
		FirstProtocol: rep.FirstProtocol,
		LastProtocol:  rep.LastProtocol,
		Violations:    rep.Violations,
	}
	if checkErr != nil {
		log.Warnw("verification failed", "input", inputName, "rows", rep.Rows, "violations", rep.Violations)
	} else {
		log.Infow("verification passed", "input", inputName, "rows", rep.Rows, "days", rep.Days)
	}

	if err := appendRunLog(cfg.Logging.RunLog, summary); err != nil {
		return rep, err
	}
	return rep, checkErr
}

// appendRunLog appends one JSON line to path. An empty path disables the run log.
func appendRunLog(path string, summary RunSummary) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(summary); err != nil {
		return fmt.Errorf("write run log: %w", err)
	}
	return nil
}
