package reporter

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"sync"

	"hostprobe/internal/models"
)

// Reporter handles writing probe results to a CSV file in a separate goroutine.
type Reporter struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	resultsChan <-chan models.ProbeResult
	outputFile  string
	logger      *slog.Logger

	// OnResult is called for every result read from the channel, written or not.
	OnResult func(models.ProbeResult)
}

// New creates a new Reporter instance.
func New(ctx context.Context, wg *sync.WaitGroup, resultsChan <-chan models.ProbeResult, outputFile string, logger *slog.Logger) *Reporter {
	return &Reporter{ctx: ctx, wg: wg, resultsChan: resultsChan, outputFile: outputFile, logger: logger}
}

// Run starts the reporter. It listens for results and writes them to the CSV.
// The channel is always drained so producers never block on a failed reporter.
func (r *Reporter) Run() {
	defer r.wg.Done()
	reporterLogger := r.logger.With(slog.String("component", "reporter"))
	file, err := os.Create(r.outputFile)
	if err != nil {
		reporterLogger.Error("Failed to create output file, results will be discarded.", "file", r.outputFile, "error", err)
		for result := range r.resultsChan {
			r.observe(result)
		}
		return
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(models.CSVHeader()); err != nil {
		reporterLogger.Error("Failed to write CSV header.", "error", err)
	}
	reporterLogger.Info("Started.", "file", r.outputFile)

	for {
		select {
		case result, ok := <-r.resultsChan:
			if !ok {
				reporterLogger.Info("Results channel closed. Shutting down.")
				return
			}
			r.write(writer, reporterLogger, result)
		case <-r.ctx.Done():
			reporterLogger.Info("Shutdown signal received. Draining remaining results...")
			for result := range r.resultsChan { // Drain the channel
				r.write(writer, reporterLogger, result)
			}
			return
		}
	}
}

func (r *Reporter) write(writer *csv.Writer, logger *slog.Logger, result models.ProbeResult) {
	r.observe(result)
	if err := writer.Write(result.ToCSVRow()); err != nil {
		logger.Error("Failed to write record.", "address", result.Address, "error", err)
	}
}

func (r *Reporter) observe(result models.ProbeResult) {
	if r.OnResult != nil {
		r.OnResult(result)
	}
}
