package engine

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cigdemahmet27/logic-and-computabilitiy-p4/internal/sat"
)

// File names of the trigger/output exchange with an external engine,
// relative to the working directory.
const (
	TriggerFileName = "bcp_trigger_input.txt"
	OutputFileName  = "bcp_output.txt"
)

// ExecEngine drives an external inference engine process. Each propagation
// round writes the request to the trigger file, runs the engine binary,
// and parses the output file it leaves behind. Any transport failure is an
// ErrGateway; cancelling the context kills the running process.
type ExecEngine struct {
	binary      string
	args        []string
	triggerPath string
	outputPath  string
	log         logrus.FieldLogger
}

var _ Engine = (*ExecEngine)(nil)

// NewExecEngine returns an engine that runs the given binary with the
// trigger/output files placed in workDir. The directory is created if it
// does not exist; a failure here surfaces as an ErrGateway on the first
// trigger write.
func NewExecEngine(binary string, args []string, workDir string, log logrus.FieldLogger) *ExecEngine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	_ = os.MkdirAll(workDir, 0o755)
	return &ExecEngine{
		binary:      binary,
		args:        args,
		triggerPath: filepath.Join(workDir, TriggerFileName),
		outputPath:  filepath.Join(workDir, OutputFileName),
		log:         log,
	}
}

// Propagate implements Engine.
func (e *ExecEngine) Propagate(ctx context.Context, level int, decision sat.Literal) (*Result, error) {
	var req bytes.Buffer
	if err := EncodeRequest(&req, level, decision); err != nil {
		return nil, errors.Wrapf(ErrGateway, "encode request: %v", err)
	}
	if err := os.WriteFile(e.triggerPath, req.Bytes(), 0o644); err != nil {
		return nil, errors.Wrapf(ErrGateway, "write trigger file: %v", err)
	}
	// Remove the previous round's response so an engine that exits without
	// writing a fresh one cannot be mistaken for a valid answer.
	if err := os.Remove(e.outputPath); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrGateway, "remove stale engine output: %v", err)
	}

	cmd := exec.CommandContext(ctx, e.binary, e.args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.log.Warnf("inference engine failed: %v\noutput:\n%s", err, out.String())
		return nil, errors.Wrapf(ErrGateway, "inference engine exited: %v", err)
	}
	e.log.Debugf("inference engine finished in %s (DL %d, trigger %d)", time.Since(start), level, decision)

	f, err := os.Open(e.outputPath)
	if err != nil {
		return nil, errors.Wrapf(ErrGateway, "open engine output: %v", err)
	}
	defer f.Close()

	return ParseResponse(f)
}
