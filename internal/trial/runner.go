// Package trial installs and immediately uninstalls marketplace modules,
// recording the outcome of each attempt.
package trial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/egoavara/bitrix-console/internal/cms"
	"github.com/egoavara/bitrix-console/internal/i18n"
	"github.com/egoavara/bitrix-console/internal/marketplace"
	"github.com/egoavara/bitrix-console/internal/report"
	"go.uber.org/zap"
)

// Progress receives per-module progress
type Progress interface {
	Start(total int)
	Advance()
	SetMessage(msg string)
	Clear()
}

type nopProgress struct{}

func (nopProgress) Start(int)         {}
func (nopProgress) Advance()          {}
func (nopProgress) SetMessage(string) {}
func (nopProgress) Clear()            {}

// Runner trials modules one at a time in discovery order
type Runner struct {
	Installer cms.ModuleInstaller
	Progress  Progress
	Logger    *zap.Logger
	Out       io.Writer
	// Timeout bounds a whole load, register, remove cycle. Zero disables it.
	Timeout time.Duration
}

// Run trials every module. A failing module never stops the batch; only
// cancellation of ctx does, in which case the partial report is returned
// together with the context error.
func (r *Runner) Run(ctx context.Context, modules *marketplace.Modules) (*report.Report, error) {
	progress := r.Progress
	if progress == nil {
		progress = nopProgress{}
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := r.Out
	if out == nil {
		out = io.Discard
	}

	rep := report.New()
	progress.Start(modules.Len())
	defer progress.Clear()

	for _, m := range modules.List() {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		progress.SetMessage(i18n.T("trial.installing", map[string]interface{}{"Code": m.Code}))

		err := r.trial(ctx, m.Code)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return rep, ctxErr
		}

		progress.Clear()
		if err == nil {
			rep.Add(report.Success, m.Code)
			fmt.Fprintf(out, "   %s\n", i18n.T("trial.ok", map[string]interface{}{"Code": m.Code}))
		} else {
			kind := Classify(err)
			rep.Add(kind.Label(), m.Code)
			logger.Debug("module trial failed", zap.String("module", m.Code), zap.Error(err))
			fmt.Fprintf(out, "   %s\n", i18n.T("trial.failed", map[string]interface{}{
				"Code": m.Code,
				"Kind": kind.Label(),
			}))
		}
		progress.Advance()
	}

	return rep, nil
}

func (r *Runner) trial(ctx context.Context, code string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	if err := r.Installer.Load(ctx, code); err != nil {
		return err
	}
	if err := r.Installer.Register(ctx, code); err != nil {
		return err
	}
	return r.Installer.Remove(ctx, code)
}

// Classify maps a trial error to its report category
func Classify(err error) cms.Kind {
	var ie *cms.InstallError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return cms.Timeout
	}
	return cms.Unexpected
}
