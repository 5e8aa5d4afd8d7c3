package verifier

import (
	"fmt"
	"os"
	"strings"
)

// ReportOutputter receives the rendered report of a verification run.
type ReportOutputter interface {
	Write(report string)
}

type ConsoleReportOutputter struct{}

func (ConsoleReportOutputter) Write(report string) {
	fmt.Fprint(os.Stdout, report)
}

type reporter struct {
	outputters []ReportOutputter
	lines      []string
}

func newReporter(outputters ...ReportOutputter) *reporter {
	return &reporter{outputters: outputters}
}

func (r *reporter) reportInfo(format string, a ...interface{}) {
	r.lines = append(r.lines, fmt.Sprintf(format, a...))
}

func (r *reporter) reportInteraction(interaction Interaction, err error) {
	r.reportInfo("  Given %s", interaction.ProviderState)
	if err != nil {
		r.reportInfo("    %s (FAILED)", interaction.Description)
		for _, line := range strings.Split(err.Error(), "\n") {
			r.reportInfo("      %s", line)
		}
		return
	}
	r.reportInfo("    %s (OK)", interaction.Description)
}

func (r *reporter) flush() {
	if len(r.lines) == 0 {
		return
	}
	report := strings.Join(r.lines, "\n") + "\n"
	r.lines = nil
	for _, outputter := range r.outputters {
		outputter.Write(report)
	}
}
