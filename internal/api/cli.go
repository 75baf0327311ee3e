package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/logger"
)

const (
	appName = "thermal-inspector"
	usage   = "Usage: " + appName + " <inspection_image> <baseline_image> <output_dir> <threshold>"

	errThreshold = "Threshold percentage must be a number."
)

// Inspector проводит одну инспекцию
type Inspector interface {
	Run(ctx context.Context, req entity.InspectionRequest) *entity.Report
}

// CLI точка входа процесса: аргументы на входе, один JSON-документ на stdout
type CLI struct {
	inspector Inspector
	out       io.Writer
	log       logger.Logger
}

func New(inspector Inspector, out io.Writer, log logger.Logger) *CLI {
	return &CLI{inspector: inspector, out: out, log: log}
}

// Execute разбирает аргументы, запускает инспекцию и возвращает код выхода процесса.
func (c *CLI) Execute(ctx context.Context, args []string) int {
	code := 0
	cmd := &cobra.Command{
		Use:   appName + " <inspection_image> <baseline_image> <output_dir> <threshold>",
		Short: "Filter detector anomalies on a thermal image against a baseline image",
		// отрицательный порог не должен разбираться как флаг
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			code, err = c.run(cmd, args)
			return err
		},
	}
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(c.out)

	if err := cmd.ExecuteContext(ctx); err != nil {
		c.log.Errorf(ctx, "Failed to write report: %v", err)
		return 1
	}
	return code
}

func (c *CLI) run(cmd *cobra.Command, args []string) (int, error) {
	ctx := cmd.Context()

	if len(args) != 4 {
		return 1, c.reject(ctx, errors.New(usage), fmt.Sprintf("expected 4 arguments, got %d", len(args)))
	}

	threshold, err := parseThreshold(args[3])
	if err != nil {
		return 1, c.reject(ctx, errors.New(errThreshold), fmt.Sprintf("threshold %q: %v", args[3], err))
	}

	report := c.inspector.Run(ctx, entity.InspectionRequest{
		InspectionImage: args[0],
		BaselineImage:   args[1],
		OutputDir:       args[2],
		Threshold:       threshold,
	})
	return 0, c.write(report)
}

// reject отвечает на неверный вызов отчётом UNCERTAIN
func (c *CLI) reject(ctx context.Context, err error, detail string) error {
	failure := entity.NewFailure(entity.FailureArgument, err)
	c.log.Errorf(ctx, "Invalid invocation (%s): %s", failure.Kind, detail)
	return c.write(entity.UncertainReport(failure))
}

func (c *CLI) write(report *entity.Report) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

// parseThreshold принимает любое конечное число, включая отрицательные
func parseThreshold(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %s", s)
	}
	return v, nil
}
