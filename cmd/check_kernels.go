package cmd

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ErrKernelsInvalid is returned when at least one kernel fails offline validation.
var ErrKernelsInvalid = errors.New("kernel validation failed")

// CheckKernels pre-processes every embedded kernel for the Cornell box and compiles it
// offline, without a GPU.
func CheckKernels(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	spheres, panels, lights := scene.CornellBox().Counts()
	kernels, err := shader.LoadKernels(spheres, panels, lights)
	if err != nil {
		return err
	}

	out, err := kernelTable(kernels)
	logger.Noticef("kernels\n%s", out)
	return err
}

// kernelTable validates each stage and renders one row per stage.
func kernelTable(kernels *shader.Kernels) (string, error) {
	var (
		buf    bytes.Buffer
		failed int
	)
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Kernel", "Stage", "Entry", "Workgroup", "Groups", "Result"})

	results := make(map[string]error)
	for _, s := range kernels.All() {
		verr, done := results[s.Key()]
		if !done {
			verr = s.Validate()
			results[s.Key()] = verr
		}
		result := "ok"
		if verr != nil {
			result = verr.Error()
			failed++
		}

		workgroup := "-"
		if s.ShaderType() == shader.ShaderTypeCompute {
			wg := s.WorkgroupSize()
			workgroup = fmt.Sprintf("%d x %d x %d", wg[0], wg[1], wg[2])
		}
		table.Append([]string{
			s.Key(),
			s.ShaderType().String(),
			s.EntryPoint(),
			workgroup,
			fmt.Sprintf("%d", len(s.BindGroupLayoutDescriptors())),
			result,
		})
	}
	table.Render()

	if failed > 0 {
		return buf.String(), fmt.Errorf("%w: %d stage(s)", ErrKernelsInvalid, failed)
	}
	return buf.String(), nil
}
