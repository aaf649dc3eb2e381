package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/seatplan/pkg/classroom"
	"github.com/matzehuels/seatplan/pkg/errors"
	"github.com/matzehuels/seatplan/pkg/observability"
	"github.com/matzehuels/seatplan/pkg/placement"
	"github.com/matzehuels/seatplan/pkg/render"
)

// Render draws res in each format without consulting a cache.
func Render(ctx context.Context, c *classroom.Classroom, res *placement.Result, formats []string, labels string) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}
	chart, err := render.NewChart(c, res, render.Options{Labels: labels})
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(formats))
	for _, format := range formats {
		start := time.Now()
		data, err := renderFormat(ctx, chart, res, format)
		observability.Placement().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		out[format] = data
	}
	return out, nil
}

func renderFormat(ctx context.Context, chart *render.Chart, res *placement.Result, format string) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(render.Text(chart)), nil
	case FormatJSON:
		return render.JSON(res)
	case FormatDOT:
		return []byte(render.ToDOT(chart)), nil
	case FormatSVG:
		return render.RenderSVG(ctx, render.ToDOT(chart))
	}
	return nil, errors.ValidateFormat(format, AllFormats...)
}
